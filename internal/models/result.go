package models

import (
	"time"

	"github.com/google/uuid"
)

type JobDescriptionCreate struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

type JobDescriptionResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	CreatedAt    time.Time `json:"created_at"`
	Active       bool      `json:"active"`
}

func NewJobDescriptionResponse(job *JobDescription) JobDescriptionResponse {
	reqs := []string(job.Requirements)
	if reqs == nil {
		reqs = []string{}
	}
	return JobDescriptionResponse{
		ID:           job.ID.String(),
		Title:        job.Title,
		Description:  job.Description,
		Requirements: reqs,
		CreatedAt:    job.CreatedAt,
		Active:       job.Active,
	}
}

type CVFileResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func NewCVFileResponse(cv *CVFile) CVFileResponse {
	return CVFileResponse{
		ID:         cv.ID.String(),
		Filename:   cv.Filename,
		FileType:   cv.FileType,
		FileSize:   cv.FileSize,
		UploadedAt: cv.UploadedAt,
	}
}

type AnalysisRequest struct {
	JobID string   `json:"job_id"`
	CVIDs []string `json:"cv_ids"`
}

type AnalysisResultResponse struct {
	ID               string    `json:"id"`
	CVID             string    `json:"cv_id"`
	JobID            string    `json:"job_id"`
	OverallScore     float64   `json:"overall_score"`
	MatchingSkills   []string  `json:"matching_skills"`
	MissingSkills    []string  `json:"missing_skills"`
	Summary          string    `json:"summary"`
	DetailedAnalysis string    `json:"detailed_analysis"`
	CreatedAt        time.Time `json:"created_at"`
	CVFilename       string    `json:"cv_filename"`
	JobTitle         string    `json:"job_title"`
	Error            *string   `json:"error"`
}

// NewAnalysisResultResponse enriches a record with the CV filename and job title.
// Empty names are reported as "Unknown".
func NewAnalysisResultResponse(rec *AnalysisRecord, cvFilename, jobTitle string) AnalysisResultResponse {
	if cvFilename == "" {
		cvFilename = "Unknown"
	}
	if jobTitle == "" {
		jobTitle = "Unknown"
	}
	return AnalysisResultResponse{
		ID:               rec.ID.String(),
		CVID:             rec.CVID.String(),
		JobID:            rec.JobID.String(),
		OverallScore:     rec.OverallScore,
		MatchingSkills:   nonNil(rec.MatchingSkills),
		MissingSkills:    nonNil(rec.MissingSkills),
		Summary:          rec.Summary,
		DetailedAnalysis: rec.DetailedAnalysis,
		CreatedAt:        rec.CreatedAt,
		CVFilename:       cvFilename,
		JobTitle:         jobTitle,
		Error:            rec.ErrorMessage,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type StageStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type DiagnosticsResponse struct {
	Status          string      `json:"status"`
	DatabaseTest    StageStatus `json:"database_test"`
	SampleJob       StageStatus `json:"sample_job_created"`
	SampleCV        StageStatus `json:"sample_cv_created"`
	AnalysisTest    StageStatus `json:"analysis_test"`
	Message         string      `json:"message"`
	AIConfigured    bool        `json:"ai_configured"`
	AnalysisMode    string      `json:"analysis_mode"`
	GeneratedAtUnix int64       `json:"generated_at"`
}

type ShortlistEntry struct {
	CVID     uuid.UUID `json:"cv_id"`
	Filename string    `json:"filename"`
	Score    float32   `json:"similarity"`
}
