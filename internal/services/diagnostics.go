package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/logger"
	"alfredoptarigan/resumatch/internal/models"
	"alfredoptarigan/resumatch/internal/repositories"
)

// Stage statuses, ordered by severity.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

const (
	SampleJobTitle = "Test Senior Full Stack Developer"
	sampleJobText  = "We are looking for a senior full stack developer with expertise in modern web technologies."
	sampleCVName   = "test_candidate.txt"
	sampleCVText   = `John Doe
Senior Software Engineer

Experience:
- 5 years developing web applications using React, Node.js, and Python
- Experienced with PostgreSQL database design and optimization
- Proficient in Git version control and Agile development
- Strong problem-solving and communication skills

Skills:
React, JavaScript, Python, Node.js, PostgreSQL, Git, HTML, CSS`
)

var sampleJobRequirements = []string{"React", "Node.js", "Python", "PostgreSQL", "AWS", "Docker"}

// DiagnosticsService runs an end-to-end self test. A failing stage never
// aborts the run.
type DiagnosticsService interface {
	Run(ctx context.Context) models.DiagnosticsResponse
}

type diagnosticsService struct {
	ping     func(ctx context.Context) error
	jobRepo  repositories.JobRepository
	cvRepo   repositories.CVRepository
	ranker   Ranker
	analyzer CandidateAnalyzer
	log      *zap.Logger
}

func NewDiagnosticsService(
	ping func(ctx context.Context) error,
	jobRepo repositories.JobRepository,
	cvRepo repositories.CVRepository,
	analyzer CandidateAnalyzer,
	ranker Ranker,
	log *zap.Logger,
) DiagnosticsService {
	return &diagnosticsService{
		ping:     ping,
		jobRepo:  jobRepo,
		cvRepo:   cvRepo,
		ranker:   ranker,
		analyzer: analyzer,
		log:      logger.OrNop(log),
	}
}

func (d *diagnosticsService) Run(ctx context.Context) models.DiagnosticsResponse {
	resp := models.DiagnosticsResponse{
		AIConfigured:    d.analyzer.IsConfigured(),
		AnalysisMode:    d.analyzer.Mode(),
		GeneratedAtUnix: time.Now().Unix(),
	}

	resp.DatabaseTest = d.checkDatabase(ctx)
	dbOK := resp.DatabaseTest.Status == StatusSuccess

	if dbOK {
		resp.SampleJob = d.createSampleJob()
		resp.SampleCV = d.createSampleCV()
	} else {
		resp.SampleJob = skipped("database unavailable")
		resp.SampleCV = skipped("database unavailable")
	}

	resp.AnalysisTest = d.runAnalysis(ctx)

	resp.Status, resp.Message = summarize(resp.DatabaseTest, resp.SampleJob, resp.SampleCV, resp.AnalysisTest)

	d.log.Info("🩺 Diagnostics completed", zap.String("status", resp.Status))
	return resp
}

func (d *diagnosticsService) checkDatabase(ctx context.Context) models.StageStatus {
	if d.ping == nil {
		return models.StageStatus{Status: StatusError, Message: "database is not configured"}
	}
	if err := d.ping(ctx); err != nil {
		return models.StageStatus{Status: StatusError, Message: fmt.Sprintf("Database connection failed: %v", err)}
	}
	return models.StageStatus{Status: StatusSuccess, Message: "Database connection successful"}
}

func (d *diagnosticsService) createSampleJob() models.StageStatus {
	if err := d.jobRepo.DeleteByTitle(SampleJobTitle); err != nil {
		return models.StageStatus{Status: StatusError, Message: err.Error()}
	}

	job := &models.JobDescription{
		Title:        SampleJobTitle,
		Description:  sampleJobText,
		Requirements: pq.StringArray(sampleJobRequirements),
		Active:       true,
	}
	if err := d.jobRepo.Create(job); err != nil {
		return models.StageStatus{Status: StatusError, Message: err.Error()}
	}

	return models.StageStatus{
		Status: StatusSuccess,
		Details: map[string]any{
			"job_id": job.ID.String(),
			"title":  job.Title,
		},
	}
}

func (d *diagnosticsService) createSampleCV() models.StageStatus {
	cv := &models.CVFile{
		Filename: sampleCVName,
		Content:  sampleCVText,
		FileType: FormatTXT,
		FileSize: int64(len(sampleCVText)),
	}
	if err := d.cvRepo.Create(cv); err != nil {
		return models.StageStatus{Status: StatusError, Message: err.Error()}
	}

	return models.StageStatus{
		Status: StatusSuccess,
		Details: map[string]any{
			"cv_id":    cv.ID.String(),
			"filename": cv.Filename,
		},
	}
}

func (d *diagnosticsService) runAnalysis(ctx context.Context) models.StageStatus {
	results, err := d.ranker.AnalyzeBatch(ctx, sampleJobText, sampleJobRequirements, []Candidate{
		{ID: "diagnostics", Label: sampleCVName, Text: sampleCVText},
	})
	if err != nil {
		status := StatusError
		if !d.analyzer.IsConfigured() {
			status = StatusWarning
		}
		return models.StageStatus{
			Status:  status,
			Message: err.Error(),
			Details: map[string]any{"ai_configured": d.analyzer.IsConfigured()},
		}
	}

	result := results[0]
	stage := models.StageStatus{
		Status: StatusSuccess,
		Details: map[string]any{
			"ai_configured":   d.analyzer.IsConfigured(),
			"score":           result.OverallScore,
			"matching_skills": result.MatchingSkills,
			"missing_skills":  result.MissingSkills,
		},
	}

	switch {
	case !d.analyzer.IsConfigured():
		stage.Status = StatusWarning
		stage.Message = "Gemini API is not configured; analysis returned a fallback result"
	case result.IsFallback():
		stage.Status = StatusWarning
		stage.Message = *result.Error
	}

	return stage
}

func skipped(reason string) models.StageStatus {
	return models.StageStatus{Status: StatusError, Message: "skipped: " + reason}
}

func severity(status string) int {
	switch status {
	case StatusSuccess:
		return 0
	case StatusWarning:
		return 1
	default:
		return 2
	}
}

// summarize returns the worst stage status and a matching message.
func summarize(stages ...models.StageStatus) (string, string) {
	worst := StatusSuccess
	var firstError string
	for _, s := range stages {
		if severity(s.Status) > severity(worst) {
			worst = s.Status
		}
		if s.Status == StatusError && firstError == "" {
			firstError = s.Message
		}
	}

	switch worst {
	case StatusSuccess:
		return StatusSuccess, "All systems operational. ResuMatch is ready for use."
	case StatusWarning:
		return StatusWarning, "System test completed with warnings."
	default:
		return StatusError, fmt.Sprintf("System test failed: %s", firstError)
	}
}
