package services

import (
	"fmt"
	"strings"
)

const (
	fallbackSummaryPrefix    = "Error analyzing CV: "
	fallbackDetailedAnalysis = "Analysis failed due to an error with the AI service."
)

// AnalysisInput is one CV scored against one job.
type AnalysisInput struct {
	JobDescription string
	Requirements   []string
	CandidateText  string
}

// Candidate is one CV of a batch.
type Candidate struct {
	ID    string
	Label string
	Text  string
}

// AnalysisResult is the typed outcome of analysing one CV.
// Error is non-nil only on fallback results.
type AnalysisResult struct {
	OverallScore     float64  `json:"overall_score"`
	Summary          string   `json:"summary"`
	MatchingSkills   []string `json:"matching_skills"`
	MissingSkills    []string `json:"missing_skills"`
	DetailedAnalysis string   `json:"detailed_analysis"`
	CandidateID      string   `json:"candidate_id,omitempty"`
	CandidateLabel   string   `json:"candidate_label,omitempty"`
	Error            *string  `json:"error"`
}

// IsFallback reports whether the result stands in for a failed analysis.
func (r *AnalysisResult) IsFallback() bool {
	return r.Error != nil
}

// NewFallbackResult builds the placeholder returned in place of a failed analysis.
func NewFallbackResult(err error) *AnalysisResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &AnalysisResult{
		OverallScore:     0,
		Summary:          fallbackSummaryPrefix + msg,
		MatchingSkills:   []string{},
		MissingSkills:    []string{},
		DetailedAnalysis: fallbackDetailedAnalysis,
		Error:            &msg,
	}
}

func (in AnalysisInput) validate() error {
	if len(in.Requirements) == 0 {
		return &ValidationError{Field: "requirements", Message: "at least one requirement is required"}
	}
	for i, req := range in.Requirements {
		if strings.TrimSpace(req) == "" {
			return &ValidationError{Field: "requirements", Message: fmt.Sprintf("requirement %d must not be empty", i+1)}
		}
	}
	if strings.TrimSpace(in.CandidateText) == "" {
		return &ValidationError{Field: "candidate_text", Message: "candidate text must not be empty"}
	}
	return nil
}
