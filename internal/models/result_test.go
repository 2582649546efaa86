package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNewAnalysisResultResponse(t *testing.T) {
	rec := &AnalysisRecord{
		ID:             uuid.New(),
		CVID:           uuid.New(),
		JobID:          uuid.New(),
		OverallScore:   64,
		MatchingSkills: pq.StringArray{"Go"},
		Summary:        "Decent",
		CreatedAt:      time.Now(),
	}

	resp := NewAnalysisResultResponse(rec, "jane.pdf", "Backend Engineer")
	assert.Equal(t, rec.CVID.String(), resp.CVID)
	assert.Equal(t, "jane.pdf", resp.CVFilename)
	assert.Equal(t, "Backend Engineer", resp.JobTitle)
	assert.Equal(t, []string{"Go"}, resp.MatchingSkills)
	assert.NotNil(t, resp.MissingSkills)
	assert.Empty(t, resp.MissingSkills)
	assert.Nil(t, resp.Error)
}

func TestNewAnalysisResultResponseUnknownNames(t *testing.T) {
	msg := "quota exceeded"
	resp := NewAnalysisResultResponse(&AnalysisRecord{ErrorMessage: &msg}, "", "")

	assert.Equal(t, "Unknown", resp.CVFilename)
	assert.Equal(t, "Unknown", resp.JobTitle)
	assert.Equal(t, &msg, resp.Error)
}

func TestNewJobDescriptionResponse(t *testing.T) {
	resp := NewJobDescriptionResponse(&JobDescription{Title: "Dev", Active: true})

	assert.Equal(t, "Dev", resp.Title)
	assert.NotNil(t, resp.Requirements)
	assert.True(t, resp.Active)
}
