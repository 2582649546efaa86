package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AnalysisRecord is a persisted analysis of one CV against one job.
// ErrorMessage is set when the row stores a fallback result.
type AnalysisRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CVID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"cv_id"`
	JobID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_id"`
	OverallScore     float64        `gorm:"not null" json:"overall_score"`
	MatchingSkills   pq.StringArray `gorm:"type:text[];not null" json:"matching_skills"`
	MissingSkills    pq.StringArray `gorm:"type:text[];not null" json:"missing_skills"`
	Summary          string         `gorm:"type:text;not null" json:"summary"`
	DetailedAnalysis string         `gorm:"type:text;not null" json:"detailed_analysis"`
	ErrorMessage     *string        `gorm:"type:text" json:"error,omitempty"`
	CreatedAt        time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`

	// Relations
	CV  CVFile         `gorm:"foreignKey:CVID" json:"-"`
	Job JobDescription `gorm:"foreignKey:JobID" json:"-"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_results"
}
