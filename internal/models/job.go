package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const MaxJobTitleLength = 200

type JobDescription struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title        string         `gorm:"type:varchar(200);uniqueIndex;not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Requirements pq.StringArray `gorm:"type:text[];not null" json:"requirements"`
	Active       bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}
