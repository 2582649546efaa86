package models

import (
	"time"

	"github.com/google/uuid"
)

// CVFile is an uploaded résumé with its extracted text.
type CVFile struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename   string    `gorm:"type:text;not null" json:"filename"`
	Content    string    `gorm:"type:text;not null" json:"-"`
	FileType   string    `gorm:"type:text;not null" json:"file_type"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	FilePath   string    `gorm:"type:text" json:"-"`
	UploadedAt time.Time `gorm:"type:timestamp;default:now()" json:"uploaded_at"`
}

func (CVFile) TableName() string {
	return "cv_files"
}
