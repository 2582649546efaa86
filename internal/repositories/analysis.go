package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resumatch/internal/models"
)

type AnalysisRepository interface {
	CreateBatch(records []*models.AnalysisRecord) error
	FindByJobID(jobID uuid.UUID) ([]models.AnalysisRecord, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// CreateBatch stores all records of one batch, or none of them.
func (r *analysisRepository) CreateBatch(records []*models.AnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create analysis results: %w", err)
	}

	return nil
}

// FindByJobID returns a job's analyses, highest score first, with CV and job preloaded.
func (r *analysisRepository) FindByJobID(jobID uuid.UUID) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	err := r.db.
		Preload("CV").
		Preload("Job").
		Where("job_id = ?", jobID).
		Order("overall_score DESC").
		Order("created_at ASC").
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find analysis results: %w", err)
	}

	return records, nil
}
