package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resumatch/internal/models"
)

type JobRepository interface {
	Create(job *models.JobDescription) error
	FindByID(id uuid.UUID) (*models.JobDescription, error)
	FindByTitle(title string) (*models.JobDescription, error)
	FindActive() ([]models.JobDescription, error)
	Deactivate(id uuid.UUID) error
	DeleteByTitle(title string) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Create implements JobRepository. A title clash returns ErrDuplicateTitle.
func (r *jobRepository) Create(job *models.JobDescription) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	if err := r.db.Create(job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("failed to create job description: %w", err)
	}

	return nil
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(id uuid.UUID) (*models.JobDescription, error) {
	var job models.JobDescription
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job description: %w", err)
	}

	return &job, nil
}

// FindByTitle implements JobRepository.
func (r *jobRepository) FindByTitle(title string) (*models.JobDescription, error) {
	var job models.JobDescription
	if err := r.db.Where("title = ?", title).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job description: %w", err)
	}

	return &job, nil
}

// FindActive implements JobRepository.
func (r *jobRepository) FindActive() ([]models.JobDescription, error) {
	var jobs []models.JobDescription
	if err := r.db.Where("active = ?", true).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list job descriptions: %w", err)
	}

	return jobs, nil
}

// Deactivate implements JobRepository.
func (r *jobRepository) Deactivate(id uuid.UUID) error {
	result := r.db.Model(&models.JobDescription{}).
		Where("id = ?", id).
		Update("active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate job description: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteByTitle removes a job and its analyses. A missing title is not an error.
func (r *jobRepository) DeleteByTitle(title string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var job models.JobDescription
		if err := tx.Where("title = ?", title).First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to find job description: %w", err)
		}

		if err := tx.Where("job_id = ?", job.ID).Delete(&models.AnalysisRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete analyses: %w", err)
		}
		if err := tx.Delete(&job).Error; err != nil {
			return fmt.Errorf("failed to delete job description: %w", err)
		}

		return nil
	})
}
