package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resumatch/internal/models"
)

type CVRepository interface {
	Create(cv *models.CVFile) error
	FindByID(id uuid.UUID) (*models.CVFile, error)
	FindByIDs(ids []uuid.UUID) ([]models.CVFile, error)
	FindAll() ([]models.CVFile, error)
}

type cvRepository struct {
	db *gorm.DB
}

func NewCVRepository(db *gorm.DB) CVRepository {
	return &cvRepository{db: db}
}

// Create implements CVRepository.
func (r *cvRepository) Create(cv *models.CVFile) error {
	if cv.ID == uuid.Nil {
		cv.ID = uuid.New()
	}

	if err := r.db.Create(cv).Error; err != nil {
		return fmt.Errorf("failed to create CV file: %w", err)
	}

	return nil
}

// FindByID implements CVRepository.
func (r *cvRepository) FindByID(id uuid.UUID) (*models.CVFile, error) {
	var cv models.CVFile
	if err := r.db.Where("id = ?", id).First(&cv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find CV file: %w", err)
	}

	return &cv, nil
}

// FindByIDs implements CVRepository. Unknown ids are skipped.
func (r *cvRepository) FindByIDs(ids []uuid.UUID) ([]models.CVFile, error) {
	cvs := []models.CVFile{}
	if len(ids) == 0 {
		return cvs, nil
	}

	if err := r.db.Where("id IN ?", ids).Order("uploaded_at ASC").Find(&cvs).Error; err != nil {
		return nil, fmt.Errorf("failed to find CV files: %w", err)
	}

	return cvs, nil
}

// FindAll implements CVRepository.
func (r *cvRepository) FindAll() ([]models.CVFile, error) {
	var cvs []models.CVFile
	if err := r.db.Order("uploaded_at DESC").Find(&cvs).Error; err != nil {
		return nil, fmt.Errorf("failed to list CV files: %w", err)
	}

	return cvs, nil
}
