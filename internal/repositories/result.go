package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartrecruit/resume-analyzer/internal/models"
)

type ResultRepository interface {
	Create(result *models.AnalysisResult) error
	FindByJobID(jobID uuid.UUID) (*models.AnalysisResult, error)
	FindLatestByApplication(applicationID uuid.UUID) (*models.AnalysisResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(result *models.AnalysisResult) error {
	if err := r.db.Create(result).Error; err != nil {
		return fmt.Errorf("failed to create analysis result: %w", err)
	}
	return nil
}

func (r *resultRepository) FindByJobID(jobID uuid.UUID) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := r.db.Where("job_id = ?", jobID).First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("analysis result not found")
		}
		return nil, fmt.Errorf("failed to find analysis result: %w", err)
	}
	return &result, nil
}

// FindLatestByApplication returns the most recent result for an
// application record: re-analysis supersedes by creation time, older
// rows stay untouched.
func (r *resultRepository) FindLatestByApplication(applicationID uuid.UUID) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := r.db.
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("analysis result not found")
		}
		return nil, fmt.Errorf("failed to find analysis result: %w", err)
	}
	return &result, nil
}
