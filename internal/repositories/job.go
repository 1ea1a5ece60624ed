package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartrecruit/resume-analyzer/internal/models"
)

// ErrStatusConflict signals a compare-and-set transition that lost to a
// concurrent update. Callers treat it as "someone else owns this job".
var ErrStatusConflict = fmt.Errorf("job status conflict")

type JobRepository interface {
	Create(job *models.AnalysisJob) error
	FindByID(id uuid.UUID) (*models.AnalysisJob, error)
	FindActiveByDocument(documentID uuid.UUID) (*models.AnalysisJob, error)
	FindPendingJobs(limit int) ([]models.AnalysisJob, error)
	Claim(id uuid.UUID) (*models.AnalysisJob, error)
	Requeue(id uuid.UUID, cause string) error
	MarkSucceeded(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause string) error
	Cancel(id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.AnalysisJob) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create analysis job: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(id uuid.UUID) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("analysis job not found")
		}
		return nil, fmt.Errorf("failed to find analysis job: %w", err)
	}
	return &job, nil
}

// FindActiveByDocument returns the non-terminal job for a document, if
// any. Submission uses it to coalesce duplicate requests so at most
// one job per document is ever in flight.
func (r *jobRepository) FindActiveByDocument(documentID uuid.UUID) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	err := r.db.
		Where("document_id = ? AND status IN ?", documentID,
			[]models.JobStatus{models.StatusPending, models.StatusRunning}).
		First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) FindPendingJobs(limit int) ([]models.AnalysisJob, error) {
	var jobs []models.AnalysisJob
	err := r.db.
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return jobs, nil
}

// Claim transitions pending -> running with a compare-and-set on
// status, so two workers can never both own the same job. Unrelated
// jobs are untouched; there is no global lock.
func (r *jobRepository) Claim(id uuid.UUID) (*models.AnalysisJob, error) {
	now := time.Now()
	result := r.db.Model(&models.AnalysisJob{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":     models.StatusRunning,
			"attempts":   gorm.Expr("attempts + 1"),
			"started_at": now,
			"updated_at": now,
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}

	return r.FindByID(id)
}

// Requeue returns a running job to pending after a transient failure,
// retaining the cause for visibility.
func (r *jobRepository) Requeue(id uuid.UUID, cause string) error {
	result := r.db.Model(&models.AnalysisJob{}).
		Where("id = ? AND status = ?", id, models.StatusRunning).
		Updates(map[string]interface{}{
			"status":     models.StatusPending,
			"last_error": cause,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to requeue job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *jobRepository) MarkSucceeded(id uuid.UUID) error {
	now := time.Now()
	result := r.db.Model(&models.AnalysisJob{}).
		Where("id = ? AND status = ?", id, models.StatusRunning).
		Updates(map[string]interface{}{
			"status":      models.StatusSucceeded,
			"finished_at": now,
			"updated_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark job succeeded: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// MarkFailed is terminal. The last error stays on the row for
// operator and user visibility.
func (r *jobRepository) MarkFailed(id uuid.UUID, cause string) error {
	now := time.Now()
	result := r.db.Model(&models.AnalysisJob{}).
		Where("id = ? AND status = ?", id, models.StatusRunning).
		Updates(map[string]interface{}{
			"status":      models.StatusFailed,
			"last_error":  cause,
			"finished_at": now,
			"updated_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark job failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// Cancel only succeeds while the job is still pending. A running job
// finishes naturally and a late cancellation is a no-op for the
// caller to report.
func (r *jobRepository) Cancel(id uuid.UUID) error {
	now := time.Now()
	result := r.db.Model(&models.AnalysisJob{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      models.StatusCancelled,
			"finished_at": now,
			"updated_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to cancel job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
