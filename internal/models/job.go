package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status is final. Terminal jobs are never
// reopened; a new analysis of the same document creates a new job.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// AnalysisJob tracks one analysis attempt lifecycle for one document.
// Status transitions are owned exclusively by the worker pool.
type AnalysisJob struct {
	ID         uuid.UUID             `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID uuid.UUID             `gorm:"type:uuid;not null;index" json:"document_id"`
	Profile    JobRequirementProfile `gorm:"serializer:json;type:jsonb" json:"profile"`
	Status     JobStatus             `gorm:"not null;default:'pending'" json:"status"`
	Attempts   int                   `gorm:"not null;default:0" json:"attempts"`
	LastError  *string               `gorm:"type:text" json:"last_error,omitempty"`
	StartedAt  *time.Time            `gorm:"type:timestamp" json:"started_at,omitempty"`
	FinishedAt *time.Time            `gorm:"type:timestamp" json:"finished_at,omitempty"`
	CreatedAt  time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}
