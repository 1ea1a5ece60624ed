package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOC  DocumentFormat = "doc"
	FormatDOCX DocumentFormat = "docx"
)

// Document is a stored resume file, immutable once submitted.
// Re-analysis references the same row with a new AnalysisJob.
type Document struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ApplicationID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"application_id"`
	Filename         string         `gorm:"type:text" json:"filename"`
	OriginalFileName string         `gorm:"type:text" json:"original_filename"`
	DeclaredFormat   DocumentFormat `gorm:"type:text;not null" json:"declared_format"`
	FilePath         string         `gorm:"type:text" json:"file_path"`
	CreatedAt        time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
