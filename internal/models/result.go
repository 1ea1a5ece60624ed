package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is the persisted score breakdown for one succeeded
// job. Rows are created exactly once and never mutated; a re-analysis
// writes a new row that supersedes this one.
type AnalysisResult struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"job_id"`
	DocumentID    uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"application_id"`

	Language           string  `gorm:"type:text" json:"language"`
	LanguageConfidence float64 `gorm:"type:decimal(4,3)" json:"language_confidence"`

	Skills             map[string]float64 `gorm:"serializer:json;type:jsonb" json:"skills"`
	ExperienceYears    float64            `gorm:"type:decimal(5,2)" json:"experience_years"`
	ExperienceEstimate bool               `gorm:"not null;default:false" json:"experience_estimate"`
	EducationLevel     string             `gorm:"type:text" json:"education_level"`
	WordCount          int                `gorm:"not null;default:0" json:"word_count"`

	SkillsScore     float64 `gorm:"type:decimal(5,2)" json:"skills_score"`
	ExperienceScore float64 `gorm:"type:decimal(5,2)" json:"experience_score"`
	EducationScore  float64 `gorm:"type:decimal(5,2)" json:"education_score"`
	GlobalScore     float64 `gorm:"type:decimal(5,2)" json:"global_score"`

	Recommendations []string `gorm:"serializer:json;type:jsonb" json:"recommendations"`
	Warnings        []string `gorm:"serializer:json;type:jsonb" json:"warnings"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}

// Notification is the log of completion events handed to the
// notification collaborator. That collaborator owns delivery; this row
// only records what was emitted.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID       uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	DocumentID  uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	Status      JobStatus `gorm:"type:text;not null" json:"status"`
	GlobalScore *float64  `gorm:"type:decimal(5,2)" json:"global_score,omitempty"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "analysis_notifications"
}
