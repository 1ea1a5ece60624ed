package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartrecruit/resume-analyzer/internal/models"
)

type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByJobID(jobID uuid.UUID) ([]models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	if err := r.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) FindByJobID(jobID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.Where("job_id = ?", jobID).Order("created_at ASC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	return notifications, nil
}
