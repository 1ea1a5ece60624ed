package services

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"smartrecruit/resume-analyzer/internal/models"
	"smartrecruit/resume-analyzer/internal/repositories"
)

// CompletionEvent is emitted once per terminal job. The notification
// collaborator decides from it whether to alert the assigned
// evaluator; the global score is only present on success.
type CompletionEvent struct {
	JobID       uuid.UUID
	DocumentID  uuid.UUID
	Status      models.JobStatus
	GlobalScore *float64
}

type CompletionConsumer interface {
	HandleCompletion(ctx context.Context, event CompletionEvent) error
}

type Notifier interface {
	Subscribe(consumer CompletionConsumer)
	Publish(ctx context.Context, event CompletionEvent)
}

type notifier struct {
	mu        sync.RWMutex
	consumers []CompletionConsumer
}

func NewNotifier() Notifier {
	return &notifier{}
}

// Subscribe implements Notifier.
func (n *notifier) Subscribe(consumer CompletionConsumer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.consumers = append(n.consumers, consumer)
}

// Publish implements Notifier. A failing consumer is logged and never
// blocks the others; emission is best effort by design of the
// collaborator contract.
func (n *notifier) Publish(ctx context.Context, event CompletionEvent) {
	n.mu.RLock()
	consumers := make([]CompletionConsumer, len(n.consumers))
	copy(consumers, n.consumers)
	n.mu.RUnlock()

	for _, consumer := range consumers {
		if err := consumer.HandleCompletion(ctx, event); err != nil {
			log.Printf("⚠️  Completion consumer failed for job %s: %v\n", event.JobID, err)
		}
	}
}

// notificationRecorder is the default consumer: it appends the event
// to the notification log owned by the notification collaborator.
type notificationRecorder struct {
	repo repositories.NotificationRepository
}

func NewNotificationRecorder(repo repositories.NotificationRepository) CompletionConsumer {
	return &notificationRecorder{repo: repo}
}

func (r *notificationRecorder) HandleCompletion(_ context.Context, event CompletionEvent) error {
	notification := &models.Notification{
		ID:          uuid.New(),
		JobID:       event.JobID,
		DocumentID:  event.DocumentID,
		Status:      event.Status,
		GlobalScore: event.GlobalScore,
	}

	if err := r.repo.Create(notification); err != nil {
		return err
	}

	if event.GlobalScore != nil {
		log.Printf("📣 Analysis %s finished (%s), global score %.2f\n", event.JobID, event.Status, *event.GlobalScore)
	} else {
		log.Printf("📣 Analysis %s finished (%s)\n", event.JobID, event.Status)
	}
	return nil
}
