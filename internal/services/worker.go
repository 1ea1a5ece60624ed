package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartrecruit/resume-analyzer/internal/models"
	"smartrecruit/resume-analyzer/internal/repositories"
)

// Worker is the asynchronous task controller. It owns every job state
// transition: exclusive claims, bounded retries with backoff, terminal
// states, and the completion event.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(jobID uuid.UUID)
}

type worker struct {
	jobRepo     repositories.JobRepository
	analyzer    AnalyzerService
	notifier    Notifier
	jobQueue    chan uuid.UUID
	concurrency int
	maxAttempts int
	retryDelay  time.Duration
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewWorker(
	jobRepo repositories.JobRepository,
	analyzer AnalyzerService,
	notifier Notifier,
	concurrency int,
	maxAttempts int,
	retryDelay time.Duration,
) Worker {
	return &worker{
		jobRepo:     jobRepo,
		analyzer:    analyzer,
		notifier:    notifier,
		jobQueue:    make(chan uuid.UUID, 100),
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// Poller picks up pending jobs that were requeued or missed the
	// in-memory queue (e.g. after a restart).
	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(jobID uuid.UUID) {
	select {
	case w.jobQueue <- jobID:
		log.Printf("📥 Job %s enqueued\n", jobID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue job %s\n", jobID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("👷 Worker #%d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case jobID := <-w.jobQueue:
			w.processOne(ctx, workerID, jobID)
		}
	}
}

func (w *worker) processOne(ctx context.Context, workerID int, jobID uuid.UUID) {
	job, err := w.jobRepo.Claim(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			// Claimed by another worker, cancelled, or already terminal
			return
		}
		log.Printf("⚠️  Worker #%d failed to claim job %s: %v\n", workerID, jobID, err)
		return
	}

	log.Printf("👷 Worker #%d processing job %s (attempt %d/%d)\n", workerID, jobID, job.Attempts, w.maxAttempts)

	result, err := w.analyzer.Analyze(ctx, job)
	if err == nil {
		if err := w.jobRepo.MarkSucceeded(jobID); err != nil {
			log.Printf("⚠️  Failed to mark job %s succeeded: %v\n", jobID, err)
			return
		}
		w.notifier.Publish(ctx, CompletionEvent{
			JobID:       jobID,
			DocumentID:  job.DocumentID,
			Status:      models.StatusSucceeded,
			GlobalScore: &result.GlobalScore,
		})
		log.Printf("✅ Worker #%d completed job %s\n", workerID, jobID)
		return
	}

	if IsPermanent(err) {
		w.failTerminal(ctx, job, err)
		return
	}

	// Transient failure: retry within the budget, then give up.
	if job.Attempts >= w.maxAttempts {
		w.failTerminal(ctx, job, fmt.Errorf("%w after %d attempts: %w", ErrRetryBudgetExhausted, job.Attempts, err))
		return
	}

	delay := backoffDelay(w.retryDelay, job.Attempts)
	log.Printf("⚠️  Job %s attempt %d failed (%v), retrying in %s\n", jobID, job.Attempts, err, delay)

	select {
	case <-w.stopChan:
		// Return the job to pending before shutting down so the next
		// start's poller picks it up; a job left running would be
		// unreachable forever.
		if reqErr := w.jobRepo.Requeue(jobID, err.Error()); reqErr != nil {
			log.Printf("⚠️  Failed to requeue job %s during shutdown: %v\n", jobID, reqErr)
		}
	case <-time.After(delay):
		if err := w.jobRepo.Requeue(jobID, err.Error()); err != nil {
			log.Printf("⚠️  Failed to requeue job %s: %v\n", jobID, err)
			return
		}
		go w.EnqueueJob(jobID)
	}
}

func (w *worker) failTerminal(ctx context.Context, job *models.AnalysisJob, cause error) {
	log.Printf("❌ Job %s failed permanently: %v\n", job.ID, cause)
	if err := w.jobRepo.MarkFailed(job.ID, cause.Error()); err != nil {
		log.Printf("⚠️  Failed to mark job %s failed: %v\n", job.ID, err)
		return
	}
	w.notifier.Publish(ctx, CompletionEvent{
		JobID:      job.ID,
		DocumentID: job.DocumentID,
		Status:     models.StatusFailed,
	})
}

// backoffDelay doubles the initial delay per prior attempt.
func backoffDelay(initial time.Duration, attempts int) time.Duration {
	delay := initial
	for i := 1; i < attempts; i++ {
		delay *= 2
	}
	return delay
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Println("🔄 Starting pending jobs poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ticker.C:
			pendingJobs, err := w.jobRepo.FindPendingJobs(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending jobs: %v\n", err)
				continue
			}

			if len(pendingJobs) > 0 {
				log.Printf("📋 Found %d pending jobs\n", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
