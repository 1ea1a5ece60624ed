package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrecruit/resume-analyzer/internal/models"
	"smartrecruit/resume-analyzer/internal/repositories"
)

// fakeJobRepository reproduces the compare-and-set transition semantics
// of the real repository in memory.
type fakeJobRepository struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.AnalysisJob
}

func newFakeJobRepository() *fakeJobRepository {
	return &fakeJobRepository{jobs: make(map[uuid.UUID]*models.AnalysisJob)}
}

func (r *fakeJobRepository) Create(job *models.AnalysisJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepository) FindByID(id uuid.UUID) (*models.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("analysis job not found")
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepository) FindActiveByDocument(documentID uuid.UUID) (*models.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.DocumentID == documentID && !job.Status.Terminal() {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepository) FindPendingJobs(limit int) ([]models.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.AnalysisJob
	for _, job := range r.jobs {
		if job.Status == models.StatusPending && len(pending) < limit {
			pending = append(pending, *job)
		}
	}
	return pending, nil
}

func (r *fakeJobRepository) Claim(id uuid.UUID) (*models.AnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.StatusPending {
		return nil, repositories.ErrStatusConflict
	}
	job.Status = models.StatusRunning
	job.Attempts++
	now := time.Now()
	job.StartedAt = &now
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepository) Requeue(id uuid.UUID, cause string) error {
	return r.transition(id, models.StatusRunning, models.StatusPending, &cause)
}

func (r *fakeJobRepository) MarkSucceeded(id uuid.UUID) error {
	return r.transition(id, models.StatusRunning, models.StatusSucceeded, nil)
}

func (r *fakeJobRepository) MarkFailed(id uuid.UUID, cause string) error {
	return r.transition(id, models.StatusRunning, models.StatusFailed, &cause)
}

func (r *fakeJobRepository) Cancel(id uuid.UUID) error {
	return r.transition(id, models.StatusPending, models.StatusCancelled, nil)
}

func (r *fakeJobRepository) transition(id uuid.UUID, from, to models.JobStatus, cause *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != from {
		return repositories.ErrStatusConflict
	}
	job.Status = to
	if cause != nil {
		job.LastError = cause
	}
	if to.Terminal() {
		now := time.Now()
		job.FinishedAt = &now
	}
	return nil
}

// stubAnalyzer returns the scripted outcomes in order, then keeps
// returning the last one.
type stubAnalyzer struct {
	mu       sync.Mutex
	outcomes []error
	calls    int
}

func (a *stubAnalyzer) Analyze(_ context.Context, job *models.AnalysisJob) (*models.AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := a.calls
	if idx >= len(a.outcomes) {
		idx = len(a.outcomes) - 1
	}
	a.calls++
	if err := a.outcomes[idx]; err != nil {
		return nil, err
	}
	return &models.AnalysisResult{
		ID:          uuid.New(),
		JobID:       job.ID,
		DocumentID:  job.DocumentID,
		GlobalScore: 81.5,
	}, nil
}

func (a *stubAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type captureNotifier struct {
	mu     sync.Mutex
	events []CompletionEvent
}

func (n *captureNotifier) Subscribe(CompletionConsumer) {}

func (n *captureNotifier) Publish(_ context.Context, event CompletionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) captured() []CompletionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]CompletionEvent(nil), n.events...)
}

func newTestJob(repo *fakeJobRepository) *models.AnalysisJob {
	job := &models.AnalysisJob{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		Status:     models.StatusPending,
	}
	_ = repo.Create(job)
	return job
}

func waitForStatus(t *testing.T, repo *fakeJobRepository, id uuid.UUID, want models.JobStatus) *models.AnalysisJob {
	t.Helper()
	require.Eventually(t, func() bool {
		job, err := repo.FindByID(id)
		return err == nil && job.Status == want
	}, 2*time.Second, 2*time.Millisecond)

	job, err := repo.FindByID(id)
	require.NoError(t, err)
	return job
}

func TestWorkerSuccessfulJob(t *testing.T) {
	repo := newFakeJobRepository()
	analyzer := &stubAnalyzer{outcomes: []error{nil}}
	notifier := &captureNotifier{}

	w := NewWorker(repo, analyzer, notifier, 2, 3, time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	job := newTestJob(repo)
	w.EnqueueJob(job.ID)

	final := waitForStatus(t, repo, job.ID, models.StatusSucceeded)
	assert.Equal(t, 1, final.Attempts)
	assert.NotNil(t, final.FinishedAt)

	events := notifier.captured()
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusSucceeded, events[0].Status)
	require.NotNil(t, events[0].GlobalScore)
	assert.Equal(t, 81.5, *events[0].GlobalScore)
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	repo := newFakeJobRepository()
	analyzer := &stubAnalyzer{outcomes: []error{
		Transient(errors.New("embedding backend unavailable")),
		nil,
	}}
	notifier := &captureNotifier{}

	w := NewWorker(repo, analyzer, notifier, 1, 3, time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	job := newTestJob(repo)
	w.EnqueueJob(job.ID)

	final := waitForStatus(t, repo, job.ID, models.StatusSucceeded)
	assert.Equal(t, 2, final.Attempts)
	assert.Equal(t, 2, analyzer.callCount())

	events := notifier.captured()
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusSucceeded, events[0].Status)
}

func TestWorkerExhaustsRetryBudget(t *testing.T) {
	repo := newFakeJobRepository()
	analyzer := &stubAnalyzer{outcomes: []error{
		Transient(errors.New("embedding backend unavailable")),
	}}
	notifier := &captureNotifier{}

	maxAttempts := 3
	w := NewWorker(repo, analyzer, notifier, 1, maxAttempts, time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	job := newTestJob(repo)
	w.EnqueueJob(job.ID)

	final := waitForStatus(t, repo, job.ID, models.StatusFailed)
	assert.Equal(t, maxAttempts, final.Attempts)
	assert.Equal(t, maxAttempts, analyzer.callCount())
	require.NotNil(t, final.LastError)
	assert.Contains(t, *final.LastError, "retry budget exhausted")

	events := notifier.captured()
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusFailed, events[0].Status)
	assert.Nil(t, events[0].GlobalScore)
}

func TestWorkerPermanentFailureIsTerminalImmediately(t *testing.T) {
	repo := newFakeJobRepository()
	analyzer := &stubAnalyzer{outcomes: []error{
		fmt.Errorf("%w: content signature does not match declared format", ErrCorruptDocument),
	}}
	notifier := &captureNotifier{}

	w := NewWorker(repo, analyzer, notifier, 1, 5, time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	job := newTestJob(repo)
	w.EnqueueJob(job.ID)

	final := waitForStatus(t, repo, job.ID, models.StatusFailed)
	assert.Equal(t, 1, final.Attempts)
	assert.Equal(t, 1, analyzer.callCount())
	require.NotNil(t, final.LastError)
	assert.Contains(t, *final.LastError, "corrupt document")
}

func TestWorkerRequeuesJobOnShutdownDuringBackoff(t *testing.T) {
	repo := newFakeJobRepository()
	analyzer := &stubAnalyzer{outcomes: []error{
		Transient(errors.New("embedding backend unavailable")),
	}}
	notifier := &captureNotifier{}

	// Backoff far longer than the test: the job is parked in the retry
	// wait when Stop fires
	w := NewWorker(repo, analyzer, notifier, 1, 3, time.Minute)
	w.Start(context.Background())

	job := newTestJob(repo)
	w.EnqueueJob(job.ID)

	require.Eventually(t, func() bool {
		return analyzer.callCount() == 1
	}, 2*time.Second, 2*time.Millisecond)

	w.Stop()

	// Stop must not strand the job in running: it goes back to pending
	// so the poller can pick it up after a restart
	final, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, final.Status)
	assert.Equal(t, 1, final.Attempts)
	require.NotNil(t, final.LastError)
	assert.Contains(t, *final.LastError, "transient")
}

func TestWorkerSkipsAlreadyClaimedJob(t *testing.T) {
	repo := newFakeJobRepository()
	analyzer := &stubAnalyzer{outcomes: []error{nil}}
	notifier := &captureNotifier{}

	w := NewWorker(repo, analyzer, notifier, 1, 3, time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	job := newTestJob(repo)
	_, err := repo.Claim(job.ID)
	require.NoError(t, err)

	w.EnqueueJob(job.ID)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, analyzer.callCount())
	assert.Empty(t, notifier.captured())
}

func TestWorkerSkipsCancelledJob(t *testing.T) {
	repo := newFakeJobRepository()
	analyzer := &stubAnalyzer{outcomes: []error{nil}}
	notifier := &captureNotifier{}

	w := NewWorker(repo, analyzer, notifier, 1, 3, time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	job := newTestJob(repo)
	require.NoError(t, repo.Cancel(job.ID))

	w.EnqueueJob(job.ID)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, analyzer.callCount())
	final, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, final.Status)
}

func TestClaimIsExclusive(t *testing.T) {
	repo := newFakeJobRepository()
	job := newTestJob(repo)

	_, err := repo.Claim(job.ID)
	require.NoError(t, err)

	_, err = repo.Claim(job.ID)
	assert.ErrorIs(t, err, repositories.ErrStatusConflict)
}

func TestCancelOnlyWhilePending(t *testing.T) {
	repo := newFakeJobRepository()
	job := newTestJob(repo)

	_, err := repo.Claim(job.ID)
	require.NoError(t, err)

	err = repo.Cancel(job.ID)
	assert.ErrorIs(t, err, repositories.ErrStatusConflict)
}

func TestBackoffDelayDoubles(t *testing.T) {
	initial := 100 * time.Millisecond

	assert.Equal(t, 100*time.Millisecond, backoffDelay(initial, 1))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(initial, 2))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(initial, 3))
}
