package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type request struct {
	id    string
	limit int
}

// Tracker owns one job slot and a single worker that runs its engine.
// A restart loses the slot; row statuses written by the engine remain.
type Tracker struct {
	kind    Kind
	engine  Engine
	logger  zerolog.Logger
	now     func() time.Time
	queue   chan request
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
	mu      sync.Mutex
	job     Job
}

// NewTracker creates an idle tracker for kind.
func NewTracker(kind Kind, engine Engine, logger zerolog.Logger) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		kind:   kind,
		engine: engine,
		logger: logger,
		now:    time.Now,
		queue:  make(chan request, 1),
		ctx:    ctx,
		cancel: cancel,
		job:    Job{Kind: kind, Status: StatusIdle},
	}
}

// Start launches the worker. Calling it more than once is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startLocked()
}

func (t *Tracker) startLocked() {
	if t.started || t.stopped {
		return
	}
	t.wg.Add(1)
	go t.worker()
	t.started = true
	t.logger.Info().Str("kind", string(t.kind)).Msg("[Jobs] Worker started")
}

// Stop cancels the running engine and waits for the worker to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	close(t.queue)
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
	t.logger.Info().Str("kind", string(t.kind)).Msg("[Jobs] Worker stopped")
}

// Submit starts a job unless one is already running, in which case the
// current snapshot is returned unchanged.
func (t *Tracker) Submit(limit int) Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status == StatusRunning {
		return t.job
	}
	if t.stopped {
		finished := t.now()
		t.job = Job{Kind: t.kind, Status: StatusError, Limit: limit, FinishedAt: &finished, Error: "job tracker stopped"}
		return t.job
	}
	t.startLocked()

	started := t.now()
	t.job = Job{
		ID:        uuid.New().String(),
		Kind:      t.kind,
		Status:    StatusRunning,
		Limit:     limit,
		StartedAt: &started,
	}

	// The slot is only reset once the previous run has finished, so the
	// buffered queue is always empty here.
	select {
	case t.queue <- request{id: t.job.ID, limit: limit}:
	default:
		t.job.Status = StatusError
		t.job.Error = "job queue is full"
		t.job.FinishedAt = &started
	}
	return t.job
}

// Get returns the current snapshot.
func (t *Tracker) Get() Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job
}

func (t *Tracker) worker() {
	defer t.wg.Done()
	for req := range t.queue {
		t.run(req)
	}
}

func (t *Tracker) run(req request) {
	reporter := &handle{tracker: t, id: req.id}

	var (
		final Progress
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s job panicked: %v", t.kind, r)
			}
		}()
		final, err = t.engine.Run(t.ctx, req.limit, reporter)
	}()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.job.ID != req.id {
		return
	}
	finished := t.now()
	t.job.FinishedAt = &finished
	if err != nil {
		t.job.Status = StatusError
		t.job.Error = err.Error()
		t.logger.Error().Err(err).Str("kind", string(t.kind)).Str("job_id", req.id).Msg("[Jobs] Job failed")
		return
	}
	t.job.Progress = final
	t.job.Status = StatusDone
	t.logger.Info().Str("kind", string(t.kind)).Str("job_id", req.id).Interface("progress", final).Msg("[Jobs] Job finished")
}

// handle routes progress from one run into the tracker slot it was started in.
type handle struct {
	tracker *Tracker
	id      string
}

func (h *handle) Report(p Progress) {
	t := h.tracker
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.job.ID != h.id || t.job.Status != StatusRunning {
		return
	}
	t.job.Progress = p
}
