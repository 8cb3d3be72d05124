package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/chanbus/core/logger"
)

// Job is a unit of deferred work executed by a Worker.
type Job struct {
	// Name identifies the job in logs, usually the name of the submitting component.
	Name string
	// Fn is invoked on the worker goroutine with the worker's context.
	Fn func(ctx context.Context)
}

// Worker is a deferred execution context: a bounded FIFO of jobs drained by a
// single goroutine. Jobs run in exactly the order they were submitted.
//
// Submit never blocks; it rejects the job with ErrFull when the queue is at capacity,
// which makes it safe to call from latency-sensitive code paths.
type Worker struct {
	id   uuid.UUID
	name string
	jobs *Bounded[Job]
	mu   sync.Mutex

	// Configuration
	shutdownTimeout time.Duration
	logger          *slog.Logger

	// State management
	cancel context.CancelFunc
	done   chan struct{}

	// Observability metrics
	jobsSubmitted  atomic.Int64
	jobsRejected   atomic.Int64
	jobsProcessed  atomic.Int64
	jobsPanicked   atomic.Int64
	activeJobs     atomic.Int32
	lastActivityAt atomic.Int64
}

// WorkerStats provides observability metrics for monitoring and debugging.
type WorkerStats struct {
	JobsSubmitted  int64     // Jobs accepted by Submit
	JobsRejected   int64     // Jobs rejected because the queue was full
	JobsProcessed  int64     // Jobs that ran to completion
	JobsPanicked   int64     // Jobs that panicked and were recovered
	ActiveJobs     int32     // Jobs currently executing (0 or 1)
	Pending        int       // Jobs waiting in the queue
	Capacity       int       // Queue capacity
	IsRunning      bool      // Whether the worker loop is running
	LastActivityAt time.Time // Completion time of the last job
}

// NewWorker creates a new worker. The job queue exists from construction, so jobs
// may be submitted before Start; they run once the worker loop starts.
func NewWorker(opts ...WorkerOption) *Worker {
	options := &workerOptions{
		name:            DefaultWorkerName,
		queueSize:       DefaultQueueSize,
		shutdownTimeout: 5 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}

	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		id:              uuid.New(),
		name:            options.name,
		jobs:            NewBounded[Job](options.queueSize),
		shutdownTimeout: options.shutdownTimeout,
		logger:          options.logger,
	}
}

// NewWorkerFromConfig creates a Worker from configuration.
// Additional options can override config values.
func NewWorkerFromConfig(cfg Config, opts ...WorkerOption) *Worker {
	allOpts := append([]WorkerOption{
		WithName(cfg.Name),
		WithQueueSize(cfg.QueueSize),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}, opts...)

	return NewWorker(allOpts...)
}

// ID returns the unique worker instance ID.
func (w *Worker) ID() uuid.UUID {
	return w.id
}

// Name returns the worker name.
func (w *Worker) Name() string {
	return w.name
}

// Submit enqueues a job without blocking.
// Returns an error wrapping ErrFull if the queue is at capacity.
func (w *Worker) Submit(job Job) error {
	if job.Fn == nil {
		return ErrNilJob
	}

	if err := w.jobs.TryPush(job); err != nil {
		w.jobsRejected.Add(1)
		w.logger.Debug("job rejected",
			logger.Worker(w.name),
			logger.Job(job.Name),
			slog.Int("capacity", w.jobs.Cap()))
		return fmt.Errorf("worker %s: %w", w.name, err)
	}

	w.jobsSubmitted.Add(1)
	return nil
}

// Pending returns the number of jobs waiting in the queue.
func (w *Worker) Pending() int {
	return w.jobs.Len()
}

// Start runs the worker loop. This is a blocking operation that runs until the
// context is cancelled or Stop is called. Use Run() for errgroup pattern or call this in a goroutine.
//
// Returns ErrWorkerStopping while a previous loop is still finishing its job,
// so at most one job of the worker runs at any time.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerAlreadyStarted
	}
	if w.done != nil {
		select {
		case <-w.done:
		default:
			w.mu.Unlock()
			return ErrWorkerStopping
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.done == done {
			w.cancel = nil
		}
		w.mu.Unlock()
		cancel()
		close(done)
	}()

	w.logger.InfoContext(ctx, "worker started",
		slog.String("worker_id", w.id.String()),
		logger.Worker(w.name),
		logger.Count("capacity", w.jobs.Cap()))

	for {
		job, err := w.nextJob(ctx)
		if err != nil {
			w.logger.InfoContext(context.Background(), "worker stopping",
				logger.Worker(w.name),
				slog.Int("pending", w.jobs.Len()))
			return err
		}
		w.execute(ctx, job)
	}
}

// nextJob waits for the next job. A done context wins over queued jobs.
func (w *Worker) nextJob(ctx context.Context) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	job, err := w.jobs.Pop(ctx, Forever)
	if err != nil {
		return Job{}, ctx.Err()
	}
	return job, nil
}

// Stop signals the worker loop to exit and waits for the running job to finish.
// Jobs still queued stay in the queue and run on the next Start.
// Returns an error if the shutdown timeout is exceeded; the worker then refuses
// to Start again until the abandoned job returns.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrWorkerNotStarted
	}

	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()

	cancel()

	timer := time.NewTimer(w.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		w.logger.Info("worker stopped cleanly",
			logger.Worker(w.name))
		return nil
	case <-timer.C:
		w.logger.Warn("worker shutdown timeout exceeded - running job abandoned",
			logger.Worker(w.name),
			slog.Duration("timeout", w.shutdownTimeout))
		return fmt.Errorf("%w after %s", ErrShutdownTimeout, w.shutdownTimeout)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// Returns a function that starts the worker, monitors context cancellation,
// and performs graceful shutdown when the context is cancelled.
// A job outliving the shutdown timeout is abandoned and its error returned.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- w.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			if err := w.Stop(); err != nil && !errors.Is(err, ErrWorkerNotStarted) {
				return err
			}
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// execute runs a single job. A panicking job is recovered here so the loop
// keeps draining the queue; the queue holds no lock while a job runs.
func (w *Worker) execute(ctx context.Context, job Job) {
	start := time.Now()

	w.activeJobs.Add(1)
	defer w.activeJobs.Add(-1)
	defer w.lastActivityAt.Store(time.Now().UnixNano())

	defer func() {
		if r := recover(); r != nil {
			w.jobsPanicked.Add(1)
			w.logger.ErrorContext(ctx, "job panicked",
				logger.Worker(w.name),
				logger.Job(job.Name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	job.Fn(ctx)

	w.jobsProcessed.Add(1)
	w.logger.DebugContext(ctx, "job completed",
		logger.Worker(w.name),
		logger.Job(job.Name),
		logger.Duration(time.Since(start)))
}

// Stats returns current worker statistics.
// This method is thread-safe and can be called at any time.
func (w *Worker) Stats() WorkerStats {
	w.mu.Lock()
	isRunning := w.cancel != nil
	w.mu.Unlock()

	var lastActivity time.Time
	if ns := w.lastActivityAt.Load(); ns > 0 {
		lastActivity = time.Unix(0, ns)
	}

	return WorkerStats{
		JobsSubmitted:  w.jobsSubmitted.Load(),
		JobsRejected:   w.jobsRejected.Load(),
		JobsProcessed:  w.jobsProcessed.Load(),
		JobsPanicked:   w.jobsPanicked.Load(),
		ActiveJobs:     w.activeJobs.Load(),
		Pending:        w.jobs.Len(),
		Capacity:       w.jobs.Cap(),
		IsRunning:      isRunning,
		LastActivityAt: lastActivity,
	}
}

// Healthcheck validates that the worker is running and its queue has room.
// Returns nil if healthy, or an error describing the health issue.
//
// The returned error can be checked using errors.Is:
//
//	if errors.Is(err, queue.ErrWorkerNotRunning) { ... }
//	if errors.Is(err, queue.ErrWorkerSaturated) { ... }
func (w *Worker) Healthcheck(ctx context.Context) error {
	stats := w.Stats()

	if !stats.IsRunning {
		return errors.Join(ErrHealthcheckFailed, ErrWorkerNotRunning)
	}

	if stats.Pending >= stats.Capacity {
		return errors.Join(ErrHealthcheckFailed, ErrWorkerSaturated,
			fmt.Errorf("%d/%d jobs queued", stats.Pending, stats.Capacity))
	}

	return nil
}
