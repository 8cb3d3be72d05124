package queue

import "errors"

var (
	// ErrFull is returned when an element is rejected because the queue is at capacity.
	ErrFull = errors.New("queue is full")

	// ErrTimeout is returned when no element arrived within the wait timeout.
	ErrTimeout = errors.New("queue wait timed out")

	// ErrWorkerAlreadyStarted is returned when Start is called on a running worker.
	ErrWorkerAlreadyStarted = errors.New("worker already started")

	// ErrWorkerStopping is returned when Start is called before a stopped loop has exited.
	ErrWorkerStopping = errors.New("worker is still stopping")

	// ErrShutdownTimeout is returned when Stop gives up waiting for the running job.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

	// ErrWorkerNotStarted is returned when Stop is called on a worker that is not running.
	ErrWorkerNotStarted = errors.New("worker not started")

	// ErrWorkerNotRunning is reported by Healthcheck when the worker loop is not running.
	ErrWorkerNotRunning = errors.New("worker is not running")

	// ErrWorkerSaturated is reported by Healthcheck when the job queue is full.
	ErrWorkerSaturated = errors.New("worker queue is saturated")

	// ErrHealthcheckFailed wraps every healthcheck failure.
	ErrHealthcheckFailed = errors.New("healthcheck failed")

	// ErrNilJob is returned when a job without a function is submitted.
	ErrNilJob = errors.New("job function is nil")
)
