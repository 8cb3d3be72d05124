package queue

import (
	"log/slog"
	"time"
)

// WorkerOption is a functional option for configuring a worker
type WorkerOption func(*workerOptions)

type workerOptions struct {
	name            string
	queueSize       int
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func WithName(name string) WorkerOption {
	return func(o *workerOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

func WithShutdownTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
