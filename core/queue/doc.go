// Package queue provides the in-process queueing primitives used by the channel bus:
// a generic fixed-capacity FIFO and a single-goroutine deferred execution worker.
//
// # Bounded Queue
//
// Bounded[T] is a fixed-capacity FIFO built on a buffered Go channel. Its capacity
// never changes after construction. Producers choose between a non-blocking TryPush,
// which rejects the new element when the queue is full (elements already queued are
// kept), and Push, which waits up to a timeout. Consumers call Pop with a timeout:
//
//	q := queue.NewBounded[Reading](5)
//
//	// Producer side, never blocks
//	if err := q.TryPush(r); errors.Is(err, queue.ErrFull) {
//		// rejected
//	}
//
//	// Consumer side
//	r, err := q.Pop(ctx, queue.Forever)
//	r, err = q.Pop(ctx, 100*time.Millisecond) // queue.ErrTimeout when nothing arrives
//	r, err = q.Pop(ctx, queue.NoWait)         // poll
//
// Timeouts follow one convention across the module: NoWait (0) fails immediately,
// Forever (negative) waits until success or context cancellation, and any positive
// duration bounds the wait.
//
// # Worker
//
// Worker runs submitted jobs one at a time, in submission order, on a single
// goroutine. Submit never blocks and returns ErrFull when the job queue is at
// capacity, so it can be called from latency-sensitive paths:
//
//	worker := queue.NewWorker(
//		queue.WithName("system"),
//		queue.WithQueueSize(64),
//		queue.WithWorkerLogger(logger),
//	)
//
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(worker.Run(ctx))
//
//	err := worker.Submit(queue.Job{
//		Name: "blink",
//		Fn: func(ctx context.Context) {
//			// runs on the worker goroutine
//		},
//	})
//
// A job that panics is recovered at the job boundary, logged with its stack trace
// and counted in WorkerStats.JobsPanicked; the worker keeps draining the queue.
// Jobs receive the worker context, which is cancelled by Stop.
//
// # Configuration
//
// Config carries env tags for use with the config package:
//
//	WORKQUEUE_NAME=system
//	WORKQUEUE_SIZE=64
//	WORKQUEUE_SHUTDOWN_TIMEOUT=5s
//
//	worker := queue.NewWorkerFromConfig(cfg.Worker, queue.WithWorkerLogger(logger))
//
// # Observability
//
// Stats returns submitted, rejected, processed and panicked job counts together with
// the queue depth. Healthcheck reports ErrWorkerNotRunning or ErrWorkerSaturated,
// both joined with ErrHealthcheckFailed.
package queue
