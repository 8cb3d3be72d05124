package queue

import (
	"context"
	"time"
)

const (
	// NoWait makes a blocking operation return immediately when it cannot proceed.
	NoWait time.Duration = 0

	// Forever makes a blocking operation wait until it succeeds or its context is done.
	Forever time.Duration = -1
)

// Bounded is a fixed-capacity FIFO queue safe for concurrent producers and consumers.
// The capacity is set at construction and never changes.
//
// Producers that must never block use TryPush, which rejects the new element
// when the queue is full. Consumers block in Pop up to the given timeout.
//
// Example:
//
//	q := queue.NewBounded[string](5)
//	if err := q.TryPush("hello"); errors.Is(err, queue.ErrFull) {
//		// element rejected, queue content untouched
//	}
//	v, err := q.Pop(ctx, queue.Forever)
type Bounded[T any] struct {
	items chan T
}

// NewBounded creates a queue holding at most capacity elements.
// Capacity below 1 is raised to 1.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded[T]{items: make(chan T, capacity)}
}

// TryPush appends v without blocking. Returns ErrFull if the queue is at capacity;
// the rejected element is dropped and elements already queued are kept.
func (q *Bounded[T]) TryPush(v T) error {
	select {
	case q.items <- v:
		return nil
	default:
		return ErrFull
	}
}

// Push appends v, waiting up to timeout for free space.
// Returns ErrFull when the timeout elapses, or the context error if ctx is done first.
func (q *Bounded[T]) Push(ctx context.Context, v T, timeout time.Duration) error {
	if err := q.TryPush(v); err == nil || timeout == NoWait {
		return err
	}

	expired, stop := deadline(timeout)
	defer stop()

	select {
	case q.items <- v:
		return nil
	case <-expired:
		return ErrFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop removes and returns the oldest element, waiting up to timeout for one to arrive.
// Returns ErrTimeout when nothing arrived in time, or the context error if ctx is done first.
func (q *Bounded[T]) Pop(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	select {
	case v := <-q.items:
		return v, nil
	default:
		if timeout == NoWait {
			return zero, ErrTimeout
		}
	}

	expired, stop := deadline(timeout)
	defer stop()

	select {
	case v := <-q.items:
		return v, nil
	case <-expired:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Len returns the number of queued elements.
func (q *Bounded[T]) Len() int {
	return len(q.items)
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return cap(q.items)
}

// deadline returns a channel that fires after timeout.
// A negative timeout yields a nil channel, which never fires.
func deadline(timeout time.Duration) (<-chan time.Time, func()) {
	if timeout < 0 {
		return nil, func() {}
	}
	t := time.NewTimer(timeout)
	return t.C, func() { t.Stop() }
}
