package bus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrymomot/chanbus/core/queue"
)

// ListenerFunc is invoked synchronously on the publisher's goroutine.
// The channel lock is not held, so the callback may Read or Claim ch.
type ListenerFunc func(ctx context.Context, ch *Channel)

// Listener runs its callback inline during dispatch. The publisher does not
// continue to the next observer until the callback returns.
type Listener struct {
	observer
	fn ListenerFunc
}

// NewListener creates a synchronous observer.
func NewListener(name string, fn ListenerFunc) *Listener {
	l := &Listener{fn: fn}
	l.init(name, KindListener)
	return l
}

func (l *Listener) valid() error {
	if l == nil {
		return fmt.Errorf("%w: nil listener", ErrInvalidObserver)
	}
	if l.fn == nil {
		return fmt.Errorf("listener %s: %w: nil callback", l.name, ErrInvalidObserver)
	}
	return nil
}

func (l *Listener) notify(ctx context.Context, ch *Channel, _ []byte) error {
	l.fn(ctx, ch)
	return nil
}

// AsyncListenerFunc runs on a worker goroutine with a private copy of the message
// as it was at publish time.
type AsyncListenerFunc func(ctx context.Context, ch *Channel, msg []byte)

// AsyncListenerOption configures an AsyncListener.
type AsyncListenerOption func(*AsyncListener)

// WithWorker runs the listener's jobs on w instead of the bus default worker.
func WithWorker(w *queue.Worker) AsyncListenerOption {
	return func(l *AsyncListener) {
		if w != nil {
			l.worker.Store(w)
		}
	}
}

// AsyncListener defers its callback to a worker. Dispatch only enqueues a job,
// so the publisher never waits for the callback. Jobs from one worker run in
// submission order. When the worker queue is full the notification is dropped
// and reported as ErrWorkerQueueFull.
type AsyncListener struct {
	observer
	fn     AsyncListenerFunc
	worker atomic.Pointer[queue.Worker]
}

// NewAsyncListener creates a deferred observer. Without WithWorker it is bound
// to the bus default worker at Build.
func NewAsyncListener(name string, fn AsyncListenerFunc, opts ...AsyncListenerOption) *AsyncListener {
	l := &AsyncListener{fn: fn}
	l.init(name, KindAsyncListener)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Worker returns the worker executing the listener's jobs, or nil before Build.
func (l *AsyncListener) Worker() *queue.Worker {
	return l.worker.Load()
}

// bind attaches w unless the listener already has a worker.
func (l *AsyncListener) bind(w *queue.Worker) {
	l.worker.CompareAndSwap(nil, w)
}

func (l *AsyncListener) valid() error {
	if l == nil {
		return fmt.Errorf("%w: nil async listener", ErrInvalidObserver)
	}
	if l.fn == nil {
		return fmt.Errorf("async listener %s: %w: nil callback", l.name, ErrInvalidObserver)
	}
	return nil
}

func (l *AsyncListener) notify(_ context.Context, ch *Channel, msg []byte) error {
	w := l.worker.Load()
	if w == nil {
		return ErrNoWorker
	}

	data := bytes.Clone(msg)
	err := w.Submit(queue.Job{
		Name: l.name,
		Fn: func(ctx context.Context) {
			l.fn(ctx, ch, data)
		},
	})
	if errors.Is(err, queue.ErrFull) {
		return fmt.Errorf("%w: %w", ErrWorkerQueueFull, err)
	}
	return err
}
