package bus

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/chanbus/core/logger"
	"github.com/dmitrymomot/chanbus/core/queue"
)

const (
	// NoWait makes a channel operation fail immediately when the lock is taken.
	NoWait = queue.NoWait

	// Forever makes a channel operation wait until the lock is free or its context is done.
	Forever = queue.Forever
)

// Validator inspects a candidate message and reports whether it may be published.
type Validator func(msg []byte) bool

// Channel is a named, fixed-size message slot with a static list of observers.
//
// The message is guarded by a lock that is held only while bytes are copied in or
// out; observers are always notified after the lock is released, so an observer
// may read or claim the channel it was notified by.
type Channel struct {
	id        int
	name      string
	size      int
	validator Validator
	observers []Observer
	logger    *slog.Logger

	// lock is a one-slot semaphore, so acquisition can honour a timeout.
	lock     chan struct{}
	msg      []byte
	userData atomic.Pointer[any]

	published       atomic.Uint64
	notified        atomic.Uint64
	missed          atomic.Uint64
	lastPublishedAt atomic.Int64
}

// ChannelStats holds per-channel counters.
type ChannelStats struct {
	Published       uint64    // Successful publishes
	Notified        uint64    // Notify calls that reached dispatch
	Missed          uint64    // Observer notifications rejected during dispatch
	LastPublishedAt time.Time // Time of the last successful publish
}

// ChannelInfo describes a registered channel.
type ChannelInfo struct {
	ID          int
	Name        string
	MessageSize int
	Observers   int
}

// ID returns the channel's registration index.
func (c *Channel) ID() int {
	return c.id
}

// Name returns the unique channel name.
func (c *Channel) Name() string {
	return c.name
}

// MessageSize returns the fixed message length in bytes.
func (c *Channel) MessageSize() int {
	return c.size
}

// Observers returns the channel's observers in notification order.
func (c *Channel) Observers() []Observer {
	return slices.Clone(c.observers)
}

// UserData returns the opaque value attached to the channel.
// It is a convenience read; writes go through an Accessor.
func (c *Channel) UserData() any {
	if p := c.userData.Load(); p != nil {
		return *p
	}
	return nil
}

// Info returns a description of the channel.
func (c *Channel) Info() ChannelInfo {
	return ChannelInfo{
		ID:          c.id,
		Name:        c.name,
		MessageSize: c.size,
		Observers:   len(c.observers),
	}
}

// Stats returns the channel counters.
func (c *Channel) Stats() ChannelStats {
	var last time.Time
	if ns := c.lastPublishedAt.Load(); ns > 0 {
		last = time.Unix(0, ns)
	}
	return ChannelStats{
		Published:       c.published.Load(),
		Notified:        c.notified.Load(),
		Missed:          c.missed.Load(),
		LastPublishedAt: last,
	}
}

// Claim acquires the channel lock and returns an accessor for in-place access to
// the message and user data. The caller must Release the accessor; no observer is
// notified. Returns ErrBusy when the lock is not acquired within timeout.
func (c *Channel) Claim(ctx context.Context, timeout time.Duration) (*Accessor, error) {
	if err := c.acquire(ctx, timeout); err != nil {
		return nil, err
	}
	return &Accessor{ch: c}, nil
}

// Update claims the channel, calls fn with the accessor and releases it, even if fn panics.
// No observer is notified; call Notify afterwards to announce the change.
func (c *Channel) Update(ctx context.Context, timeout time.Duration, fn func(*Accessor) error) error {
	acc, err := c.Claim(ctx, timeout)
	if err != nil {
		return err
	}
	defer acc.Release()

	return fn(acc)
}

// Read copies the current message into out, which must be exactly MessageSize bytes.
func (c *Channel) Read(ctx context.Context, out []byte, timeout time.Duration) error {
	if len(out) != c.size {
		return c.sizeError(len(out))
	}

	if err := c.acquire(ctx, timeout); err != nil {
		return err
	}
	copy(out, c.msg)
	c.release()

	return nil
}

// Message returns a copy of the current message.
func (c *Channel) Message(ctx context.Context, timeout time.Duration) ([]byte, error) {
	out := make([]byte, c.size)
	if err := c.Read(ctx, out, timeout); err != nil {
		return nil, err
	}
	return out, nil
}

// Publish validates msg, stores it as the channel message and notifies every enabled
// observer in registration order.
//
// A message rejected by the size check or the validator is never stored and no
// observer is notified. Once stored, a notification rejected by an observer (full
// subscriber or worker queue) does not stop delivery to the rest; Publish then
// returns a *DeliveryError listing the misses. The message stays published.
func (c *Channel) Publish(ctx context.Context, msg []byte, timeout time.Duration) error {
	if len(msg) != c.size {
		return c.sizeError(len(msg))
	}

	snapshot := bytes.Clone(msg)
	if c.validator != nil && !c.validator(snapshot) {
		return fmt.Errorf("channel %s: %w", c.name, ErrInvalidMessage)
	}

	if err := c.acquire(ctx, timeout); err != nil {
		return err
	}
	copy(c.msg, snapshot)
	c.release()

	c.published.Add(1)
	c.lastPublishedAt.Store(time.Now().UnixNano())

	c.logger.DebugContext(ctx, "message published",
		logger.Channel(c.name),
		slog.Int("observers", len(c.observers)))

	return c.dispatch(ctx, snapshot)
}

// Notify dispatches the current message to the observers without changing it.
// Used after an in-place update through Claim or Update.
func (c *Channel) Notify(ctx context.Context, timeout time.Duration) error {
	if err := c.acquire(ctx, timeout); err != nil {
		return err
	}
	snapshot := bytes.Clone(c.msg)
	c.release()

	c.notified.Add(1)

	return c.dispatch(ctx, snapshot)
}

func (c *Channel) acquire(ctx context.Context, timeout time.Duration) error {
	select {
	case c.lock <- struct{}{}:
		return nil
	default:
		if timeout == NoWait {
			return fmt.Errorf("channel %s: %w", c.name, ErrBusy)
		}
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case c.lock <- struct{}{}:
		return nil
	case <-expired:
		return fmt.Errorf("channel %s: %w after %s", c.name, ErrBusy, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Channel) release() {
	<-c.lock
}

func (c *Channel) sizeError(got int) error {
	return fmt.Errorf("channel %s: %w: want %d bytes, got %d", c.name, ErrSizeMismatch, c.size, got)
}
