package bus

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/dmitrymomot/chanbus/core/logger"
	"github.com/dmitrymomot/chanbus/core/queue"
)

// Bus is the immutable registry of channels and observers produced by Builder.Build.
// All methods are safe for concurrent use.
type Bus struct {
	channels  []*Channel
	byName    map[string]*Channel
	observers []observerEntry
	worker    *queue.Worker
	logger    *slog.Logger
}

type observerEntry struct {
	observer Observer
	channels []string
}

// Stats aggregates counters across the bus.
type Stats struct {
	Channels  int
	Observers int
	Published uint64 // Sum of successful publishes over all channels
	Missed    uint64 // Sum of missed observer notifications over all channels

	HasWorker bool
	Worker    queue.WorkerStats // Default worker stats, zero when HasWorker is false
}

// Len returns the number of channels.
func (b *Bus) Len() int {
	return len(b.channels)
}

// Channel returns the channel with the given registration index.
func (b *Bus) Channel(id int) (*Channel, error) {
	if id < 0 || id >= len(b.channels) {
		return nil, fmt.Errorf("channel id %d: %w", id, ErrChannelNotFound)
	}
	return b.channels[id], nil
}

// Lookup returns the channel with the given name.
func (b *Bus) Lookup(name string) (*Channel, error) {
	ch, ok := b.byName[name]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", name, ErrChannelNotFound)
	}
	return ch, nil
}

// Publish publishes msg on the named channel.
func (b *Bus) Publish(ctx context.Context, name string, msg []byte, timeout time.Duration) error {
	ch, err := b.Lookup(name)
	if err != nil {
		return err
	}
	return ch.Publish(ctx, msg, timeout)
}

// Read copies the current message of the named channel into out.
func (b *Bus) Read(ctx context.Context, name string, out []byte, timeout time.Duration) error {
	ch, err := b.Lookup(name)
	if err != nil {
		return err
	}
	return ch.Read(ctx, out, timeout)
}

// ForEachChannel calls fn for every channel in registration order until fn
// returns false. Reports whether the iteration visited every channel.
func (b *Bus) ForEachChannel(fn func(ChannelInfo) bool) bool {
	for _, ch := range b.channels {
		if !fn(ch.Info()) {
			return false
		}
	}
	return true
}

// Channels returns an iterator over channel descriptions in registration order.
func (b *Bus) Channels() iter.Seq[ChannelInfo] {
	return func(yield func(ChannelInfo) bool) {
		b.ForEachChannel(yield)
	}
}

// ForEachObserver calls fn for every distinct observer, in the order it was first
// attached to a channel, until fn returns false. Reports whether the iteration
// visited every observer.
func (b *Bus) ForEachObserver(fn func(ObserverInfo) bool) bool {
	for _, e := range b.observers {
		info := ObserverInfo{
			ID:       e.observer.ID(),
			Name:     e.observer.Name(),
			Kind:     e.observer.Kind(),
			Enabled:  e.observer.Enabled(),
			Channels: slices.Clone(e.channels),
		}
		if !fn(info) {
			return false
		}
	}
	return true
}

// Observers returns an iterator over observer descriptions.
func (b *Bus) Observers() iter.Seq[ObserverInfo] {
	return func(yield func(ObserverInfo) bool) {
		b.ForEachObserver(yield)
	}
}

// Worker returns the default worker, or nil when no async listener needed one.
func (b *Bus) Worker() *queue.Worker {
	return b.worker
}

// Run provides errgroup compatibility for the default worker lifecycle.
// Without a default worker the returned function blocks until ctx is done.
// Workers passed with WithWorker are run by their owner.
func (b *Bus) Run(ctx context.Context) func() error {
	if b.worker != nil {
		return b.worker.Run(ctx)
	}
	return func() error {
		<-ctx.Done()
		return nil
	}
}

// Stats returns aggregated counters.
func (b *Bus) Stats() Stats {
	s := Stats{
		Channels:  len(b.channels),
		Observers: len(b.observers),
	}
	for _, ch := range b.channels {
		cs := ch.Stats()
		s.Published += cs.Published
		s.Missed += cs.Missed
	}
	if b.worker != nil {
		s.HasWorker = true
		s.Worker = b.worker.Stats()
	}
	return s
}

// Healthcheck reports the default worker health, if the bus has one.
func (b *Bus) Healthcheck(ctx context.Context) error {
	if b.worker == nil {
		return nil
	}
	if err := b.worker.Healthcheck(ctx); err != nil {
		b.logger.WarnContext(ctx, "bus healthcheck failed",
			logger.Worker(b.worker.Name()),
			logger.Error(err))
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}
