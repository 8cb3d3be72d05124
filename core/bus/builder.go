package bus

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/chanbus/core/logger"
	"github.com/dmitrymomot/chanbus/core/queue"
)

// Builder collects channel definitions and produces an immutable Bus.
// Channels and their observer lists cannot change after Build.
type Builder struct {
	mu       sync.Mutex
	channels []*Channel
	byName   map[string]*Channel
	sealed   bool

	worker       *queue.Worker
	workerConfig queue.Config
	logger       *slog.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		byName:       make(map[string]*Channel),
		workerConfig: queue.DefaultConfig(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBuilderFromConfig creates a builder whose default worker, if Build needs
// one, is created from cfg.Worker.
func NewBuilderFromConfig(cfg Config, opts ...BuilderOption) *Builder {
	b := NewBuilder(opts...)
	b.workerConfig = cfg.Worker
	return b
}

// Define registers a channel with a fixed message size and returns it.
// The channel ID is its registration index.
func (b *Builder) Define(name string, size int, opts ...ChannelOption) (*Channel, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidChannel)
	}
	if size <= 0 {
		return nil, fmt.Errorf("channel %s: %w: message size %d", name, ErrInvalidChannel, size)
	}

	options := &channelOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.initial != nil && len(options.initial) != size {
		return nil, fmt.Errorf("channel %s: %w: initial message has %d bytes, want %d",
			name, ErrSizeMismatch, len(options.initial), size)
	}

	if err := checkObservers(name, options.observers); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return nil, ErrBuilderSealed
	}
	if _, exists := b.byName[name]; exists {
		return nil, fmt.Errorf("channel %s: %w", name, ErrDuplicateChannel)
	}

	msg := make([]byte, size)
	copy(msg, options.initial)

	ch := &Channel{
		id:        len(b.channels),
		name:      name,
		size:      size,
		validator: options.validator,
		observers: slices.Clone(options.observers),
		logger:    b.logger,
		lock:      make(chan struct{}, 1),
		msg:       msg,
	}
	if options.userData != nil {
		v := options.userData
		ch.userData.Store(&v)
	}

	if options.validator != nil && options.initial != nil && !options.validator(bytes.Clone(msg)) {
		return nil, fmt.Errorf("channel %s: initial message: %w", name, ErrInvalidMessage)
	}

	b.channels = append(b.channels, ch)
	b.byName[name] = ch

	return ch, nil
}

// Build seals the builder and returns the bus. Async listeners without their own
// worker are bound to the default worker, which is created here when needed.
// The caller runs the worker through Bus.Run or Bus.Worker.
func (b *Builder) Build() (*Bus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return nil, ErrBuilderSealed
	}
	b.sealed = true

	bus := &Bus{
		channels: b.channels,
		byName:   b.byName,
		logger:   b.logger,
	}

	index := make(map[Observer]int)
	for _, ch := range b.channels {
		for _, obs := range ch.observers {
			i, seen := index[obs]
			if !seen {
				i = len(bus.observers)
				index[obs] = i
				bus.observers = append(bus.observers, observerEntry{observer: obs})
			}
			bus.observers[i].channels = append(bus.observers[i].channels, ch.name)

			if al, ok := obs.(*AsyncListener); ok && al.Worker() == nil {
				al.bind(b.defaultWorker())
			}
		}
	}
	bus.worker = b.worker

	b.logger.Info("bus built",
		logger.Component("bus"),
		slog.Int("channels", len(bus.channels)),
		slog.Int("observers", len(bus.observers)))

	return bus, nil
}

func (b *Builder) defaultWorker() *queue.Worker {
	if b.worker == nil {
		b.worker = queue.NewWorkerFromConfig(b.workerConfig, queue.WithWorkerLogger(b.logger))
	}
	return b.worker
}

func checkObservers(channel string, obs []Observer) error {
	seen := make(map[Observer]struct{}, len(obs))
	for _, o := range obs {
		if o == nil {
			return fmt.Errorf("channel %s: %w: nil observer", channel, ErrInvalidObserver)
		}
		if err := o.valid(); err != nil {
			return fmt.Errorf("channel %s: %w", channel, err)
		}
		if _, dup := seen[o]; dup {
			return fmt.Errorf("channel %s: %w: %s attached twice", channel, ErrInvalidObserver, o.Name())
		}
		seen[o] = struct{}{}
	}
	return nil
}
