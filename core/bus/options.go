package bus

import (
	"log/slog"

	"github.com/dmitrymomot/chanbus/core/queue"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used by the bus, its channels and the default worker.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDefaultWorker sets the worker used by async listeners that were created
// without WithWorker. When omitted, Build creates one from the worker config.
func WithDefaultWorker(w *queue.Worker) BuilderOption {
	return func(b *Builder) {
		if w != nil {
			b.worker = w
		}
	}
}

// ChannelOption configures a channel definition.
type ChannelOption func(*channelOptions)

type channelOptions struct {
	initial   []byte
	userData  any
	validator Validator
	observers []Observer
}

// WithInitial sets the initial message. Its length must equal the message size.
// Without it the message starts zeroed.
func WithInitial(msg []byte) ChannelOption {
	return func(o *channelOptions) {
		if msg != nil {
			o.initial = msg
		}
	}
}

// WithUserData attaches an opaque value to the channel.
func WithUserData(v any) ChannelOption {
	return func(o *channelOptions) {
		o.userData = v
	}
}

// WithValidator sets the predicate every published message must satisfy.
func WithValidator(fn Validator) ChannelOption {
	return func(o *channelOptions) {
		if fn != nil {
			o.validator = fn
		}
	}
}

// WithObservers appends observers to the channel. They are notified in the order given.
func WithObservers(obs ...Observer) ChannelOption {
	return func(o *channelOptions) {
		o.observers = append(o.observers, obs...)
	}
}
