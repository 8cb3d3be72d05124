package bus

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/chanbus/core/logger"
)

// Decorator wraps a listener callback to add cross-cutting behavior.
// It follows the same pattern as HTTP middleware.
type Decorator func(ListenerFunc) ListenerFunc

// AsyncDecorator wraps an async listener callback.
type AsyncDecorator func(AsyncListenerFunc) AsyncListenerFunc

// Decorate applies decorators to fn. The first decorator in the list becomes the
// outermost wrapper and runs first. A nil fn stays nil so NewListener validation
// still rejects it.
//
// Example:
//
//	l := bus.NewListener("audit", bus.Decorate(audit,
//	    bus.Recover(log),
//	    bus.Logging(log),
//	))
//
// Execution order: Recover -> Logging -> audit
func Decorate(fn ListenerFunc, decorators ...Decorator) ListenerFunc {
	if fn == nil {
		return nil
	}
	for i := len(decorators) - 1; i >= 0; i-- {
		if decorators[i] != nil {
			fn = decorators[i](fn)
		}
	}
	return fn
}

// DecorateAsync is Decorate for async listener callbacks.
func DecorateAsync(fn AsyncListenerFunc, decorators ...AsyncDecorator) AsyncListenerFunc {
	if fn == nil {
		return nil
	}
	for i := len(decorators) - 1; i >= 0; i-- {
		if decorators[i] != nil {
			fn = decorators[i](fn)
		}
	}
	return fn
}

// Logging logs every callback invocation with its duration at debug level.
func Logging(log *slog.Logger) Decorator {
	return func(next ListenerFunc) ListenerFunc {
		return func(ctx context.Context, ch *Channel) {
			start := time.Now()
			next(ctx, ch)
			log.DebugContext(ctx, "listener completed",
				logger.Channel(ch.Name()),
				logger.Duration(time.Since(start)))
		}
	}
}

// LoggingAsync logs every async callback invocation with its duration at debug level.
func LoggingAsync(log *slog.Logger) AsyncDecorator {
	return func(next AsyncListenerFunc) AsyncListenerFunc {
		return func(ctx context.Context, ch *Channel, msg []byte) {
			start := time.Now()
			next(ctx, ch, msg)
			log.DebugContext(ctx, "async listener completed",
				logger.Channel(ch.Name()),
				logger.MessageSize(len(msg)),
				logger.Duration(time.Since(start)))
		}
	}
}

// Recover stops a listener panic from reaching the publisher. The panic is logged
// with its stack and the remaining observers are notified as usual.
func Recover(log *slog.Logger) Decorator {
	return func(next ListenerFunc) ListenerFunc {
		return func(ctx context.Context, ch *Channel) {
			defer func() {
				if r := recover(); r != nil {
					log.ErrorContext(ctx, "listener panicked",
						logger.Channel(ch.Name()),
						slog.Any("panic", r),
						logger.Stack())
				}
			}()
			next(ctx, ch)
		}
	}
}

// Filter skips async callbacks for messages the predicate rejects.
func Filter(accept Validator) AsyncDecorator {
	return func(next AsyncListenerFunc) AsyncListenerFunc {
		if accept == nil {
			return next
		}
		return func(ctx context.Context, ch *Channel, msg []byte) {
			if accept(msg) {
				next(ctx, ch, msg)
			}
		}
	}
}
