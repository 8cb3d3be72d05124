package bus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBusy is returned when the channel lock could not be acquired within the timeout.
	ErrBusy = errors.New("channel is busy")

	// ErrSizeMismatch is returned when a buffer length differs from the channel message size.
	ErrSizeMismatch = errors.New("message size mismatch")

	// ErrInvalidMessage is returned when the channel validator rejects a message.
	ErrInvalidMessage = errors.New("message rejected by channel validator")

	// ErrQueueFull is reported for a subscriber whose queue had no room for a notification.
	ErrQueueFull = errors.New("observer queue is full")

	// ErrWorkerQueueFull is reported for an async listener whose worker queue was full.
	ErrWorkerQueueFull = errors.New("worker queue is full")

	// ErrNoWorker is reported for an async listener that is not bound to any worker.
	ErrNoWorker = errors.New("async listener has no worker")

	// ErrTimeout is returned by subscriber Wait when no notification arrived in time.
	ErrTimeout = errors.New("no notification within timeout")

	// ErrChannelNotFound is returned when a channel lookup by name or ID fails.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrDuplicateChannel is returned when a channel name is defined twice.
	ErrDuplicateChannel = errors.New("channel already defined")

	// ErrInvalidChannel is returned for an empty channel name or non-positive message size.
	ErrInvalidChannel = errors.New("invalid channel definition")

	// ErrInvalidObserver is returned for a nil observer, a duplicate observer on one
	// channel, or an observer without a callback.
	ErrInvalidObserver = errors.New("invalid observer")

	// ErrBuilderSealed is returned when the builder is used after Build.
	ErrBuilderSealed = errors.New("builder already built")

	// ErrUnsupportedType is returned when a typed channel's Go type has no fixed binary size.
	ErrUnsupportedType = errors.New("type has no fixed binary size")

	// ErrHealthcheckFailed is joined with the underlying cause by Bus.Healthcheck.
	ErrHealthcheckFailed = errors.New("bus healthcheck failed")

	// ErrAccessorReleased is returned when a released accessor is used.
	ErrAccessorReleased = errors.New("accessor already released")
)

// ObserverError records one observer that missed a notification during dispatch.
type ObserverError struct {
	Observer string
	Kind     Kind
	Err      error
}

func (e ObserverError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Observer, e.Err)
}

func (e ObserverError) Unwrap() error {
	return e.Err
}

// DeliveryError is returned by Publish and Notify when the message was stored but
// one or more observers missed the notification. Delivery to the remaining
// observers is never aborted.
//
//	var de *bus.DeliveryError
//	if errors.As(err, &de) {
//		for _, f := range de.Failures { ... }
//	}
//	if errors.Is(err, bus.ErrQueueFull) { ... }
type DeliveryError struct {
	Channel  string
	Failures []ObserverError
}

func (e *DeliveryError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("channel %s: %d observer(s) missed notification: %s",
		e.Channel, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes each per-observer error to errors.Is and errors.As.
func (e *DeliveryError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Missed returns the number of observers that missed the notification.
func (e *DeliveryError) Missed() int {
	return len(e.Failures)
}
