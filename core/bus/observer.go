package bus

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Kind identifies an observer variant.
type Kind uint8

const (
	KindListener Kind = iota + 1
	KindAsyncListener
	KindSubscriber
	KindMessageSubscriber
)

func (k Kind) String() string {
	switch k {
	case KindListener:
		return "listener"
	case KindAsyncListener:
		return "async_listener"
	case KindSubscriber:
		return "subscriber"
	case KindMessageSubscriber:
		return "message_subscriber"
	default:
		return "unknown"
	}
}

// Observer is a registered interest in channel updates.
// The set of implementations is closed: Listener, AsyncListener, Subscriber
// and MessageSubscriber.
//
// An observer may be attached to any number of channels. Disabling it skips it
// on subsequent dispatches without removing it from any observer list.
type Observer interface {
	ID() uuid.UUID
	Name() string
	Kind() Kind
	Enabled() bool
	SetEnabled(enabled bool)
	Stats() ObserverStats

	base() *observer
	valid() error
	notify(ctx context.Context, ch *Channel, msg []byte) error
}

// ObserverStats holds per-observer delivery counters.
type ObserverStats struct {
	Delivered uint64 // Notifications accepted by the observer
	Missed    uint64 // Notifications rejected (queue full, worker queue full)
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID       uuid.UUID
	Name     string
	Kind     Kind
	Enabled  bool
	Channels []string // Channels the observer is attached to, in registration order
}

// observer holds the state shared by all variants.
type observer struct {
	id       uuid.UUID
	name     string
	kind     Kind
	disabled atomic.Bool

	delivered atomic.Uint64
	missed    atomic.Uint64
}

func (o *observer) init(name string, kind Kind) {
	o.id = uuid.New()
	o.name = name
	o.kind = kind
}

func (o *observer) ID() uuid.UUID {
	return o.id
}

func (o *observer) Name() string {
	return o.name
}

func (o *observer) Kind() Kind {
	return o.kind
}

// Enabled reports whether the observer takes part in dispatch.
func (o *observer) Enabled() bool {
	return !o.disabled.Load()
}

// SetEnabled toggles participation in subsequent dispatches.
func (o *observer) SetEnabled(enabled bool) {
	o.disabled.Store(!enabled)
}

func (o *observer) Stats() ObserverStats {
	return ObserverStats{
		Delivered: o.delivered.Load(),
		Missed:    o.missed.Load(),
	}
}

func (o *observer) base() *observer {
	return o
}
