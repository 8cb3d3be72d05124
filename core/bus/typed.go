package bus

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"
)

// byteOrder is the layout used by typed channels.
var byteOrder = binary.LittleEndian

// Typed is a channel whose message is the fixed-size binary encoding of T.
// T must have a fixed encoded size: numbers, bools, arrays and structs of those.
//
//	type ACC struct{ X, Y, Z int32 }
//
//	acc, err := bus.DefineTyped(b, "acc_data", ACC{}, bus.WithObservers(l))
//	err = acc.Publish(ctx, ACC{X: 1, Y: 1, Z: 1}, bus.NoWait)
//	v, err := acc.Read(ctx, bus.Forever)
type Typed[T any] struct {
	ch *Channel
}

// DefineTyped registers a channel sized for T with initial as its first message.
// Returns ErrUnsupportedType when T has no fixed binary size; slices are rejected
// because their size depends on the value.
func DefineTyped[T any](b *Builder, name string, initial T, opts ...ChannelOption) (*Typed[T], error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 || binary.Size(initial) != size {
		return nil, fmt.Errorf("channel %s: %w: %T", name, ErrUnsupportedType, initial)
	}

	buf := make([]byte, size)
	if _, err := binary.Encode(buf, byteOrder, initial); err != nil {
		return nil, fmt.Errorf("channel %s: encode initial message: %w", name, err)
	}

	ch, err := b.Define(name, size, append(opts, WithInitial(buf))...)
	if err != nil {
		return nil, err
	}

	return &Typed[T]{ch: ch}, nil
}

// Channel returns the underlying byte channel.
func (t *Typed[T]) Channel() *Channel {
	return t.ch
}

// Publish encodes v and publishes it.
func (t *Typed[T]) Publish(ctx context.Context, v T, timeout time.Duration) error {
	buf, err := t.Encode(v)
	if err != nil {
		return err
	}
	return t.ch.Publish(ctx, buf, timeout)
}

// Read returns the decoded current message.
func (t *Typed[T]) Read(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	buf, err := t.ch.Message(ctx, timeout)
	if err != nil {
		return zero, err
	}
	return t.Decode(buf)
}

// Encode returns the binary form of v.
func (t *Typed[T]) Encode(v T) ([]byte, error) {
	buf := make([]byte, t.ch.size)
	if _, err := binary.Encode(buf, byteOrder, v); err != nil {
		return nil, fmt.Errorf("channel %s: encode: %w", t.ch.name, err)
	}
	return buf, nil
}

// Decode parses a message of this channel, such as the Data of a Notification
// or the msg passed to an async listener.
func (t *Typed[T]) Decode(msg []byte) (T, error) {
	var v T
	if len(msg) != t.ch.size {
		return v, t.ch.sizeError(len(msg))
	}
	if _, err := binary.Decode(msg, byteOrder, &v); err != nil {
		return v, fmt.Errorf("channel %s: decode: %w", t.ch.name, err)
	}
	return v, nil
}
