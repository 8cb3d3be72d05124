package bus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/chanbus/core/queue"
)

// DefaultSubscriberQueueSize is used when a subscriber is created with a
// non-positive capacity.
const DefaultSubscriberQueueSize = 16

// Subscriber queues a reference to each notifying channel. The owner drains the
// queue with Wait, usually in a dedicated goroutine, and reads the channel to get
// its current message. A full queue rejects the new notification with ErrQueueFull.
type Subscriber struct {
	observer
	queue *queue.Bounded[*Channel]
}

// NewSubscriber creates a subscriber whose queue holds at most capacity notifications.
func NewSubscriber(name string, capacity int) *Subscriber {
	if capacity <= 0 {
		capacity = DefaultSubscriberQueueSize
	}
	s := &Subscriber{queue: queue.NewBounded[*Channel](capacity)}
	s.init(name, KindSubscriber)
	return s
}

// Wait returns the next notifying channel, waiting up to timeout.
// Returns ErrTimeout when nothing arrived, or the context error.
func (s *Subscriber) Wait(ctx context.Context, timeout time.Duration) (*Channel, error) {
	ch, err := s.queue.Pop(ctx, timeout)
	if errors.Is(err, queue.ErrTimeout) {
		return nil, fmt.Errorf("subscriber %s: %w", s.name, ErrTimeout)
	}
	return ch, err
}

// Pending returns the number of queued notifications.
func (s *Subscriber) Pending() int {
	return s.queue.Len()
}

// Capacity returns the queue capacity.
func (s *Subscriber) Capacity() int {
	return s.queue.Cap()
}

func (s *Subscriber) valid() error {
	if s == nil || s.queue == nil {
		return fmt.Errorf("%w: subscriber not created with NewSubscriber", ErrInvalidObserver)
	}
	return nil
}

func (s *Subscriber) notify(_ context.Context, ch *Channel, _ []byte) error {
	if err := s.queue.TryPush(ch); err != nil {
		return ErrQueueFull
	}
	return nil
}

// Notification is a message snapshot delivered to a MessageSubscriber.
type Notification struct {
	Channel *Channel
	Data    []byte // Copy of the message as it was at publish time
}

// MessageSubscriber queues the notifying channel together with a copy of the
// message, so a later publish never changes what the owner reads.
type MessageSubscriber struct {
	observer
	queue *queue.Bounded[Notification]
}

// NewMessageSubscriber creates a message subscriber whose queue holds at most
// capacity notifications.
func NewMessageSubscriber(name string, capacity int) *MessageSubscriber {
	if capacity <= 0 {
		capacity = DefaultSubscriberQueueSize
	}
	s := &MessageSubscriber{queue: queue.NewBounded[Notification](capacity)}
	s.init(name, KindMessageSubscriber)
	return s
}

// Wait returns the next notification, waiting up to timeout.
// Returns ErrTimeout when nothing arrived, or the context error.
func (s *MessageSubscriber) Wait(ctx context.Context, timeout time.Duration) (Notification, error) {
	n, err := s.queue.Pop(ctx, timeout)
	if errors.Is(err, queue.ErrTimeout) {
		return Notification{}, fmt.Errorf("message subscriber %s: %w", s.name, ErrTimeout)
	}
	return n, err
}

// Pending returns the number of queued notifications.
func (s *MessageSubscriber) Pending() int {
	return s.queue.Len()
}

// Capacity returns the queue capacity.
func (s *MessageSubscriber) Capacity() int {
	return s.queue.Cap()
}

func (s *MessageSubscriber) valid() error {
	if s == nil || s.queue == nil {
		return fmt.Errorf("%w: message subscriber not created with NewMessageSubscriber", ErrInvalidObserver)
	}
	return nil
}

func (s *MessageSubscriber) notify(_ context.Context, ch *Channel, msg []byte) error {
	n := Notification{Channel: ch, Data: bytes.Clone(msg)}
	if err := s.queue.TryPush(n); err != nil {
		return ErrQueueFull
	}
	return nil
}
