package bus_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chanbus/core/bus"
)

// defineOne builds a bus holding a single channel.
func defineOne(t *testing.T, name string, size int, opts ...bus.ChannelOption) (*bus.Bus, *bus.Channel) {
	t.Helper()

	b := bus.NewBuilder()
	ch, err := b.Define(name, size, opts...)
	require.NoError(t, err)

	registry, err := b.Build()
	require.NoError(t, err)

	return registry, ch
}

func TestChannel_ReadAfterWrite(t *testing.T) {
	t.Parallel()

	_, ch := defineOne(t, "version", 4, bus.WithInitial([]byte{0, 1, 0, 0}))
	ctx := context.Background()

	t.Run("initial message", func(t *testing.T) {
		msg, err := ch.Message(ctx, bus.NoWait)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 1, 0, 0}, msg)
	})

	t.Run("published message is read back until next publish", func(t *testing.T) {
		for _, m := range [][]byte{{1, 2, 3, 4}, {9, 9, 9, 9}, {0, 0, 0, 1}} {
			require.NoError(t, ch.Publish(ctx, m, bus.NoWait))

			out := make([]byte, 4)
			require.NoError(t, ch.Read(ctx, out, bus.NoWait))
			assert.Equal(t, m, out)

			again, err := ch.Message(ctx, bus.Forever)
			require.NoError(t, err)
			assert.Equal(t, m, again)
		}
	})

	t.Run("caller buffer is copied", func(t *testing.T) {
		m := []byte{5, 5, 5, 5}
		require.NoError(t, ch.Publish(ctx, m, bus.NoWait))
		m[0] = 42

		msg, err := ch.Message(ctx, bus.NoWait)
		require.NoError(t, err)
		assert.Equal(t, []byte{5, 5, 5, 5}, msg)
	})

	t.Run("zeroed without initial", func(t *testing.T) {
		_, zero := defineOne(t, "zero", 3)
		msg, err := zero.Message(ctx, bus.NoWait)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0}, msg)
	})
}

func TestChannel_SizeMismatch(t *testing.T) {
	t.Parallel()

	var notified int
	l := bus.NewListener("count", func(context.Context, *bus.Channel) { notified++ })
	_, ch := defineOne(t, "sized", 4, bus.WithObservers(l))
	ctx := context.Background()

	err := ch.Publish(ctx, []byte{1, 2, 3}, bus.NoWait)
	assert.ErrorIs(t, err, bus.ErrSizeMismatch)
	assert.Zero(t, notified, "rejected message must not notify")

	err = ch.Read(ctx, make([]byte, 5), bus.NoWait)
	assert.ErrorIs(t, err, bus.ErrSizeMismatch)

	msg, err := ch.Message(ctx, bus.NoWait)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, msg, "rejected message must not be stored")
}

func TestChannel_Validator(t *testing.T) {
	t.Parallel()

	var notified int
	l := bus.NewListener("count", func(context.Context, *bus.Channel) { notified++ })
	nonZeroHead := func(msg []byte) bool { return msg[0] != 0 }

	_, ch := defineOne(t, "validated", 2,
		bus.WithInitial([]byte{1, 0}),
		bus.WithValidator(nonZeroHead),
		bus.WithObservers(l),
	)
	ctx := context.Background()

	err := ch.Publish(ctx, []byte{0, 7}, bus.NoWait)
	assert.ErrorIs(t, err, bus.ErrInvalidMessage)
	assert.Zero(t, notified)

	msg, err := ch.Message(ctx, bus.NoWait)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0}, msg)

	require.NoError(t, ch.Publish(ctx, []byte{3, 7}, bus.NoWait))
	assert.Equal(t, 1, notified)
}

func TestChannel_Claim(t *testing.T) {
	t.Parallel()

	t.Run("busy with no wait", func(t *testing.T) {
		t.Parallel()

		_, ch := defineOne(t, "busy", 1)
		ctx := context.Background()

		acc, err := ch.Claim(ctx, bus.NoWait)
		require.NoError(t, err)
		defer acc.Release()

		_, err = ch.Claim(ctx, bus.NoWait)
		assert.ErrorIs(t, err, bus.ErrBusy)

		err = ch.Publish(ctx, []byte{1}, bus.NoWait)
		assert.ErrorIs(t, err, bus.ErrBusy)

		err = ch.Read(ctx, make([]byte, 1), 10*time.Millisecond)
		assert.ErrorIs(t, err, bus.ErrBusy)
	})

	t.Run("context cancellation while waiting", func(t *testing.T) {
		t.Parallel()

		_, ch := defineOne(t, "cancel", 1)

		acc, err := ch.Claim(context.Background(), bus.NoWait)
		require.NoError(t, err)
		defer acc.Release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = ch.Claim(ctx, bus.Forever)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		t.Parallel()

		_, ch := defineOne(t, "release", 1)
		ctx := context.Background()

		acc, err := ch.Claim(ctx, bus.NoWait)
		require.NoError(t, err)
		acc.Release()
		acc.Release()

		assert.Nil(t, acc.Message())
		assert.ErrorIs(t, acc.SetUserData(1), bus.ErrAccessorReleased)

		again, err := ch.Claim(ctx, bus.NoWait)
		require.NoError(t, err)
		again.Release()
	})

	t.Run("mutual exclusion", func(t *testing.T) {
		t.Parallel()

		_, ch := defineOne(t, "mutex", 8)
		ctx := context.Background()

		first, err := ch.Claim(ctx, bus.NoWait)
		require.NoError(t, err)

		acquired := make(chan []byte, 1)
		go func() {
			second, err := ch.Claim(ctx, bus.Forever)
			if !assert.NoError(t, err) {
				return
			}
			defer second.Release()
			acquired <- bytes.Clone(second.Message())
		}()

		msg := first.Message()
		for i := range msg {
			msg[i] = 0xAB
			select {
			case <-acquired:
				t.Fatal("second claim acquired the lock before release")
			case <-time.After(2 * time.Millisecond):
			}
		}
		first.Release()

		select {
		case got := <-acquired:
			assert.Equal(t, bytes.Repeat([]byte{0xAB}, 8), got)
		case <-time.After(time.Second):
			t.Fatal("second claim never acquired the lock")
		}
	})
}

func TestChannel_UpdateAndNotify(t *testing.T) {
	t.Parallel()

	sub := bus.NewMessageSubscriber("sub", 4)
	_, ch := defineOne(t, "counter", 1,
		bus.WithUserData(0),
		bus.WithObservers(sub),
	)
	ctx := context.Background()

	for range 3 {
		err := ch.Update(ctx, bus.Forever, func(a *bus.Accessor) error {
			a.Message()[0]++
			return a.SetUserData(a.UserData().(int) + 1)
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 0, sub.Pending(), "update alone must not notify")
	assert.Equal(t, 3, ch.UserData())

	require.NoError(t, ch.Notify(ctx, bus.NoWait))

	n, err := sub.Wait(ctx, bus.NoWait)
	require.NoError(t, err)
	assert.Same(t, ch, n.Channel)
	assert.Equal(t, []byte{3}, n.Data)
	assert.Equal(t, uint64(1), ch.Stats().Notified)

	t.Run("lock released when fn panics", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = ch.Update(ctx, bus.NoWait, func(*bus.Accessor) error { panic("boom") })
		})

		acc, err := ch.Claim(ctx, bus.NoWait)
		require.NoError(t, err)
		acc.Release()
	})
}

func TestChannel_UserData(t *testing.T) {
	t.Parallel()

	type accumulator struct{ sum int }

	_, ch := defineOne(t, "data", 1, bus.WithUserData(&accumulator{}))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ch.Update(ctx, bus.Forever, func(a *bus.Accessor) error {
				a.UserData().(*accumulator).sum += i
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 45, ch.UserData().(*accumulator).sum)
}
