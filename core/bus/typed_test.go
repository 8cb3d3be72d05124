package bus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chanbus/core/bus"
)

type accData struct {
	X, Y, Z int32
}

type versionInfo struct {
	Major, Minor uint8
	Build        uint32
}

func TestTyped(t *testing.T) {
	t.Parallel()

	b := bus.NewBuilder()
	sub := bus.NewMessageSubscriber("acc_sub", 4)

	acc, err := bus.DefineTyped(b, "acc_data", accData{X: 1, Y: 1, Z: 1}, bus.WithObservers(sub))
	require.NoError(t, err)
	assert.Equal(t, 12, acc.Channel().MessageSize())

	version, err := bus.DefineTyped(b, "version", versionInfo{Major: 0, Minor: 1, Build: 1023})
	require.NoError(t, err)
	assert.Equal(t, 6, version.Channel().MessageSize())

	_, err = b.Build()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("initial value", func(t *testing.T) {
		v, err := version.Read(ctx, bus.NoWait)
		require.NoError(t, err)
		assert.Equal(t, versionInfo{Major: 0, Minor: 1, Build: 1023}, v)
	})

	t.Run("publish and read", func(t *testing.T) {
		want := accData{X: -4, Y: 0, Z: 1 << 20}
		require.NoError(t, acc.Publish(ctx, want, bus.NoWait))

		got, err := acc.Read(ctx, bus.NoWait)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		n, err := sub.Wait(ctx, bus.NoWait)
		require.NoError(t, err)
		decoded, err := acc.Decode(n.Data)
		require.NoError(t, err)
		assert.Equal(t, want, decoded)
	})

	t.Run("little endian layout", func(t *testing.T) {
		raw, err := acc.Encode(accData{X: 1, Y: 2, Z: 3})
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}, raw)
	})

	t.Run("decode size mismatch", func(t *testing.T) {
		_, err := acc.Decode([]byte{1, 2})
		assert.ErrorIs(t, err, bus.ErrSizeMismatch)
	})
}

func TestDefineTyped_UnsupportedType(t *testing.T) {
	t.Parallel()

	b := bus.NewBuilder()

	_, err := bus.DefineTyped(b, "string", "hello")
	assert.ErrorIs(t, err, bus.ErrUnsupportedType)

	_, err = bus.DefineTyped(b, "int", 7)
	assert.ErrorIs(t, err, bus.ErrUnsupportedType)

	_, err = bus.DefineTyped(b, "slice", []byte{1, 2})
	assert.ErrorIs(t, err, bus.ErrUnsupportedType)

	_, err = bus.DefineTyped(b, "empty", struct{}{})
	assert.ErrorIs(t, err, bus.ErrUnsupportedType)
}
