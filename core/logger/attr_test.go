package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chanbus/core/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

// ============================================================================
// Error Handling Tests
// ============================================================================

func TestErrors(t *testing.T) {
	t.Parallel()
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

// ============================================================================
// Performance and Timing Tests
// ============================================================================

func TestDuration(t *testing.T) {
	t.Parallel()
	d := 5 * time.Second
	attr := logger.Duration(d)
	require.Equal(t, "duration", attr.Key)
	assert.Equal(t, d, attr.Value.Duration())
}

func TestElapsed(t *testing.T) {
	t.Parallel()
	start := time.Now().Add(-500 * time.Millisecond)
	attr := logger.Elapsed(start)
	require.Equal(t, "elapsed", attr.Key)
	// Check that elapsed is at least 500ms
	assert.GreaterOrEqual(t, attr.Value.Duration(), 500*time.Millisecond)
}

// ============================================================================
// Generic Identifiers Tests
// ============================================================================

func TestID(t *testing.T) {
	t.Parallel()

	// Test with string
	attr := logger.ID("observer_id", "123")
	require.Equal(t, "observer_id", attr.Key)
	assert.Equal(t, "123", attr.Value.Any())

	// Test with int (slog converts to appropriate type)
	attr = logger.ID("count", 42)
	require.Equal(t, "count", attr.Key)
	// slog.Any may convert int to int64 internally
	assert.EqualValues(t, 42, attr.Value.Any())

	// Test with nil
	empty := logger.ID("key", nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

// ============================================================================
// Channel Bus Tests
// ============================================================================

func TestChannel(t *testing.T) {
	t.Parallel()
	attr := logger.Channel("acc_data")
	require.Equal(t, "channel", attr.Key)
	assert.Equal(t, "acc_data", attr.Value.String())

	empty := logger.Channel("")
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestObserver(t *testing.T) {
	t.Parallel()
	attr := logger.Observer("acc_sub")
	require.Equal(t, "observer", attr.Key)
	assert.Equal(t, "acc_sub", attr.Value.String())

	empty := logger.Observer("")
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestObserverKind(t *testing.T) {
	t.Parallel()
	attr := logger.ObserverKind("message_subscriber")
	require.Equal(t, "observer_kind", attr.Key)
	assert.Equal(t, "message_subscriber", attr.Value.String())
}

func TestWorker(t *testing.T) {
	t.Parallel()
	attr := logger.Worker("system")
	require.Equal(t, "worker", attr.Key)
	assert.Equal(t, "system", attr.Value.String())

	empty := logger.Worker("")
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestJob(t *testing.T) {
	t.Parallel()
	attr := logger.Job("blink")
	require.Equal(t, "job", attr.Key)
	assert.Equal(t, "blink", attr.Value.String())
}

func TestMessageSize(t *testing.T) {
	t.Parallel()
	attr := logger.MessageSize(12)
	require.Equal(t, "message_size", attr.Key)
	assert.Equal(t, int64(12), attr.Value.Int64())
}

// ============================================================================
// Generic Metadata Tests
// ============================================================================

func TestComponent(t *testing.T) {
	t.Parallel()
	attr := logger.Component("bus")
	require.Equal(t, "component", attr.Key)
	assert.Equal(t, "bus", attr.Value.String())
}

func TestEvent(t *testing.T) {
	t.Parallel()
	attr := logger.Event("startup")
	require.Equal(t, "event", attr.Key)
	assert.Equal(t, "startup", attr.Value.String())
}

func TestCount(t *testing.T) {
	t.Parallel()
	attr := logger.Count("attempts", 3)
	require.Equal(t, "attempts", attr.Key)
	assert.Equal(t, int64(3), attr.Value.Int64())
}

func TestVersion(t *testing.T) {
	t.Parallel()
	attr := logger.Version("1.2.3")
	require.Equal(t, "version", attr.Key)
	assert.Equal(t, "1.2.3", attr.Value.String())
}

func TestKey(t *testing.T) {
	t.Parallel()

	// Test with string value
	attr := logger.Key("custom", "value")
	require.Equal(t, "custom", attr.Key)
	assert.Equal(t, "value", attr.Value.Any())

	// Test with struct value
	type testStruct struct {
		Name string
	}
	s := testStruct{Name: "test"}
	attr = logger.Key("data", s)
	require.Equal(t, "data", attr.Key)
	assert.Equal(t, s, attr.Value.Any())

	// Test with nil
	empty := logger.Key("key", nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

// ============================================================================
// Debugging Tests
// ============================================================================

func TestStack(t *testing.T) {
	t.Parallel()
	attr := logger.Stack()
	require.Equal(t, "stack", attr.Key)
	stack := attr.Value.String()
	// Check that stack trace contains this test function
	assert.Contains(t, stack, "TestStack")
	assert.Contains(t, stack, "attr_test.go")
}
