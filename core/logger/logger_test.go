package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chanbus/core/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "busdemo")),
		)

		log.Info("message published", logger.Channel("acc_data"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "message published", record["msg"])
		assert.Equal(t, "acc_data", record["channel"])
		assert.Equal(t, "busdemo", record["service"])
	})

	t.Run("text output respects level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithTextFormatter(),
			logger.WithLevel(slog.LevelWarn),
			logger.WithOutput(&buf),
		)

		log.Info("hidden")
		assert.Empty(t, buf.String())

		log.Warn("observer missed notification", logger.Observer("sub"))
		assert.Contains(t, buf.String(), "observer=sub")
	})

	t.Run("development preset enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("busdemo"), logger.WithOutput(&buf))

		log.Debug("job completed", logger.Job("blink"))
		assert.Contains(t, buf.String(), "job=blink")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("production preset writes json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithProduction("busdemo"), logger.WithOutput(&buf))

		log.Debug("hidden")
		log.Info("bus built")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "production", record["env"])
	})

	t.Run("context values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextValue("sample", ctxKey{}),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "two-channels")
		log.With(logger.Component("demo")).InfoContext(ctx, "running")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "two-channels", record["sample"])
		assert.Equal(t, "demo", record["component"])

		buf.Reset()
		log.Info("no value")
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.NotContains(t, buf.String(), "sample")
	})
}
