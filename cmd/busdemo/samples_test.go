package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chanbus/core/bus"
	"github.com/dmitrymomot/chanbus/core/logger"
)

func TestSamples(t *testing.T) {
	t.Parallel()

	// Subscribers read the live channel value, so they are matched on fields
	// that never change between publishes.
	markers := map[string][]string{
		"channels":           {"channel=channel_1 message_size=2"},
		"listener":           {"Listener callback invoked", "minor=1", "minor=2", "minor=3"},
		"async-listener":     {"Async listener bound", "Async listener callback invoked", "minor=1"},
		"subscriber":         {"Subscriber received message", "channel=channel_1 major=1"},
		"message-subscriber": {"Message subscriber received message", "minor=1"},
		"two-observers":      {"Async listener received message", "Message subscriber received message", "minor=1"},
		"two-channels":       {"channel=channel_1 major=1", "channel=channel_2 voltage=220"},
		"user-data":          {"some_value=42", "notified=1", "notified=3"},
	}

	for _, s := range samples {
		t.Run(s.name, func(t *testing.T) {
			t.Parallel()

			want, ok := markers[s.name]
			require.True(t, ok, "no expected output for sample %s", s.name)

			var buf bytes.Buffer
			env := &sampleEnv{
				cfg: Config{
					AppName:    "busdemo",
					Interval:   20 * time.Millisecond,
					Iterations: 3,
					Bus:        bus.DefaultConfig(),
				},
				log: logger.New(logger.WithOutput(&buf), logger.WithTextFormatter()),
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			require.NoError(t, s.run(ctx, env))

			out := buf.String()
			for _, m := range want {
				assert.Contains(t, out, m)
			}
		})
	}
}

func TestSamples_ChannelsListsRegistry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	env := &sampleEnv{
		cfg: Config{Interval: time.Millisecond, Iterations: 1, Bus: bus.DefaultConfig()},
		log: logger.New(logger.WithOutput(&buf)),
	}

	require.NoError(t, runChannels(context.Background(), env))

	out := buf.String()
	assert.Contains(t, out, "channel=channel_1 message_size=2")
	assert.Contains(t, out, "channel=channel_2 message_size=6")
	assert.Contains(t, out, "channel=channel_3 message_size=4")
}

func TestSamples_Listener(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	env := &sampleEnv{
		cfg: Config{Interval: time.Millisecond, Iterations: 3, Bus: bus.DefaultConfig()},
		log: logger.New(logger.WithOutput(&buf)),
	}

	require.NoError(t, runListener(context.Background(), env))

	out := buf.String()
	for _, want := range []string{"minor=1", "minor=2", "minor=3"} {
		assert.Contains(t, out, want)
	}
}

func TestLookupSample(t *testing.T) {
	t.Parallel()

	s, ok := lookupSample("two-channels")
	require.True(t, ok)
	assert.Equal(t, "two-channels", s.name)

	_, ok = lookupSample("missing")
	assert.False(t, ok)
}
