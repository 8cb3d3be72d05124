package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/chanbus/core/bus"
	"github.com/dmitrymomot/chanbus/core/health"
	"github.com/dmitrymomot/chanbus/core/logger"
	"github.com/dmitrymomot/chanbus/core/queue"
)

type versionMsg struct {
	Major, Minor uint8
}

type accMsg struct {
	X, Y, Z int16
}

type powerMsg struct {
	Voltage, Current uint16
}

type sampleData struct {
	SomeValue int
	Notified  int
}

type sample struct {
	name        string
	description string
	run         func(ctx context.Context, env *sampleEnv) error
}

var samples = []sample{
	{"channels", "three channels with initial values and no observers, listed through the registry", runChannels},
	{"listener", "one channel, one synchronous listener", runListener},
	{"async-listener", "one channel, one async listener on the default worker", runAsyncListener},
	{"subscriber", "one channel, one subscriber drained by a consumer goroutine", runSubscriber},
	{"message-subscriber", "one channel, one message subscriber drained by a consumer goroutine", runMessageSubscriber},
	{"two-observers", "one channel, an async listener on a dedicated worker and a message subscriber", runTwoObservers},
	{"two-channels", "two channels sharing one subscriber", runTwoChannels},
	{"user-data", "one channel with user data updated by its listener", runUserData},
}

func lookupSample(name string) (sample, bool) {
	for _, s := range samples {
		if s.name == name {
			return s, true
		}
	}
	return sample{}, false
}

type sampleEnv struct {
	cfg Config
	log *slog.Logger
}

func (e *sampleEnv) builder() *bus.Builder {
	return bus.NewBuilderFromConfig(e.cfg.Bus, bus.WithLogger(e.log))
}

// drive runs the bus default worker, the readiness monitor, any extra background
// functions and the publisher loop. Background functions are cancelled when publishing ends.
func (e *sampleEnv) drive(ctx context.Context, registry *bus.Bus, publish func(ctx context.Context, i int) error, background ...func(ctx context.Context) func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(registry.Run(ctx))
	eg.Go(health.Monitor(ctx, e.log, e.cfg.HealthInterval, registry.Healthcheck))
	for _, bg := range background {
		eg.Go(bg(ctx))
	}

	eg.Go(func() error {
		defer cancel()

		ticker := time.NewTicker(e.cfg.Interval)
		defer ticker.Stop()

		for i := 1; e.cfg.Iterations <= 0 || i <= e.cfg.Iterations; i++ {
			if err := publish(ctx, i); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		return nil
	})

	return eg.Wait()
}

// published logs partial delivery and returns any other publish error.
func (e *sampleEnv) published(ctx context.Context, ch *bus.Channel, err error) error {
	var de *bus.DeliveryError
	if errors.As(err, &de) {
		e.log.WarnContext(ctx, "Some observers missed the message",
			logger.Channel(ch.Name()),
			logger.Count("missed", de.Missed()),
			logger.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("publish to %s: %w", ch.Name(), err)
	}
	return nil
}

// consume calls fn until the context is done.
func consume(fn func(ctx context.Context) error) func(ctx context.Context) func() error {
	return func(ctx context.Context) func() error {
		return func() error {
			for {
				if err := fn(ctx); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			}
		}
	}
}

func runChannels(ctx context.Context, env *sampleEnv) error {
	b := env.builder()

	if _, err := bus.DefineTyped(b, "channel_1", versionMsg{}); err != nil {
		return err
	}
	if _, err := bus.DefineTyped(b, "channel_2", accMsg{X: 5, Y: 10, Z: 15}); err != nil {
		return err
	}
	if _, err := bus.DefineTyped(b, "channel_3", int32(100)); err != nil {
		return err
	}

	registry, err := b.Build()
	if err != nil {
		return err
	}

	env.log.InfoContext(ctx, "Listing all channels")

	count := 0
	registry.ForEachChannel(func(info bus.ChannelInfo) bool {
		env.log.InfoContext(ctx, "Channel",
			slog.Int("index", count),
			logger.Channel(info.Name),
			logger.MessageSize(info.MessageSize))
		count++
		return true
	})

	return nil
}

func runListener(ctx context.Context, env *sampleEnv) error {
	var ch *bus.Typed[versionMsg]

	listener := bus.NewListener("foo_listener", func(ctx context.Context, c *bus.Channel) {
		v, err := ch.Read(ctx, bus.NoWait)
		if err != nil {
			env.log.ErrorContext(ctx, "Listener read failed", logger.Error(err))
			return
		}
		env.log.InfoContext(ctx, "Listener callback invoked",
			logger.Channel(c.Name()),
			slog.Int("major", int(v.Major)),
			slog.Int("minor", int(v.Minor)))
	})

	b := env.builder()
	ch, err := bus.DefineTyped(b, "channel_1", versionMsg{}, bus.WithObservers(listener))
	if err != nil {
		return err
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	return env.drive(ctx, registry, func(ctx context.Context, i int) error {
		return env.published(ctx, ch.Channel(), ch.Publish(ctx, versionMsg{Major: 1, Minor: uint8(i)}, bus.NoWait))
	})
}

func runAsyncListener(ctx context.Context, env *sampleEnv) error {
	var ch *bus.Typed[versionMsg]

	async := bus.NewAsyncListener("async_listener", func(ctx context.Context, c *bus.Channel, msg []byte) {
		v, err := ch.Decode(msg)
		if err != nil {
			env.log.ErrorContext(ctx, "Async listener decode failed", logger.Error(err))
			return
		}
		env.log.InfoContext(ctx, "Async listener callback invoked",
			logger.Channel(c.Name()),
			slog.Int("major", int(v.Major)),
			slog.Int("minor", int(v.Minor)))
	})

	b := env.builder()
	ch, err := bus.DefineTyped(b, "channel_1", versionMsg{}, bus.WithObservers(async))
	if err != nil {
		return err
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	env.log.InfoContext(ctx, "Async listener bound", logger.Worker(async.Worker().Name()))

	return env.drive(ctx, registry, func(ctx context.Context, i int) error {
		return env.published(ctx, ch.Channel(), ch.Publish(ctx, versionMsg{Major: 1, Minor: uint8(i)}, bus.NoWait))
	})
}

func runSubscriber(ctx context.Context, env *sampleEnv) error {
	sub := bus.NewSubscriber("subscriber_listener", 5)

	b := env.builder()
	ch, err := bus.DefineTyped(b, "channel_1", versionMsg{}, bus.WithObservers(sub))
	if err != nil {
		return err
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	consumer := consume(func(ctx context.Context) error {
		c, err := sub.Wait(ctx, bus.Forever)
		if err != nil {
			return err
		}
		v, err := ch.Read(ctx, bus.Forever)
		if err != nil {
			return err
		}
		env.log.InfoContext(ctx, "Subscriber received message",
			logger.Channel(c.Name()),
			slog.Int("major", int(v.Major)),
			slog.Int("minor", int(v.Minor)))
		return nil
	})

	return env.drive(ctx, registry, func(ctx context.Context, i int) error {
		return env.published(ctx, ch.Channel(), ch.Publish(ctx, versionMsg{Major: 1, Minor: uint8(i)}, bus.NoWait))
	}, consumer)
}

func runMessageSubscriber(ctx context.Context, env *sampleEnv) error {
	sub := bus.NewMessageSubscriber("msg_subscriber_listener", bus.DefaultSubscriberQueueSize)

	b := env.builder()
	ch, err := bus.DefineTyped(b, "channel_1", versionMsg{}, bus.WithObservers(sub))
	if err != nil {
		return err
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	consumer := consume(func(ctx context.Context) error {
		n, err := sub.Wait(ctx, bus.Forever)
		if err != nil {
			return err
		}
		v, err := ch.Decode(n.Data)
		if err != nil {
			return err
		}
		env.log.InfoContext(ctx, "Message subscriber received message",
			logger.Channel(n.Channel.Name()),
			slog.Int("major", int(v.Major)),
			slog.Int("minor", int(v.Minor)))
		return nil
	})

	return env.drive(ctx, registry, func(ctx context.Context, i int) error {
		return env.published(ctx, ch.Channel(), ch.Publish(ctx, versionMsg{Major: 1, Minor: uint8(i)}, bus.NoWait))
	}, consumer)
}

func runTwoObservers(ctx context.Context, env *sampleEnv) error {
	var ch *bus.Typed[versionMsg]

	worker := queue.NewWorkerFromConfig(env.cfg.Bus.Worker,
		queue.WithName("sensors"),
		queue.WithWorkerLogger(env.log))

	async := bus.NewAsyncListener("async_listener", func(ctx context.Context, c *bus.Channel, msg []byte) {
		v, err := ch.Decode(msg)
		if err != nil {
			env.log.ErrorContext(ctx, "Async listener decode failed", logger.Error(err))
			return
		}
		env.log.InfoContext(ctx, "Async listener received message",
			logger.Channel(c.Name()),
			slog.Int("major", int(v.Major)),
			slog.Int("minor", int(v.Minor)))
	}, bus.WithWorker(worker))
	sub := bus.NewMessageSubscriber("msg_subscriber_listener", 5)

	b := env.builder()
	ch, err := bus.DefineTyped(b, "channel_1", versionMsg{}, bus.WithObservers(async, sub))
	if err != nil {
		return err
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	consumer := consume(func(ctx context.Context) error {
		n, err := sub.Wait(ctx, bus.Forever)
		if err != nil {
			return err
		}
		v, err := ch.Decode(n.Data)
		if err != nil {
			return err
		}
		env.log.InfoContext(ctx, "Message subscriber received message",
			logger.Channel(n.Channel.Name()),
			slog.Int("major", int(v.Major)),
			slog.Int("minor", int(v.Minor)))
		return nil
	})

	return env.drive(ctx, registry, func(ctx context.Context, i int) error {
		return env.published(ctx, ch.Channel(), ch.Publish(ctx, versionMsg{Major: 1, Minor: uint8(i)}, bus.NoWait))
	}, consumer, worker.Run)
}

func runTwoChannels(ctx context.Context, env *sampleEnv) error {
	sub := bus.NewSubscriber("subscriber_listener", 5)

	b := env.builder()
	version, err := bus.DefineTyped(b, "channel_1", versionMsg{}, bus.WithObservers(sub))
	if err != nil {
		return err
	}
	power, err := bus.DefineTyped(b, "channel_2", powerMsg{}, bus.WithObservers(sub))
	if err != nil {
		return err
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	consumer := consume(func(ctx context.Context) error {
		c, err := sub.Wait(ctx, bus.Forever)
		if err != nil {
			return err
		}

		switch c {
		case version.Channel():
			v, err := version.Read(ctx, bus.NoWait)
			if err != nil {
				return err
			}
			env.log.InfoContext(ctx, "Subscriber received message",
				logger.Channel(c.Name()),
				slog.Int("major", int(v.Major)),
				slog.Int("minor", int(v.Minor)))
		case power.Channel():
			v, err := power.Read(ctx, bus.NoWait)
			if err != nil {
				return err
			}
			env.log.InfoContext(ctx, "Subscriber received message",
				logger.Channel(c.Name()),
				slog.Int("voltage", int(v.Voltage)),
				slog.Int("current", int(v.Current)))
		}
		return nil
	})

	return env.drive(ctx, registry, func(ctx context.Context, i int) error {
		if err := env.published(ctx, version.Channel(),
			version.Publish(ctx, versionMsg{Major: 1, Minor: uint8(i)}, bus.NoWait)); err != nil {
			return err
		}
		return env.published(ctx, power.Channel(),
			power.Publish(ctx, powerMsg{Voltage: 220, Current: uint16(10 + i)}, bus.NoWait))
	}, consumer)
}

func runUserData(ctx context.Context, env *sampleEnv) error {
	var ch *bus.Typed[versionMsg]

	listener := bus.NewListener("foo_listener", func(ctx context.Context, c *bus.Channel) {
		var notified int
		err := c.Update(ctx, bus.NoWait, func(a *bus.Accessor) error {
			data, ok := a.UserData().(*sampleData)
			if !ok {
				return fmt.Errorf("unexpected user data %T", a.UserData())
			}
			data.Notified++
			notified = data.Notified
			return nil
		})
		if err != nil {
			env.log.ErrorContext(ctx, "Listener update failed", logger.Error(err))
			return
		}

		v, err := ch.Read(ctx, bus.NoWait)
		if err != nil {
			env.log.ErrorContext(ctx, "Listener read failed", logger.Error(err))
			return
		}
		data := c.UserData().(*sampleData)
		env.log.InfoContext(ctx, "Listener callback invoked",
			logger.Channel(c.Name()),
			slog.Int("major", int(v.Major)),
			slog.Int("minor", int(v.Minor)),
			slog.Int("some_value", data.SomeValue),
			slog.Int("notified", notified))
	})

	b := env.builder()
	ch, err := bus.DefineTyped(b, "channel_1", versionMsg{},
		bus.WithUserData(&sampleData{SomeValue: 42}),
		bus.WithObservers(listener))
	if err != nil {
		return err
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	return env.drive(ctx, registry, func(ctx context.Context, i int) error {
		return env.published(ctx, ch.Channel(), ch.Publish(ctx, versionMsg{Major: 1, Minor: uint8(i)}, bus.NoWait))
	})
}
