package main

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/chanbus/core/bus"
)

// Config is the demo configuration, loaded from the environment and .env.
type Config struct {
	AppName    string        `env:"APP_NAME" envDefault:"busdemo"`
	Env        string        `env:"APP_ENV" envDefault:"development"`
	LogLevel   slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	Sample     string        `env:"BUSDEMO_SAMPLE" envDefault:"channels"`
	Interval   time.Duration `env:"BUSDEMO_INTERVAL" envDefault:"2s"`
	Iterations int           `env:"BUSDEMO_ITERATIONS" envDefault:"5"` // 0 publishes until interrupted

	HealthInterval time.Duration `env:"BUSDEMO_HEALTH_INTERVAL" envDefault:"10s"` // 0 disables the readiness monitor

	Bus bus.Config
}
