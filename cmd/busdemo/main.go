// Command busdemo runs the channel bus samples: channel registration, the four
// observer variants, several observers on one channel, one observer on several
// channels and channel user data.
//
//	busdemo -list
//	busdemo -sample two-channels -iterations 3 -interval 500ms
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/chanbus/core/config"
	"github.com/dmitrymomot/chanbus/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	list := flag.Bool("list", false, "list available samples and exit")
	flag.StringVar(&cfg.Sample, "sample", cfg.Sample, "sample to run")
	flag.DurationVar(&cfg.Interval, "interval", cfg.Interval, "delay between publishes")
	flag.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "number of publishes, 0 runs until interrupted")
	flag.Parse()

	if *list {
		for _, s := range samples {
			fmt.Printf("%-20s %s\n", s.name, s.description)
		}
		return
	}

	log := newLogger(cfg)

	s, ok := lookupSample(cfg.Sample)
	if !ok {
		log.Error("Unknown sample", logger.Key("sample", cfg.Sample))
		os.Exit(2)
	}

	log.Info("Running sample",
		logger.Component("busdemo"),
		logger.Key("sample", s.name),
		logger.Key("interval", cfg.Interval),
		logger.Count("iterations", cfg.Iterations))

	if err := s.run(ctx, &sampleEnv{cfg: cfg, log: log}); err != nil {
		log.Error("Sample failed", logger.Key("sample", s.name), logger.Error(err))
		os.Exit(1)
	}

	log.Info("Sample finished", logger.Key("sample", s.name))
}

func newLogger(cfg Config) *slog.Logger {
	var preset logger.Option
	switch cfg.Env {
	case "production":
		preset = logger.WithProduction(cfg.AppName)
	case "staging":
		preset = logger.WithStaging(cfg.AppName)
	default:
		preset = logger.WithDevelopment(cfg.AppName)
	}
	return logger.New(preset, logger.WithLevel(cfg.LogLevel))
}
