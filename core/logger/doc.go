// Package logger provides structured logging utilities built on Go's standard slog package:
// a logger factory with environment presets and a set of nil-safe attribute helpers.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/chanbus/core/logger"
//
//	log := logger.New(
//		logger.WithDevelopment("busdemo"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("bus built",
//		logger.Component("bus"),
//		logger.Count("channels", 5),
//	)
//
// # Environment Configurations
//
//	// Development: text format, debug level
//	devLogger := logger.New(logger.WithDevelopment("busdemo"))
//
//	// Production and staging: JSON format, info level
//	prodLogger := logger.New(logger.WithProduction("busdemo"))
//	stageLogger := logger.New(logger.WithStaging("busdemo"))
//
//	// Custom configuration
//	customLogger := logger.New(
//		logger.WithLevel(slog.LevelWarn),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("service", "busdemo")),
//		logger.WithOutput(os.Stderr),
//	)
//
// # Context-Aware Logging
//
// Extractors add attributes taken from the context of each *Context call:
//
//	log := logger.New(logger.WithContextValue("sample", sampleKey{}))
//	log.InfoContext(ctx, "running")
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops, so they
// can be passed without checks:
//
//	log.Warn("observer missed notification",
//		logger.Channel(ch.Name()),
//		logger.Observer(obs.Name()),
//		logger.ObserverKind(obs.Kind().String()),
//		logger.Error(err), // no-op when err is nil
//	)
//
//	log.Debug("job completed",
//		logger.Worker("system"),
//		logger.Job("blink"),
//		logger.Duration(time.Since(start)),
//	)
package logger
