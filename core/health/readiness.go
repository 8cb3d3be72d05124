package health

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/chanbus/core/logger"
)

// ErrNotReady is joined with the failed check errors returned by Readiness.
var ErrNotReady = errors.New("service not ready")

// Readiness runs every check in order and returns nil when all pass.
// Failures are logged and returned joined with ErrNotReady; a failing check
// does not stop the remaining ones.
//
// Example:
//
//	err := health.Readiness(ctx, log,
//		registry.Healthcheck,
//		sensors.Healthcheck,
//	)
func Readiness(ctx context.Context, log *slog.Logger, fn ...func(context.Context) error) error {
	var errs []error
	for _, f := range fn {
		if err := f(ctx); err != nil {
			log.ErrorContext(ctx, "Readiness check failed", logger.Error(err))
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrNotReady}, errs...)...)
}

// Monitor returns an errgroup function that runs Readiness every interval
// until ctx is done. Failures are logged, never returned.
//
// Example:
//
//	eg.Go(health.Monitor(ctx, log, 10*time.Second, registry.Healthcheck))
func Monitor(ctx context.Context, log *slog.Logger, interval time.Duration, fn ...func(context.Context) error) func() error {
	return func() error {
		if interval <= 0 || len(fn) == 0 {
			<-ctx.Done()
			return nil
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := Readiness(ctx, log, fn...); err == nil {
					log.DebugContext(ctx, "Readiness check passed", logger.Count("checks", len(fn)))
				}
			}
		}
	}
}
