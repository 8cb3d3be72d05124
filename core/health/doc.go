// Package health runs dependency checks for long-running components.
//
// Checks follow the func(context.Context) error signature exposed by the bus
// and its workers:
//
//	if err := health.Readiness(ctx, log, registry.Healthcheck); err != nil {
//		// errors.Is(err, health.ErrNotReady)
//	}
//
// Monitor repeats the checks on an interval alongside the rest of the application:
//
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(registry.Run(ctx))
//	eg.Go(health.Monitor(ctx, log, 10*time.Second, registry.Healthcheck))
package health
