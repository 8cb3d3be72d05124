package bus

import (
	"context"

	"github.com/dmitrymomot/chanbus/core/logger"
)

// dispatch notifies every enabled observer once, in registration order.
// The channel lock is not held. A rejected notification is recorded and delivery
// continues with the next observer. A panicking listener propagates to the caller.
func (c *Channel) dispatch(ctx context.Context, msg []byte) error {
	var failures []ObserverError

	for _, obs := range c.observers {
		if !obs.Enabled() {
			continue
		}

		if err := obs.notify(ctx, c, msg); err != nil {
			obs.base().missed.Add(1)
			c.missed.Add(1)
			failures = append(failures, ObserverError{
				Observer: obs.Name(),
				Kind:     obs.Kind(),
				Err:      err,
			})

			c.logger.WarnContext(ctx, "observer missed notification",
				logger.Channel(c.name),
				logger.Observer(obs.Name()),
				logger.ObserverKind(obs.Kind().String()),
				logger.Error(err))
			continue
		}

		obs.base().delivered.Add(1)
	}

	if len(failures) == 0 {
		return nil
	}

	return &DeliveryError{Channel: c.name, Failures: failures}
}
