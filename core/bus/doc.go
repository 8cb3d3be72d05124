// Package bus provides an in-process publish/subscribe bus built from named,
// fixed-size message channels and a static set of observers.
//
// Every channel holds exactly one current message. Publishing overwrites it and
// notifies the channel's observers in the order they were attached. The set of
// channels and each channel's observer list are fixed once the bus is built.
//
// # Defining Channels
//
// Channels are registered on a Builder and sealed by Build:
//
//	b := bus.NewBuilder(bus.WithLogger(log))
//
//	ready := bus.NewSubscriber("ready_sub", 4)
//	printer := bus.NewListener("print", func(ctx context.Context, ch *bus.Channel) {
//		msg, _ := ch.Message(ctx, bus.NoWait)
//		log.Info("update", "channel", ch.Name(), "msg", msg)
//	})
//
//	version, err := b.Define("version", 4,
//		bus.WithInitial([]byte{0, 1, 0, 0}),
//		bus.WithObservers(printer, ready),
//	)
//
//	registry, err := b.Build()
//
// Typed channels encode a fixed-size Go value with encoding/binary:
//
//	type ACC struct{ X, Y, Z int32 }
//	acc, err := bus.DefineTyped(b, "acc_data", ACC{}, bus.WithObservers(printer))
//	err = acc.Publish(ctx, ACC{X: 1, Y: 2, Z: 3}, bus.NoWait)
//
// # Timeouts
//
// Blocking operations take a timeout: NoWait fails immediately, Forever waits
// until success or context cancellation, and a positive duration bounds the wait.
// A channel lock that is not acquired in time yields ErrBusy.
//
// # Observers
//
// Four observer variants exist:
//
//   - Listener runs its callback on the publisher's goroutine before dispatch moves on.
//   - AsyncListener enqueues its callback, with a copy of the message, on a worker.
//   - Subscriber queues the channel; the owner calls Wait and then reads the channel.
//   - MessageSubscriber queues the channel together with a copy of the message.
//
// Queues are bounded. A full queue rejects the new notification and keeps the ones
// already queued. Delivery continues with the other observers and Publish returns a
// *DeliveryError whose entries unwrap to ErrQueueFull or ErrWorkerQueueFull:
//
//	err := ch.Publish(ctx, msg, bus.NoWait)
//	var de *bus.DeliveryError
//	switch {
//	case errors.As(err, &de):
//		// message stored, some observers missed it
//	case err != nil:
//		// message rejected, nothing was notified
//	}
//
// Observers are notified after the channel lock is released, so a listener may
// read, claim or publish to the channel that notified it. Observers can be
// disabled with SetEnabled(false) and are skipped until enabled again.
//
// # Claim and Notify
//
// Claim gives exclusive in-place access to the message and the channel's user data.
// Changes made through an accessor notify nobody until Notify is called:
//
//	err := ch.Update(ctx, bus.Forever, func(a *bus.Accessor) error {
//		a.Message()[0]++
//		return a.SetUserData(counter + 1)
//	})
//	err = ch.Notify(ctx, bus.Forever)
//
// # Decorators
//
// Listener callbacks compose like HTTP middleware. A panicking listener reaches
// the publisher unless it is wrapped with Recover:
//
//	l := bus.NewListener("audit", bus.Decorate(audit, bus.Recover(log), bus.Logging(log)))
//
// # Workers
//
// Async listeners created without WithWorker share the bus default worker, built
// from Config.Worker. Run it with the rest of the application:
//
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(registry.Run(ctx))
//
// # Registry
//
// The bus exposes its channels by ID and name, and iterates channels and observers
// in registration order with optional early stop:
//
//	for info := range registry.Channels() {
//		fmt.Println(info.ID, info.Name, info.MessageSize)
//	}
package bus
