package bus

import "sync/atomic"

// Accessor is exclusive access to a claimed channel.
// It is valid until Release; afterwards Message returns nil and SetUserData
// returns ErrAccessorReleased.
type Accessor struct {
	ch       *Channel
	released atomic.Bool
}

// Channel returns the claimed channel.
func (a *Accessor) Channel() *Channel {
	return a.ch
}

// Message returns the channel's message buffer for in-place reads and writes.
// The slice must not be retained after Release.
func (a *Accessor) Message() []byte {
	if a.released.Load() {
		return nil
	}
	return a.ch.msg
}

// UserData returns the value attached to the channel.
func (a *Accessor) UserData() any {
	return a.ch.UserData()
}

// SetUserData replaces the value attached to the channel.
func (a *Accessor) SetUserData(v any) error {
	if a.released.Load() {
		return ErrAccessorReleased
	}
	a.ch.userData.Store(&v)
	return nil
}

// Release unlocks the channel. Calling it more than once is a no-op.
func (a *Accessor) Release() {
	if a.released.CompareAndSwap(false, true) {
		a.ch.release()
	}
}
