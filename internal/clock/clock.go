// Package clock abstracts the time operations used by the power-state
// coordinator so that deadlines and debounce delays can be driven
// deterministically in tests.
package clock

import "time"

// Clock is the subset of the time package the coordinator depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once d has elapsed.
	// If d <= 0, the channel is ready immediately.
	After(d time.Duration) <-chan time.Time

	// NewTimer returns a Timer that fires once d has elapsed. Stop it
	// when the wait is abandoned.
	NewTimer(d time.Duration) *Timer

	// Sleep blocks the caller for at least d. It is not cancellable and
	// stands in for a busy-wait delay.
	Sleep(d time.Duration)
}

// Timer is a single pending wake-up.
type Timer struct {
	// C receives the fire time. Buffered with capacity 1.
	C <-chan time.Time

	stop func() bool
}

// Stop cancels the timer. It returns false if the timer already fired
// or was stopped.
func (t *Timer) Stop() bool { return t.stop() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (realClock) NewTimer(d time.Duration) *Timer {
	t := time.NewTimer(d)
	return &Timer{C: t.C, stop: t.Stop}
}

func (realClock) Sleep(d time.Duration)                  { time.Sleep(d) }
