// Package rtos provides the scheduler primitives the application tasks
// use: a single-slot notification and a suspendable task.
package rtos

import "context"

// Notification is a single-slot signal with one producer and one consumer.
// Gives while a credit is already pending are coalesced.
type Notification struct {
	ch      chan struct{}
	onBlock func()
}

// NewNotification returns a Notification with no credit pending.
func NewNotification() *Notification {
	return &Notification{ch: make(chan struct{}, 1)}
}

// OnBlock sets fn to run each time Take is about to block. The power
// manager hooks it to request deep sleep when the consumer goes idle.
// Set it before the consumer starts.
func (n *Notification) OnBlock(fn func()) {
	n.onBlock = fn
}

// Give posts a credit. It never blocks.
func (n *Notification) Give() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// Take consumes the credit, waiting without a timeout until one is given
// or ctx ends.
func (n *Notification) Take(ctx context.Context) error {
	select {
	case <-n.ch:
		return nil
	default:
	}

	if n.onBlock != nil {
		n.onBlock()
	}

	select {
	case <-n.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether a credit is waiting to be taken.
func (n *Notification) Pending() bool {
	return len(n.ch) > 0
}
