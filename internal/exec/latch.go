package exec

import "context"

// latch is a single-slot, latching publish/subscribe primitive: set at
// most once, readable repeatedly, awaitable for the first set. It backs
// the "await peer in progress" pattern, trivially built over a shared
// optional value plus a condition/notifier — here, a channel closed
// exactly once stands in for the notifier.
type latch struct {
	ch     chan struct{}
	result error
}

func newLatch() *latch {
	return &latch{ch: make(chan struct{})}
}

// publish sets the latch's result and wakes every current and future
// waiter. Calling publish more than once is a programmer error (each
// cell publishes its own latch exactly once); only the first call has
// any effect.
func (l *latch) publish(result error) {
	select {
	case <-l.ch:
		// already published
	default:
		l.result = result
		close(l.ch)
	}
}

// wait blocks until the latch is published or ctx is cancelled. If the
// latch was already published, wait returns immediately — a closed
// channel never blocks a receive.
func (l *latch) wait(ctx context.Context) error {
	select {
	case <-l.ch:
		return l.result
	case <-ctx.Done():
		return ctx.Err()
	}
}
