package core

import (
	"context"
	"sync"
	"sync/atomic"
)

// Future tracks a deferred piece of work that can be cancelled before it
// runs. A nil *Future is never cancelled and never done.
type Future struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
}

func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) Cancel() {
	if f != nil {
		f.cancelled.Store(true)
	}
}

func (f *Future) IsCancelled() bool {
	return f != nil && f.cancelled.Load()
}

// Done marks the work finished and releases waiters.
func (f *Future) Done() {
	if f != nil {
		f.once.Do(func() { close(f.done) })
	}
}

func (f *Future) IsDone() bool {
	if f == nil {
		return false
	}
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until Done or ctx ends.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
