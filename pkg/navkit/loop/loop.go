// Package loop provides the single-consumer queue that carries work from
// background goroutines back onto the UI goroutine.
//
// Any goroutine may Schedule a function. Only the UI goroutine drains the
// queue, either by calling Drain from its own event loop (a frame tick, a
// toolkit idle callback) or by handing control to Run.
//
//	l := loop.New()
//	go func() { l.Schedule(func() { label.SetText("done") }) }()
//
//	for running {
//	    pollToolkitEvents()
//	    l.Drain()
//	}
package loop

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Loop is a FIFO queue of functions executed on the goroutine that drains it.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	ready  chan struct{}
	closed atomic.Bool
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{
		ready: make(chan struct{}, 1),
	}
}

// Schedule queues fn to run on the next Drain. It never blocks and is safe
// to call from any goroutine. Returns false if the loop is closed.
func (l *Loop) Schedule(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mu.Lock()
	if l.closed.Load() {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
	return true
}

// Drain runs every function queued at the time of the call, in the order
// they were scheduled, and returns how many ran. Functions scheduled while
// draining wait for the next call.
func (l *Loop) Drain() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	ran := 0
	for _, fn := range batch {
		// A queued function may close the loop
		if l.closed.Load() {
			break
		}
		fn()
		ran++
	}
	return ran
}

// Ready is signalled whenever work is scheduled. A receive does not
// guarantee the queue is still non-empty.
func (l *Loop) Ready() <-chan struct{} {
	return l.ready
}

// Len returns the number of functions waiting to run.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run drains the queue on the calling goroutine until ctx is done or the
// loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		if l.closed.Load() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.ready:
		}
	}
}

// Close discards queued work and rejects further scheduling.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed.Store(true)
	l.queue = nil
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// Closed reports whether Close was called.
func (l *Loop) Closed() bool {
	return l.closed.Load()
}
