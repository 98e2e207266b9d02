package bridge

import "context"

// Future represents a task submitted to the bridge.
//
// Waiting on a Future blocks, so it is meant for tests and shutdown paths;
// UI code should receive results through OnResult instead. A Future is
// completed only after its callback has been handed to the scheduler, so
// once Wait returns the delivery is already queued on the UI loop.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func failedFuture(err error) *Future {
	f := newFuture()
	f.complete(nil, err)
	return f
}

func (f *Future) complete(value any, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Done is closed when the task has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task finishes or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the task's outcome without blocking, or ErrNotDone.
func (f *Future) Result() (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
		return nil, ErrNotDone
	}
}
