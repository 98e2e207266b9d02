package bridge

import "errors"

var (
	// ErrClosed is returned for work submitted after Shutdown started, and for
	// queued work abandoned when a Shutdown deadline expired.
	ErrClosed = errors.New("bridge: shut down")

	// ErrInvalidConfig is returned by New when an option is out of range.
	ErrInvalidConfig = errors.New("bridge: invalid options")

	// ErrTaskPanicked wraps the value recovered from a panicking task.
	ErrTaskPanicked = errors.New("bridge: task panicked")

	// ErrNotDone is returned by Future.Result while the task is still running.
	ErrNotDone = errors.New("bridge: task not done")
)

// IsClosed checks if an error indicates the bridge refused or abandoned work.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
