// Package sdlhost connects navkit to an SDL2 event loop.
//
// SDL wants all rendering on the thread that owns the window, and the
// window's event loop is usually blocked in WaitEvent. Host wakes that loop
// with a registered user event whenever a background result is scheduled,
// and drains the delivery queue when the event arrives.
//
//	host, err := sdlhost.New(loop.New())
//	r, err := router.New(host, router.WithParent(window))
//
//	for host.Pump(16, handleInput) {
//	    render()
//	}
package sdlhost

import (
	"errors"
	"log/slog"

	"github.com/BrandonKowalski/navkit/pkg/navkit/internal"
	"github.com/BrandonKowalski/navkit/pkg/navkit/loop"
	"github.com/veandco/go-sdl2/sdl"
)

// ErrNoUserEvents indicates SDL has run out of user event types.
var ErrNoUserEvents = errors.New("sdlhost: could not register user event")

// Host schedules work on a loop and wakes the SDL event loop to drain it.
// It satisfies bridge.Scheduler.
type Host struct {
	loop     *loop.Loop
	wakeType uint32
	logger   *slog.Logger
}

// New registers the wake event. SDL must already be initialized.
func New(l *loop.Loop) (*Host, error) {
	wakeType := sdl.RegisterEvents(1)
	if wakeType == ^uint32(0) {
		return nil, ErrNoUserEvents
	}

	return &Host{
		loop:     l,
		wakeType: wakeType,
		logger:   internal.GetInternalLogger().With("subsystem", "sdlhost"),
	}, nil
}

// Loop returns the underlying delivery queue.
func (h *Host) Loop() *loop.Loop {
	return h.loop
}

// Schedule queues fn and wakes the SDL event loop. Safe to call from any
// goroutine.
func (h *Host) Schedule(fn func()) bool {
	if !h.loop.Schedule(fn) {
		return false
	}

	// A failed wake is not fatal; the next input event or timeout drains the queue
	if _, err := sdl.PushEvent(&sdl.UserEvent{Type: h.wakeType}); err != nil {
		h.logger.Warn("Failed to push wake event", "error", err)
	}
	return true
}

// HandleEvent drains the queue if event is the wake event and reports
// whether it was.
func (h *Host) HandleEvent(event sdl.Event) bool {
	if ue, ok := event.(*sdl.UserEvent); ok && ue.Type == h.wakeType {
		h.loop.Drain()
		return true
	}
	return false
}

// Pump waits up to timeoutMs for an SDL event, runs pending deliveries, and
// passes any other event to handle. It returns false once SDL reports a quit
// request or the loop is closed.
func (h *Host) Pump(timeoutMs int, handle func(sdl.Event)) bool {
	if event := sdl.WaitEventTimeout(timeoutMs); event != nil {
		switch event.(type) {
		case *sdl.QuitEvent:
			return false
		default:
			if !h.HandleEvent(event) && handle != nil {
				handle(event)
			}
		}
	}

	// Deliveries queued while the wake event was lost still run every frame
	h.loop.Drain()
	return !h.loop.Closed()
}
