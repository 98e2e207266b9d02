package router

import (
	"github.com/BrandonKowalski/navkit/pkg/navkit/store"
	"go.uber.org/atomic"
)

// Params are the values a view is entered with.
type Params map[string]any

// View is implemented by host screens. Concrete views embed BaseView, which
// supplies IsActive and the activation bookkeeping the router performs.
type View interface {
	// OnEnter is called when the view becomes the foreground view, after it
	// has been raised. params is never nil.
	OnEnter(params Params)

	// OnLeave is called immediately before another view becomes foreground.
	OnLeave()

	// OnDataReceived is the conventional OnResult target for background work
	// the view starts itself. The router never calls it.
	OnDataReceived(data any)

	// IsActive reports whether the view is the foreground view.
	IsActive() bool

	setActive(active bool)
}

// Raiser is implemented by views that need a host-specific step to bring
// themselves to the front (restacking a widget, switching a render target).
type Raiser interface {
	Raise()
}

// Destroyer is implemented by views that hold host resources. Destroy is
// called when the router drops the cached instance.
type Destroyer interface {
	Destroy()
}

// Context is what a ViewFactory receives.
type Context struct {
	Parent any          // Host-specific parent handle (window, container widget)
	Router *Router      // For navigating and starting background work
	Store  *store.Store // Shared application state
}

// ViewFactory constructs the view for a route. It is called at most once per
// route until the view is destroyed.
type ViewFactory func(ctx Context) View

// BaseView carries the references every view needs and its activation flag.
//
//	type HomeView struct {
//	    router.BaseView
//	    visits int
//	}
//
//	func NewHomeView(ctx router.Context) router.View {
//	    return &HomeView{BaseView: router.NewBaseView(ctx)}
//	}
type BaseView struct {
	Parent any
	Router *Router
	Store  *store.Store

	active atomic.Bool
}

// NewBaseView fills a BaseView from the factory context.
func NewBaseView(ctx Context) BaseView {
	return BaseView{
		Parent: ctx.Parent,
		Router: ctx.Router,
		Store:  ctx.Store,
	}
}

// IsActive reports whether the router has made this view the foreground view.
// Safe to call from background tasks.
func (v *BaseView) IsActive() bool {
	return v.active.Load()
}

func (v *BaseView) setActive(active bool) {
	v.active.Store(active)
}
