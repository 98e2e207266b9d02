// Package router provides stack-based view navigation with lifecycle hooks.
//
// A Router owns a registry of named routes, a navigation stack, a cache of
// view instances, a shared Store, and a Bridge for background work. Every
// view it constructs receives the Store and a reference back to the Router.
//
// # Basic Usage
//
//	// Views embed BaseView and implement the lifecycle hooks
//	type HomeView struct {
//	    router.BaseView
//	}
//
//	func (v *HomeView) OnEnter(params router.Params) {}
//	func (v *HomeView) OnLeave()                     {}
//	func (v *HomeView) OnDataReceived(data any)      {}
//
//	// Create a router that delivers background results through the UI loop
//	uiLoop := loop.New()
//	r, err := router.New(uiLoop, router.WithParent(window))
//
//	r.RegisterRoute("home", func(ctx router.Context) router.View {
//	    return &HomeView{BaseView: router.NewBaseView(ctx)}
//	}, nil)
//
//	r.Navigate("home", nil)            // stack: [home]
//	r.Push("detail", router.Params{    // stack: [home, detail]
//	    "id": 42,
//	})
//	r.Pop()                            // stack: [home]
//
// # Lifecycle
//
// On every transition exactly one OnLeave fires on the view being left and
// exactly one OnEnter fires on the view being entered. The order is fixed:
// leave, deactivate, update the stack, resolve the target view, activate,
// raise (if the view implements Raiser), enter.
//
// Views are created once per route and reused, so their state survives
// navigating away and back. Resetting state is the view's job in OnEnter.
// DestroyView drops an instance so the next visit constructs a new one.
//
// # Threading
//
// Router and Store methods must only be called from the UI goroutine, the
// same goroutine that drains the loop the router's bridge delivers to.
// Background tasks must hand results back through OnResult rather than
// touching views directly.
package router
