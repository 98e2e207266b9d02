package router

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/BrandonKowalski/navkit/pkg/navkit/bridge"
	"github.com/BrandonKowalski/navkit/pkg/navkit/internal"
	"github.com/BrandonKowalski/navkit/pkg/navkit/store"
	"github.com/hashicorp/go-metrics"
)

// RouteConfig is a registered route. It is never modified after registration.
type RouteConfig struct {
	Name          string
	Factory       ViewFactory
	DefaultParams Params
}

// Router manages the navigation stack and the views behind it.
// Views are constructed lazily on first visit and reused on every later
// visit until destroyed.
type Router struct {
	parent       any
	store        *store.Store
	bridge       *bridge.Bridge
	logger       *slog.Logger
	metricLabels []metrics.Label

	routes  map[string]RouteConfig
	views   map[string]View
	stack   *Stack
	current View
}

// New creates a Router with its own Store and a Bridge that delivers
// callbacks through sched.
func New(sched bridge.Scheduler, opts ...Option) (*Router, error) {
	var cfg config
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = internal.GetInternalLogger()
	}

	bridgeOpts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithMetricLabels(cfg.metricLabels),
	}
	b, err := bridge.New(sched, append(bridgeOpts, cfg.bridgeOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("router: create bridge: %w", err)
	}

	return &Router{
		parent:       cfg.parent,
		store:        store.New(),
		bridge:       b,
		logger:       logger.With("subsystem", "router"),
		metricLabels: cfg.metricLabels,
		routes:       make(map[string]RouteConfig),
		views:        make(map[string]View),
		stack:        NewStack(),
	}, nil
}

// Store returns the state shared by every view of this router.
func (r *Router) Store() *store.Store {
	return r.store
}

// Bridge returns the background task runner owned by this router.
func (r *Router) Bridge() *bridge.Bridge {
	return r.bridge
}

// RegisterRoute adds a route. defaults are merged under the params of every
// navigation to the route. Registering a name twice fails with
// ErrDuplicateRoute.
func (r *Router) RegisterRoute(name string, factory ViewFactory, defaults Params) error {
	if name == "" || factory == nil {
		return newRouteError("register", name, ErrInvalidRoute)
	}
	if _, exists := r.routes[name]; exists {
		return newRouteError("register", name, ErrDuplicateRoute)
	}

	r.routes[name] = RouteConfig{
		Name:          name,
		Factory:       factory,
		DefaultParams: maps.Clone(defaults),
	}
	return nil
}

// Route returns the registration for name.
func (r *Router) Route(name string) (RouteConfig, bool) {
	cfg, ok := r.routes[name]
	return cfg, ok
}

// Routes returns the registered route names in sorted order.
func (r *Router) Routes() []string {
	return slices.Sorted(maps.Keys(r.routes))
}

// Navigate discards the navigation history and pushes name, leaving a stack
// of exactly one entry. Only the active view receives OnLeave; discarded
// entries get no callbacks. On error nothing changes.
func (r *Router) Navigate(name string, params Params) error {
	if _, ok := r.routes[name]; !ok {
		return r.reject("navigate", name)
	}

	r.stack.Clear()
	return r.push("navigate", name, params)
}

// Push makes name the current route on top of the existing history.
//
// The active view is left and deactivated first, then the entry is
// appended, the target view is resolved (reused or constructed), activated,
// raised, and finally entered. A view therefore always observes itself as
// the foreground view in OnEnter. On error nothing changes.
//
// If the route's factory panics, the previous view has already been left
// and no view is current; a recovering host can Pop back to it.
func (r *Router) Push(name string, params Params) error {
	return r.push("push", name, params)
}

// Pop returns to the previous route, entering its view with the params that
// entry was pushed with. The last remaining entry cannot be popped: Pop
// returns false and changes nothing.
func (r *Router) Pop() bool {
	if r.stack.Len() <= 1 {
		return false
	}

	from := r.CurrentRoute()
	r.leaveCurrent()
	r.stack.Pop()
	entry := r.stack.Peek()
	r.enter(*entry)

	r.navigated("pop", from, entry.Route)
	return true
}

// CanPop reports whether Pop would succeed.
func (r *Router) CanPop() bool {
	return r.stack.Len() > 1
}

// CurrentRoute returns the name of the current route, or "" before the first
// navigation.
func (r *Router) CurrentRoute() string {
	if entry := r.stack.Peek(); entry != nil {
		return entry.Route
	}
	return ""
}

// CurrentView returns the foreground view, or nil before the first navigation
// and after Shutdown.
func (r *Router) CurrentView() View {
	return r.current
}

// NavigationStack returns a copy of the navigation history, oldest first.
func (r *Router) NavigationStack() []Entry {
	return r.stack.Entries()
}

// View returns the cached instance for name without constructing one.
func (r *Router) View(name string) (View, bool) {
	v, ok := r.views[name]
	return v, ok
}

// DestroyView drops the cached instance for name, calling its Destroy hook
// if it has one. The next visit constructs a fresh view. The navigation
// stack is not touched.
func (r *Router) DestroyView(name string) {
	view, ok := r.views[name]
	if !ok {
		return
	}

	r.destroy(name, view)
	delete(r.views, name)
}

// RunAsync runs task through the router's bridge.
func (r *Router) RunAsync(task bridge.Task, opts ...bridge.CallOption) *bridge.Future {
	return r.bridge.RunAsync(task, opts...)
}

// RunAsyncCached runs task through the router's bridge cache.
func (r *Router) RunAsyncCached(key string, task bridge.Task, opts ...bridge.CallOption) *bridge.Future {
	return r.bridge.RunAsyncCached(key, task, opts...)
}

// Shutdown stops the bridge, waiting for background work as bounded by ctx,
// then deactivates the current view and destroys every cached view.
// CurrentView returns nil afterwards.
func (r *Router) Shutdown(ctx context.Context) error {
	err := r.bridge.Shutdown(ctx)

	if r.current != nil {
		r.current.setActive(false)
		r.current = nil
	}
	for _, name := range slices.Sorted(maps.Keys(r.views)) {
		r.destroy(name, r.views[name])
	}
	clear(r.views)

	r.logger.Debug("Router shut down", "error", err)
	return err
}

func (r *Router) push(op, name string, params Params) error {
	route, ok := r.routes[name]
	if !ok {
		return r.reject(op, name)
	}

	from := r.CurrentRoute()
	r.leaveCurrent()
	entry := r.stack.Push(name, mergeParams(route.DefaultParams, params))
	r.enter(entry)

	r.navigated(op, from, name)
	return nil
}

func (r *Router) leaveCurrent() {
	if r.current == nil {
		return
	}
	r.current.OnLeave()
	r.current.setActive(false)
	r.current = nil
}

func (r *Router) enter(entry Entry) {
	view := r.resolve(entry.Route)

	r.current = view
	view.setActive(true)
	if raiser, ok := view.(Raiser); ok {
		raiser.Raise()
	}

	view.OnEnter(maps.Clone(entry.Params))
}

// resolve returns the cached view for name, constructing it on first use.
func (r *Router) resolve(name string) View {
	if view, ok := r.views[name]; ok {
		return view
	}

	view := r.routes[name].Factory(Context{
		Parent: r.parent,
		Router: r,
		Store:  r.store,
	})
	if view == nil {
		panic(fmt.Sprintf("router: view factory for %q returned nil", name))
	}

	r.views[name] = view
	r.count(internal.MetricRouterViewCreated, internal.LabelRoute.M(name))
	r.logger.Debug("Created view", internal.LabelRoute.L(name))
	return view
}

func (r *Router) destroy(name string, view View) {
	if destroyer, ok := view.(Destroyer); ok {
		destroyer.Destroy()
	}
	r.count(internal.MetricRouterViewDestroyed, internal.LabelRoute.M(name))
	r.logger.Debug("Destroyed view", internal.LabelRoute.L(name))
}

func (r *Router) reject(op, name string) error {
	r.count(internal.MetricRouterNavigationRejected, internal.LabelOp.M(op), internal.LabelRoute.M(name))
	return newRouteError(op, name, ErrRouteNotFound)
}

func (r *Router) navigated(op, from, to string) {
	r.count(internal.MetricRouterNavigation, internal.LabelOp.M(op), internal.LabelRoute.M(to))
	r.logger.Debug("Navigated",
		internal.LabelOp.L(op),
		internal.LabelFromRoute.L(from),
		internal.LabelRoute.L(to),
		"depth", r.stack.Len(),
	)
}

func (r *Router) count(key []string, labels ...metrics.Label) {
	metrics.IncrCounterWithLabels(key, 1, append(labels, r.metricLabels...))
}

// mergeParams overlays params on defaults into a new map.
func mergeParams(defaults, params Params) Params {
	merged := make(Params, len(defaults)+len(params))
	maps.Copy(merged, defaults)
	maps.Copy(merged, params)
	return merged
}
