package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BrandonKowalski/navkit/pkg/navkit/bridge"
	"github.com/BrandonKowalski/navkit/pkg/navkit/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingView logs every hook into a journal shared by all views of a test.
type recordingView struct {
	BaseView
	name      string
	journal   *[]string
	enters    []Params
	leaves    int
	raises    int
	destroyed bool
	data      []any

	// observed during OnEnter
	activeOnEnter  bool
	currentOnEnter View
}

func (v *recordingView) OnEnter(params Params) {
	v.enters = append(v.enters, params)
	v.activeOnEnter = v.IsActive()
	v.currentOnEnter = v.Router.CurrentView()
	*v.journal = append(*v.journal, v.name+".enter")
}

func (v *recordingView) OnLeave() {
	v.leaves++
	*v.journal = append(*v.journal, v.name+".leave")
}

func (v *recordingView) OnDataReceived(data any) {
	v.data = append(v.data, data)
}

func (v *recordingView) Raise() {
	v.raises++
	*v.journal = append(*v.journal, v.name+".raise")
}

func (v *recordingView) Destroy() {
	v.destroyed = true
	*v.journal = append(*v.journal, v.name+".destroy")
}

type harness struct {
	router  *Router
	loop    *loop.Loop
	journal []string
	built   map[string][]*recordingView
}

func newHarness(t *testing.T, routes ...string) *harness {
	t.Helper()
	h := &harness{loop: loop.New(), built: make(map[string][]*recordingView)}

	r, err := New(h.loop,
		WithParent("root-window"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	h.router = r

	for _, name := range routes {
		require.NoError(t, r.RegisterRoute(name, h.factory(name), nil))
	}
	return h
}

func (h *harness) factory(name string) ViewFactory {
	return func(ctx Context) View {
		v := &recordingView{BaseView: NewBaseView(ctx), name: name, journal: &h.journal}
		h.built[name] = append(h.built[name], v)
		h.journal = append(h.journal, name+".new")
		return v
	}
}

func (h *harness) view(t *testing.T, name string) *recordingView {
	t.Helper()
	views := h.built[name]
	require.NotEmpty(t, views, "view %s never built", name)
	return views[len(views)-1]
}

func (h *harness) routes() []string {
	var names []string
	for _, e := range h.router.NavigationStack() {
		names = append(names, e.Route)
	}
	return names
}

func TestNewRouter(t *testing.T) {
	h := newHarness(t)
	r := h.router

	assert.NotNil(t, r.Store())
	assert.NotNil(t, r.Bridge())
	assert.Empty(t, r.Routes())
	assert.Empty(t, r.NavigationStack())
	assert.Equal(t, "", r.CurrentRoute())
	assert.Nil(t, r.CurrentView())
	assert.False(t, r.CanPop())
}

func TestNewRouterRejectsBadBridgeOptions(t *testing.T) {
	_, err := New(loop.New(), WithBridgeOptions(bridge.WithMaxWorkers(0)))
	assert.ErrorIs(t, err, bridge.ErrInvalidConfig)

	_, err = New(nil)
	assert.ErrorIs(t, err, bridge.ErrInvalidConfig)
}

func TestRegisterRoute(t *testing.T) {
	h := newHarness(t)
	r := h.router

	require.NoError(t, r.RegisterRoute("settings", h.factory("settings"), Params{"tab": "general"}))

	cfg, ok := r.Route("settings")
	require.True(t, ok)
	assert.Equal(t, "settings", cfg.Name)
	assert.Equal(t, Params{"tab": "general"}, cfg.DefaultParams)
	assert.Equal(t, []string{"settings"}, r.Routes())
	assert.Empty(t, h.built, "views are built lazily")
}

func TestRegisterDuplicateRoute(t *testing.T) {
	h := newHarness(t, "home")

	err := h.router.RegisterRoute("home", h.factory("home"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRoute)
	assert.True(t, IsDuplicateRoute(err))

	var routeErr *RouteError
	require.ErrorAs(t, err, &routeErr)
	assert.Equal(t, "register", routeErr.Op)
	assert.Equal(t, "home", routeErr.Route)
}

func TestRegisterInvalidRoute(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.router.RegisterRoute("", h.factory("x"), nil), ErrInvalidRoute)
	assert.ErrorIs(t, h.router.RegisterRoute("x", nil, nil), ErrInvalidRoute)
	assert.Empty(t, h.router.Routes())
}

func TestRegisterRouteCopiesDefaults(t *testing.T) {
	h := newHarness(t)
	defaults := Params{"page": 1}
	require.NoError(t, h.router.RegisterRoute("list", h.factory("list"), defaults))

	defaults["page"] = 99
	require.NoError(t, h.router.Navigate("list", nil))
	assert.Equal(t, Params{"page": 1}, h.view(t, "list").enters[0])
}

func TestNavigate(t *testing.T) {
	t.Run("to registered route", func(t *testing.T) {
		h := newHarness(t, "home")
		require.NoError(t, h.router.Navigate("home", nil))

		assert.Equal(t, "home", h.router.CurrentRoute())
		assert.Equal(t, []string{"home"}, h.routes())
	})

	t.Run("with params", func(t *testing.T) {
		h := newHarness(t, "profile")
		require.NoError(t, h.router.Navigate("profile", Params{"user_id": 123}))

		stack := h.router.NavigationStack()
		require.Len(t, stack, 1)
		assert.Equal(t, Params{"user_id": 123}, stack[0].Params)
		assert.Equal(t, Params{"user_id": 123}, h.view(t, "profile").enters[0])
	})

	t.Run("clears history", func(t *testing.T) {
		h := newHarness(t, "a", "b", "c")
		require.NoError(t, h.router.Push("a", nil))
		require.NoError(t, h.router.Push("b", nil))
		require.NoError(t, h.router.Push("c", nil))

		require.NoError(t, h.router.Navigate("a", nil))
		assert.Equal(t, []string{"a"}, h.routes())
		assert.False(t, h.router.CanPop())
	})

	t.Run("fires hooks only on the surviving path", func(t *testing.T) {
		h := newHarness(t, "a", "b", "c")
		require.NoError(t, h.router.Push("a", nil))
		require.NoError(t, h.router.Push("b", nil))
		require.NoError(t, h.router.Push("c", nil))
		h.journal = nil

		require.NoError(t, h.router.Navigate("a", nil))

		assert.Equal(t, []string{"c.leave", "a.raise", "a.enter"}, h.journal)
	})

	t.Run("unknown route leaves state untouched", func(t *testing.T) {
		h := newHarness(t, "home", "about")
		require.NoError(t, h.router.Push("home", nil))
		require.NoError(t, h.router.Push("about", nil))
		h.journal = nil

		err := h.router.Navigate("missing", nil)
		assert.ErrorIs(t, err, ErrRouteNotFound)
		assert.True(t, IsRouteNotFound(err))
		assert.Equal(t, []string{"home", "about"}, h.routes())
		assert.Same(t, h.view(t, "about"), h.router.CurrentView())
		assert.True(t, h.view(t, "about").IsActive())
		assert.Empty(t, h.journal)
	})
}

func TestPush(t *testing.T) {
	t.Run("current route follows pushes", func(t *testing.T) {
		names := []string{"a", "b", "c", "b", "a"}
		h := newHarness(t, "a", "b", "c")
		for i, name := range names {
			require.NoError(t, h.router.Push(name, nil))
			assert.Equal(t, name, h.router.CurrentRoute())
			assert.Len(t, h.router.NavigationStack(), i+1)
		}
		assert.Equal(t, names, h.routes())
	})

	t.Run("unknown route", func(t *testing.T) {
		h := newHarness(t, "home")
		require.NoError(t, h.router.Push("home", nil))

		err := h.router.Push("nowhere", Params{"x": 1})
		var routeErr *RouteError
		require.ErrorAs(t, err, &routeErr)
		assert.Equal(t, "push", routeErr.Op)
		assert.Equal(t, "nowhere", routeErr.Route)
		assert.Contains(t, err.Error(), "nowhere")

		assert.Equal(t, []string{"home"}, h.routes())
		assert.Equal(t, 0, h.view(t, "home").leaves)
	})

	t.Run("hook ordering", func(t *testing.T) {
		h := newHarness(t, "home", "about")
		require.NoError(t, h.router.Push("home", nil))
		require.NoError(t, h.router.Push("about", nil))

		assert.Equal(t, []string{
			"home.new", "home.raise", "home.enter",
			"home.leave", "about.new", "about.raise", "about.enter",
		}, h.journal)
	})

	t.Run("entered view sees itself as foreground", func(t *testing.T) {
		h := newHarness(t, "home", "about")
		require.NoError(t, h.router.Push("home", nil))
		require.NoError(t, h.router.Push("about", nil))

		about := h.view(t, "about")
		assert.True(t, about.activeOnEnter)
		assert.Same(t, about, about.currentOnEnter)
		assert.False(t, h.view(t, "home").IsActive())
	})

	t.Run("default params merge under caller params", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.router.RegisterRoute("list", h.factory("list"), Params{"page": 1, "sort": "name"}))

		require.NoError(t, h.router.Push("list", Params{"page": 3}))
		require.NoError(t, h.router.Push("list", nil))

		list := h.view(t, "list")
		require.Len(t, list.enters, 2)
		assert.Equal(t, Params{"page": 3, "sort": "name"}, list.enters[0])
		assert.Equal(t, Params{"page": 1, "sort": "name"}, list.enters[1])
	})

	t.Run("params passed to OnEnter are never nil", func(t *testing.T) {
		h := newHarness(t, "home")
		require.NoError(t, h.router.Push("home", nil))
		assert.NotNil(t, h.view(t, "home").enters[0])
	})

	t.Run("caller mutation does not alter history", func(t *testing.T) {
		h := newHarness(t, "a", "b")
		params := Params{"id": 1}
		require.NoError(t, h.router.Push("a", params))
		params["id"] = 2
		h.view(t, "a").enters[0]["id"] = 3

		require.NoError(t, h.router.Push("b", nil))
		require.True(t, h.router.Pop())

		a := h.view(t, "a")
		assert.Equal(t, Params{"id": 1}, a.enters[len(a.enters)-1])
	})

	t.Run("pushing the current route again", func(t *testing.T) {
		h := newHarness(t, "feed")
		require.NoError(t, h.router.Push("feed", Params{"page": 1}))
		require.NoError(t, h.router.Push("feed", Params{"page": 2}))

		feed := h.view(t, "feed")
		assert.Len(t, h.built["feed"], 1)
		assert.Equal(t, 1, feed.leaves)
		assert.Len(t, feed.enters, 2)
		assert.True(t, feed.IsActive())
	})
}

func TestPop(t *testing.T) {
	t.Run("refuses to pop the last entry", func(t *testing.T) {
		h := newHarness(t, "home")
		assert.False(t, h.router.Pop(), "empty stack")

		require.NoError(t, h.router.Navigate("home", nil))
		h.journal = nil
		assert.False(t, h.router.Pop())
		assert.Equal(t, []string{"home"}, h.routes())
		assert.Empty(t, h.journal)
		assert.True(t, h.view(t, "home").IsActive())
	})

	t.Run("restores previous params", func(t *testing.T) {
		h := newHarness(t, "list", "detail")
		require.NoError(t, h.router.Push("list", Params{"page": 4}))
		require.NoError(t, h.router.Push("detail", Params{"id": 9}))

		require.True(t, h.router.Pop())

		list := h.view(t, "list")
		require.Len(t, list.enters, 2)
		assert.Equal(t, Params{"page": 4}, list.enters[1])
		assert.Equal(t, "list", h.router.CurrentRoute())
	})

	t.Run("shrinks stack by one", func(t *testing.T) {
		h := newHarness(t, "a", "b", "c")
		for _, name := range []string{"a", "b", "c"} {
			require.NoError(t, h.router.Push(name, nil))
		}

		assert.True(t, h.router.CanPop())
		assert.True(t, h.router.Pop())
		assert.Equal(t, []string{"a", "b"}, h.routes())
		assert.True(t, h.router.Pop())
		assert.Equal(t, []string{"a"}, h.routes())
		assert.False(t, h.router.CanPop())
		assert.False(t, h.router.Pop())
	})

	t.Run("hook ordering", func(t *testing.T) {
		h := newHarness(t, "home", "about")
		require.NoError(t, h.router.Push("home", nil))
		require.NoError(t, h.router.Push("about", nil))
		h.journal = nil

		require.True(t, h.router.Pop())
		assert.Equal(t, []string{"about.leave", "home.raise", "home.enter"}, h.journal)
	})
}

func TestHomeAboutScenario(t *testing.T) {
	h := newHarness(t, "home", "about")
	r := h.router

	require.NoError(t, r.Navigate("home", nil))
	assert.Equal(t, []string{"home"}, h.routes())
	home := h.view(t, "home")

	require.NoError(t, r.Push("about", nil))
	about := h.view(t, "about")
	assert.Equal(t, []string{"home", "about"}, h.routes())
	assert.Equal(t, 1, home.leaves)
	assert.Len(t, about.enters, 1)

	assert.True(t, r.Pop())
	assert.Equal(t, []string{"home"}, h.routes())
	assert.Equal(t, 1, about.leaves)
	assert.Len(t, home.enters, 2)
	assert.Same(t, home, h.view(t, "home"))
	assert.Len(t, h.built["home"], 1)
	assert.Same(t, home, r.CurrentView())
}

func TestViewIdentity(t *testing.T) {
	h := newHarness(t, "a", "b")
	r := h.router

	require.NoError(t, r.Navigate("a", nil))
	first := h.view(t, "a")
	require.NoError(t, r.Push("b", nil))
	require.True(t, r.Pop())
	require.NoError(t, r.Navigate("b", nil))
	require.NoError(t, r.Push("a", nil))

	assert.Len(t, h.built["a"], 1)
	assert.Len(t, h.built["b"], 1)
	cached, ok := r.View("a")
	require.True(t, ok)
	assert.Same(t, first, cached)
}

func TestViewReceivesContext(t *testing.T) {
	h := newHarness(t, "home")
	require.NoError(t, h.router.Navigate("home", nil))

	home := h.view(t, "home")
	assert.Equal(t, "root-window", home.Parent)
	assert.Same(t, h.router, home.Router)
	assert.Same(t, h.router.Store(), home.Store)
}

func TestViewStatePersists(t *testing.T) {
	h := newHarness(t, "counter", "other")
	require.NoError(t, h.router.Navigate("counter", nil))
	h.view(t, "counter").data = append(h.view(t, "counter").data, "kept")

	require.NoError(t, h.router.Push("other", nil))
	require.True(t, h.router.Pop())

	assert.Equal(t, []any{"kept"}, h.view(t, "counter").data)
}

func TestActiveFlag(t *testing.T) {
	h := newHarness(t, "a", "b")
	require.NoError(t, h.router.Push("a", nil))
	a := h.view(t, "a")
	assert.True(t, a.IsActive())

	require.NoError(t, h.router.Push("b", nil))
	b := h.view(t, "b")
	assert.False(t, a.IsActive())
	assert.True(t, b.IsActive())

	require.True(t, h.router.Pop())
	assert.True(t, a.IsActive())
	assert.False(t, b.IsActive())
}

func TestExactlyOneHookPairPerTransition(t *testing.T) {
	h := newHarness(t, "a", "b", "c")
	r := h.router

	steps := []func() error{
		func() error { return r.Navigate("a", nil) },
		func() error { return r.Push("b", nil) },
		func() error { return r.Push("c", nil) },
		func() error { r.Pop(); return nil },
		func() error { return r.Navigate("c", nil) },
	}

	for i, step := range steps {
		h.journal = nil
		require.NoError(t, step(), "step %d", i)

		leaves, enters := 0, 0
		for _, event := range h.journal {
			switch {
			case len(event) > 6 && event[len(event)-6:] == ".leave":
				leaves++
			case len(event) > 6 && event[len(event)-6:] == ".enter":
				enters++
			}
		}
		assert.Equal(t, 1, enters, "step %d: %v", i, h.journal)
		if i == 0 {
			assert.Equal(t, 0, leaves, "nothing to leave on first navigation")
		} else {
			assert.Equal(t, 1, leaves, "step %d: %v", i, h.journal)
		}
	}
}

func TestNavigationStackReturnsCopy(t *testing.T) {
	h := newHarness(t, "a", "b")
	require.NoError(t, h.router.Push("a", Params{"k": "v"}))
	require.NoError(t, h.router.Push("b", nil))

	stack := h.router.NavigationStack()
	stack[0].Route = "tampered"
	stack[0].Params["k"] = "tampered"

	fresh := h.router.NavigationStack()
	assert.Equal(t, "a", fresh[0].Route)
	assert.Equal(t, Params{"k": "v"}, fresh[0].Params)
	assert.Equal(t, "b", fresh[1].Route)
}

func TestDestroyView(t *testing.T) {
	h := newHarness(t, "a", "b")
	r := h.router

	require.NoError(t, r.Navigate("a", nil))
	require.NoError(t, r.Push("b", nil))
	first := h.view(t, "a")

	r.DestroyView("a")
	assert.True(t, first.destroyed)
	_, ok := r.View("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, h.routes(), "stack untouched")

	require.True(t, r.Pop())
	second := h.view(t, "a")
	assert.NotSame(t, first, second)
	assert.Len(t, h.built["a"], 2)
	assert.Same(t, second, r.CurrentView())

	r.DestroyView("never-built")
}

func TestRunAsyncPassthrough(t *testing.T) {
	h := newHarness(t, "home")
	require.NoError(t, h.router.Navigate("home", nil))
	home := h.view(t, "home")

	f := h.router.RunAsync(func() (any, error) {
		return "payload", nil
	}, bridge.OnResult(home.OnDataReceived))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.Wait(ctx)
	require.NoError(t, err)
	assert.Empty(t, home.data)

	h.loop.Drain()
	assert.Equal(t, []any{"payload"}, home.data)
}

func TestRunAsyncCachedPassthrough(t *testing.T) {
	h := newHarness(t, "home")
	require.NoError(t, h.router.Navigate("home", nil))
	home := h.view(t, "home")

	calls := 0
	task := func() (any, error) {
		calls++
		return fmt.Sprintf("users-%d", calls), nil
	}

	f := h.router.RunAsyncCached("users", task, bridge.OnResult(home.OnDataReceived))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.Wait(ctx)
	require.NoError(t, err)

	assert.Nil(t, h.router.RunAsyncCached("users", task, bridge.OnResult(home.OnDataReceived)))
	h.loop.Drain()

	assert.Equal(t, []any{"users-1", "users-1"}, home.data)
	assert.Equal(t, 1, calls)
}

func TestShutdown(t *testing.T) {
	h := newHarness(t, "a", "b")
	r := h.router
	require.NoError(t, r.Navigate("a", nil))
	require.NoError(t, r.Push("b", nil))
	h.journal = nil

	var delivered []any
	f := r.RunAsync(func() (any, error) { return 1, nil }, bridge.OnResult(func(data any) {
		delivered = append(delivered, data)
	}))

	require.NoError(t, r.Shutdown(context.Background()))
	_, err := f.Result()
	require.NoError(t, err, "shutdown waits for in-flight work")

	assert.Equal(t, []string{"a.destroy", "b.destroy"}, h.journal)
	_, ok := r.View("a")
	assert.False(t, ok)

	h.loop.Drain()
	assert.Empty(t, delivered)

	_, err = r.RunAsync(func() (any, error) { return nil, nil }).Result()
	assert.ErrorIs(t, err, bridge.ErrClosed)
}

func TestShutdownDeactivatesCurrentView(t *testing.T) {
	h := newHarness(t, "a")
	r := h.router
	require.NoError(t, r.Navigate("a", nil))
	a := h.view(t, "a")
	require.True(t, a.IsActive())

	require.NoError(t, r.Shutdown(context.Background()))
	assert.False(t, a.IsActive())
	assert.Nil(t, r.CurrentView())
}

func TestNilFactoryResultPanics(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.router.RegisterRoute("broken", func(Context) View { return nil }, nil))

	assert.Panics(t, func() { _ = h.router.Push("broken", nil) })
}

func TestRecoverAfterFactoryPanic(t *testing.T) {
	h := newHarness(t, "home")
	r := h.router
	require.NoError(t, r.RegisterRoute("broken", func(Context) View { return nil }, nil))
	require.NoError(t, r.Navigate("home", nil))
	home := h.view(t, "home")

	assert.Panics(t, func() { _ = r.Push("broken", nil) })
	assert.Equal(t, 1, home.leaves)
	assert.False(t, home.IsActive())
	assert.Nil(t, r.CurrentView())

	require.True(t, r.Pop())
	assert.Equal(t, 1, home.leaves, "home is not left twice")
	assert.Len(t, home.enters, 2)
	assert.True(t, home.IsActive())
	assert.Equal(t, View(home), r.CurrentView())
	assert.Equal(t, "home", r.CurrentRoute())
}
