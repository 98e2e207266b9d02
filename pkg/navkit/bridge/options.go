package bridge

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BrandonKowalski/navkit/pkg/navkit/constants"
	"github.com/hashicorp/go-metrics"
)

type config struct {
	maxWorkers      int
	defaultTTL      time.Duration
	maxCacheEntries int
	logger          *slog.Logger
	now             func() time.Time
	metricLabels    []metrics.Label
}

func defaultConfig() config {
	return config{
		maxWorkers:      constants.DefaultMaxWorkers,
		defaultTTL:      constants.DefaultCacheTTL,
		maxCacheEntries: constants.DefaultMaxCacheEntries,
		now:             time.Now,
	}
}

// Option to pass to `New`
type Option func(*config) error

// WithMaxWorkers sets how many tasks may run at once. Further tasks wait
// for a free slot; submitting never blocks the caller.
func WithMaxWorkers(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: max workers must be at least 1, got %d", ErrInvalidConfig, n)
		}
		c.maxWorkers = n
		return nil
	}
}

// WithDefaultTTL sets the cache lifetime used by RunAsyncCached when the call
// does not pass WithTTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *config) error {
		if ttl < 0 {
			return fmt.Errorf("%w: negative default ttl %s", ErrInvalidConfig, ttl)
		}
		c.defaultTTL = ttl
		return nil
	}
}

// WithMaxCacheEntries bounds the result cache. The least recently used entry
// is evicted when the bound is reached. Zero means unbounded.
func WithMaxCacheEntries(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return fmt.Errorf("%w: negative cache size %d", ErrInvalidConfig, n)
		}
		c.maxCacheEntries = n
		return nil
	}
}

// WithLogger specifies which `slog.Logger` receives diagnostics, including
// failures of tasks submitted without an error callback.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidConfig)
		}
		c.now = now
		return nil
	}
}

// WithMetricLabels adds static labels to all metrics produced by the Bridge.
func WithMetricLabels(labels []metrics.Label) Option {
	return func(c *config) error {
		c.metricLabels = labels
		return nil
	}
}

type callOptions struct {
	onResult   func(any)
	onError    func(error)
	ttl        time.Duration
	revalidate bool
}

// CallOption configures a single RunAsync or RunAsyncCached call.
type CallOption func(*callOptions)

// OnResult sets the callback that receives the task's value on the UI loop.
func OnResult(fn func(data any)) CallOption {
	return func(o *callOptions) {
		o.onResult = fn
	}
}

// OnError sets the callback that receives the task's error on the UI loop.
// Without it, failures are logged and no callback fires.
func OnError(fn func(err error)) CallOption {
	return func(o *callOptions) {
		o.onError = fn
	}
}

// WithTTL sets how long a RunAsyncCached result stays valid.
func WithTTL(ttl time.Duration) CallOption {
	return func(o *callOptions) {
		o.ttl = ttl
	}
}

// Revalidate makes a RunAsyncCached cache hit also fetch a fresh value in the
// background. OnResult then fires twice: once with the cached value, once
// with the fresh one.
func Revalidate(revalidate bool) CallOption {
	return func(o *callOptions) {
		o.revalidate = revalidate
	}
}
