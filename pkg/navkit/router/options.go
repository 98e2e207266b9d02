package router

import (
	"log/slog"

	"github.com/BrandonKowalski/navkit/pkg/navkit/bridge"
	"github.com/hashicorp/go-metrics"
)

type config struct {
	parent       any
	logger       *slog.Logger
	bridgeOpts   []bridge.Option
	metricLabels []metrics.Label
}

// Option to pass to `New`
type Option func(*config) error

// WithParent sets the host handle passed to every view factory as
// Context.Parent.
func WithParent(parent any) Option {
	return func(c *config) error {
		c.parent = parent
		return nil
	}
}

// WithLogger specifies which `slog.Logger` the router and its bridge use.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithBridgeOptions configures the bridge the router owns.
func WithBridgeOptions(opts ...bridge.Option) Option {
	return func(c *config) error {
		c.bridgeOpts = append(c.bridgeOpts, opts...)
		return nil
	}
}

// WithMetricLabels adds static labels to all metrics produced by the router
// and its bridge.
func WithMetricLabels(labels []metrics.Label) Option {
	return func(c *config) error {
		c.metricLabels = labels
		return nil
	}
}
