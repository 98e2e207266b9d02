// Package navkit provides navigation and state coordination for
// single-window, multi-view applications.
//
// It combines three services: a stack-based view router with lifecycle
// hooks, a keyed store with per-key change notification, and a bridge that
// runs blocking work in the background and delivers results back on the UI
// goroutine, optionally caching them for a while.
//
// The host owns the UI goroutine. It creates an App, registers routes, and
// then either hands the goroutine to App.Run or calls App.Loop.Drain from
// its own event loop (see the platform/sdlhost package).
package navkit

import (
	"context"
	"log/slog"
	"os"

	"github.com/BrandonKowalski/navkit/pkg/navkit/constants"
	"github.com/BrandonKowalski/navkit/pkg/navkit/internal"
	"github.com/BrandonKowalski/navkit/pkg/navkit/loop"
	"github.com/BrandonKowalski/navkit/pkg/navkit/router"
	"github.com/hashicorp/go-metrics"
)

// Options configures navkit initialization.
type Options struct {
	Parent       any             // Host handle passed to every view factory
	ConfigPath   string          // TOML config file; falls back to NAVKIT_CONFIG
	Config       *Config         // Explicit configuration, takes precedence over ConfigPath
	LogPath      string          // Full path for log file including filename (overrides config)
	LogLevel     string          // Application log level (overrides config and NAVKIT_LOG_LEVEL)
	MetricLabels []metrics.Label // Static labels added to every metric
}

// App ties a router to the loop its background results are delivered on.
type App struct {
	Loop   *loop.Loop
	Router *router.Router
	Config Config
}

// New loads configuration, sets up logging and creates the loop and router.
func New(options Options) (*App, error) {
	cfg, err := resolveConfig(options)
	if err != nil {
		return nil, err
	}

	if options.LogPath != "" {
		cfg.Log.Path = options.LogPath
	}
	if cfg.Log.Path != "" {
		internal.SetLogPath(cfg.Log.Path)
	}

	if constants.IsDebug() {
		internal.SetInternalLogLevel(slog.LevelDebug)
	} else {
		internal.SetInternalLogLevel(slog.LevelError)
	}

	level := cfg.Log.Level
	if env := os.Getenv(constants.LogLevelEnvVar); env != "" {
		level = env
	}
	if options.LogLevel != "" {
		level = options.LogLevel
	}
	internal.SetRawLogLevel(level)

	l := loop.New()
	r, err := router.New(l,
		router.WithParent(options.Parent),
		router.WithBridgeOptions(cfg.BridgeOptions()...),
		router.WithMetricLabels(options.MetricLabels),
	)
	if err != nil {
		return nil, NewInfrastructureError("create_router", err)
	}

	internal.GetInternalLogger().Debug("navkit initialized",
		"max_workers", cfg.Bridge.MaxWorkers,
		"default_ttl", cfg.Bridge.DefaultTTL,
		"max_cache_entries", cfg.Bridge.MaxCacheEntries,
	)

	return &App{Loop: l, Router: r, Config: cfg}, nil
}

func resolveConfig(options Options) (Config, error) {
	if options.Config != nil {
		return *options.Config, nil
	}

	path := options.ConfigPath
	if path == "" {
		path = os.Getenv(constants.ConfigPathEnvVar)
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Run drains background deliveries on the calling goroutine until ctx is
// done or the app is closed. Hosts with their own event loop call
// App.Loop.Drain instead.
func (a *App) Run(ctx context.Context) error {
	return a.Loop.Run(ctx)
}

// Close shuts the router down (waiting for background work as bounded by
// ctx), stops the loop and closes the log file.
func (a *App) Close(ctx context.Context) error {
	err := a.Router.Shutdown(ctx)
	a.Loop.Close()
	internal.CloseLogger()
	return err
}

// SetLogPath sets the full path for the log file, including filename.
// Creates all necessary parent directories.
// Call before New() to take effect.
func SetLogPath(path string) {
	internal.SetLogPath(path)
}

// GetLogger returns the application logger for structured logging.
func GetLogger() *slog.Logger {
	return internal.GetLogger()
}

// SetLogLevel sets the minimum log level for the application logger.
func SetLogLevel(level slog.Level) {
	internal.SetLogLevel(level)
}

// SetRawLogLevel parses and sets the log level from a string (e.g., "debug", "info", "error").
func SetRawLogLevel(level string) {
	internal.SetRawLogLevel(level)
}
