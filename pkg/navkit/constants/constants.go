// Package constants defines shared constants and configuration values
// used throughout navkit.
package constants

import (
	"os"
	"time"
)

// Development is the environment variable value for development mode.
const Development = "DEV"

// EnvironmentEnvVar selects the runtime environment (set to DEV for development mode).
const EnvironmentEnvVar = "ENVIRONMENT"

// DebugEnvVar enables debug output from the internal logger when set to any value.
const DebugEnvVar = "NAVKIT_DEBUG"

// ConfigPathEnvVar is the environment variable name for the TOML config file path.
const ConfigPathEnvVar = "NAVKIT_CONFIG"

// LogLevelEnvVar overrides the application log level ("debug", "info", "warn", "error").
const LogLevelEnvVar = "NAVKIT_LOG_LEVEL"

// IsDevMode returns true if running in development mode (ENVIRONMENT=DEV).
func IsDevMode() bool {
	return os.Getenv(EnvironmentEnvVar) == Development
}

// IsDebug returns true if framework debug logging was requested.
func IsDebug() bool {
	return IsDevMode() || os.Getenv(DebugEnvVar) != ""
}

const (
	// DefaultMaxWorkers is the number of background tasks allowed to run at once.
	DefaultMaxWorkers = 5

	// DefaultCacheTTL is how long a cached background result stays valid.
	DefaultCacheTTL = 300 * time.Second

	// DefaultMaxCacheEntries bounds the result cache. Zero means unbounded.
	DefaultMaxCacheEntries = 0
)
