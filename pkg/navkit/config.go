package navkit

import (
	"fmt"
	"strings"
	"time"

	"github.com/BrandonKowalski/navkit/pkg/navkit/bridge"
	"github.com/BrandonKowalski/navkit/pkg/navkit/constants"
	"github.com/BurntSushi/toml"
)

// Config is the file-based configuration. Fields missing from the file keep
// their defaults.
//
//	[bridge]
//	max_workers = 5
//	default_ttl = "5m"
//	max_cache_entries = 0
//
//	[log]
//	level = "info"
//	path = "logs/app.log"
type Config struct {
	Bridge BridgeConfig `toml:"bridge"`
	Log    LogConfig    `toml:"log"`
}

// BridgeConfig configures background task execution and result caching.
type BridgeConfig struct {
	MaxWorkers      int           `toml:"max_workers"`       // Concurrent background tasks
	DefaultTTL      time.Duration `toml:"default_ttl"`       // Cache lifetime when a call gives none
	MaxCacheEntries int           `toml:"max_cache_entries"` // LRU bound, 0 for unbounded
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn" or "error"
	Path  string `toml:"path"`  // Log file path; stdout only when empty
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Bridge: BridgeConfig{
			MaxWorkers:      constants.DefaultMaxWorkers,
			DefaultTTL:      constants.DefaultCacheTTL,
			MaxCacheEntries: constants.DefaultMaxCacheEntries,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Unknown keys are
// reported as ErrUnknownConfigKey.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, NewInfrastructureError("load_config", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return Config{}, NewInfrastructureError("load_config",
			fmt.Errorf("%w: %s in %s", ErrUnknownConfigKey, strings.Join(keys, ", "), path))
	}

	return cfg, nil
}

// BridgeOptions converts the bridge section into bridge options.
func (c Config) BridgeOptions() []bridge.Option {
	return []bridge.Option{
		bridge.WithMaxWorkers(c.Bridge.MaxWorkers),
		bridge.WithDefaultTTL(c.Bridge.DefaultTTL),
		bridge.WithMaxCacheEntries(c.Bridge.MaxCacheEntries),
	}
}
