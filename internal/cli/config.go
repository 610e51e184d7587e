package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the papersync configuration file, by default
// $XDG_CONFIG_HOME/papersync/config.toml.
type Config struct {
	Viewer ViewerConfig `toml:"viewer" koanf:"viewer"`
	Cache  CacheConfig  `toml:"cache" koanf:"cache"`
	Server ServerConfig `toml:"server" koanf:"server"`
	Load   LoadConfig   `toml:"load" koanf:"load"`
}

// ViewerConfig sizes the panes for frame, replay and new server sessions.
type ViewerConfig struct {
	Width      int     `toml:"width" koanf:"width"`
	Height     int     `toml:"height" koanf:"height"`
	TextHeight float64 `toml:"text_height" koanf:"text_height"`
	Overlay    bool    `toml:"overlay" koanf:"overlay"`
}

// CacheConfig selects where fetched page images are cached.
type CacheConfig struct {
	Backend string        `toml:"backend" koanf:"backend"` // "file", "redis" or "none"
	Dir     string        `toml:"dir" koanf:"dir"`
	TTL     time.Duration `toml:"ttl" koanf:"ttl"`

	RedisAddr     string `toml:"redis_addr" koanf:"redis_addr"`
	RedisPassword string `toml:"redis_password" koanf:"redis_password"`
	RedisDB       int    `toml:"redis_db" koanf:"redis_db"`
}

// ServerConfig configures `papersync serve`.
type ServerConfig struct {
	Addr           string        `toml:"addr" koanf:"addr"`
	AllowAll       bool          `toml:"allow_all" koanf:"allow_all"`
	AllowedOrigins []string      `toml:"allowed_origins" koanf:"allowed_origins"`
	SessionTTL     time.Duration `toml:"session_ttl" koanf:"session_ttl"`
	MaxSessions    int           `toml:"max_sessions" koanf:"max_sessions"`
}

// LoadConfig bounds page loading.
type LoadConfig struct {
	Concurrency int           `toml:"concurrency" koanf:"concurrency"`
	Timeout     time.Duration `toml:"timeout" koanf:"timeout"` // 0 waits indefinitely
}

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Viewer: ViewerConfig{Width: 800, Height: 1000, TextHeight: 1000},
		Cache:  CacheConfig{Backend: backendFile, TTL: 7 * 24 * time.Hour, RedisAddr: "localhost:6379"},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			SessionTTL:     30 * time.Minute,
			MaxSessions:    64,
		},
		Load: LoadConfig{Concurrency: 4},
	}
}

// defaultConfigPath returns $XDG_CONFIG_HOME/papersync/config.toml.
func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// LoadConfigFile reads path over the defaults, then applies PAPERSYNC_*
// environment overrides. A missing file is not an error unless the path
// was given explicitly.
func LoadConfigFile(path string, explicit bool) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case os.IsNotExist(err) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envPrefix marks the environment variables read by applyEnv.
const envPrefix = "PAPERSYNC_"

// envKeys maps PAPERSYNC_* variables to config keys.
var envKeys = map[string]string{
	"VIEWER_WIDTH":     "viewer.width",
	"VIEWER_HEIGHT":    "viewer.height",
	"CACHE_BACKEND":    "cache.backend",
	"CACHE_DIR":        "cache.dir",
	"CACHE_TTL":        "cache.ttl",
	"REDIS_ADDR":       "cache.redis_addr",
	"REDIS_PASSWORD":   "cache.redis_password",
	"REDIS_DB":         "cache.redis_db",
	"SERVER_ADDR":      "server.addr",
	"SESSION_TTL":      "server.session_ttl",
	"MAX_SESSIONS":     "server.max_sessions",
	"LOAD_CONCURRENCY": "load.concurrency",
	"LOAD_TIMEOUT":     "load.timeout",
}

// applyEnv overlays environment variables such as PAPERSYNC_CACHE_BACKEND.
// Unknown PAPERSYNC_* variables are ignored; every variable whose value
// does not decode is named in the returned error.
func (c *Config) applyEnv() error {
	vars := make(map[string]string)
	k := koanf.New(".")
	provider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		path, ok := envKeys[strings.TrimPrefix(key, envPrefix)]
		if !ok {
			return "", nil
		}
		vars[path] = key
		return path, value
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	var bad []string
	for _, path := range k.Keys() {
		one := koanf.New(".")
		if err := one.Set(path, k.Get(path)); err != nil {
			return err
		}
		if err := one.Unmarshal("", c); err != nil {
			bad = append(bad, vars[path])
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("invalid environment overrides: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.TextHeight < 0 {
		return fmt.Errorf("viewer.text_height must not be negative")
	}
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache.backend %q: must be one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Load.Concurrency <= 0 {
		return fmt.Errorf("load.concurrency must be positive")
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.max_sessions must not be negative")
	}
	return nil
}
