package lumen

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServerConfig configures the read-only config service.
type ServerConfig struct {
	ConfigPath string // Required: site config file (.yaml, .yml, .json)
	Addr       string // Listen address (default ":3000")

	DatabasePath string // Snapshot SQLite path (default "data/lumen.db")
	SnapshotKeep int    // Snapshots kept by the pruner (default 50)

	StaticDir     string        // Directory holding the author photo (default "static")
	PhotoCacheTTL time.Duration // Scaled photo cache TTL (default 10min)

	Watch bool // Reload when the config file changes

	AdminPassword string // Enables /admin/ when set
	SessionSecret string // Required with AdminPassword
	CookieSecure  bool   // Set true for HTTPS
}

func (c *ServerConfig) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/lumen.db"
	}
	if c.SnapshotKeep == 0 {
		c.SnapshotKeep = 50
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.PhotoCacheTTL == 0 {
		c.PhotoCacheTTL = 10 * time.Minute
	}
}

// AdminEnabled reports whether the admin routes are mounted.
func (c ServerConfig) AdminEnabled() bool {
	return c.AdminPassword != ""
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are mounted.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the default no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvBool reports whether key is set to a true value ("1", "true", ...).
func EnvBool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return b
}
