package testsupport

import (
	"path/filepath"
	"testing"

	"bricsview/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryRoot = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "bricsviewd.sock")
	cfg.Viewer.WatchLibrary = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCacheCapacity overrides the scene cache capacity on the test config.
func WithCacheCapacity(capacity int) ConfigOption {
	return func(c *config.Config) {
		c.Viewer.CacheCapacity = capacity
	}
}

// WithMaxDates caps retained dates on the test config.
func WithMaxDates(max int) ConfigOption {
	return func(c *config.Config) {
		c.Catalog.MaxDates = max
	}
}

// WithMaxSequences caps retained sequences per date on the test config.
func WithMaxSequences(max int) ConfigOption {
	return func(c *config.Config) {
		c.Catalog.MaxSequences = max
	}
}
