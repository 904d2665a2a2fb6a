package testsupport

import (
	"path/filepath"
	"testing"

	"rollcall/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Source.URL = "https://sheets.example.com/export"
	cfg.Append.URL = "https://script.example.com/exec"
	cfg.Append.DefaultAuthor = "tester"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSourceURL overrides the record source endpoint on the test config.
func WithSourceURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Source.URL = url
	}
}

// WithAppendURL overrides the append endpoint on the test config.
func WithAppendURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Append.URL = url
	}
}

// WithResyncDelay overrides the post-append resync delay in milliseconds.
func WithResyncDelay(ms int) ConfigOption {
	return func(c *config.Config) {
		c.Sync.ResyncDelayMS = ms
	}
}
