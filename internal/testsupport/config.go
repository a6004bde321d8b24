package testsupport

import (
	"path/filepath"
	"testing"

	"easel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The listen address uses an ephemeral port so parallel tests never collide.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfg.Paths.DerivedDir = filepath.Join(base, "derived")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ListenAddr = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWatchDir enables the drop-directory watcher on the test config.
func WithWatchDir(dir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Watch.Enabled = true
		cfg.Watch.Dir = dir
	}
}

// WithNtfyTopic points push notifications at the given endpoint.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}
