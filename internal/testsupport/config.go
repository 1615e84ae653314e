package testsupport

import (
	"path/filepath"
	"testing"

	"rpgdecrypt/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LockDir = filepath.Join(base, "locks")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workers.RetryDelayMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMirror switches the test config to mirrored output.
func WithMirror() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Mode = config.ModeMirror
	}
}

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workers.Count = n
	}
}

// WithFlagPolicy overrides how manifest flags are cleared.
func WithFlagPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.FlagPolicy = policy
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LockDir)
}
