package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"station/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The state directory lives under a short temp path so Unix socket paths stay
// within the platform limit.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base, err := os.MkdirTemp("", "station")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(base) })

	cfgVal := config.Default()
	cfgVal.Settings.Path = filepath.Join(base, "project", ".settings")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithAPIToken sets the bearer token required by the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithoutAPI disables the HTTP API.
func WithoutAPI() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIBind = ""
	}
}

// WithUpdateRate overrides the HTTP update rate limit.
func WithUpdateRate(perSecond float64, burst int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.UpdateRatePerSecond = perSecond
		b.cfg.API.UpdateBurst = burst
	}
}

// WithDefaultTheme overrides the theme used for fresh settings documents.
func WithDefaultTheme(theme string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Settings.DefaultTheme = theme
	}
}
