package testsupport

import (
	"testing"

	"station/internal/config"
	"station/internal/settings"
)

// MustOpenStore opens the settings store described by cfg.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...settings.Option) *settings.Store {
	t.Helper()

	theme, err := settings.ParseTheme(cfg.Settings.DefaultTheme)
	if err != nil {
		t.Fatalf("parse default theme: %v", err)
	}
	opts = append([]settings.Option{settings.WithDefaultTheme(theme)}, opts...)
	store, _, err := settings.Open(cfg.Settings.Path, opts...)
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}
	return store
}
