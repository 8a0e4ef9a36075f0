package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"station/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()
	chdir(t, work)
	return work
}

func TestLoadDefaultsResolveSettingsInWorkingDirectory(t *testing.T) {
	work := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}

	realWork, _ := filepath.EvalSymlinks(work)
	gotDir, _ := filepath.EvalSymlinks(filepath.Dir(cfg.Settings.Path))
	if gotDir != realWork || filepath.Base(cfg.Settings.Path) != ".settings" {
		t.Fatalf("settings path = %q, want .settings in %q", cfg.Settings.Path, work)
	}
	if cfg.Settings.DefaultTheme != "light" {
		t.Fatalf("default theme = %q", cfg.Settings.DefaultTheme)
	}
	home := os.Getenv("HOME")
	if cfg.Paths.StateDir != filepath.Join(home, ".local", "share", "station") {
		t.Fatalf("state dir = %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7488" {
		t.Fatalf("api bind = %q", cfg.Paths.APIBind)
	}
	if cfg.SocketPath() != filepath.Join(cfg.Paths.StateDir, "station.sock") {
		t.Fatalf("socket path = %q", cfg.SocketPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("state dir not created: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "station.toml")

	type payload struct {
		Settings struct {
			Path         string `toml:"path"`
			DefaultTheme string `toml:"default_theme"`
		} `toml:"settings"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Settings.Path = "~/station/settings.json"
	custom.Settings.DefaultTheme = "Dark"
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "debug"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	want := filepath.Join(os.Getenv("HOME"), "station", "settings.json")
	if cfg.Settings.Path != want {
		t.Fatalf("settings path = %q, want %q", cfg.Settings.Path, want)
	}
	if cfg.Settings.DefaultTheme != "dark" {
		t.Fatalf("default theme = %q", cfg.Settings.DefaultTheme)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.API.UpdateBurst != config.Default().API.UpdateBurst {
		t.Fatalf("api defaults not kept: %+v", cfg.API)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "station.toml")
	if err := os.WriteFile(configPath, []byte("[settings]\npaht = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	target := filepath.Join(t.TempDir(), "env.settings")
	t.Setenv("STATION_SETTINGS_FILE", target)
	t.Setenv("STATION_API_TOKEN", " secret ")
	t.Setenv("STATION_LOG_LEVEL", "WARN")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Settings.Path != target {
		t.Fatalf("settings path = %q, want %q", cfg.Settings.Path, target)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("api token = %q", cfg.Paths.APIToken)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestDotEnvFileIsRead(t *testing.T) {
	work := isolate(t)
	// godotenv does not override variables that are already set.
	t.Setenv("STATION_STATE_DIR", "")
	os.Unsetenv("STATION_STATE_DIR")
	stateDir := filepath.Join(work, "state")
	if err := os.WriteFile(filepath.Join(work, ".env"), []byte("STATION_STATE_DIR="+stateDir+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	gotDir, _ := filepath.EvalSymlinks(filepath.Dir(cfg.Paths.StateDir))
	wantDir, _ := filepath.EvalSymlinks(work)
	if gotDir != wantDir || filepath.Base(cfg.Paths.StateDir) != "state" {
		t.Fatalf("state dir = %q, want %q", cfg.Paths.StateDir, stateDir)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := map[string]func(*config.Config){
		"theme":     func(c *config.Config) { c.Settings.DefaultTheme = "blue" },
		"bind":      func(c *config.Config) { c.Paths.APIBind = "no-port" },
		"log level": func(c *config.Config) { c.Logging.Level = "verbose" },
		"ntfy":      func(c *config.Config) { c.Notifications.NtfyTopic = "ntfy.sh/topic" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Settings.Path = "/tmp/.settings"
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNotificationsFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("STATION_NTFY_TOPIC", " https://ntfy.example/station ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/station" {
		t.Fatalf("ntfy topic = %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Notifications.RequestTimeout != 10 {
		t.Fatalf("request timeout = %d", cfg.Notifications.RequestTimeout)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolate(t)
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[settings]") {
		t.Fatalf("sample missing settings section: %s", data)
	}
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("sample config should load: exists=%v err=%v", exists, err)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		t.Setenv("PWD", abs)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
