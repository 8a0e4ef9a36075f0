package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"station/internal/testsupport"
)

func TestStatusCommandReportsRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	requireContains(t, out, "[OK] running")
	requireContains(t, out, strconv.Itoa(os.Getpid()))
	requireContains(t, out, env.cfg.Settings.Path)
	requireContains(t, out, env.cfg.LogPath())
}

func TestStatusCommandWithoutDaemon(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(filepath.Dir(cfg.Paths.StateDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, []string{"status"}, cfg.SocketPath(), configPath)
	if err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	requireContains(t, out, "[WARN] not running")
	requireContains(t, out, cfg.Settings.Path)
}

func TestStopCommandWithoutDaemon(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(filepath.Dir(cfg.Paths.StateDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, []string{"stop"}, cfg.SocketPath(), configPath)
	if err != nil {
		t.Fatalf("stop command failed: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}

func TestLogsCommandPrintsTail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(filepath.Dir(cfg.Paths.StateDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	var content strings.Builder
	for i := 1; i <= 5; i++ {
		content.WriteString("line " + strconv.Itoa(i) + "\n")
	}
	testsupport.WriteFile(t, cfg.LogPath(), content.String())

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, "", configPath)
	if err != nil {
		t.Fatalf("logs command failed: %v", err)
	}
	if out != "line 4\nline 5\n" {
		t.Fatalf("unexpected logs output %q", out)
	}
}

func TestLogsCommandMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(filepath.Dir(cfg.Paths.StateDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	_, _, err := runCLI(t, []string{"logs"}, "", configPath)
	if err == nil || !strings.Contains(err.Error(), "no log file") {
		t.Fatalf("expected missing log error, got %v", err)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STATION_NTFY_TOPIC", "")
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(filepath.Dir(cfg.Paths.StateDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, []string{"test-notify"}, "", configPath)
	if err != nil {
		t.Fatalf("test-notify failed: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}
