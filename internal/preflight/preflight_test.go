package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"station/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSettingsFile(t *testing.T) {
	dir := t.TempDir()

	missing := CheckSettingsFile("settings", filepath.Join(dir, ".settings"))
	if !missing.Passed {
		t.Fatalf("missing settings file should pass, got: %s", missing.Detail)
	}

	path := filepath.Join(dir, "present")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckSettingsFile("settings", path); !result.Passed {
		t.Fatalf("expected pass for writable file, got: %s", result.Detail)
	}

	if result := CheckSettingsFile("settings", dir); result.Passed {
		t.Fatal("expected failure for a directory")
	}
}

func TestRunAllReportsMissingStateDir(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Settings.Path = filepath.Join(base, ".settings")
	cfg.Paths.StateDir = filepath.Join(base, "missing")

	results := RunAll(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "State directory" {
		t.Fatalf("expected only the state directory to fail, got %+v", failed)
	}
}
