package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"station/internal/ipc"
	"station/internal/logging"
	"station/internal/settings"
)

func startServer(t *testing.T) (*settings.Store, *ipc.Client) {
	t.Helper()

	dir, err := os.MkdirTemp("", "station-ipc")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, _, err := settings.Open(filepath.Join(dir, ".settings"))
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(dir, "station.sock")
	srv, err := ipc.NewServer(ctx, socket, store, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	client, err := ipc.Dial(socket)
	if err != nil {
		srv.Close()
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		srv.Close()
	})
	return store, client
}

func TestIPCGetReturnsDefaults(t *testing.T) {
	store, client := startServer(t)

	resp, err := client.Get()
	if err != nil {
		t.Fatalf("Get RPC failed: %v", err)
	}
	if resp.Settings.Theme != settings.ThemeLight {
		t.Fatalf("expected light theme, got %q", resp.Settings.Theme)
	}
	if resp.Settings.File != store.Path() {
		t.Fatalf("expected file %q, got %q", store.Path(), resp.Settings.File)
	}
}

func TestIPCUpdatePersists(t *testing.T) {
	store, client := startServer(t)

	dark := settings.ThemeDark
	project := "/home/user/proj"
	resp, err := client.Update(settings.Partial{
		Theme:       &dark,
		LastProject: &project,
		Languages: map[settings.Language]settings.Record{
			settings.LanguagePython: {"path": "/usr/bin/python3"},
		},
	})
	if err != nil {
		t.Fatalf("Update RPC failed: %v", err)
	}
	if !resp.Saved {
		t.Fatal("expected saved response")
	}
	if resp.Path != store.Path() {
		t.Fatalf("unexpected path %q", resp.Path)
	}

	reopened, _, err := settings.Open(store.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	doc := reopened.Current()
	if doc.Theme != settings.ThemeDark || doc.LastProject != project {
		t.Fatalf("update not persisted: %+v", doc)
	}
	if doc.Languages[settings.LanguagePython]["path"] != "/usr/bin/python3" {
		t.Fatalf("language record not persisted: %+v", doc.Languages)
	}

	got, err := client.Get()
	if err != nil {
		t.Fatalf("Get RPC failed: %v", err)
	}
	if got.Settings.Theme != settings.ThemeDark {
		t.Fatalf("expected dark theme after update, got %q", got.Settings.Theme)
	}
}

func TestIPCUpdateRejectsInvalidSettings(t *testing.T) {
	_, client := startServer(t)

	negative := -1
	_, err := client.Update(settings.Partial{StdoutMaxSize: &negative})
	if err == nil {
		t.Fatal("expected invalid update to fail")
	}
	if !strings.Contains(err.Error(), "stdoutMaxSize") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestIPCUpdateCarriesWrongTypedFields(t *testing.T) {
	store, client := startServer(t)

	var update settings.Partial
	if err := update.UnmarshalJSON([]byte(`{"lastProject":"demo","languages":{"python":"x"}}`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	_, err := client.Update(update)
	if err == nil || !strings.Contains(err.Error(), "languages.python") {
		t.Fatalf("expected wrong-type rejection naming languages.python, got %v", err)
	}
	if store.Current().LastProject != "" {
		t.Fatal("rejected update must not change the document")
	}
}

func TestIPCStatus(t *testing.T) {
	store, client := startServer(t)

	resp, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if resp.PID != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), resp.PID)
	}
	if resp.SettingsPath != store.Path() || resp.State != string(settings.StateLoaded) {
		t.Fatalf("unexpected status response %+v", resp)
	}
}
