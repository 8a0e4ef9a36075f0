// Package daemonrun assembles and runs the station daemon process.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"station/internal/config"
	"station/internal/daemon"
	"station/internal/ipc"
	"station/internal/logging"
	"station/internal/notifications"
	"station/internal/preflight"
	"station/internal/settings"
	"station/internal/telemetry"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// OnReady, when set, is called once the store is loaded and both the
	// IPC and HTTP surfaces are accepting requests.
	OnReady func(daemon.Status)
}

// Run starts the station daemon and blocks until the context is canceled or
// the process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	sessionID := uuid.NewString()
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.LogPath()},
		Development: opts.Development,
		SessionID:   sessionID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logPreflight(logger, preflight.RunAll(cfg))

	theme, err := settings.ParseTheme(cfg.Settings.DefaultTheme)
	if err != nil {
		return fmt.Errorf("default theme: %w", err)
	}

	// Held before the store opens so a second daemon never touches the file.
	lock, err := daemon.AcquireLock(cfg.LockPath())
	if err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(logger, "failed to release daemon lock", "daemon_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next daemon start may report an existing instance"),
				logging.String(logging.FieldErrorHint, "remove the lock file if no daemon is running"))
		}
	}()

	metrics := telemetry.New(true)
	notifier := notifications.NewObserver(notifications.NewService(cfg), cfg.Settings.Path, logger)
	defer notifier.Close()

	store, result, err := settings.Open(cfg.Settings.Path,
		settings.WithLogger(logger),
		settings.WithObserver(settings.Observers(metrics, notifier)),
		settings.WithDefaultTheme(theme),
	)
	if err != nil {
		logging.ErrorWithContext(logger, "open settings store", "settings_load_failed",
			logging.String("path", cfg.Settings.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the settings file"))
		return err
	}
	logLoadResult(logger, result)
	if len(result.Migrated) > 0 {
		if err := store.Save(); err != nil {
			logging.WarnWithContext(logger, "failed to persist migrated settings", "settings_migration_save_failed",
				logging.Strings("migrated", result.Migrated),
				logging.Error(err),
				logging.String(logging.FieldImpact, "legacy fields are migrated again on next start"),
				logging.String(logging.FieldErrorHint, "check permissions on the settings file"))
		}
	}

	d, err := daemon.New(cfg, store, metrics, logger, daemon.WithInstanceLock(lock))
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	if _, err := store.EnsureID(); err != nil {
		logging.WarnWithContext(logger, "failed to persist settings identifier", "settings_id_save_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "a new identifier will be generated on next start"),
			logging.String(logging.FieldErrorHint, "check permissions on the settings directory"))
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), store, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if opts.OnReady != nil {
		opts.OnReady(d.Status())
	}

	<-signalCtx.Done()
	logger.Info("station daemon shutting down")
	return nil
}

func logPreflight(logger *slog.Logger, results []preflight.Result) {
	for _, r := range preflight.Failed(results) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, "settings may fail to load or save"),
			logging.String(logging.FieldErrorHint, "fix directory permissions and restart the daemon"))
	}
}

func logLoadResult(logger *slog.Logger, res settings.LoadResult) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "settings_loaded"),
		logging.String("status", string(res.Status)),
		logging.String("path", res.Document.File),
	}
	if res.BackupPath != "" {
		attrs = append(attrs, logging.String("backup_path", res.BackupPath))
	}
	if len(res.Migrated) > 0 {
		attrs = append(attrs, logging.Strings("migrated", res.Migrated))
	}
	if len(res.Sanitized) > 0 {
		attrs = append(attrs, logging.Strings("sanitized", res.Sanitized))
	}
	logger.Info("settings loaded", logging.Args(attrs...)...)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
