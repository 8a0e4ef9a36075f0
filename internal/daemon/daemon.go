package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"station/internal/config"
	"station/internal/logging"
	"station/internal/settings"
	"station/internal/telemetry"
)

// Daemon serves the settings store and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *settings.Store
	metrics *telemetry.Metrics
	api     *apiServer

	lockPath string
	lock     *InstanceLock
	// adopted locks belong to the caller and survive Stop.
	adopted bool

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	SettingsPath string
	StoreState   settings.State
	LockFilePath string
	APIAddress   string
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithInstanceLock hands the daemon a lock the caller already holds, so Start
// skips acquiring it and Stop leaves it to the caller to release.
func WithInstanceLock(lock *InstanceLock) Option {
	return func(d *Daemon) {
		if lock != nil {
			d.lock = lock
			d.lockPath = lock.Path()
			d.adopted = true
		}
	}
}

// New constructs a daemon around an opened settings store. A nil metrics
// value disables the /metrics endpoint.
func New(cfg *config.Config, store *settings.Store, metrics *telemetry.Metrics, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and settings store")
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	api, err := newAPIServer(cfg, store, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("configure api: %w", err)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		metrics:  metrics,
		api:      api,
		lockPath: cfg.LockPath(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the daemon lock and starts the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if !d.adopted {
		lock, err := AcquireLock(d.lockPath)
		if err != nil {
			return err
		}
		d.lock = lock
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		d.releaseLock()
		return fmt.Errorf("start api: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("station daemon started",
		logging.String("lock", d.lockPath),
		logging.String("settings_file", d.store.Path()),
		logging.Bool("api_enabled", d.api != nil))
	return nil
}

// Stop shuts down the API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("station daemon stopped")
}

func (d *Daemon) releaseLock() {
	if d.adopted {
		return
	}
	if err := d.lock.Release(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_unlock_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next daemon start may report an existing instance"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no daemon is running"))
	}
	d.lock = nil
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		SettingsPath: d.store.Path(),
		StoreState:   d.store.State(),
		LockFilePath: d.lockPath,
		APIAddress:   d.api.addr(),
	}
}
