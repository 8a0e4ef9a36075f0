package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"station/internal/logging"
	"station/internal/settings"
)

const publishTimeout = 15 * time.Second

// Observer forwards settings store failures to a Service. Publishing happens
// off the store's goroutine; Close waits for in-flight sends.
type Observer struct {
	svc    Service
	path   string
	logger *slog.Logger
	wg     sync.WaitGroup
}

var _ settings.Observer = (*Observer)(nil)

// NewObserver returns an Observer reporting on the settings file at path.
func NewObserver(svc Service, path string, logger *slog.Logger) *Observer {
	if svc == nil {
		svc = noopService{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Observer{
		svc:    svc,
		path:   path,
		logger: logging.NewComponentLogger(logger, "notifications"),
	}
}

func (o *Observer) Loaded(status settings.LoadStatus) {
	if status != settings.LoadRecovered {
		return
	}
	o.publish(EventSettingsRecovered, Payload{"path": o.path})
}

func (o *Observer) Saved(err error) {
	if err == nil {
		return
	}
	o.publish(EventSettingsSaveFailed, Payload{"path": o.path, "error": err})
}

func (o *Observer) Migrated(string) {}

func (o *Observer) UpdateRejected() {}

// Close blocks until every pending notification has been attempted.
func (o *Observer) Close() {
	o.wg.Wait()
}

func (o *Observer) publish(event Event, payload Payload) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := o.svc.Publish(ctx, event, payload); err != nil {
			logging.WarnWithContext(o.logger, "notification delivery failed", "notification_failed",
				logging.String("event", string(event)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
			)
		}
	}()
}
