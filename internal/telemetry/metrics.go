// Package telemetry exposes Prometheus metrics for the settings store and the
// HTTP API.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"station/internal/settings"
)

const namespace = "station"

// Metrics owns a private registry and the collectors registered on it.
// It implements settings.Observer.
type Metrics struct {
	registry *prometheus.Registry

	loads           *prometheus.CounterVec
	saves           *prometheus.CounterVec
	migrations      *prometheus.CounterVec
	rejectedUpdates prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New builds a Metrics instance. Runtime collectors are included only when
// withRuntime is set so tests can assert on a small registry.
func New(withRuntime bool) *Metrics {
	registry := prometheus.NewRegistry()
	if withRuntime {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	m := &Metrics{
		registry: registry,
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "loads_total",
			Help:      "Settings file loads by outcome.",
		}, []string{"status"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "saves_total",
			Help:      "Settings file saves by result.",
		}, []string{"result"}),
		migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "migrations_total",
			Help:      "Legacy settings fields migrated, by legacy key.",
		}, []string{"legacy_key"}),
		rejectedUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "rejected_updates_total",
			Help:      "Updates rejected because they left settings invalid.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	registry.MustRegister(m.loads, m.saves, m.migrations, m.rejectedUpdates, m.requests, m.requestDuration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Loaded(status settings.LoadStatus) {
	m.loads.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) Saved(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
}

func (m *Metrics) Migrated(legacyKey string) {
	m.migrations.WithLabelValues(legacyKey).Inc()
}

func (m *Metrics) UpdateRejected() {
	m.rejectedUpdates.Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

var _ settings.Observer = (*Metrics)(nil)
