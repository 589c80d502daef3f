// Package metrics exposes importer counters on a private Prometheus registry.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session outcomes used as the status label.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusNotFound = "not_found"
)

// Config controls batch metric export.
type Config struct {
	Textfile string `koanf:"textfile" yaml:"textfile"`
}

var defaultBuckets = []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// Manager owns the importer metrics. A nil Manager is valid and records
// nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	sessions         *prometheus.CounterVec
	lapsInserted     prometheus.Counter
	lapsSkipped      prometheus.Counter
	pitStopsInserted prometheus.Counter
	telemetryMissing prometheus.Counter
	sessionDuration  prometheus.Histogram
}

// NewManager creates a manager on a fresh registry unless WithRegistry is
// given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "paddock",
		subsystem:        "import",
		histogramBuckets: defaultBuckets,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.sessions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_total",
		Help:      "Session imports by outcome.",
	}, []string{"status"})
	m.lapsInserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "laps_inserted_total",
		Help:      "Laps written by committed session imports.",
	})
	m.lapsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "laps_skipped_total",
		Help:      "Laps dropped because their driver was not in the results.",
	})
	m.pitStopsInserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pit_stops_inserted_total",
		Help:      "Pit stops written by committed session imports.",
	})
	m.telemetryMissing = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "telemetry_missing_total",
		Help:      "Laps stored without a telemetry summary.",
	})
	m.sessionDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_duration_seconds",
		Help:      "Wall time of one session import, fetch included.",
		Buckets:   m.histogramBuckets,
	})
	return m
}

// SessionDone records the outcome and duration of one session import.
func (m *Manager) SessionDone(status string, elapsed time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.sessions.WithLabelValues(status).Inc()
	m.sessionDuration.Observe(elapsed.Seconds())
}

// LapsWritten records the lap counters of a committed session.
func (m *Manager) LapsWritten(inserted, skipped, pitStops, noTelemetry int) {
	if m == nil || !m.enabled {
		return
	}
	m.lapsInserted.Add(float64(inserted))
	m.lapsSkipped.Add(float64(skipped))
	m.pitStopsInserted.Add(float64(pitStops))
	m.telemetryMissing.Add(float64(noTelemetry))
}

// Registry returns the registry backing the manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WriteTextfile writes the registry for the node exporter textfile
// collector. An empty path is a no-op.
func (m *Manager) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
