package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "proctrace"

// Metrics holds all Prometheus metrics of one chain process
type Metrics struct {
	registry *prometheus.Registry

	// Launch metrics
	Launches       *prometheus.CounterVec
	LaunchDuration *prometheus.HistogramVec

	// Work metrics
	WorkDuration *prometheus.HistogramVec

	// Export metrics
	SpansExported prometheus.Counter
	ExportErrors  prometheus.Counter

	// Process metrics
	ProcessInfo *prometheus.GaugeVec
	Uptime      prometheus.Gauge
	startTime   time.Time

	role string
	mu   sync.Mutex
}

// NewMetrics creates a metrics collector with a private registry
func NewMetrics(role string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	durationBuckets := []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

	return &Metrics{
		registry:  reg,
		role:      role,
		startTime: time.Now(),

		Launches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "launches_total",
				Help:      "Total number of spawned processes by outcome",
			},
			[]string{"outcome"},
		),
		LaunchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "launch_duration_seconds",
				Help:      "Time from spawning a process until it exited",
				Buckets:   durationBuckets,
			},
			[]string{"outcome"},
		),
		WorkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "work_duration_seconds",
				Help:      "Duration of the process's own unit of work",
				Buckets:   durationBuckets,
			},
			[]string{"outcome"},
		),
		SpansExported: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spans_exported_total",
				Help:      "Total number of spans written to the trace file",
			},
		),
		ExportErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "span_export_errors_total",
				Help:      "Total number of failed span export batches",
			},
		),
		ProcessInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "process_info",
				Help:      "Identity of the chain process; always 1",
			},
			[]string{"role", "lineage"},
		),
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "process_uptime_seconds",
				Help:      "Seconds since the process started",
			},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetLineage records the process's position in the trace tree
func (m *Metrics) SetLineage(lineage string) {
	m.ProcessInfo.WithLabelValues(m.role, lineage).Set(1)
}

// ObserveLaunch records a spawned process; it satisfies launcher.Recorder
func (m *Metrics) ObserveLaunch(_ string, outcome string, duration time.Duration) {
	m.Launches.WithLabelValues(outcome).Inc()
	m.LaunchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveExport records one export batch
func (m *Metrics) ObserveExport(spans int, err error) {
	if err != nil {
		m.ExportErrors.Inc()
		return
	}
	m.SpansExported.Add(float64(spans))
}

// updateUptime updates the uptime gauge
func (m *Metrics) updateUptime() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// WriteTextfile writes all metrics in the Prometheus text format
func (m *Metrics) WriteTextfile(path string) error {
	m.updateUptime()
	return prometheus.WriteToTextfile(path, m.registry)
}
