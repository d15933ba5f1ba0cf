package batch

import (
	"github.com/prometheus/client_golang/prometheus"

	"acadrun/internal/history"
)

// Metrics tracks batch outcomes in a private registry suitable for the
// node_exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	lastRun  prometheus.Gauge
}

// NewMetrics constructs an empty metrics set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acadrun_runs_total",
				Help: "Engine runs by final status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "acadrun_run_duration_seconds",
				Help:    "Wall time of individual engine runs",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "acadrun_last_batch_timestamp_seconds",
				Help: "Unix time the last batch finished",
			},
		),
	}
	m.registry.MustRegister(m.runs, m.duration, m.lastRun)
	for _, status := range history.AllStatuses() {
		m.runs.WithLabelValues(string(status))
	}
	return m
}

// Observe records one processed drawing.
func (m *Metrics) Observe(item Item) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(item.Status)).Inc()
	m.duration.Observe(item.Duration.Seconds())
}

// Finish stamps the batch completion time.
func (m *Metrics) Finish() {
	if m == nil {
		return
	}
	m.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
