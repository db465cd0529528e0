package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for one gaa-etl process. Each instance owns
// its registry so the run can be dumped to a node_exporter textfile.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
	entities *prometheus.GaugeVec
	files    prometheus.Counter
}

// NewMetrics registers the stage metrics against a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gaa_etl_stage_runs_total",
		Help: "Total stage executions partitioned by stage and status.",
	}, []string{"stage", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gaa_etl_stage_failures_total",
		Help: "Total failures observed per stage.",
	}, []string{"stage"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gaa_etl_stage_duration_seconds",
		Help:    "Duration in seconds of each stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gaa_etl_rows_total",
		Help: "Line-item rows read, partitioned by outcome.",
	}, []string{"outcome"})
	entities := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gaa_etl_entities",
		Help: "Entities emitted in the last run per aggregate level.",
	}, []string{"level"})
	files := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gaa_etl_files_written_total",
		Help: "Output files written.",
	})
	registry.MustRegister(runs, failures, duration, rows, entities, files)
	return &Metrics{
		registry: registry,
		runs:     runs,
		failures: failures,
		duration: duration,
		rows:     rows,
		entities: entities,
		files:    files,
	}
}

// Tracker provides lifecycle instrumentation helpers for a single stage.
type Tracker struct {
	metrics *Metrics
	stage   string
	start   time.Time
}

// Track spawns a tracker for the given stage name.
func (m *Metrics) Track(stage string) *Tracker {
	return &Tracker{metrics: m, stage: stage, start: time.Now()}
}

// End finalises the tracker, recording duration, success/failure counts and
// returning the provided error untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.stage == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.stage).Inc()
	}
	t.metrics.runs.WithLabelValues(t.stage, status).Inc()
	t.metrics.duration.WithLabelValues(t.stage).Observe(time.Since(t.start).Seconds())
	return err
}

// AddRows records rows by outcome ("accepted", "invalid_year"...).
func (m *Metrics) AddRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(outcome).Add(float64(n))
}

// SetEntities records the size of an emitted level.
func (m *Metrics) SetEntities(level string, n int) {
	if m == nil {
		return
	}
	m.entities.WithLabelValues(level).Set(float64(n))
}

// AddFiles counts written output files.
func (m *Metrics) AddFiles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.files.Add(float64(n))
}

// Registry exposes the underlying gatherer.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps every collector in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
