// Package metrics records conversion run metrics and exports them in the
// node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for one conversion run.
//
// Collectors live on a private registry so every run (and every test) starts
// from zero.
//
// Metrics:
//   - reflectcsv_records_parsed_total - Records read from the input
//   - reflectcsv_records_skipped_total - Records dropped under the skip policy
//   - reflectcsv_tables_written_total - CSV files written
//   - reflectcsv_rows_written_total{reflection} - Rows written per reflection type
//   - reflectcsv_run_duration_seconds - Wall time of the last run
//   - reflectcsv_last_run_success_timestamp_seconds - Unix time of the last successful run
type Metrics struct {
	registry *prometheus.Registry

	RecordsParsed  prometheus.Counter
	RecordsSkipped prometheus.Counter
	TablesWritten  prometheus.Counter
	RowsWritten    *prometheus.CounterVec
	RunDuration    prometheus.Gauge
	LastSuccess    prometheus.Gauge
}

// New creates and registers the run metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RecordsParsed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "reflectcsv_records_parsed_total",
				Help: "Total number of reflection records parsed",
			},
		),

		RecordsSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "reflectcsv_records_skipped_total",
				Help: "Total number of records skipped for lacking a type name",
			},
		),

		TablesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "reflectcsv_tables_written_total",
				Help: "Total number of CSV files written",
			},
		),

		RowsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reflectcsv_rows_written_total",
				Help: "Total number of CSV rows written per reflection type",
			},
			[]string{"reflection"},
		),

		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "reflectcsv_run_duration_seconds",
				Help: "Duration of the last conversion run in seconds",
			},
		),

		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "reflectcsv_last_run_success_timestamp_seconds",
				Help: "Unix timestamp of the last successful conversion run",
			},
		),
	}
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordParsed records the outcome of parsing the input.
func (m *Metrics) RecordParsed(records, skipped int) {
	m.RecordsParsed.Add(float64(records))
	m.RecordsSkipped.Add(float64(skipped))
}

// RecordTable records one written table.
func (m *Metrics) RecordTable(reflection string, rows int) {
	m.TablesWritten.Inc()
	m.RowsWritten.WithLabelValues(reflection).Add(float64(rows))
}

// RecordRun records the run duration and, on success, the completion time.
func (m *Metrics) RecordRun(duration time.Duration, succeeded bool, now time.Time) {
	m.RunDuration.Set(duration.Seconds())
	if succeeded {
		m.LastSuccess.Set(float64(now.Unix()))
	}
}

// WriteTextfile writes every metric to path for the node-exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
