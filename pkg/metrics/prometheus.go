package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	seriesFetched *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	panelRows     prometheus.Gauge
	lastPanelDate prometheus.Gauge
	runDuration   *prometheus.HistogramVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvepull_pipeline_runs_total",
				Help: "Total pipeline runs by result",
			},
			[]string{"result"},
		),
		seriesFetched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvepull_series_observations_fetched_total",
				Help: "Raw observations fetched per source and series",
			},
			[]string{"source", "series"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvepull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		panelRows: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "curvepull_panel_rows",
				Help: "Row count of the last processed panel",
			},
		),
		lastPanelDate: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "curvepull_panel_last_date_seconds",
				Help: "Unix time of the last date in the processed panel",
			},
		),
		runDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curvepull_pipeline_run_duration_seconds",
				Help:    "Duration of full pipeline runs",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"result"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curvepull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records a pipeline run with its result and duration.
func (r *Recorder) RecordRun(result string, seconds float64) {
	r.runsTotal.WithLabelValues(result).Inc()
	r.runDuration.WithLabelValues(result).Observe(seconds)
}

// RecordSeriesFetched records raw observations pulled for a series.
func (r *Recorder) RecordSeriesFetched(source, series string, rows int) {
	r.seriesFetched.WithLabelValues(source, series).Add(float64(rows))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// SetPanelRows records the processed panel's row count.
func (r *Recorder) SetPanelRows(n int) {
	r.panelRows.Set(float64(n))
}

// SetLastPanelDate records the most recent date covered by the panel.
func (r *Recorder) SetLastPanelDate(t time.Time) {
	r.lastPanelDate.Set(float64(t.Unix()))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
