package pipeline

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks pipeline activity per stage. Imputation and row drops
// are data-quality signals, surfaced rather than hidden.
type Metrics struct {
	reg *prometheus.Registry

	RunsTotal     prometheus.Counter
	RunsFailed    prometheus.Counter
	RowsFlattened prometheus.Counter
	RowsLoaded    prometheus.Counter
	RowsDropped   prometheus.Counter
	StageFailures *prometheus.CounterVec
	StageSeconds  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "etl_runs_total"})
	runsFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "etl_runs_failed_total"})
	flattened := prometheus.NewCounter(prometheus.CounterOpts{Name: "etl_rows_flattened_total"})
	loaded := prometheus.NewCounter(prometheus.CounterOpts{Name: "etl_rows_loaded_total"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "etl_rows_dropped_total"})
	stageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "etl_stage_failures_total"}, []string{"stage"})
	stageSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "etl_stage_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	reg.MustRegister(runs, runsFailed, flattened, loaded, dropped, stageFailures, stageSeconds)

	return &Metrics{
		reg:           reg,
		RunsTotal:     runs,
		RunsFailed:    runsFailed,
		RowsFlattened: flattened,
		RowsLoaded:    loaded,
		RowsDropped:   dropped,
		StageFailures: stageFailures,
		StageSeconds:  stageSeconds,
	}
}

// Handler exposes the registry for a /metrics endpoint in daemon mode.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
