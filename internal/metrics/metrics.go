// Package metrics provides Prometheus metrics for the analysis pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// Loader metrics
	RowsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "manufacturer_finder_rows_loaded_total",
			Help: "Total number of part rows that survived loading",
		},
	)

	RowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "manufacturer_finder_rows_dropped_total",
			Help: "Total number of input rows dropped for a missing part number or description",
		},
	)

	// Finder metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manufacturer_finder_analyses_total",
			Help: "Total number of part analyses by outcome",
		},
		[]string{"status"},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "manufacturer_finder_completion_duration_seconds",
			Help:    "Duration of completion service calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manufacturer_finder_runs_total",
			Help: "Total number of batch runs by front end and outcome",
		},
		[]string{"frontend", "status"},
	)
)

// RecordLoad records the rows kept and dropped by one load.
func RecordLoad(kept, dropped int) {
	RowsLoaded.Add(float64(kept))
	RowsDropped.Add(float64(dropped))
}

// RecordAnalysis records the outcome of one part analysis.
func RecordAnalysis(err error) {
	AnalysesTotal.WithLabelValues(statusOf(err)).Inc()
}

// RecordCompletion records the latency of one completion call.
func RecordCompletion(provider string, d time.Duration) {
	CompletionDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordRun records the outcome of a batch run.
func RecordRun(frontend string, err error) {
	RunsTotal.WithLabelValues(frontend, statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
