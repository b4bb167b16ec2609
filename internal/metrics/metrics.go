// Package metrics holds the Prometheus instruments of a collection run.
//
// The CLI is short-lived, so nothing is served over HTTP: when METRICS_TEXTFILE
// is set the default registry is written in text exposition format at the end
// of each command, for pickup by node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch results
const (
	FetchOK             = "ok"
	FetchHTTPError      = "http_error"
	FetchTransportError = "transport_error"
)

var (
	PageFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nicodb_page_fetch_duration_seconds",
			Help:    "Duration of program page requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PageFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nicodb_page_fetch_total",
			Help: "Total number of program page requests by result",
		},
		[]string{"result"}, // "ok", "http_error", "transport_error"
	)

	// PipelineOutcomes counts single-id runs: stored, recovered or failed
	PipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nicodb_pipeline_outcomes_total",
			Help: "Total number of single program runs by outcome",
		},
		[]string{"outcome"},
	)

	PipelineFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nicodb_pipeline_failures_total",
			Help: "Total number of failed program runs by failing stage",
		},
		[]string{"stage"}, // "fetch", "extract", "decode", "normalize", "persist"
	)

	StreamerNamesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nicodb_streamer_names_recorded_total",
			Help: "Total number of streamer rows appended (first sight or rename)",
		},
	)
)

// RecordFetch records one page request
func RecordFetch(result string, duration time.Duration) {
	PageFetchTotal.WithLabelValues(result).Inc()
	PageFetchDuration.Observe(duration.Seconds())
}

// RecordOutcome records how a single-id run finished
func RecordOutcome(outcome string) {
	PipelineOutcomes.WithLabelValues(outcome).Inc()
}

// RecordFailure records the stage at which a single-id run failed
func RecordFailure(stage string) {
	PipelineOutcomes.WithLabelValues("failed").Inc()
	PipelineFailures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes every registered metric to path in text format
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
