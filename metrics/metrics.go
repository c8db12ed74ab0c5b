// Package metrics records export run metrics with Prometheus collectors.
//
// A run is a short-lived batch job, so metrics are not scraped over HTTP.
// Register a [Recorder] on a registry, pass it to the pipeline with
// export.WithRecorder, and call [WriteTextfile] when the run finishes to hand
// the samples to the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/faretracker/fareexport/export"
	"github.com/faretracker/fareexport/types"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fareexport"

// Recorder implements export.Recorder with Prometheus collectors.
type Recorder struct {
	days          *prometheus.CounterVec
	rowsWritten   prometheus.Counter
	queryDuration *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_total",
			Help:      "Days processed by the export, by outcome.",
		}, []string{"status"}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "CSV data rows written across all day files.",
		}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of partition queries against the store.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{r.days, r.rowsWritten, r.queryDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register export metrics: %w", err)
		}
	}

	// Expose every status with a zero value from the start.
	for _, status := range []export.Status{export.StatusFetched, export.StatusSkipped, export.StatusFailed} {
		r.days.WithLabelValues(string(status))
	}

	return r, nil
}

func (r *Recorder) ObserveQuery(_ types.DayKey, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	r.queryDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (r *Recorder) DayCompleted(status export.Status, rows int) {
	r.days.WithLabelValues(string(status)).Inc()

	if rows > 0 {
		r.rowsWritten.Add(float64(rows))
	}
}

// WriteTextfile writes all metrics gathered from g to path in the Prometheus
// text format. The file is written atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}

	return nil
}
