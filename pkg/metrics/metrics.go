// Package metrics provides Prometheus observability for the engine. It
// exposes pre-registered collectors for aggregation calls, kernel
// dispatch, and memory pool behavior, plus a timer helper for latency
// histograms.
//
// Metrics are recorded at operation granularity, never inside hot loops.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregationsTotal counts group-by calls by chosen strategy and outcome.
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quiver",
			Subsystem: "groupby",
			Name:      "aggregations_total",
			Help:      "Group-by aggregation calls by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	// RowsAggregated counts input rows consumed by group-by calls.
	RowsAggregated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quiver",
			Subsystem: "groupby",
			Name:      "rows_total",
			Help:      "Input rows consumed by group-by aggregations, by strategy.",
		},
		[]string{"strategy"},
	)

	// AggregationLatency tracks group-by call duration by strategy.
	AggregationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quiver",
			Subsystem: "groupby",
			Name:      "duration_seconds",
			Help:      "Group-by aggregation latency by strategy.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"strategy"},
	)
)

// RecordAggregation records one completed group-by call.
func RecordAggregation(strategy string, rows int, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AggregationsTotal.WithLabelValues(strategy, outcome).Inc()
	if err == nil {
		RowsAggregated.WithLabelValues(strategy).Add(float64(rows))
		AggregationLatency.WithLabelValues(strategy).Observe(d.Seconds())
	}
}

// Timer measures one operation's wall time.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed time since the timer started.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
