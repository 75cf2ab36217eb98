package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// portOperationDuration tracks persistence port call latency.
	// Labels: entity, operation
	portOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "entity_port_operation_duration_seconds",
			Help:    "Persistence port operation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"entity", "operation"},
	)

	portOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_port_operation_errors_total",
			Help: "Total number of failed persistence port operations",
		},
		[]string{"entity", "operation"},
	)
)

// RecordPortOperation records one port call. Not-found reads are reported by
// the caller as successes.
func RecordPortOperation(entity, operation string, duration time.Duration, failed bool) {
	portOperationDuration.WithLabelValues(entity, operation).Observe(duration.Seconds())
	if failed {
		portOperationErrors.WithLabelValues(entity, operation).Inc()
	}
}
