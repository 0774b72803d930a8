package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search backend and health bridge Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"driver", "op", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"driver", "op"},
	)

	HealthProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_probes_total",
			Help:      "Health probes by normalized status",
		},
		[]string{"status"},
	)

	RecordShapeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_shape_errors_total",
			Help:      "Record fields coerced during aggregation",
		},
		[]string{"field"},
	)
)

const namespace = "catalogdash"

var registerOnce sync.Once

// Register registers every catalogdash collector with the default registry. Must be
// called from main; repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestDuration,
			HTTPRequestsTotal,
			BackendRequestsTotal,
			BackendRequestDuration,
			HealthProbesTotal,
			RecordShapeErrorsTotal,
		)
	})
}

// ObserveBackend records the outcome and latency of one backend call.
func ObserveBackend(driver, op string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	BackendRequestsTotal.WithLabelValues(driver, op, status).Inc()
	BackendRequestDuration.WithLabelValues(driver, op).Observe(seconds)
}
