package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the request and operation collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// RequestsTotal counts wrapped requests
	// labels: operation, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes request latency in milliseconds
	// labels: operation
	RequestDuration *prometheus.HistogramVec

	// OperationDuration observes measured operations in milliseconds
	// labels: operation, outcome
	OperationDuration *prometheus.HistogramVec
}

var durationBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_ms",
				Help:      "HTTP request duration in milliseconds",
				Buckets:   durationBuckets,
			},
			[]string{"operation"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_ms",
				Help:      "Measured operation duration in milliseconds",
				Buckets:   durationBuckets,
			},
			[]string{"operation", "outcome"},
		),
	}
}

// RecordRequest records one completed request
func (m *Metrics) RecordRequest(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}

// RecordOperation records one measured operation
func (m *Metrics) RecordOperation(operation string, failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.OperationDuration.WithLabelValues(operation, outcome).Observe(float64(duration.Milliseconds()))
}
