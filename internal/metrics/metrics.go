// Package metrics holds the Prometheus instruments the service registers
// beyond the generic HTTP middleware ones.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewStoreRetriesTotal returns a Prometheus counter for the number of retried store queries
func NewStoreRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_retries_total",
		Help: "Total number of retry attempts performed against the order store",
	})
}

// NewAnalysisRequestsTotal returns a Prometheus counter vector of analysis
// operations by name.
func NewAnalysisRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_requests_total",
		Help: "Total number of analysis operations served, by operation",
	}, []string{"operation"})
}

// NewOrderEventsTotal returns a Prometheus counter vector of consumed order
// lifecycle events by action.
func NewOrderEventsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_total",
		Help: "Total number of order lifecycle events consumed from Kafka, by action",
	}, []string{"action"})
}

// OrderEventRecorder adapts the order events counter vector to the events
// service port.
type OrderEventRecorder struct {
	vec *prometheus.CounterVec
}

// NewOrderEventRecorder wraps a counter vector.
func NewOrderEventRecorder(vec *prometheus.CounterVec) *OrderEventRecorder {
	return &OrderEventRecorder{vec: vec}
}

// IncOrderEvent counts one consumed event.
func (r *OrderEventRecorder) IncOrderEvent(action string) {
	r.vec.WithLabelValues(action).Inc()
}
