package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-analytics/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter     `name:"rate_limit_exceeded_total"`
	StoreRetriesTotal      prometheus.Counter     `name:"store_retries_total"`
	AnalysisRequestsTotal  *prometheus.CounterVec `name:"analysis_requests_total"`
	OrderEventsTotal       *prometheus.CounterVec `name:"order_events_total"`
}

// provideMetrics registers the service counters on the default registry.
// A collector that is already registered (tests, restarts within one
// process) is reused instead of failing.
func provideMetrics() (metricsOut, error) {
	rateLimit, err := registerCollector("rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal())
	if err != nil {
		return metricsOut{}, err
	}
	storeRetries, err := registerCollector("store_retries_total", metrics.NewStoreRetriesTotal())
	if err != nil {
		return metricsOut{}, err
	}
	analysisRequests, err := registerCollector("analysis_requests_total", metrics.NewAnalysisRequestsTotal())
	if err != nil {
		return metricsOut{}, err
	}
	orderEvents, err := registerCollector("order_events_total", metrics.NewOrderEventsTotal())
	if err != nil {
		return metricsOut{}, err
	}

	return metricsOut{
		RateLimitExceededTotal: rateLimit.(prometheus.Counter),
		StoreRetriesTotal:      storeRetries.(prometheus.Counter),
		AnalysisRequestsTotal:  analysisRequests.(*prometheus.CounterVec),
		OrderEventsTotal:       orderEvents.(*prometheus.CounterVec),
	}, nil
}

func registerCollector(name string, c prometheus.Collector) (prometheus.Collector, error) {
	err := prometheus.DefaultRegisterer.Register(c)
	if err == nil {
		return c, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return already.ExistingCollector, nil
	}
	return nil, fmt.Errorf("register %s: %w", name, err)
}
