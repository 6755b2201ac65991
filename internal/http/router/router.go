package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delivery-analytics/internal/http/handlers"
	appmw "delivery-analytics/internal/http/middleware"
	"delivery-analytics/internal/http/middleware/ratelimit"
	"delivery-analytics/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	h *handlers.Handlers,
	an *handlers.AnalyticsHandler,
	perf *handlers.PerformanceHandler,
	mem *handlers.MembersHandler,
	ord *handlers.OrdersHandler,
	logger logx.Logger,
	limiter *ratelimit.Middleware,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Observability(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	if limiter != nil {
		r.Use(limiter.Handler())
	}

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dimensions", an.Dimensions)
			r.Get("/trends", an.Trends)
			r.Get("/durations", an.Durations)
			r.Get("/stages", an.Stages)
		})

		r.Route("/couriers", func(r chi.Router) {
			r.Get("/rankings/orders", perf.ByOrderCount)
			r.Get("/rankings/earnings", perf.ByEarnings)
			r.Get("/rankings/duration", perf.ByDuration)
			r.Get("/trend", perf.Trend)
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/rankings/frequency", mem.ByFrequency)
			r.Get("/rankings/spending", mem.BySpending)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ord.List)
			r.Get("/by-time", ord.ByTimeRange)
			r.Get("/by-fee", ord.ByFeeRange)
			r.Get("/by-distance", ord.ByDistance)
			r.Get("/by-reservation", ord.ByReservation)
			r.Get("/number/{number}", ord.GetByNumber)
			r.Get("/{id}", ord.GetByID)
		})
	})

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
