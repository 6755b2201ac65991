package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"delivery-analytics/internal/http/handlers"
	"delivery-analytics/internal/http/router"
	"delivery-analytics/internal/logx"
)

func newTestRouter() http.Handler {
	return router.New(
		handlers.New(),
		handlers.NewAnalyticsHandler(nil, nil),
		handlers.NewPerformanceHandler(nil),
		handlers.NewMembersHandler(nil),
		handlers.NewOrdersHandler(nil),
		logx.Nop(),
		nil,
	)
}

func TestNew_Ping(t *testing.T) {
	t.Parallel()

	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestNew_HealthcheckHead(t *testing.T) {
	t.Parallel()

	r := newTestRouter()

	req := httptest.NewRequest(http.MethodHead, "/healthcheck", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestNew_UnknownRouteIsJSON404(t *testing.T) {
	t.Parallel()

	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}

func TestNew_MetricsExposed(t *testing.T) {
	t.Parallel()

	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
