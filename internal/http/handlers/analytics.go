package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalyticsHandler serves the multi-dimensional order analytics endpoints.
type AnalyticsHandler struct {
	uc       analyticsUsecase
	requests *prometheus.CounterVec
}

// NewAnalyticsHandler wires an analyticsUsecase into HTTP handlers. The
// counter vector tracks served operations by name.
func NewAnalyticsHandler(uc analyticsUsecase, requests *prometheus.CounterVec) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc, requests: requests}
}

func (h *AnalyticsHandler) count(operation string) {
	if h.requests != nil {
		h.requests.WithLabelValues(operation).Inc()
	}
}

// Dimensions handles GET /api/analytics/dimensions.
func (h *AnalyticsHandler) Dimensions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	dims := dimensionsFromQuery(q)

	h.count("dimensions")
	report, err := h.uc.ByDimensions(r.Context(), w0, dims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// Trends handles GET /api/analytics/trends.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := unitFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.count("trends")
	trends, err := h.uc.Trends(r.Context(), w0, unit, metricsFromQuery(q))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, trends)
}

// Durations handles GET /api/analytics/durations.
func (h *AnalyticsHandler) Durations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	page, err := paginationFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.count("durations")
	report, err := h.uc.DeliveryDurations(r.Context(), w0, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// Stages handles GET /api/analytics/stages.
func (h *AnalyticsHandler) Stages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	page, err := paginationFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.count("stages")
	report, err := h.uc.OrderStages(r.Context(), w0, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
