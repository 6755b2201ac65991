package handlers

import (
	"net/http"
	"net/url"

	"delivery-analytics/internal/service/performance"
)

// PerformanceHandler serves the courier performance ranking endpoints.
type PerformanceHandler struct{ uc performanceUsecase }

// NewPerformanceHandler wires a performanceUsecase into HTTP handlers.
func NewPerformanceHandler(uc performanceUsecase) *PerformanceHandler {
	return &PerformanceHandler{uc: uc}
}

func rankOptionsFromQuery(q url.Values) (performance.RankOptions, error) {
	var opts performance.RankOptions
	minOrders, err := int64FromQuery(q, "min_orders")
	if err != nil {
		return opts, err
	}
	minEarnings, _, err := floatFromQuery(q, "min_earnings")
	if err != nil {
		return opts, err
	}
	page, err := paginationFromQuery(q)
	if err != nil {
		return opts, err
	}
	opts.MinOrders = minOrders
	opts.MinEarnings = minEarnings
	opts.Page = page
	return opts, nil
}

// ByOrderCount handles GET /api/couriers/rankings/orders.
func (h *PerformanceHandler) ByOrderCount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := rankOptionsFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ranks, err := h.uc.ByOrderCount(r.Context(), w0, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ranks)
}

// ByEarnings handles GET /api/couriers/rankings/earnings.
func (h *PerformanceHandler) ByEarnings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := rankOptionsFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ranks, err := h.uc.ByEarnings(r.Context(), w0, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ranks)
}

// ByDuration handles GET /api/couriers/rankings/duration.
func (h *PerformanceHandler) ByDuration(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := rankOptionsFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ranks, err := h.uc.ByDeliveryDuration(r.Context(), w0, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ranks)
}

// Trend handles GET /api/couriers/trend. An optional courier_id narrows
// the trend to a single courier.
func (h *PerformanceHandler) Trend(w http.ResponseWriter, r *http.Request) {
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
	courierID, err := int64FromQuery(q, "courier_id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	buckets, err := h.uc.Trend(r.Context(), w0, unit, courierID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, buckets)
}
