package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/service/orders"
	"delivery-analytics/internal/store"
)

// OrdersHandler serves the order query endpoints.
type OrdersHandler struct{ uc ordersUsecase }

// NewOrdersHandler wires an ordersUsecase into HTTP handlers.
func NewOrdersHandler(uc ordersUsecase) *OrdersHandler {
	return &OrdersHandler{uc: uc}
}

// GetByID handles GET /api/orders/{id}.
func (h *OrdersHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	mode, err := modeFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.uc.GetByID(r.Context(), id, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// GetByNumber handles GET /api/orders/number/{number}.
func (h *OrdersHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(chi.URLParam(r, "number"))
	if number == "" {
		writeError(w, r, http.StatusBadRequest, "invalid order number")
		return
	}
	mode, err := modeFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.uc.GetByNumber(r.Context(), number, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// List handles GET /api/orders.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := listFilterFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := modeFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.uc.List(r.Context(), f, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func listFilterFromQuery(q url.Values) (orders.ListFilter, error) {
	var f orders.ListFilter

	w0, err := windowFromQuery(q)
	if err != nil {
		return f, err
	}
	f.Window = w0

	if s := q.Get("status"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("invalid status: %q", s)
		}
		f.Status = &v
	}
	if f.CustomerID, err = int64FromQuery(q, "customer_id"); err != nil {
		return f, err
	}
	if f.CourierID, err = int64FromQuery(q, "courier_id"); err != nil {
		return f, err
	}
	f.Keyword = strings.TrimSpace(q.Get("q"))
	f.SortBy = q.Get("sort_by")
	f.SortDesc = q.Get("order") != "asc"
	if f.Page, err = paginationFromQuery(q); err != nil {
		return f, err
	}
	return f, nil
}

// listParams parses the window, pagination and language mode shared by the
// filtered listing endpoints. On failure it writes a 400 and reports false.
func listParams(w http.ResponseWriter, r *http.Request) (domain.Window, store.Pagination, schema.LanguageMode, bool) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return domain.Window{}, store.Pagination{}, schema.ModeNative, false
	}
	page, err := paginationFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return domain.Window{}, store.Pagination{}, schema.ModeNative, false
	}
	mode, err := modeFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return domain.Window{}, store.Pagination{}, schema.ModeNative, false
	}
	return w0, page, mode, true
}

// ByTimeRange handles GET /api/orders/by-time.
func (h *OrdersHandler) ByTimeRange(w http.ResponseWriter, r *http.Request) {
	w0, page, mode, ok := listParams(w, r)
	if !ok {
		return
	}

	recs, err := h.uc.ByTimeRange(r.Context(), w0, page, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, recs)
}

// ByFeeRange handles GET /api/orders/by-fee with required min_fee and
// max_fee parameters.
func (h *OrdersHandler) ByFeeRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, page, mode, ok := listParams(w, r)
	if !ok {
		return
	}
	minFee, hasMin, err := floatFromQuery(q, "min_fee")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	maxFee, hasMax, err := floatFromQuery(q, "max_fee")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !hasMin || !hasMax {
		writeError(w, r, http.StatusBadRequest, "min_fee and max_fee are required")
		return
	}

	recs, err := h.uc.ByFeeRange(r.Context(), w0, minFee, maxFee, page, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, recs)
}

// ByDistance handles GET /api/orders/by-distance with a required far flag.
func (h *OrdersHandler) ByDistance(w http.ResponseWriter, r *http.Request) {
	w0, page, mode, ok := listParams(w, r)
	if !ok {
		return
	}
	far, err := boolFromQuery(r.URL.Query(), "far")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.uc.ByDistanceFlag(r.Context(), w0, far, page, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, recs)
}

// ByReservation handles GET /api/orders/by-reservation with a required
// reserved flag.
func (h *OrdersHandler) ByReservation(w http.ResponseWriter, r *http.Request) {
	w0, page, mode, ok := listParams(w, r)
	if !ok {
		return
	}
	reserved, err := boolFromQuery(r.URL.Query(), "reserved")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.uc.ByReservationFlag(r.Context(), w0, reserved, page, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, recs)
}
