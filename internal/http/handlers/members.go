package handlers

import (
	"net/http"
	"net/url"

	"delivery-analytics/internal/service/members"
)

// MembersHandler serves the member behavior ranking endpoints.
type MembersHandler struct{ uc membersUsecase }

// NewMembersHandler wires a membersUsecase into HTTP handlers.
func NewMembersHandler(uc membersUsecase) *MembersHandler {
	return &MembersHandler{uc: uc}
}

func memberOptionsFromQuery(q url.Values) (members.RankOptions, error) {
	var opts members.RankOptions
	minOrders, err := int64FromQuery(q, "min_orders")
	if err != nil {
		return opts, err
	}
	minSpent, _, err := floatFromQuery(q, "min_spent")
	if err != nil {
		return opts, err
	}
	page, err := paginationFromQuery(q)
	if err != nil {
		return opts, err
	}
	opts.MinOrders = minOrders
	opts.MinSpent = minSpent
	opts.Page = page
	return opts, nil
}

// ByFrequency handles GET /api/members/rankings/frequency.
func (h *MembersHandler) ByFrequency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := memberOptionsFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ranks, err := h.uc.ByOrderFrequency(r.Context(), w0, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ranks)
}

// BySpending handles GET /api/members/rankings/spending.
func (h *MembersHandler) BySpending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w0, err := windowFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := memberOptionsFromQuery(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ranks, err := h.uc.BySpending(r.Context(), w0, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ranks)
}
