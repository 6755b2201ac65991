package orders

import (
	"context"
	"fmt"
	"strings"

	"delivery-analytics/internal/apperr"
	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/store"
)

// farDistanceMeters splits long-haul from short-haul deliveries.
const farDistanceMeters = 5000

// sortFields whitelists the columns a listing may be ordered by.
var sortFields = map[string]bool{
	"created_ts":   true,
	"completed_ts": true,
	"price":        true,
	"fee":          true,
	"dist_m":       true,
	"used_secs":    true,
}

// ListFilter narrows and orders the order listing. The window is optional
// here; zero means unbounded.
type ListFilter struct {
	Status     *int
	Window     domain.Window
	CustomerID int64
	CourierID  int64
	Keyword    string // matches the order number
	SortBy     string
	SortDesc   bool
	Page       store.Pagination
}

// ListResult pairs one listing page with the total match count.
type ListResult struct {
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Items []schema.Record `json:"items"`
}

// List returns a filtered, sorted, paginated order listing with relations
// expanded.
func (s *Service) List(ctx context.Context, f ListFilter, mode schema.LanguageMode) (ListResult, error) {
	where := store.P().Eq("is_del", 0)
	if f.Status != nil {
		where = where.Eq("status", *f.Status)
	}
	if !f.Window.Zero() {
		if err := domain.CheckWindow(f.Window, s.maxWindowDays); err != nil {
			return ListResult{}, err
		}
		where = where.InWindow(f.Window)
	}
	if f.CustomerID > 0 {
		where = where.Eq("mem_id", f.CustomerID)
	}
	if f.CourierID > 0 {
		where = where.Eq("cour_id", f.CourierID)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		where.Conds = append(where.Conds, store.Cond{
			Field: "ord_sn", Op: store.OpLike, Value: "%" + kw + "%",
		})
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "created_ts"
		f.SortDesc = true
	} else if !sortFields[sortBy] {
		return ListResult{}, fmt.Errorf("%w: unsupported sort field %q", apperr.ErrInvalid, f.SortBy)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	total, err := s.q.CountMatching(ctx, store.Orders, nil, where)
	if err != nil {
		return ListResult{}, fmt.Errorf("order listing count: %w", err)
	}

	joins, columns := s.orderJoins()
	page := f.Page.Resolve()
	rows, err := s.q.SelectJoinedRows(ctx, store.JoinSpec{
		Base:    store.Orders,
		Joins:   joins,
		Columns: columns,
		Where:   where,
		Order:   []store.OrderBy{{Expr: sortBy, Desc: f.SortDesc}},
		Page:    &page,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("order listing: %w", err)
	}

	return ListResult{
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
		Items: s.translateAll(rows, mode),
	}, nil
}

// ByTimeRange lists orders created inside the window, newest first.
func (s *Service) ByTimeRange(ctx context.Context, w domain.Window, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}
	return s.listWhere(ctx, store.P().InWindow(w), page, mode)
}

// ByFeeRange lists window orders whose delivery fee falls inside
// [minFee, maxFee].
func (s *Service) ByFeeRange(ctx context.Context, w domain.Window, minFee, maxFee float64, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}
	if minFee < 0 || maxFee < minFee {
		return nil, fmt.Errorf("%w: fee range [%v, %v]", apperr.ErrInvalid, minFee, maxFee)
	}
	return s.listWhere(ctx, store.P().InWindow(w).Between("fee", minFee, maxFee), page, mode)
}

// ByDistanceFlag lists window orders beyond the long-haul threshold, or
// under it when far is false.
func (s *Service) ByDistanceFlag(ctx context.Context, w domain.Window, far bool, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}
	where := store.P().InWindow(w)
	if far {
		where.Conds = append(where.Conds, store.Cond{Field: "dist_m", Op: store.OpGte, Value: farDistanceMeters})
	} else {
		where.Conds = append(where.Conds, store.Cond{Field: "dist_m", Op: store.OpLt, Value: farDistanceMeters})
	}
	return s.listWhere(ctx, where, page, mode)
}

// ByReservationFlag lists window orders with or without a reserved
// delivery slot.
func (s *Service) ByReservationFlag(ctx context.Context, w domain.Window, reserved bool, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}
	flag := 0
	if reserved {
		flag = 1
	}
	return s.listWhere(ctx, store.P().InWindow(w).Eq("has_slot", flag), page, mode)
}

func (s *Service) listWhere(ctx context.Context, where store.Predicate, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	joins, columns := s.orderJoins()
	rows, err := s.q.SelectJoinedRows(ctx, store.JoinSpec{
		Base:    store.Orders,
		Joins:   joins,
		Columns: columns,
		Where:   where,
		Order:   []store.OrderBy{{Expr: "created_ts", Desc: true}},
		Page:    &page,
	})
	if err != nil {
		return nil, fmt.Errorf("order listing: %w", err)
	}
	return s.translateAll(rows, mode), nil
}

func (s *Service) translateAll(rows []store.Row, mode schema.LanguageMode) []schema.Record {
	out := make([]schema.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.translator.Translate(schema.Record(row), schema.EntityOrder, mode))
	}
	return out
}
