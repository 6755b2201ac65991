// Package members analyses customer ordering behavior: how often members
// order and how much they spend.
package members

import (
	"context"
	"fmt"
	"time"

	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/store"
)

// RankOptions filter and paginate member rankings. Zero thresholds keep
// every member.
type RankOptions struct {
	MinOrders int64
	MinSpent  float64
	Page      store.Pagination
}

// MemberRank is one member in a behavior ranking. Frequencies are computed
// over the member's own first-to-last order span, never less than one day.
type MemberRank struct {
	MemberID      int64   `json:"member_id"`
	Nick          string  `json:"nick"`
	Phone         string  `json:"phone"`
	OrderCount    int64   `json:"order_count"`
	Completed     int64   `json:"completed"`
	TotalSpent    float64 `json:"total_spent"`
	AvgOrderValue float64 `json:"avg_order_value"`
	FirstOrderTS  int64   `json:"first_order_ts"`
	LastOrderTS   int64   `json:"last_order_ts"`
	SpanDays      int64   `json:"span_days"`
	PerDay        float64 `json:"per_day"`
	PerWeek       float64 `json:"per_week"`
	PerMonth      float64 `json:"per_month"`
	SpentPerDay   float64 `json:"spent_per_day"`
}

// Service computes member behavior rankings.
type Service struct {
	q                querier
	maxWindowDays    int
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService - creates a new members Service.
func NewService(q querier, maxWindowDays int, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		q:                q,
		maxWindowDays:    maxWindowDays,
		operationTimeout: timeout,
		logger:           logger,
	}
}

// ByOrderFrequency ranks members by number of orders in the window.
func (s *Service) ByOrderFrequency(ctx context.Context, w domain.Window, opts RankOptions) ([]MemberRank, error) {
	return s.rank(ctx, w, opts, "order_count")
}

// BySpending ranks members by total spend in the window.
func (s *Service) BySpending(ctx context.Context, w domain.Window, opts RankOptions) ([]MemberRank, error) {
	return s.rank(ctx, w, opts, "total_spent")
}

func (s *Service) rank(ctx context.Context, w domain.Window, opts RankOptions, orderBy string) ([]MemberRank, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	spec := store.GroupSpec{
		Base: store.Orders,
		Joins: []store.Join{
			{To: store.Members, FromKey: "mem_id", ToKey: "id"},
		},
		GroupFields: []string{"mem_id", "members.nick", "members.phone"},
		Aggregates: []store.Aggregate{
			{Kind: store.AggCount, As: "order_count"},
			{Kind: store.AggCountIf, If: []store.Cond{
				{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
			}, As: "completed"},
			{Kind: store.AggSum, Field: "price", As: "total_spent"},
			{Kind: store.AggAvg, Field: "price", As: "avg_price"},
			{Kind: store.AggMin, Field: "created_ts", As: "first_ts"},
			{Kind: store.AggMax, Field: "created_ts", As: "last_ts"},
		},
		Where: store.P().InWindow(w).Gt("mem_id", 0),
		Order: []store.OrderBy{{Expr: orderBy, Desc: true}, {Expr: "mem_id"}},
		Page:  &opts.Page,
	}
	if opts.MinOrders > 0 {
		spec.Having = append(spec.Having, store.Cond{Field: "order_count", Op: store.OpGte, Value: opts.MinOrders})
	}
	if opts.MinSpent > 0 {
		spec.Having = append(spec.Having, store.Cond{Field: "total_spent", Op: store.OpGte, Value: opts.MinSpent})
	}

	rows, err := s.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("member ranking by %s: %w", orderBy, err)
	}

	ranks := make([]MemberRank, 0, len(rows))
	for _, row := range rows {
		r := MemberRank{
			MemberID:      row.Int64("mem_id"),
			Nick:          row.String("nick"),
			Phone:         row.String("phone"),
			OrderCount:    row.Int64("order_count"),
			Completed:     row.Int64("completed"),
			TotalSpent:    domain.Round2(row.Float64("total_spent")),
			AvgOrderValue: domain.Round2(row.Float64("avg_price")),
			FirstOrderTS:  row.Int64("first_ts"),
			LastOrderTS:   row.Int64("last_ts"),
		}
		r.SpanDays = domain.SpanDays(r.FirstOrderTS, r.LastOrderTS)
		days := float64(r.SpanDays)
		r.PerDay = domain.Round2(float64(r.OrderCount) / days)
		r.PerWeek = domain.Round2(float64(r.OrderCount) / days * 7)
		r.PerMonth = domain.Round2(float64(r.OrderCount) / days * 30)
		r.SpentPerDay = domain.Round2(r.TotalSpent / days)
		ranks = append(ranks, r)
	}

	s.logger.Debug("member ranking built",
		logx.String("order_by", orderBy),
		logx.Int("members", len(ranks)),
	)
	return ranks, nil
}
