// Package performance ranks couriers over a time window: volume, earnings
// and delivery punctuality.
package performance

import (
	"context"
	"fmt"
	"time"

	"delivery-analytics/internal/apperr"
	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/store"
)

// RankOptions filter and paginate courier rankings. Zero thresholds keep
// every courier.
type RankOptions struct {
	MinOrders   int64
	MinEarnings float64
	Page        store.Pagination
}

// CourierRank is one row of the order count and earnings rankings. The
// per-order and daily earnings breakdown is filled by ByEarnings only.
type CourierRank struct {
	CourierID        int64   `json:"courier_id"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	OrderCount       int64   `json:"order_count"`
	Completed        int64   `json:"completed"`
	Earnings         float64 `json:"earnings"`
	AvgMinutes       float64 `json:"avg_minutes"`
	DailyEarnings    float64 `json:"avg_daily_earnings,omitempty"`
	AvgOrderEarnings float64 `json:"avg_earnings_per_order,omitempty"`
	MaxOrderEarnings float64 `json:"max_earnings,omitempty"`
	MinOrderEarnings float64 `json:"min_earnings,omitempty"`
}

// TimeSlot is one time-of-day slot: order volume and its own average
// duration in minutes.
type TimeSlot struct {
	Orders     int64   `json:"orders"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// TimeOfDay splits a courier's completed orders by creation hour.
type TimeOfDay struct {
	Morning   TimeSlot `json:"morning"`   // 06:00 to 11:59
	Afternoon TimeSlot `json:"afternoon"` // 12:00 to 17:59
	Evening   TimeSlot `json:"evening"`   // 18:00 to 23:59
}

// HistogramBin is one bin of a courier's delivery duration distribution,
// labeled in minutes.
type HistogramBin struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// DurationRank is one row of the delivery duration ranking.
type DurationRank struct {
	CourierID       int64     `json:"courier_id"`
	Name            string    `json:"name"`
	OrderCount      int64     `json:"order_count"`
	AvgMinutes      float64   `json:"avg_minutes"`
	MinMinutes      float64   `json:"min_minutes"`
	MaxMinutes      float64   `json:"max_minutes"`
	StdDevMinutes   float64        `json:"stddev_minutes"`
	OnTimeRate      float64        `json:"on_time_rate"`
	TimeOfDay       TimeOfDay      `json:"time_of_day"`
	Histogram       []HistogramBin `json:"histogram"`
	EfficiencyScore int            `json:"efficiency_score"`
}

// TrendBucket is one time bucket of the courier performance trend.
type TrendBucket struct {
	Period         string  `json:"period"`
	OrderCount     int64   `json:"order_count"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
	Earnings       float64 `json:"earnings"`
	AvgMinutes     float64 `json:"avg_minutes"`
	ActiveCouriers int64   `json:"active_couriers"`
}

// Service computes courier performance rankings.
type Service struct {
	q                querier
	maxWindowDays    int
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService - creates a new performance Service.
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

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// courierGroup is the shared shape of the per-courier rankings: assigned
// orders in the window grouped by courier, with the courier name joined in.
func courierGroup(w domain.Window) store.GroupSpec {
	return store.GroupSpec{
		Base: store.Orders,
		Joins: []store.Join{
			{To: store.Couriers, FromKey: "cour_id", ToKey: "mem_id"},
		},
		GroupFields: []string{"cour_id", "couriers.legal_name", "couriers.phone"},
		Where:       store.P().InWindow(w).Gt("cour_id", 0),
	}
}

// ByOrderCount ranks couriers by number of assigned orders.
func (s *Service) ByOrderCount(ctx context.Context, w domain.Window, opts RankOptions) ([]CourierRank, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	spec := courierGroup(w)
	spec.Aggregates = []store.Aggregate{
		{Kind: store.AggCount, As: "order_count"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
		}, As: "completed"},
		{Kind: store.AggSum, Field: "cour_income", As: "earnings"},
		{Kind: store.AggAvgIf, Field: "used_secs", If: []store.Cond{
			{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
			{Field: "used_secs", Op: store.OpGt, Value: 0},
		}, As: "avg_secs"},
	}
	if opts.MinOrders > 0 {
		spec.Having = append(spec.Having, store.Cond{Field: "order_count", Op: store.OpGte, Value: opts.MinOrders})
	}
	spec.Order = []store.OrderBy{{Expr: "order_count", Desc: true}, {Expr: "cour_id"}}
	spec.Page = &opts.Page

	rows, err := s.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("courier ranking by order count: %w", err)
	}

	ranks := make([]CourierRank, 0, len(rows))
	for _, row := range rows {
		ranks = append(ranks, CourierRank{
			CourierID:  row.Int64("cour_id"),
			Name:       row.String("legal_name"),
			Phone:      row.String("phone"),
			OrderCount: row.Int64("order_count"),
			Completed:  row.Int64("completed"),
			Earnings:   domain.Round2(row.Float64("earnings")),
			AvgMinutes: domain.Minutes(row.Float64("avg_secs")),
		})
	}

	s.logger.Debug("courier ranking built",
		logx.String("order_by", "order_count"),
		logx.Int("couriers", len(ranks)),
	)
	return ranks, nil
}

// ByEarnings ranks couriers by income from completed orders, with the
// per-order spread and an average per active day. Active days span from
// the courier's first to last order in the window, never less than one.
func (s *Service) ByEarnings(ctx context.Context, w domain.Window, opts RankOptions) ([]CourierRank, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	spec := courierGroup(w)
	spec.Where = spec.Where.Eq("status", int(domain.StatusCompleted))
	spec.Aggregates = []store.Aggregate{
		{Kind: store.AggCount, As: "order_count"},
		{Kind: store.AggSum, Field: "cour_income", As: "earnings"},
		{Kind: store.AggAvg, Field: "cour_income", As: "avg_earnings"},
		{Kind: store.AggMax, Field: "cour_income", As: "max_earnings"},
		{Kind: store.AggMin, Field: "cour_income", As: "min_earnings"},
		{Kind: store.AggMin, Field: "created_ts", As: "first_ts"},
		{Kind: store.AggMax, Field: "created_ts", As: "last_ts"},
		{Kind: store.AggAvgIf, Field: "used_secs", If: []store.Cond{
			{Field: "used_secs", Op: store.OpGt, Value: 0},
		}, As: "avg_secs"},
	}
	if opts.MinOrders > 0 {
		spec.Having = append(spec.Having, store.Cond{Field: "order_count", Op: store.OpGte, Value: opts.MinOrders})
	}
	if opts.MinEarnings > 0 {
		spec.Having = append(spec.Having, store.Cond{Field: "earnings", Op: store.OpGte, Value: opts.MinEarnings})
	}
	spec.Order = []store.OrderBy{{Expr: "earnings", Desc: true}, {Expr: "cour_id"}}
	spec.Page = &opts.Page

	rows, err := s.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("courier ranking by earnings: %w", err)
	}

	ranks := make([]CourierRank, 0, len(rows))
	for _, row := range rows {
		earnings := row.Float64("earnings")
		days := domain.SpanDays(row.Int64("first_ts"), row.Int64("last_ts"))
		ranks = append(ranks, CourierRank{
			CourierID:        row.Int64("cour_id"),
			Name:             row.String("legal_name"),
			Phone:            row.String("phone"),
			OrderCount:       row.Int64("order_count"),
			Completed:        row.Int64("order_count"),
			Earnings:         domain.Round2(earnings),
			AvgMinutes:       domain.Minutes(row.Float64("avg_secs")),
			DailyEarnings:    domain.Round2(earnings / float64(days)),
			AvgOrderEarnings: domain.Round2(row.Float64("avg_earnings")),
			MaxOrderEarnings: domain.Round2(row.Float64("max_earnings")),
			MinOrderEarnings: domain.Round2(row.Float64("min_earnings")),
		})
	}

	s.logger.Debug("courier ranking built",
		logx.String("order_by", "earnings"),
		logx.Int("couriers", len(ranks)),
	)
	return ranks, nil
}

// ByDeliveryDuration ranks couriers by average completed delivery
// duration, fastest first, with punctuality detail.
func (s *Service) ByDeliveryDuration(ctx context.Context, w domain.Window, opts RankOptions) ([]DurationRank, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	planSet := store.Cond{Field: "plan_secs", Op: store.OpGt, Value: 0}

	spec := courierGroup(w)
	spec.Where = spec.Where.
		Eq("status", int(domain.StatusCompleted)).
		Gt("used_secs", 0)
	spec.Aggregates = []store.Aggregate{
		{Kind: store.AggCount, As: "order_count"},
		{Kind: store.AggAvg, Field: "used_secs", As: "avg_secs"},
		{Kind: store.AggMin, Field: "used_secs", As: "min_secs"},
		{Kind: store.AggMax, Field: "used_secs", As: "max_secs"},
		{Kind: store.AggStdDev, Field: "used_secs", As: "stddev_secs"},
		{Kind: store.AggCountIf, If: []store.Cond{
			planSet,
			{Field: "used_secs", Op: store.OpLte, Col: "plan_secs"},
		}, As: "on_time"},
		{Kind: store.AggCountIf, If: []store.Cond{
			planSet,
			{Field: "used_secs", Op: store.OpGt, Col: "plan_secs"},
			{Field: "used_secs", Op: store.OpLte, Col: "plan_secs", Factor: domain.NearFactor},
		}, As: "near"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: store.HourOfDay, Op: store.OpBetween, Value: 6, Value2: 11},
		}, As: "morning"},
		{Kind: store.AggAvgIf, Field: "used_secs", If: []store.Cond{
			{Field: store.HourOfDay, Op: store.OpBetween, Value: 6, Value2: 11},
		}, As: "morning_avg"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: store.HourOfDay, Op: store.OpBetween, Value: 12, Value2: 17},
		}, As: "afternoon"},
		{Kind: store.AggAvgIf, Field: "used_secs", If: []store.Cond{
			{Field: store.HourOfDay, Op: store.OpBetween, Value: 12, Value2: 17},
		}, As: "afternoon_avg"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: store.HourOfDay, Op: store.OpBetween, Value: 18, Value2: 23},
		}, As: "evening"},
		{Kind: store.AggAvgIf, Field: "used_secs", If: []store.Cond{
			{Field: store.HourOfDay, Op: store.OpBetween, Value: 18, Value2: 23},
		}, As: "evening_avg"},
	}
	bins := domain.DurationBins()
	for i, bin := range bins {
		conds := []store.Cond{{Field: "used_secs", Op: store.OpGt, Value: bin.Lo}}
		if bin.Hi > 0 {
			conds = append(conds, store.Cond{Field: "used_secs", Op: store.OpLte, Value: bin.Hi})
		}
		spec.Aggregates = append(spec.Aggregates, store.Aggregate{
			Kind: store.AggCountIf, If: conds, As: fmt.Sprintf("hist_%d", i),
		})
	}
	if opts.MinOrders > 0 {
		spec.Having = append(spec.Having, store.Cond{Field: "order_count", Op: store.OpGte, Value: opts.MinOrders})
	}
	spec.Order = []store.OrderBy{{Expr: "avg_secs"}, {Expr: "cour_id"}}
	spec.Page = &opts.Page

	rows, err := s.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("courier duration ranking: %w", err)
	}

	ranks := make([]DurationRank, 0, len(rows))
	for _, row := range rows {
		onTime, near := row.Int64("on_time"), row.Int64("near")
		count := row.Int64("order_count")
		// Orders without a plan are neither on time nor near and land in
		// the slowest scoring band.
		late := count - onTime - near
		hist := make([]HistogramBin, len(bins))
		for i, bin := range bins {
			hist[i] = HistogramBin{Range: bin.Label, Count: row.Int64(fmt.Sprintf("hist_%d", i))}
		}
		rank := DurationRank{
			CourierID:     row.Int64("cour_id"),
			Name:          row.String("legal_name"),
			OrderCount:    count,
			AvgMinutes:    domain.Minutes(row.Float64("avg_secs")),
			MinMinutes:    domain.Minutes(row.Float64("min_secs")),
			MaxMinutes:    domain.Minutes(row.Float64("max_secs")),
			StdDevMinutes: domain.Minutes(row.Float64("stddev_secs")),
			TimeOfDay: TimeOfDay{
				Morning:   TimeSlot{Orders: row.Int64("morning"), AvgMinutes: domain.Minutes(row.Float64("morning_avg"))},
				Afternoon: TimeSlot{Orders: row.Int64("afternoon"), AvgMinutes: domain.Minutes(row.Float64("afternoon_avg"))},
				Evening:   TimeSlot{Orders: row.Int64("evening"), AvgMinutes: domain.Minutes(row.Float64("evening_avg"))},
			},
			Histogram:       hist,
			EfficiencyScore: domain.EfficiencyScore(onTime, near, late),
		}
		if count > 0 {
			rank.OnTimeRate = domain.Round2(float64(onTime) / float64(count))
		}
		ranks = append(ranks, rank)
	}
	return ranks, nil
}

// Trend buckets overall courier performance over time. A positive
// courierID narrows the trend to that courier.
func (s *Service) Trend(ctx context.Context, w domain.Window, unit domain.TimeUnit, courierID int64) ([]TrendBucket, error) {
	if err := domain.CheckWindow(w, s.maxWindowDays); err != nil {
		return nil, err
	}
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: unknown time unit %q", apperr.ErrInvalid, unit)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where := store.P().InWindow(w).Gt("cour_id", 0)
	if courierID > 0 {
		where = where.Eq("cour_id", courierID)
	}

	rows, err := s.q.SelectGroupedAggregate(ctx, store.GroupSpec{
		Base: store.Orders,
		Key:  &store.GroupKey{Column: "created_ts", Bucket: unit, As: "period"},
		Aggregates: []store.Aggregate{
			{Kind: store.AggCount, As: "order_count"},
			{Kind: store.AggCountIf, If: []store.Cond{
				{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
			}, As: "completed"},
			{Kind: store.AggSum, Field: "cour_income", As: "earnings"},
			{Kind: store.AggAvgIf, Field: "used_secs", If: []store.Cond{
				{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
				{Field: "used_secs", Op: store.OpGt, Value: 0},
			}, As: "avg_secs"},
			{Kind: store.AggCountDistinct, Field: "cour_id", As: "active_couriers"},
		},
		Where: where,
		Order: []store.OrderBy{{Expr: "period"}},
	})
	if err != nil {
		return nil, fmt.Errorf("courier trend: %w", err)
	}

	buckets := make([]TrendBucket, 0, len(rows))
	for _, row := range rows {
		b := TrendBucket{
			Period:         row.String("period"),
			OrderCount:     row.Int64("order_count"),
			Completed:      row.Int64("completed"),
			Earnings:       domain.Round2(row.Float64("earnings")),
			AvgMinutes:     domain.Minutes(row.Float64("avg_secs")),
			ActiveCouriers: row.Int64("active_couriers"),
		}
		if b.OrderCount > 0 {
			b.CompletionRate = domain.Round2(float64(b.Completed) / float64(b.OrderCount) * 100)
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}
