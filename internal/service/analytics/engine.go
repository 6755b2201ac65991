package analytics

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"delivery-analytics/internal/apperr"
	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/store"
)

// Dimension selects one axis of the multi-dimensional order analysis.
type Dimension string

// Supported dimensions.
const (
	DimTime      Dimension = "time"
	DimArea      Dimension = "area"
	DimOrderType Dimension = "order_type"
	DimStatus    Dimension = "status"
)

var allDimensions = []Dimension{DimTime, DimArea, DimOrderType, DimStatus}

// Bucket is one row of a dimension breakdown.
type Bucket struct {
	Key         string  `json:"key"`
	Label       string  `json:"label,omitempty"`
	Description string  `json:"description,omitempty"`
	OrderCount  int64   `json:"order_count"`
	Completed   int64   `json:"completed"`
	Cancelled   int64   `json:"cancelled"`
	TotalPrice  float64 `json:"total_price"`
	TotalFee    float64 `json:"total_fee"`
	AvgPrice    float64 `json:"avg_price"`
}

// Summary aggregates the whole window regardless of dimension.
type Summary struct {
	OrderCount int64   `json:"total_orders"`
	Completed  int64   `json:"completed"`
	Cancelled  int64   `json:"cancelled"`
	TotalPrice float64 `json:"total_price"`
	TotalFee   float64 `json:"total_delivery_fee"`
	AvgPrice   float64 `json:"avg_price"`
	Customers  int64   `json:"customers"`
	Couriers   int64   `json:"couriers"`
}

// Report is the full multi-dimensional analysis result.
type Report struct {
	Window     domain.Window          `json:"window"`
	Summary    Summary                `json:"summary"`
	Dimensions map[Dimension][]Bucket `json:"dimensions"`
}

// OrderCountPoint is one bucket of the order volume trend. Buckets
// without orders are absent rather than zero-filled.
type OrderCountPoint struct {
	Period     string `json:"period"`
	OrderCount int64  `json:"order_count"`
	Completed  int64  `json:"completed"`
	Cancelled  int64  `json:"cancelled"`
}

// RevenuePoint is one bucket of the revenue trend, over completed orders
// only. Total is price plus delivery fee.
type RevenuePoint struct {
	Period     string  `json:"period"`
	TotalPrice float64 `json:"total_price"`
	TotalFee   float64 `json:"total_delivery_fee"`
	Total      float64 `json:"total_revenue"`
	AvgPrice   float64 `json:"avg_price"`
	AvgFee     float64 `json:"avg_delivery_fee"`
}

// DurationPoint is one bucket of the delivery duration trend, minutes to
// one decimal. DiffMinutes is actual minus expected, positive when late.
type DurationPoint struct {
	Period             string  `json:"period"`
	AvgMinutes         float64 `json:"avg_duration"`
	MinMinutes         float64 `json:"min_duration"`
	MaxMinutes         float64 `json:"max_duration"`
	AvgExpectedMinutes float64 `json:"avg_expected_duration"`
	DiffMinutes        float64 `json:"avg_duration_diff"`
}

// TrendReport carries the requested trend series; metrics that were not
// requested stay nil.
type TrendReport struct {
	OrderCounts []OrderCountPoint `json:"order_count_trend,omitempty"`
	Revenue     []RevenuePoint    `json:"revenue_trend,omitempty"`
	Durations   []DurationPoint   `json:"delivery_duration_trend,omitempty"`
}

// Trend metrics.
const (
	MetricOrderCount = "order_count"
	MetricRevenue    = "revenue"
	MetricDuration   = "delivery_duration"
)

var allMetrics = []string{MetricOrderCount, MetricRevenue, MetricDuration}

// Engine runs read-only analytical queries over the order history.
type Engine struct {
	q                querier
	enums            *schema.Registry
	maxWindowDays    int
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewEngine - creates a new analytics Engine.
func NewEngine(q querier, enums *schema.Registry, maxWindowDays int, timeout time.Duration, logger logx.Logger) *Engine {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{
		q:                q,
		enums:            enums,
		maxWindowDays:    maxWindowDays,
		operationTimeout: timeout,
		logger:           logger,
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.operationTimeout)
}

func (e *Engine) checkWindow(w domain.Window) error {
	return domain.CheckWindow(w, e.maxWindowDays)
}

// ByDimensions analyses the window along the requested dimensions. An empty
// dims slice means all of them. Dimension queries run concurrently and the
// first failure cancels the rest.
func (e *Engine) ByDimensions(ctx context.Context, w domain.Window, dims []Dimension) (Report, error) {
	if err := e.checkWindow(w); err != nil {
		return Report{}, err
	}
	if len(dims) == 0 {
		dims = allDimensions
	}
	for _, d := range dims {
		switch d {
		case DimTime, DimArea, DimOrderType, DimStatus:
		default:
			return Report{}, fmt.Errorf("%w: unknown dimension %q", apperr.ErrInvalid, d)
		}
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	report := Report{
		Window:     w,
		Dimensions: make(map[Dimension][]Bucket, len(dims)),
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s, err := e.summary(ctx, w)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		report.Summary = s
		mu.Unlock()
	}()

	for _, d := range dims {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			buckets, err := e.dimension(ctx, w, d)
			if err != nil {
				fail(fmt.Errorf("dimension %s: %w", d, err))
				return
			}
			mu.Lock()
			report.Dimensions[d] = buckets
			mu.Unlock()
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return Report{}, firstErr
	}

	e.logger.Debug("dimension analysis done",
		logx.Int64("window_start", w.Start),
		logx.Int64("window_end", w.End),
		logx.Int("dimensions", len(dims)),
	)
	return report, nil
}

// bucketAggregates are shared by every dimension breakdown.
func bucketAggregates() []store.Aggregate {
	return []store.Aggregate{
		{Kind: store.AggCount, As: "order_count"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
		}, As: "completed"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: "status", Op: store.OpEq, Value: int(domain.StatusCancelled)},
		}, As: "cancelled"},
		{Kind: store.AggSum, Field: "price", As: "total_price"},
		{Kind: store.AggSum, Field: "fee", As: "total_fee"},
		{Kind: store.AggAvg, Field: "price", As: "avg_price"},
	}
}

func (e *Engine) dimension(ctx context.Context, w domain.Window, d Dimension) ([]Bucket, error) {
	spec := store.GroupSpec{
		Base:       store.Orders,
		Aggregates: bucketAggregates(),
		Where:      store.P().InWindow(w),
	}
	var (
		groupCol   string
		enumDomain schema.EnumDomain
	)
	switch d {
	case DimTime:
		spec.Key = &store.GroupKey{Column: "created_ts", Bucket: domain.UnitDay, As: "period"}
		spec.Order = []store.OrderBy{{Expr: "period"}}
	case DimArea:
		groupCol, enumDomain = "zone", schema.DomainZone
		spec.GroupFields = []string{groupCol}
		spec.Order = []store.OrderBy{{Expr: "order_count", Desc: true}}
	case DimOrderType:
		groupCol, enumDomain = "order_type", schema.DomainOrderType
		spec.GroupFields = []string{groupCol}
		spec.Order = []store.OrderBy{{Expr: groupCol}}
	case DimStatus:
		groupCol, enumDomain = "status", schema.DomainStatus
		spec.GroupFields = []string{groupCol}
		spec.Order = []store.OrderBy{{Expr: groupCol}}
	}

	rows, err := e.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0, len(rows))
	for _, row := range rows {
		b := Bucket{
			OrderCount: row.Int64("order_count"),
			Completed:  row.Int64("completed"),
			Cancelled:  row.Int64("cancelled"),
			TotalPrice: domain.Round2(row.Float64("total_price")),
			TotalFee:   domain.Round2(row.Float64("total_fee")),
			AvgPrice:   domain.Round2(row.Float64("avg_price")),
		}
		if d == DimTime {
			b.Key = row.String("period")
		} else {
			code := int(row.Int64(groupCol))
			b.Key = strconv.Itoa(code)
			b.Label = e.enums.Label(enumDomain, code)
			if d == DimStatus {
				b.Description = e.enums.Description(schema.DomainStatus, code)
			}
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

func (e *Engine) summary(ctx context.Context, w domain.Window) (Summary, error) {
	rows, err := e.q.SelectGroupedAggregate(ctx, store.GroupSpec{
		Base: store.Orders,
		Aggregates: []store.Aggregate{
			{Kind: store.AggCount, As: "order_count"},
			{Kind: store.AggCountIf, If: []store.Cond{
				{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
			}, As: "completed"},
			{Kind: store.AggCountIf, If: []store.Cond{
				{Field: "status", Op: store.OpEq, Value: int(domain.StatusCancelled)},
			}, As: "cancelled"},
			{Kind: store.AggSum, Field: "price", As: "total_price"},
			{Kind: store.AggSum, Field: "fee", As: "total_fee"},
			{Kind: store.AggAvg, Field: "price", As: "avg_price"},
			{Kind: store.AggCountDistinct, Field: "mem_id", As: "customers"},
			{Kind: store.AggCountDistinct, Field: "cour_id", As: "couriers"},
		},
		Where: store.P().InWindow(w),
	})
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}
	if len(rows) == 0 {
		return Summary{}, nil
	}
	row := rows[0]
	return Summary{
		OrderCount: row.Int64("order_count"),
		Completed:  row.Int64("completed"),
		Cancelled:  row.Int64("cancelled"),
		TotalPrice: domain.Round2(row.Float64("total_price")),
		TotalFee:   domain.Round2(row.Float64("total_fee")),
		AvgPrice:   domain.Round2(row.Float64("avg_price")),
		Customers:  row.Int64("customers"),
		Couriers:   row.Int64("couriers"),
	}, nil
}

// Trends returns the requested metric series bucketed by unit. An empty
// metrics slice means all of them.
func (e *Engine) Trends(ctx context.Context, w domain.Window, unit domain.TimeUnit, metrics []string) (TrendReport, error) {
	if err := e.checkWindow(w); err != nil {
		return TrendReport{}, err
	}
	if !unit.Valid() {
		return TrendReport{}, fmt.Errorf("%w: unknown time unit %q", apperr.ErrInvalid, unit)
	}
	if len(metrics) == 0 {
		metrics = allMetrics
	}
	for _, m := range metrics {
		switch m {
		case MetricOrderCount, MetricRevenue, MetricDuration:
		default:
			return TrendReport{}, fmt.Errorf("%w: unknown trend metric %q", apperr.ErrInvalid, m)
		}
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var (
		report TrendReport
		err    error
	)
	for _, m := range metrics {
		switch m {
		case MetricOrderCount:
			report.OrderCounts, err = e.orderCountTrend(ctx, w, unit)
		case MetricRevenue:
			report.Revenue, err = e.revenueTrend(ctx, w, unit)
		case MetricDuration:
			report.Durations, err = e.durationTrend(ctx, w, unit)
		}
		if err != nil {
			return TrendReport{}, fmt.Errorf("trend %s: %w", m, err)
		}
	}
	return report, nil
}

func trendSpec(w domain.Window, unit domain.TimeUnit) store.GroupSpec {
	return store.GroupSpec{
		Base:  store.Orders,
		Key:   &store.GroupKey{Column: "created_ts", Bucket: unit, As: "period"},
		Where: store.P().InWindow(w),
		Order: []store.OrderBy{{Expr: "period"}},
	}
}

func (e *Engine) orderCountTrend(ctx context.Context, w domain.Window, unit domain.TimeUnit) ([]OrderCountPoint, error) {
	spec := trendSpec(w, unit)
	spec.Aggregates = []store.Aggregate{
		{Kind: store.AggCount, As: "order_count"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: "status", Op: store.OpEq, Value: int(domain.StatusCompleted)},
		}, As: "completed"},
		{Kind: store.AggCountIf, If: []store.Cond{
			{Field: "status", Op: store.OpEq, Value: int(domain.StatusCancelled)},
		}, As: "cancelled"},
	}

	rows, err := e.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, err
	}

	series := make([]OrderCountPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, OrderCountPoint{
			Period:     row.String("period"),
			OrderCount: row.Int64("order_count"),
			Completed:  row.Int64("completed"),
			Cancelled:  row.Int64("cancelled"),
		})
	}
	return series, nil
}

func (e *Engine) revenueTrend(ctx context.Context, w domain.Window, unit domain.TimeUnit) ([]RevenuePoint, error) {
	spec := trendSpec(w, unit)
	spec.Where = spec.Where.Eq("status", int(domain.StatusCompleted))
	spec.Aggregates = []store.Aggregate{
		{Kind: store.AggSum, Field: "price", As: "total_price"},
		{Kind: store.AggSum, Field: "fee", As: "total_fee"},
		{Kind: store.AggAvg, Field: "price", As: "avg_price"},
		{Kind: store.AggAvg, Field: "fee", As: "avg_fee"},
	}

	rows, err := e.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, err
	}

	series := make([]RevenuePoint, 0, len(rows))
	for _, row := range rows {
		price := row.Float64("total_price")
		fee := row.Float64("total_fee")
		series = append(series, RevenuePoint{
			Period:     row.String("period"),
			TotalPrice: domain.Round2(price),
			TotalFee:   domain.Round2(fee),
			Total:      domain.Round2(price + fee),
			AvgPrice:   domain.Round2(row.Float64("avg_price")),
			AvgFee:     domain.Round2(row.Float64("avg_fee")),
		})
	}
	return series, nil
}

func (e *Engine) durationTrend(ctx context.Context, w domain.Window, unit domain.TimeUnit) ([]DurationPoint, error) {
	spec := trendSpec(w, unit)
	spec.Where = spec.Where.
		Eq("status", int(domain.StatusCompleted)).
		Gt("used_secs", 0)
	spec.Aggregates = []store.Aggregate{
		{Kind: store.AggAvg, Field: "used_secs", As: "avg_secs"},
		{Kind: store.AggMin, Field: "used_secs", As: "min_secs"},
		{Kind: store.AggMax, Field: "used_secs", As: "max_secs"},
		{Kind: store.AggAvg, Field: "plan_secs", As: "avg_plan_secs"},
	}

	rows, err := e.q.SelectGroupedAggregate(ctx, spec)
	if err != nil {
		return nil, err
	}

	series := make([]DurationPoint, 0, len(rows))
	for _, row := range rows {
		avg := row.Float64("avg_secs")
		plan := row.Float64("avg_plan_secs")
		series = append(series, DurationPoint{
			Period:             row.String("period"),
			AvgMinutes:         domain.Minutes(avg),
			MinMinutes:         domain.Minutes(row.Float64("min_secs")),
			MaxMinutes:         domain.Minutes(row.Float64("max_secs")),
			AvgExpectedMinutes: domain.Minutes(plan),
			DiffMinutes:        domain.Minutes(avg - plan),
		})
	}
	return series, nil
}
