package analytics

import (
	"context"
	"fmt"

	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/store"
)

// HistogramBin is one bin of the delivery duration distribution, labeled
// in minutes.
type HistogramBin struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// DurationStats summarizes completed deliveries in the window.
type DurationStats struct {
	Count      int64          `json:"count"`
	AvgMinutes float64        `json:"avg_minutes"`
	MinMinutes float64        `json:"min_minutes"`
	MaxMinutes float64        `json:"max_minutes"`
	Histogram  []HistogramBin `json:"histogram"`
}

// OrderInfo identifies the order of a duration entry.
type OrderInfo struct {
	ID     int64   `json:"id"`
	Number string  `json:"number"`
	Price  float64 `json:"price"`
}

// DeliveryTimes carries the raw lifecycle stamps, zero when not reached.
type DeliveryTimes struct {
	CreatedTS   int64 `json:"created_ts"`
	AcceptedTS  int64 `json:"accepted_ts"`
	PickupTS    int64 `json:"pickup_ts"`
	DeliveredTS int64 `json:"delivered_ts"`
	CompletedTS int64 `json:"completed_ts"`
}

// DeliveryStats compares actual against expected duration. DiffMinutes is
// actual minus expected, positive when late.
type DeliveryStats struct {
	ActualMinutes   float64 `json:"actual_minutes"`
	ExpectedMinutes float64 `json:"expected_minutes"`
	DiffMinutes     float64 `json:"diff_minutes"`
	OnTime          bool    `json:"on_time"`
}

// CourierInfo identifies the courier of a duration entry.
type CourierInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DurationEntry is one order in the duration listing.
type DurationEntry struct {
	Order   OrderInfo     `json:"order_info"`
	Times   DeliveryTimes `json:"delivery_times"`
	Stats   DeliveryStats `json:"delivery_stats"`
	Courier *CourierInfo  `json:"courier_info,omitempty"`
}

// DurationReport pairs the window distribution with the slowest orders
// first.
type DurationReport struct {
	Stats  DurationStats   `json:"stats"`
	Orders []DurationEntry `json:"orders"`
}

// completedWithDuration matches orders the duration analysis covers.
func completedWithDuration(w domain.Window) store.Predicate {
	return store.P().
		InWindow(w).
		Eq("status", int(domain.StatusCompleted)).
		Gt("used_secs", 0)
}

// DeliveryDurations analyses completed delivery durations in the window:
// distribution stats plus a paginated per-order breakdown ordered slowest
// first.
func (e *Engine) DeliveryDurations(ctx context.Context, w domain.Window, page store.Pagination) (DurationReport, error) {
	if err := e.checkWindow(w); err != nil {
		return DurationReport{}, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	stats, err := e.durationStats(ctx, w)
	if err != nil {
		return DurationReport{}, err
	}

	rows, err := e.q.SelectJoinedRows(ctx, store.JoinSpec{
		Base: store.Orders,
		Joins: []store.Join{
			{To: store.Couriers, FromKey: "cour_id", ToKey: "mem_id"},
		},
		Columns: []store.Column{
			{Expr: "id"}, {Expr: "ord_sn"}, {Expr: "price"},
			{Expr: "created_ts"}, {Expr: "accepted_ts"}, {Expr: "pickup_ts"},
			{Expr: "delivered_ts"}, {Expr: "completed_ts"},
			{Expr: "used_secs"}, {Expr: "plan_secs"},
			{Expr: "couriers.id", As: "courier_id"},
			{Expr: "couriers.legal_name", As: "courier_name"},
			{Expr: "couriers.phone", As: "courier_phone"},
		},
		Where: completedWithDuration(w),
		Order: []store.OrderBy{{Expr: "used_secs", Desc: true}},
		Page:  &page,
	})
	if err != nil {
		return DurationReport{}, fmt.Errorf("duration listing: %w", err)
	}

	entries := make([]DurationEntry, 0, len(rows))
	for _, row := range rows {
		used := row.Int64("used_secs")
		plan := row.Int64("plan_secs")
		entry := DurationEntry{
			Order: OrderInfo{
				ID:     row.Int64("id"),
				Number: row.String("ord_sn"),
				Price:  domain.Round2(row.Float64("price")),
			},
			Times: DeliveryTimes{
				CreatedTS:   row.Int64("created_ts"),
				AcceptedTS:  row.Int64("accepted_ts"),
				PickupTS:    row.Int64("pickup_ts"),
				DeliveredTS: row.Int64("delivered_ts"),
				CompletedTS: row.Int64("completed_ts"),
			},
			Stats: DeliveryStats{
				ActualMinutes:   domain.Minutes(float64(used)),
				ExpectedMinutes: domain.Minutes(float64(plan)),
				DiffMinutes:     domain.Minutes(float64(used - plan)),
				OnTime:          domain.OnTime(used, plan),
			},
		}
		if id := row.Int64("courier_id"); id > 0 {
			entry.Courier = &CourierInfo{
				ID:    id,
				Name:  row.String("courier_name"),
				Phone: row.String("courier_phone"),
			}
		}
		entries = append(entries, entry)
	}
	return DurationReport{Stats: stats, Orders: entries}, nil
}

func (e *Engine) durationStats(ctx context.Context, w domain.Window) (DurationStats, error) {
	aggs := []store.Aggregate{
		{Kind: store.AggCount, As: "count"},
		{Kind: store.AggAvg, Field: "used_secs", As: "avg_secs"},
		{Kind: store.AggMin, Field: "used_secs", As: "min_secs"},
		{Kind: store.AggMax, Field: "used_secs", As: "max_secs"},
	}
	bins := domain.DurationBins()
	for i, bin := range bins {
		conds := []store.Cond{{Field: "used_secs", Op: store.OpGt, Value: bin.Lo}}
		if bin.Hi > 0 {
			conds = append(conds, store.Cond{Field: "used_secs", Op: store.OpLte, Value: bin.Hi})
		}
		aggs = append(aggs, store.Aggregate{
			Kind: store.AggCountIf,
			If:   conds,
			As:   fmt.Sprintf("bin_%d", i),
		})
	}

	rows, err := e.q.SelectGroupedAggregate(ctx, store.GroupSpec{
		Base:       store.Orders,
		Aggregates: aggs,
		Where:      completedWithDuration(w),
	})
	if err != nil {
		return DurationStats{}, fmt.Errorf("duration stats: %w", err)
	}
	if len(rows) == 0 {
		return DurationStats{}, nil
	}

	row := rows[0]
	stats := DurationStats{
		Count:      row.Int64("count"),
		AvgMinutes: domain.Minutes(row.Float64("avg_secs")),
		MinMinutes: domain.Minutes(row.Float64("min_secs")),
		MaxMinutes: domain.Minutes(row.Float64("max_secs")),
		Histogram:  make([]HistogramBin, len(bins)),
	}
	for i, bin := range bins {
		stats.Histogram[i] = HistogramBin{
			Range: bin.Label,
			Count: row.Int64(fmt.Sprintf("bin_%d", i)),
		}
	}
	return stats, nil
}

// Stage names of the order lifecycle, in order.
const (
	StagePayment    = "payment"
	StageAccept     = "accept"
	StagePickup     = "pickup"
	StageDelivery   = "delivery"
	StageCompletion = "completion"
)

var stageOrder = []string{StagePayment, StageAccept, StagePickup, StageDelivery, StageCompletion}

// StageEntry holds per-stage durations in minutes for one order. Stages
// whose stamps are missing or out of order are absent from the map.
type StageEntry struct {
	OrderID int64              `json:"order_id"`
	Number  string             `json:"number"`
	Stages  map[string]float64 `json:"stages"`
}

// StageReport lists per-order stage durations and the window averages over
// the stages that were present.
type StageReport struct {
	Orders   []StageEntry       `json:"orders"`
	Averages map[string]float64 `json:"averages"`
}

// OrderStages breaks each order's lifecycle into stage durations.
func (e *Engine) OrderStages(ctx context.Context, w domain.Window, page store.Pagination) (StageReport, error) {
	if err := e.checkWindow(w); err != nil {
		return StageReport{}, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	rows, err := e.q.SelectJoinedRows(ctx, store.JoinSpec{
		Base: store.Orders,
		Columns: []store.Column{
			{Expr: "id"}, {Expr: "ord_sn"},
			{Expr: "created_ts"}, {Expr: "paid_ts"}, {Expr: "accepted_ts"},
			{Expr: "pickup_ts"}, {Expr: "delivered_ts"}, {Expr: "completed_ts"},
		},
		Where: store.P().InWindow(w),
		Order: []store.OrderBy{{Expr: "created_ts", Desc: true}},
		Page:  &page,
	})
	if err != nil {
		return StageReport{}, fmt.Errorf("stage listing: %w", err)
	}

	sums := make(map[string]float64, len(stageOrder))
	counts := make(map[string]int64, len(stageOrder))

	entries := make([]StageEntry, 0, len(rows))
	for _, row := range rows {
		spans := map[string][2]int64{
			StagePayment:    {row.Int64("created_ts"), row.Int64("paid_ts")},
			StageAccept:     {row.Int64("paid_ts"), row.Int64("accepted_ts")},
			StagePickup:     {row.Int64("accepted_ts"), row.Int64("pickup_ts")},
			StageDelivery:   {row.Int64("pickup_ts"), row.Int64("delivered_ts")},
			StageCompletion: {row.Int64("delivered_ts"), row.Int64("completed_ts")},
		}
		entry := StageEntry{
			OrderID: row.Int64("id"),
			Number:  row.String("ord_sn"),
			Stages:  make(map[string]float64, len(stageOrder)),
		}
		for _, name := range stageOrder {
			span := spans[name]
			if span[0] <= 0 || span[1] <= 0 || span[1] <= span[0] {
				continue
			}
			secs := span[1] - span[0]
			entry.Stages[name] = domain.Minutes(float64(secs))
			sums[name] += float64(secs)
			counts[name]++
		}
		entries = append(entries, entry)
	}

	averages := make(map[string]float64, len(stageOrder))
	for _, name := range stageOrder {
		if counts[name] > 0 {
			averages[name] = domain.Minutes(sums[name] / float64(counts[name]))
		}
	}
	return StageReport{Orders: entries, Averages: averages}, nil
}
