package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"delivery-analytics/internal/apperr"
	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/store"
)

type fakeQuerier struct {
	grouped func(ctx context.Context, spec store.GroupSpec) ([]store.Row, error)
	joined  func(ctx context.Context, spec store.JoinSpec) ([]store.Row, error)
}

func (f *fakeQuerier) SelectGroupedAggregate(ctx context.Context, spec store.GroupSpec) ([]store.Row, error) {
	if f.grouped == nil {
		return nil, nil
	}
	return f.grouped(ctx, spec)
}

func (f *fakeQuerier) SelectJoinedRows(ctx context.Context, spec store.JoinSpec) ([]store.Row, error) {
	if f.joined == nil {
		return nil, nil
	}
	return f.joined(ctx, spec)
}

func newTestEngine(q querier) *Engine {
	return NewEngine(q, schema.NewRegistry(), 31, 0, logx.Nop())
}

func testWindow() domain.Window {
	return domain.Window{Start: 1701388800, End: 1701475200}
}

func TestByDimensions_BuildsReport(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			switch {
			case spec.Key != nil:
				return []store.Row{
					{"period": "2023-12-01", "order_count": int64(3), "completed": int64(2),
						"cancelled": int64(0), "total_price": 60.0, "total_fee": 12.0, "avg_price": 20.0},
				}, nil
			case len(spec.GroupFields) == 1 && spec.GroupFields[0] == "status":
				return []store.Row{
					{"status": int64(5), "order_count": int64(2), "completed": int64(2),
						"cancelled": int64(0), "total_price": 50.0, "total_fee": 9.0, "avg_price": 25.0},
				}, nil
			default:
				// summary
				return []store.Row{
					{"order_count": int64(3), "completed": int64(2), "cancelled": int64(1),
						"total_price": 60.006, "total_fee": 6.0, "avg_price": 20.002,
						"customers": int64(2), "couriers": int64(1)},
				}, nil
			}
		},
	}

	report, err := newTestEngine(q).ByDimensions(context.Background(), testWindow(),
		[]Dimension{DimTime, DimStatus})
	if err != nil {
		t.Fatalf("ByDimensions: %v", err)
	}

	if report.Summary.OrderCount != 3 || report.Summary.Customers != 2 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if report.Summary.TotalPrice != 60.01 {
		t.Fatalf("total price not rounded: %v", report.Summary.TotalPrice)
	}
	if report.Summary.TotalFee != 6.0 {
		t.Fatalf("total delivery fee = %v, want 6.0", report.Summary.TotalFee)
	}
	if report.Summary.AvgPrice != 20.0 {
		t.Fatalf("avg price not rounded: %v", report.Summary.AvgPrice)
	}

	timeBuckets := report.Dimensions[DimTime]
	if len(timeBuckets) != 1 || timeBuckets[0].Key != "2023-12-01" {
		t.Fatalf("unexpected time buckets: %+v", timeBuckets)
	}

	statusBuckets := report.Dimensions[DimStatus]
	if len(statusBuckets) != 1 {
		t.Fatalf("unexpected status buckets: %+v", statusBuckets)
	}
	if statusBuckets[0].Key != "5" || statusBuckets[0].Label != "completed" {
		t.Fatalf("status bucket not labeled: %+v", statusBuckets[0])
	}
	if statusBuckets[0].Description == "" {
		t.Fatal("status bucket must carry a description")
	}
}

func TestByDimensions_CancelledExcludesClosed(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		specs []store.GroupSpec
	)
	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			mu.Lock()
			specs = append(specs, spec)
			mu.Unlock()
			return nil, nil
		},
	}

	_, err := newTestEngine(q).ByDimensions(context.Background(), testWindow(),
		[]Dimension{DimStatus})
	if err != nil {
		t.Fatalf("ByDimensions: %v", err)
	}

	for _, spec := range specs {
		for _, agg := range spec.Aggregates {
			if agg.As != "cancelled" {
				continue
			}
			c := agg.If[0]
			if c.Op != store.OpEq || c.Value != int(domain.StatusCancelled) {
				t.Fatalf("cancelled must count status %d only, got %+v",
					domain.StatusCancelled, c)
			}
		}
	}
}

func TestByDimensions_DefaultsToAllDimensions(t *testing.T) {
	t.Parallel()

	var dims []string
	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			if spec.Key != nil {
				dims = append(dims, "time")
			} else if len(spec.GroupFields) == 1 {
				dims = append(dims, spec.GroupFields[0])
			}
			return nil, nil
		},
	}

	report, err := newTestEngine(q).ByDimensions(context.Background(), testWindow(), nil)
	if err != nil {
		t.Fatalf("ByDimensions: %v", err)
	}
	if len(report.Dimensions) != 4 {
		t.Fatalf("expected 4 dimensions, got %d", len(report.Dimensions))
	}
}

func TestByDimensions_WindowValidation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeQuerier{})

	_, err := e.ByDimensions(context.Background(), domain.Window{}, nil)
	if !errors.Is(err, apperr.ErrMissingWindow) {
		t.Fatalf("expected ErrMissingWindow, got %v", err)
	}

	_, err = e.ByDimensions(context.Background(), domain.Window{Start: 200, End: 100}, nil)
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for inverted window, got %v", err)
	}

	tooLong := domain.Window{Start: 0, End: 0}
	tooLong.Start = 1700000000
	tooLong.End = tooLong.Start + 32*86400
	_, err = e.ByDimensions(context.Background(), tooLong, nil)
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for oversized window, got %v", err)
	}
}

func TestByDimensions_UnknownDimension(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine(&fakeQuerier{}).ByDimensions(context.Background(), testWindow(),
		[]Dimension{"weather"})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestByDimensions_FirstFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("store down")
	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			if len(spec.GroupFields) == 1 && spec.GroupFields[0] == "zone" {
				return nil, boom
			}
			return nil, nil
		},
	}

	_, err := newTestEngine(q).ByDimensions(context.Background(), testWindow(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestTrends_MetricSpecs(t *testing.T) {
	t.Parallel()

	var captured []store.GroupSpec
	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			captured = append(captured, spec)
			switch spec.Aggregates[0].As {
			case "order_count":
				return []store.Row{{"period": "2023-12", "order_count": int64(7),
					"completed": int64(5), "cancelled": int64(1)}}, nil
			case "total_price":
				return []store.Row{{"period": "2023-12", "total_price": 120.006,
					"total_fee": 12.0, "avg_price": 24.001, "avg_fee": 2.4}}, nil
			default:
				return []store.Row{{"period": "2023-12", "avg_secs": 754.0,
					"min_secs": 300.0, "max_secs": 1500.0, "avg_plan_secs": 700.0}}, nil
			}
		},
	}

	out, err := newTestEngine(q).Trends(context.Background(), testWindow(), domain.UnitMonth, nil)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}

	oc := out.OrderCounts[0]
	if oc.OrderCount != 7 || oc.Completed != 5 || oc.Cancelled != 1 {
		t.Fatalf("order count bucket = %+v", oc)
	}

	rev := out.Revenue[0]
	if rev.TotalPrice != 120.01 {
		t.Fatalf("total price not rounded to 2 decimals: %v", rev.TotalPrice)
	}
	if rev.TotalFee != 12.0 || rev.Total != 132.01 {
		t.Fatalf("fee sums wrong: %+v", rev)
	}
	if rev.AvgPrice != 24.0 || rev.AvgFee != 2.4 {
		t.Fatalf("per-order averages wrong: %+v", rev)
	}

	d := out.Durations[0]
	if d.AvgMinutes != 12.6 || d.MinMinutes != 5.0 || d.MaxMinutes != 25.0 {
		t.Fatalf("duration minutes wrong: %+v", d)
	}
	if d.AvgExpectedMinutes != 11.7 {
		t.Fatalf("avg expected = %v, want 11.7", d.AvgExpectedMinutes)
	}
	if d.DiffMinutes != 0.9 {
		t.Fatalf("avg diff = %v, want 0.9 (positive means late)", d.DiffMinutes)
	}

	if len(captured) != 3 {
		t.Fatalf("expected 3 trend queries, got %d", len(captured))
	}
	for _, spec := range captured {
		switch spec.Aggregates[0].As {
		case "order_count":
			// the volume trend counts cancelled as the single cancelled
			// terminal status, not every negative code
			c := spec.Aggregates[2].If[0]
			if c.Op != store.OpEq || c.Value != int(domain.StatusCancelled) {
				t.Fatalf("cancelled condition = %+v", c)
			}
		default:
			foundStatus := false
			for _, c := range spec.Where.Conds {
				if c.Field == "status" && c.Value == int(domain.StatusCompleted) {
					foundStatus = true
				}
			}
			if !foundStatus {
				t.Fatalf("trend %q must be restricted to completed orders", spec.Aggregates[0].As)
			}
		}
	}
}

func TestTrends_OnlyRequestedMetrics(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			if spec.Aggregates[0].As != "order_count" {
				t.Fatalf("unexpected trend query: %+v", spec.Aggregates)
			}
			return nil, nil
		},
	}

	out, err := newTestEngine(q).Trends(context.Background(), testWindow(), domain.UnitDay,
		[]string{MetricOrderCount})
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if out.Revenue != nil || out.Durations != nil {
		t.Fatalf("unrequested series must stay nil: %+v", out)
	}
}

func TestTrends_RejectsUnknownUnitAndMetric(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeQuerier{})

	_, err := e.Trends(context.Background(), testWindow(), domain.TimeUnit("hour"), nil)
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unit, got %v", err)
	}

	_, err = e.Trends(context.Background(), testWindow(), domain.UnitDay, []string{"tips"})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for metric, got %v", err)
	}
}

func TestDeliveryDurations(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			return []store.Row{{
				"count": int64(2), "avg_secs": 900.0, "min_secs": 600.0, "max_secs": 1200.0,
				"bin_0": int64(1), "bin_1": int64(1), "bin_2": int64(0), "bin_3": int64(0),
				"bin_4": int64(0), "bin_5": int64(0), "bin_6": int64(0),
			}}, nil
		},
		joined: func(_ context.Context, spec store.JoinSpec) ([]store.Row, error) {
			return []store.Row{
				{"id": int64(1), "ord_sn": "SN1", "price": 30.0, "created_ts": int64(100),
					"used_secs": int64(1200), "plan_secs": int64(900),
					"courier_id": int64(9), "courier_name": "Alice A", "courier_phone": "100"},
				{"id": int64(2), "ord_sn": "SN2", "price": 20.0, "created_ts": int64(200),
					"used_secs": int64(600), "plan_secs": int64(900),
					"courier_id": int64(0)},
			}, nil
		},
	}

	report, err := newTestEngine(q).DeliveryDurations(context.Background(), testWindow(), store.Pagination{})
	if err != nil {
		t.Fatalf("DeliveryDurations: %v", err)
	}

	if report.Stats.Count != 2 || report.Stats.AvgMinutes != 15.0 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
	if len(report.Stats.Histogram) != 7 || report.Stats.Histogram[6].Range != "60+" {
		t.Fatalf("unexpected histogram: %+v", report.Stats.Histogram)
	}

	if len(report.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(report.Orders))
	}
	late := report.Orders[0]
	if late.Stats.OnTime {
		t.Fatal("1200s against 900s expected must not be on time")
	}
	if late.Stats.DiffMinutes != 5.0 {
		t.Fatalf("diff minutes = %v, want 5.0", late.Stats.DiffMinutes)
	}
	if late.Courier == nil || late.Courier.Name != "Alice A" {
		t.Fatalf("courier info missing: %+v", late.Courier)
	}

	onTime := report.Orders[1]
	if !onTime.Stats.OnTime {
		t.Fatal("600s against 900s expected must be on time")
	}
	if onTime.Courier != nil {
		t.Fatal("unassigned order must not carry courier info")
	}
}

func TestOrderStages(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{
		joined: func(_ context.Context, spec store.JoinSpec) ([]store.Row, error) {
			return []store.Row{
				{"id": int64(1), "ord_sn": "SN1",
					"created_ts": int64(1000), "paid_ts": int64(1060), "accepted_ts": int64(1120),
					"pickup_ts": int64(1300), "delivered_ts": int64(1900), "completed_ts": int64(1960)},
				{"id": int64(2), "ord_sn": "SN2",
					"created_ts": int64(2000), "paid_ts": int64(2030), "accepted_ts": int64(0),
					"pickup_ts": int64(0), "delivered_ts": int64(0), "completed_ts": int64(0)},
			}, nil
		},
	}

	report, err := newTestEngine(q).OrderStages(context.Background(), testWindow(), store.Pagination{})
	if err != nil {
		t.Fatalf("OrderStages: %v", err)
	}

	full := report.Orders[0]
	if len(full.Stages) != 5 {
		t.Fatalf("expected 5 stages, got %+v", full.Stages)
	}
	if full.Stages[StageDelivery] != 10.0 {
		t.Fatalf("delivery stage = %v, want 10.0", full.Stages[StageDelivery])
	}

	partial := report.Orders[1]
	if len(partial.Stages) != 1 {
		t.Fatalf("expected only the payment stage, got %+v", partial.Stages)
	}
	if partial.Stages[StagePayment] != 0.5 {
		t.Fatalf("payment stage = %v, want 0.5", partial.Stages[StagePayment])
	}

	if _, ok := report.Averages[StageAccept]; !ok {
		t.Fatal("accept average must exist, one order had it")
	}
	if report.Averages[StagePayment] != 0.8 {
		t.Fatalf("payment average = %v, want 0.8", report.Averages[StagePayment])
	}
}
