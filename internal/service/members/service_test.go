package members

import (
	"context"
	"errors"
	"testing"

	"delivery-analytics/internal/apperr"
	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/store"
)

type fakeQuerier struct {
	grouped func(ctx context.Context, spec store.GroupSpec) ([]store.Row, error)
}

func (f *fakeQuerier) SelectGroupedAggregate(ctx context.Context, spec store.GroupSpec) ([]store.Row, error) {
	return f.grouped(ctx, spec)
}

func newTestService(q querier) *Service {
	return NewService(q, 31, 0, logx.Nop())
}

func testWindow() domain.Window {
	return domain.Window{Start: 1700000000, End: 1702000000}
}

func TestByOrderFrequency(t *testing.T) {
	t.Parallel()

	var captured store.GroupSpec
	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			captured = spec
			return []store.Row{
				{"mem_id": int64(3), "nick": "alice", "phone": "100",
					"order_count": int64(20), "completed": int64(18),
					"total_spent": 400.0, "avg_price": 20.0,
					"first_ts": int64(1700000000), "last_ts": int64(1700864000)},
			}, nil
		},
	}

	ranks, err := newTestService(q).ByOrderFrequency(context.Background(), testWindow(),
		RankOptions{MinOrders: 5})
	if err != nil {
		t.Fatalf("ByOrderFrequency: %v", err)
	}

	r := ranks[0]
	if r.MemberID != 3 || r.Nick != "alice" {
		t.Fatalf("unexpected rank: %+v", r)
	}
	// 864000 seconds is ten days.
	if r.SpanDays != 10 {
		t.Fatalf("span days = %d, want 10", r.SpanDays)
	}
	if r.PerDay != 2.0 {
		t.Fatalf("per day = %v, want 2.0", r.PerDay)
	}
	if r.PerWeek != 14.0 {
		t.Fatalf("per week = %v, want 14.0", r.PerWeek)
	}
	if r.PerMonth != 60.0 {
		t.Fatalf("per month = %v, want 60.0", r.PerMonth)
	}
	if r.SpentPerDay != 40.0 {
		t.Fatalf("spent per day = %v, want 40.0", r.SpentPerDay)
	}

	if len(captured.Having) != 1 || captured.Having[0].Field != "order_count" {
		t.Fatalf("minOrders threshold not applied: %+v", captured.Having)
	}
}

func TestBySpending_ZeroSpanCountsAsOneDay(t *testing.T) {
	t.Parallel()

	var captured store.GroupSpec
	q := &fakeQuerier{
		grouped: func(_ context.Context, spec store.GroupSpec) ([]store.Row, error) {
			captured = spec
			return []store.Row{
				{"mem_id": int64(4), "nick": "bob", "phone": "200",
					"order_count": int64(3), "completed": int64(3),
					"total_spent": 90.0, "avg_price": 30.0,
					"first_ts": int64(1700000000), "last_ts": int64(1700003600)},
			}, nil
		},
	}

	ranks, err := newTestService(q).BySpending(context.Background(), testWindow(),
		RankOptions{MinSpent: 50})
	if err != nil {
		t.Fatalf("BySpending: %v", err)
	}

	r := ranks[0]
	if r.SpanDays != 1 {
		t.Fatalf("span days = %d, want 1 for a same-day member", r.SpanDays)
	}
	if r.SpentPerDay != 90.0 {
		t.Fatalf("spent per day = %v, want 90.0", r.SpentPerDay)
	}

	if len(captured.Having) != 1 || captured.Having[0].Field != "total_spent" {
		t.Fatalf("minSpent threshold not applied: %+v", captured.Having)
	}
	if captured.Order[0].Expr != "total_spent" || !captured.Order[0].Desc {
		t.Fatalf("unexpected ordering: %+v", captured.Order)
	}
}

func TestRank_WindowValidation(t *testing.T) {
	t.Parallel()

	s := newTestService(&fakeQuerier{})

	_, err := s.ByOrderFrequency(context.Background(), domain.Window{}, RankOptions{})
	if !errors.Is(err, apperr.ErrMissingWindow) {
		t.Fatalf("expected ErrMissingWindow, got %v", err)
	}

	_, err = s.BySpending(context.Background(), domain.Window{Start: 9, End: 5}, RankOptions{})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
