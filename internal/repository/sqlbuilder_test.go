package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/store"
)

func TestBuildGroupedSQL_DimensionCounts(t *testing.T) {
	t.Parallel()

	sql, args, err := buildGroupedSQL(store.GroupSpec{
		Base:        store.Orders,
		GroupFields: []string{"zone"},
		Aggregates: []store.Aggregate{
			{Kind: store.AggCount, As: "order_count"},
			{Kind: store.AggSum, Field: "price", As: "total_price"},
		},
		Where: store.P().Between("created_ts", int64(100), int64(200)),
		Order: []store.OrderBy{{Expr: "order_count", Desc: true}},
	})
	require.NoError(t, err)
	require.Equal(t,
		"SELECT o.zone, COUNT(*) AS order_count, COALESCE(SUM(o.price), 0) AS total_price "+
			"FROM dlv_order o WHERE o.created_ts BETWEEN $1 AND $2 "+
			"GROUP BY o.zone ORDER BY order_count DESC",
		sql)
	require.Equal(t, []any{int64(100), int64(200)}, args)
}

func TestBuildGroupedSQL_TimeBuckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		unit domain.TimeUnit
		want string
	}{
		{domain.UnitDay, "to_char(to_timestamp(o.created_ts), 'YYYY-MM-DD')"},
		{domain.UnitWeek, "to_char(to_timestamp(o.created_ts), 'IYYY-IW')"},
		{domain.UnitMonth, "to_char(to_timestamp(o.created_ts), 'YYYY-MM')"},
	}
	for _, tc := range cases {
		sql, _, err := buildGroupedSQL(store.GroupSpec{
			Base:       store.Orders,
			Key:        &store.GroupKey{Column: "created_ts", Bucket: tc.unit, As: "period"},
			Aggregates: []store.Aggregate{{Kind: store.AggCount, As: "n"}},
		})
		require.NoError(t, err)
		require.Contains(t, sql, tc.want+" AS period")
		require.Contains(t, sql, "GROUP BY "+tc.want)
	}
}

func TestBuildGroupedSQL_RejectsUnknownTimeUnit(t *testing.T) {
	t.Parallel()

	_, _, err := buildGroupedSQL(store.GroupSpec{
		Base: store.Orders,
		Key:  &store.GroupKey{Column: "created_ts", Bucket: domain.TimeUnit("quarter"), As: "period"},
	})
	require.Error(t, err)
}

func TestBuildGroupedSQL_ConditionalCountsAndColumnComparison(t *testing.T) {
	t.Parallel()

	sql, args, err := buildGroupedSQL(store.GroupSpec{
		Base: store.Orders,
		Aggregates: []store.Aggregate{
			{Kind: store.AggCountIf, If: []store.Cond{
				{Field: "used_secs", Op: store.OpLte, Col: "plan_secs", Factor: 1.2},
			}, As: "near_count"},
		},
	})
	require.NoError(t, err)
	require.Contains(t, sql, "COUNT(*) FILTER (WHERE o.used_secs <= o.plan_secs * $1) AS near_count")
	require.Equal(t, []any{1.2}, args)
}

func TestBuildGroupedSQL_HavingSubstitutesAggregateExpr(t *testing.T) {
	t.Parallel()

	sql, args, err := buildGroupedSQL(store.GroupSpec{
		Base:        store.Orders,
		GroupFields: []string{"cour_id"},
		Aggregates:  []store.Aggregate{{Kind: store.AggCount, As: "order_count"}},
		Having:      []store.Cond{{Field: "order_count", Op: store.OpGte, Value: 5}},
	})
	require.NoError(t, err)
	require.Contains(t, sql, "HAVING COUNT(*) >= $1")
	require.Equal(t, []any{5}, args)
}

func TestBuildGroupedSQL_HavingUnknownAlias(t *testing.T) {
	t.Parallel()

	_, _, err := buildGroupedSQL(store.GroupSpec{
		Base:   store.Orders,
		Having: []store.Cond{{Field: "nope", Op: store.OpGte, Value: 5}},
	})
	require.Error(t, err)
}

func TestBuildGroupedSQL_HourPseudoColumn(t *testing.T) {
	t.Parallel()

	sql, args, err := buildGroupedSQL(store.GroupSpec{
		Base: store.Orders,
		Aggregates: []store.Aggregate{
			{Kind: store.AggCountIf, If: []store.Cond{
				{Field: store.HourOfDay, Op: store.OpBetween, Value: 6, Value2: 11},
			}, As: "morning"},
		},
	})
	require.NoError(t, err)
	require.Contains(t, sql,
		"EXTRACT(HOUR FROM to_timestamp(o.created_ts))::int BETWEEN $1 AND $2")
	require.Equal(t, []any{6, 11}, args)
}

func TestBuildJoinedSQL_JoinsColumnsAndPagination(t *testing.T) {
	t.Parallel()

	sql, args, err := buildJoinedSQL(store.JoinSpec{
		Base: store.Orders,
		Joins: []store.Join{
			{To: store.Members, FromKey: "mem_id", ToKey: "id"},
			{To: store.Couriers, FromKey: "cour_id", ToKey: "id", Inner: true},
		},
		Columns: []store.Column{
			{Expr: "*"},
			{Expr: "members.nick", As: "customer_name"},
			{Expr: "couriers.legal_name", As: "courier_name"},
		},
		Where: store.P().Eq("is_del", 0),
		Order: []store.OrderBy{{Expr: "created_ts", Desc: true}},
		Page:  &store.Pagination{Limit: 20, Page: 3},
	})
	require.NoError(t, err)
	require.Equal(t,
		"SELECT o.*, m.nick AS customer_name, q.legal_name AS courier_name "+
			"FROM dlv_order o "+
			"LEFT JOIN dlv_member m ON o.mem_id = m.id "+
			"JOIN dlv_courier q ON o.cour_id = q.id "+
			"WHERE o.is_del = $1 ORDER BY o.created_ts DESC LIMIT $2 OFFSET $3",
		sql)
	require.Equal(t, []any{0, 20, 40}, args)
}

func TestBuildJoinedSQL_DefaultsToBaseStar(t *testing.T) {
	t.Parallel()

	sql, _, err := buildJoinedSQL(store.JoinSpec{Base: store.Couriers})
	require.NoError(t, err)
	require.Equal(t, "SELECT q.* FROM dlv_courier q", sql)
}

func TestBuildGroupedSQL_PaginationClampsLimit(t *testing.T) {
	t.Parallel()

	_, args, err := buildGroupedSQL(store.GroupSpec{
		Base:       store.Orders,
		Aggregates: []store.Aggregate{{Kind: store.AggCount, As: "n"}},
		Page:       &store.Pagination{Limit: 500, Page: 0},
	})
	require.NoError(t, err)
	require.Equal(t, []any{50, 0}, args)
}
