package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-analytics/internal/store"
)

// tables maps adapter-neutral entities onto the legacy schema.
var tables = map[store.Entity]struct {
	name  string
	alias string
}{
	store.Orders:   {"dlv_order", "o"},
	store.Members:  {"dlv_member", "m"},
	store.Couriers: {"dlv_courier", "q"},
}

// Querier executes the declarative store requests against Postgres. All
// literals travel as bind parameters.
type Querier struct {
	db *pgxpool.Pool
}

// NewQuerier creates a Querier over a pgx pool.
func NewQuerier(db *pgxpool.Pool) *Querier { return &Querier{db: db} }

var _ store.Querier = (*Querier)(nil)

// CountMatching returns the number of rows matching the predicate.
func (r *Querier) CountMatching(ctx context.Context, base store.Entity, joins []store.Join, where store.Predicate) (int64, error) {
	b := newBuilder(base)
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(b.fromClause(joins))
	b.writeWhere(&sb, where)

	var n int64
	if err := r.db.QueryRow(ctx, sb.String(), b.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", base, err)
	}
	return n, nil
}

// SelectGroupedAggregate executes one grouped aggregation.
func (r *Querier) SelectGroupedAggregate(ctx context.Context, spec store.GroupSpec) ([]store.Row, error) {
	sql, args, err := buildGroupedSQL(spec)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("grouped aggregate on %s: %w", spec.Base, err)
	}
	defer rows.Close()
	return collectRows(rows)
}

// SelectJoinedRows executes one plain select across joined entities.
func (r *Querier) SelectJoinedRows(ctx context.Context, spec store.JoinSpec) ([]store.Row, error) {
	sql, args, err := buildJoinedSQL(spec)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("joined select on %s: %w", spec.Base, err)
	}
	defer rows.Close()
	return collectRows(rows)
}

func collectRows(rows pgx.Rows) ([]store.Row, error) {
	fields := rows.FieldDescriptions()
	out := make([]store.Row, 0, 16)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(store.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeValue converts driver-specific scan values into the plain Go
// types store.Row accessors understand. SUM, AVG and STDDEV over integer
// columns come back as NUMERIC, which pgx surfaces as pgtype.Numeric.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
