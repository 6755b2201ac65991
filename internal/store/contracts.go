// Package store declares the read-only collaborator contract the analytics
// core delegates execution to. The core builds declarative grouped
// aggregate and join requests; a concrete adapter (internal/repository)
// turns them into parameterized queries against the backing relational
// store. Nothing here executes SQL.
package store

import "context"

// Row is one result row: field name → value.
type Row map[string]any

// Querier is the abstract relational query interface consumed by the
// analytics engines. All operations are read-only and parameterized.
type Querier interface {
	// CountMatching returns the number of rows of base (with optional
	// joins) matching the predicate.
	CountMatching(ctx context.Context, base Entity, joins []Join, where Predicate) (int64, error)

	// SelectGroupedAggregate executes one grouped (or ungrouped, when
	// spec.Key is nil) aggregation and returns a row per group.
	SelectGroupedAggregate(ctx context.Context, spec GroupSpec) ([]Row, error)

	// SelectJoinedRows returns plain rows across joined entities.
	SelectJoinedRows(ctx context.Context, spec JoinSpec) ([]Row, error)
}

// Int64 reads an integer-ish row field, tolerating the numeric types a
// driver may hand back for aggregates.
func (r Row) Int64(field string) int64 {
	switch v := r[field].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Float64 reads a numeric row field.
func (r Row) Float64(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// String reads a text row field.
func (r Row) String(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}
