package store

import "delivery-analytics/internal/domain"

// Entity names a queryable table in adapter-neutral terms.
type Entity string

// Queryable entities.
const (
	Orders   Entity = "orders"
	Members  Entity = "members"
	Couriers Entity = "couriers"
)

// HourOfDay is a pseudo-column adapters render as the local hour extracted
// from the order creation timestamp. Usable in conditions only.
const HourOfDay = "hour_of_day"

// Op is a comparison operator.
type Op string

// Supported operators.
const (
	OpEq      Op = "="
	OpNe      Op = "<>"
	OpLt      Op = "<"
	OpLte     Op = "<="
	OpGt      Op = ">"
	OpGte     Op = ">="
	OpBetween Op = "between"
	OpLike    Op = "like"
)

// Cond is one condition. Exactly one of Value/Col is set: Value compares
// against a literal (parameterized by the adapter), Col against another
// column, optionally scaled by Factor (0 means 1.0).
type Cond struct {
	Field  string
	Op     Op
	Value  any
	Value2 any // upper bound for OpBetween
	Col    string
	Factor float64
}

// Predicate is a conjunction of conditions. The zero value matches
// everything.
type Predicate struct {
	Conds []Cond
}

// P starts a predicate chain.
func P() Predicate { return Predicate{} }

// Between appends field BETWEEN lo AND hi.
func (p Predicate) Between(field string, lo, hi any) Predicate {
	p.Conds = append(p.Conds, Cond{Field: field, Op: OpBetween, Value: lo, Value2: hi})
	return p
}

// Eq appends field = v.
func (p Predicate) Eq(field string, v any) Predicate {
	p.Conds = append(p.Conds, Cond{Field: field, Op: OpEq, Value: v})
	return p
}

// Gt appends field > v.
func (p Predicate) Gt(field string, v any) Predicate {
	p.Conds = append(p.Conds, Cond{Field: field, Op: OpGt, Value: v})
	return p
}

// Lte appends field <= v.
func (p Predicate) Lte(field string, v any) Predicate {
	p.Conds = append(p.Conds, Cond{Field: field, Op: OpLte, Value: v})
	return p
}

// InWindow appends created_ts BETWEEN the window bounds (inclusive).
func (p Predicate) InWindow(w domain.Window) Predicate {
	return p.Between("created_ts", w.Start, w.End)
}

// AggKind is an aggregate function identifier.
type AggKind string

// Supported aggregates. Conditional kinds (CountIf, AvgIf) apply the
// aggregate only to rows matching Aggregate.If.
const (
	AggCount         AggKind = "count"
	AggCountDistinct AggKind = "count_distinct"
	AggSum           AggKind = "sum"
	AggAvg           AggKind = "avg"
	AggMin           AggKind = "min"
	AggMax           AggKind = "max"
	AggStdDev        AggKind = "stddev"
	AggCountIf       AggKind = "count_if"
	AggAvgIf         AggKind = "avg_if"
)

// Aggregate is one aggregated output column.
type Aggregate struct {
	Kind  AggKind
	Field string // ignored for AggCount
	If    []Cond // conjunction, for conditional kinds
	As    string
}

// GroupKey selects the grouping axis: a plain column, or created_ts
// bucketed by a time unit.
type GroupKey struct {
	Column string
	Bucket domain.TimeUnit
	As     string
}

// OrderBy sorts results by a selected output column.
type OrderBy struct {
	Expr string
	Desc bool
}

// Join declares a foreign-key join onto another entity.
type Join struct {
	To      Entity
	FromKey string
	ToKey   string
	Inner   bool // default is a left join
}

// Pagination limits and offsets ranked listings. Resolve clamps it to the
// contract bounds.
type Pagination struct {
	Limit int
	Page  int
}

// Resolve clamps limit to [1,100] (default 50) and page to ≥ 1.
func (p Pagination) Resolve() Pagination {
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 50
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Offset returns the row offset for the resolved page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit }

// GroupSpec describes one grouped aggregation. A nil Key yields a single
// ungrouped summary row. GroupFields are extra columns carried through the
// grouping (and included in it), qualified as "entity.column" when they
// come from a joined entity.
type GroupSpec struct {
	Base        Entity
	Joins       []Join
	Key         *GroupKey
	GroupFields []string
	Aggregates  []Aggregate
	Where       Predicate
	Having      []Cond // conditions over aggregate output columns
	Order       []OrderBy
	Page        *Pagination
}

// Column selects one output column of a join query, optionally renamed.
type Column struct {
	Expr string
	As   string
}

// JoinSpec describes a plain (non-aggregated) select across joined
// entities.
type JoinSpec struct {
	Base    Entity
	Joins   []Join
	Columns []Column
	Where   Predicate
	Order   []OrderBy
	Page    *Pagination
}
