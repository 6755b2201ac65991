package repository

import (
	"fmt"
	"strconv"
	"strings"

	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/store"
)

// builder renders one statement. Positional args accumulate as expressions
// are written so every value ends up a bind parameter.
type builder struct {
	base store.Entity
	args []any
	// aggregates rendered so far, keyed by output alias. HAVING conditions
	// reference aliases, which Postgres does not allow, so the builder
	// substitutes the full expression.
	aggExprs map[string]string
}

func newBuilder(base store.Entity) *builder {
	return &builder{base: base, aggExprs: make(map[string]string)}
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// column qualifies a bare column with the base alias. Prefixed references
// like "courier.line_status" resolve against the joined entity's alias,
// and the hour pseudo-column expands to an EXTRACT over the created stamp.
func (b *builder) column(field string) string {
	if field == store.HourOfDay {
		return fmt.Sprintf("EXTRACT(HOUR FROM to_timestamp(%s.created_ts))::int", tables[b.base].alias)
	}
	if ent, col, ok := strings.Cut(field, "."); ok {
		if t, known := tables[store.Entity(ent)]; known {
			return t.alias + "." + col
		}
	}
	return tables[b.base].alias + "." + field
}

func (b *builder) fromClause(joins []store.Join) string {
	base := tables[b.base]
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", base.name, base.alias)
	for _, j := range joins {
		to := tables[j.To]
		kind := "LEFT JOIN"
		if j.Inner {
			kind = "JOIN"
		}
		fmt.Fprintf(&sb, " %s %s %s ON %s.%s = %s.%s",
			kind, to.name, to.alias, base.alias, j.FromKey, to.alias, j.ToKey)
	}
	return sb.String()
}

func (b *builder) cond(c store.Cond) string {
	lhs := b.column(c.Field)
	if c.Col != "" {
		rhs := b.column(c.Col)
		if c.Factor != 0 && c.Factor != 1 {
			rhs = fmt.Sprintf("%s * %s", rhs, b.bind(c.Factor))
		}
		return fmt.Sprintf("%s %s %s", lhs, c.Op, rhs)
	}
	if c.Op == store.OpBetween {
		return fmt.Sprintf("%s BETWEEN %s AND %s", lhs, b.bind(c.Value), b.bind(c.Value2))
	}
	return fmt.Sprintf("%s %s %s", lhs, c.Op, b.bind(c.Value))
}

func (b *builder) conds(cs []store.Cond) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = b.cond(c)
	}
	return strings.Join(parts, " AND ")
}

func (b *builder) writeWhere(sb *strings.Builder, p store.Predicate) {
	if len(p.Conds) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(b.conds(p.Conds))
}

func (b *builder) aggregate(a store.Aggregate) string {
	var expr string
	switch a.Kind {
	case store.AggCount:
		expr = "COUNT(*)"
	case store.AggCountDistinct:
		expr = fmt.Sprintf("COUNT(DISTINCT %s)", b.column(a.Field))
	case store.AggSum:
		expr = fmt.Sprintf("COALESCE(SUM(%s), 0)", b.column(a.Field))
	case store.AggAvg:
		expr = fmt.Sprintf("AVG(%s)", b.column(a.Field))
	case store.AggMin:
		expr = fmt.Sprintf("MIN(%s)", b.column(a.Field))
	case store.AggMax:
		expr = fmt.Sprintf("MAX(%s)", b.column(a.Field))
	case store.AggStdDev:
		expr = fmt.Sprintf("STDDEV_POP(%s)", b.column(a.Field))
	case store.AggCountIf:
		expr = fmt.Sprintf("COUNT(*) FILTER (WHERE %s)", b.conds(a.If))
	case store.AggAvgIf:
		expr = fmt.Sprintf("AVG(%s) FILTER (WHERE %s)", b.column(a.Field), b.conds(a.If))
	}
	b.aggExprs[a.As] = expr
	return fmt.Sprintf("%s AS %s", expr, a.As)
}

func (b *builder) groupKey(k store.GroupKey) (string, error) {
	col := b.column(k.Column)
	switch k.Bucket {
	case "":
		return col, nil
	case domain.UnitDay:
		return fmt.Sprintf("to_char(to_timestamp(%s), 'YYYY-MM-DD')", col), nil
	case domain.UnitWeek:
		return fmt.Sprintf("to_char(to_timestamp(%s), 'IYYY-IW')", col), nil
	case domain.UnitMonth:
		return fmt.Sprintf("to_char(to_timestamp(%s), 'YYYY-MM')", col), nil
	}
	return "", fmt.Errorf("unsupported time unit %q", k.Bucket)
}

// orderExpr resolves ORDER BY targets. Aliases produced by aggregates or
// the group key are used as is, anything else is treated as a column.
func (b *builder) orderExpr(o store.OrderBy, aliases map[string]bool) string {
	expr := o.Expr
	if !aliases[expr] {
		expr = b.column(expr)
	}
	if o.Desc {
		return expr + " DESC"
	}
	return expr + " ASC"
}

func buildGroupedSQL(spec store.GroupSpec) (string, []any, error) {
	b := newBuilder(spec.Base)
	aliases := make(map[string]bool)

	selects := make([]string, 0, len(spec.Aggregates)+len(spec.GroupFields)+1)
	groups := make([]string, 0, len(spec.GroupFields)+1)

	if spec.Key != nil {
		keyExpr, err := b.groupKey(*spec.Key)
		if err != nil {
			return "", nil, err
		}
		selects = append(selects, fmt.Sprintf("%s AS %s", keyExpr, spec.Key.As))
		groups = append(groups, keyExpr)
		aliases[spec.Key.As] = true
	}
	for _, f := range spec.GroupFields {
		col := b.column(f)
		selects = append(selects, col)
		groups = append(groups, col)
	}
	for _, a := range spec.Aggregates {
		selects = append(selects, b.aggregate(a))
		aliases[a.As] = true
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.fromClause(spec.Joins))
	b.writeWhere(&sb, spec.Where)

	if len(groups) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(groups, ", "))
	}
	if len(spec.Having) > 0 {
		parts := make([]string, 0, len(spec.Having))
		for _, c := range spec.Having {
			expr, ok := b.aggExprs[c.Field]
			if !ok {
				return "", nil, fmt.Errorf("having references unknown aggregate %q", c.Field)
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", expr, c.Op, b.bind(c.Value)))
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(strings.Join(parts, " AND "))
	}
	if len(spec.Order) > 0 {
		orders := make([]string, len(spec.Order))
		for i, o := range spec.Order {
			orders[i] = b.orderExpr(o, aliases)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}
	writePagination(&sb, b, spec.Page)
	return sb.String(), b.args, nil
}

func buildJoinedSQL(spec store.JoinSpec) (string, []any, error) {
	b := newBuilder(spec.Base)
	aliases := make(map[string]bool)

	selects := make([]string, 0, len(spec.Columns))
	if len(spec.Columns) == 0 {
		selects = append(selects, tables[spec.Base].alias+".*")
	}
	for _, c := range spec.Columns {
		if c.Expr == "*" {
			selects = append(selects, tables[spec.Base].alias+".*")
			continue
		}
		col := b.column(c.Expr)
		if c.As != "" {
			selects = append(selects, fmt.Sprintf("%s AS %s", col, c.As))
			aliases[c.As] = true
		} else {
			selects = append(selects, col)
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.fromClause(spec.Joins))
	b.writeWhere(&sb, spec.Where)
	if len(spec.Order) > 0 {
		orders := make([]string, len(spec.Order))
		for i, o := range spec.Order {
			orders[i] = b.orderExpr(o, aliases)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}
	writePagination(&sb, b, spec.Page)
	return sb.String(), b.args, nil
}

func writePagination(sb *strings.Builder, b *builder, p *store.Pagination) {
	if p == nil {
		return
	}
	r := p.Resolve()
	fmt.Fprintf(sb, " LIMIT %s OFFSET %s", b.bind(r.Limit), b.bind(r.Offset()))
}
