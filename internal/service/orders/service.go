// Package orders serves order detail and listing queries with their member
// and courier relations expanded, translated into the public field shape.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"delivery-analytics/internal/apperr"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/store"
)

// relationEntities maps the translation-layer entities onto store entities.
var relationEntities = map[schema.EntityType]store.Entity{
	schema.EntityMember:  store.Members,
	schema.EntityCourier: store.Couriers,
}

// Service answers order queries joined with their relations.
type Service struct {
	q                querier
	translator       *schema.Translator
	mapping          *schema.Mapping
	maxWindowDays    int
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService - creates a new orders Service.
func NewService(q querier, tr *schema.Translator, m *schema.Mapping, maxWindowDays int, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		q:                q,
		translator:       tr,
		mapping:          m,
		maxWindowDays:    maxWindowDays,
		operationTimeout: timeout,
		logger:           logger,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// orderJoins derives the joins and relation columns of an order query from
// the declared relation tables, so listing output always matches what the
// translator preserves.
func (s *Service) orderJoins() ([]store.Join, []store.Column) {
	var (
		joins   []store.Join
		columns = []store.Column{{Expr: "*"}}
	)
	for _, rel := range s.mapping.Relations() {
		if rel.From != schema.EntityOrder {
			continue
		}
		ent := relationEntities[rel.To]
		joins = append(joins, store.Join{To: ent, FromKey: rel.FromKey, ToKey: rel.ToKey})
		for _, f := range rel.Fields {
			columns = append(columns, store.Column{
				Expr: string(ent) + "." + f.Internal,
				As:   f.Public,
			})
		}
	}
	return joins, columns
}

// GetByID returns one order with expanded member_info and courier_info.
func (s *Service) GetByID(ctx context.Context, id int64, mode schema.LanguageMode) (schema.Record, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order id must be positive", apperr.ErrInvalid)
	}
	return s.detail(ctx, store.P().Eq("id", id), mode)
}

// GetByNumber returns one order looked up by its order number.
func (s *Service) GetByNumber(ctx context.Context, number string, mode schema.LanguageMode) (schema.Record, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("%w: order number must not be empty", apperr.ErrInvalid)
	}
	return s.detail(ctx, store.P().Eq("ord_sn", number), mode)
}

func (s *Service) detail(ctx context.Context, where store.Predicate, mode schema.LanguageMode) (schema.Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	joins, columns := s.orderJoins()
	rows, err := s.q.SelectJoinedRows(ctx, store.JoinSpec{
		Base:    store.Orders,
		Joins:   joins,
		Columns: columns,
		Where:   where,
		Page:    &store.Pagination{Limit: 1, Page: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("order detail: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperr.ErrNotFound
	}

	raw := rows[0]
	out := s.translator.Translate(schema.Record(raw), schema.EntityOrder, mode)

	memberInfo, err := s.relationInfo(ctx, store.Members, "id", raw.Int64("mem_id"),
		schema.EntityMember, store.P().Eq("mem_id", raw.Int64("mem_id")), mode)
	if err != nil {
		return nil, err
	}
	if memberInfo != nil {
		out["member_info"] = memberInfo
	}

	courierInfo, err := s.relationInfo(ctx, store.Couriers, "mem_id", raw.Int64("cour_id"),
		schema.EntityCourier, store.P().Eq("cour_id", raw.Int64("cour_id")), mode)
	if err != nil {
		return nil, err
	}
	if courierInfo != nil {
		out["courier_info"] = courierInfo
	}

	return out, nil
}

// relationInfo loads one related entity row and enriches it with that
// party's total order count. A zero key yields nil, not an error: orders
// without a courier are a normal state.
func (s *Service) relationInfo(ctx context.Context, base store.Entity, key string, id int64,
	e schema.EntityType, countWhere store.Predicate, mode schema.LanguageMode) (schema.Record, error) {
	if id <= 0 {
		return nil, nil
	}

	rows, err := s.q.SelectJoinedRows(ctx, store.JoinSpec{
		Base:  base,
		Where: store.P().Eq(key, id),
		Page:  &store.Pagination{Limit: 1, Page: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("%s info: %w", base, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	count, err := s.q.CountMatching(ctx, store.Orders, nil, countWhere)
	if err != nil {
		return nil, fmt.Errorf("%s order count: %w", base, err)
	}

	info := s.translator.Translate(schema.Record(rows[0]), e, mode)
	info["order_count"] = count
	return info, nil
}
