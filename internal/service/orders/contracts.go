package orders

import (
	"context"

	"delivery-analytics/internal/store"
)

type querier interface {
	CountMatching(ctx context.Context, base store.Entity, joins []store.Join, where store.Predicate) (int64, error)
	SelectJoinedRows(ctx context.Context, spec store.JoinSpec) ([]store.Row, error)
}
