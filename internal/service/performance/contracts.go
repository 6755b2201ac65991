package performance

import (
	"context"

	"delivery-analytics/internal/store"
)

type querier interface {
	SelectGroupedAggregate(ctx context.Context, spec store.GroupSpec) ([]store.Row, error)
}
