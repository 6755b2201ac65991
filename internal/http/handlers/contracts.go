package handlers

import (
	"context"

	"delivery-analytics/internal/domain"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/service/analytics"
	"delivery-analytics/internal/service/members"
	"delivery-analytics/internal/service/orders"
	"delivery-analytics/internal/service/performance"
	"delivery-analytics/internal/store"
)

type analyticsUsecase interface {
	ByDimensions(ctx context.Context, w domain.Window, dims []analytics.Dimension) (analytics.Report, error)
	Trends(ctx context.Context, w domain.Window, unit domain.TimeUnit, metrics []string) (analytics.TrendReport, error)
	DeliveryDurations(ctx context.Context, w domain.Window, page store.Pagination) (analytics.DurationReport, error)
	OrderStages(ctx context.Context, w domain.Window, page store.Pagination) (analytics.StageReport, error)
}

// NewAnalyticsUsecase wires an analytics Engine into an analyticsUsecase.
func NewAnalyticsUsecase(e *analytics.Engine) analyticsUsecase {
	return e
}

type performanceUsecase interface {
	ByOrderCount(ctx context.Context, w domain.Window, opts performance.RankOptions) ([]performance.CourierRank, error)
	ByEarnings(ctx context.Context, w domain.Window, opts performance.RankOptions) ([]performance.CourierRank, error)
	ByDeliveryDuration(ctx context.Context, w domain.Window, opts performance.RankOptions) ([]performance.DurationRank, error)
	Trend(ctx context.Context, w domain.Window, unit domain.TimeUnit, courierID int64) ([]performance.TrendBucket, error)
}

// NewPerformanceUsecase wires a performance Service into a performanceUsecase.
func NewPerformanceUsecase(svc *performance.Service) performanceUsecase {
	return svc
}

type membersUsecase interface {
	ByOrderFrequency(ctx context.Context, w domain.Window, opts members.RankOptions) ([]members.MemberRank, error)
	BySpending(ctx context.Context, w domain.Window, opts members.RankOptions) ([]members.MemberRank, error)
}

// NewMembersUsecase wires a members Service into a membersUsecase.
func NewMembersUsecase(svc *members.Service) membersUsecase {
	return svc
}

type ordersUsecase interface {
	GetByID(ctx context.Context, id int64, mode schema.LanguageMode) (schema.Record, error)
	GetByNumber(ctx context.Context, number string, mode schema.LanguageMode) (schema.Record, error)
	List(ctx context.Context, f orders.ListFilter, mode schema.LanguageMode) (orders.ListResult, error)
	ByTimeRange(ctx context.Context, w domain.Window, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error)
	ByFeeRange(ctx context.Context, w domain.Window, minFee, maxFee float64, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error)
	ByDistanceFlag(ctx context.Context, w domain.Window, far bool, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error)
	ByReservationFlag(ctx context.Context, w domain.Window, reserved bool, page store.Pagination, mode schema.LanguageMode) ([]schema.Record, error)
}

// NewOrdersUsecase wires an orders Service into an ordersUsecase.
func NewOrdersUsecase(svc *orders.Service) ordersUsecase {
	return svc
}
