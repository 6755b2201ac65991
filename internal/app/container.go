package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-analytics/internal/config"
	"delivery-analytics/internal/http/handlers"
	"delivery-analytics/internal/http/middleware/ratelimit"
	"delivery-analytics/internal/http/pprofserver"
	"delivery-analytics/internal/http/router"
	"delivery-analytics/internal/logx"
	"delivery-analytics/internal/repository"
	"delivery-analytics/internal/schema"
	"delivery-analytics/internal/service/analytics"
	"delivery-analytics/internal/service/members"
	"delivery-analytics/internal/service/orders"
	"delivery-analytics/internal/service/performance"
	"delivery-analytics/internal/store"
)

type dbConnectFunc func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// buildWorker builds the container for the Kafka worker process.
func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

// MustBuildWorker builds and returns the worker dig container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds and returns the worker dig container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
		provideMetrics,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, logger logx.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

type storeQuerierIn struct {
	dig.In

	Raw     *repository.Querier
	Logger  logx.Logger
	Cfg     *config.Config
	Retries prometheus.Counter `name:"store_retries_total"`
}

func newStoreQuerier(in storeQuerierIn) store.Querier {
	return store.NewRetryingQuerier(in.Raw, in.Logger, in.Retries, store.RetryConfig{
		MaxAttempts: in.Cfg.StoreRetry.MaxAttempts,
		BaseDelay:   in.Cfg.StoreRetry.BaseDelay,
		MaxDelay:    in.Cfg.StoreRetry.MaxDelay,
	}, repository.IsRetryable)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		schema.NewMapping,
		schema.NewRegistry,
		schema.NewTranslator,
		repository.NewQuerier,
		newStoreQuerier,
		func(q store.Querier, enums *schema.Registry, cfg *config.Config, logger logx.Logger) *analytics.Engine {
			a := cfg.Analytics
			return analytics.NewEngine(q, enums, a.MaxWindowDays, a.OperationTimeout, logger)
		},
		func(q store.Querier, cfg *config.Config, logger logx.Logger) *performance.Service {
			a := cfg.Analytics
			return performance.NewService(q, a.MaxWindowDays, a.OperationTimeout, logger)
		},
		func(q store.Querier, cfg *config.Config, logger logx.Logger) *members.Service {
			a := cfg.Analytics
			return members.NewService(q, a.MaxWindowDays, a.OperationTimeout, logger)
		},
		func(q store.Querier, tr *schema.Translator, m *schema.Mapping, cfg *config.Config, logger logx.Logger) *orders.Service {
			a := cfg.Analytics
			return orders.NewService(q, tr, m, a.MaxWindowDays, a.OperationTimeout, logger)
		},
	)
}

type analyticsHandlerIn struct {
	dig.In

	Usecase  *analytics.Engine
	Requests *prometheus.CounterVec `name:"analysis_requests_total"`
}

func newAnalyticsHandler(in analyticsHandlerIn) *handlers.AnalyticsHandler {
	return handlers.NewAnalyticsHandler(handlers.NewAnalyticsUsecase(in.Usecase), in.Requests)
}

type routerIn struct {
	dig.In

	Base   *handlers.Handlers
	An     *handlers.AnalyticsHandler
	Perf   *handlers.PerformanceHandler
	Mem    *handlers.MembersHandler
	Ord    *handlers.OrdersHandler
	Logger logx.Logger
	RateMw *ratelimit.Middleware
}

func newRouter(in routerIn) http.Handler {
	return router.New(in.Base, in.An, in.Perf, in.Mem, in.Ord, in.Logger, in.RateMw)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		newAnalyticsHandler,
		handlers.NewPerformanceUsecase,
		handlers.NewPerformanceHandler,
		handlers.NewMembersUsecase,
		handlers.NewMembersHandler,
		handlers.NewOrdersUsecase,
		handlers.NewOrdersHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		serverProvider,
		newPprofServer,
	)
}

type pprofServerOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

// newPprofServer returns a nil server when pprof is disabled.
func newPprofServer(cfg *config.Config) pprofServerOut {
	if !cfg.Pprof.Enabled {
		return pprofServerOut{}
	}
	return pprofServerOut{Server: &http.Server{
		Addr: cfg.Pprof.Addr,
		Handler: pprofserver.Handler(pprofserver.Config{
			User: cfg.Pprof.User,
			Pass: cfg.Pprof.Pass,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}
