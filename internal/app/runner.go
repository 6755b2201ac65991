package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"delivery-analytics/internal/logx"
)

// Runner runs the HTTP server
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the HTTP server using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	switch {
	case err == nil:
		return
	case errors.Is(err, context.Canceled):
		r.logInfo(container, "shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		r.logInfo(container, "startup aborted: startup timeout exceeded")
	default:
		log.Fatalf("run error: %v", err)
	}
}

func (r *Runner) logInfo(container *dig.Container, msg string) {
	if err := container.Invoke(func(logger logx.Logger) {
		logger.Info(msg)
	}); err != nil {
		log.Println(msg)
	}
}

// MustRun starts the HTTP server using the provided DI container
func MustRun(container *dig.Container) {
	NewRunner().MustRun(container)
}

type serversIn struct {
	dig.In

	Ctx    context.Context
	Pool   *pgxpool.Pool
	Logger logx.Logger
	Main   *http.Server
	Pprof  *http.Server `name:"pprof_server" optional:"true"`
}

func run(container *dig.Container) error {
	return container.Invoke(func(in serversIn) error {
		startServer(in.Main, in.Logger, "delivery-analytics")
		if in.Pprof != nil {
			startServer(in.Pprof, in.Logger, "pprof")
		}
		waitForShutdown(in.Ctx, in.Logger)
		gracefulShutdown(in.Main, in.Logger, 15*time.Second)
		if in.Pprof != nil {
			gracefulShutdown(in.Pprof, in.Logger, time.Second)
		}
		closeResources(in.Pool, in.Main, in.Logger)
		return nil
	})
}

func startServer(server *http.Server, logger logx.Logger, name string) {
	go func() {
		logger.Info("server listening",
			logx.String("name", name),
			logx.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()
}

func waitForShutdown(ctx context.Context, logger logx.Logger) {
	<-ctx.Done()
	logger.Info("shutting down delivery-analytics...")
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.Any("err", err))
	}
}

func closeResources(pool *pgxpool.Pool, server *http.Server, logger logx.Logger) {
	if err := server.Close(); err != nil {
		logger.Warn("server close error", logx.Any("err", err))
	}
	if pool != nil {
		pool.Close()
	}
}
