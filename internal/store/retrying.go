package store

import (
	"context"
	"time"

	"delivery-analytics/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig describes the RetryingQuerier behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingQuerier decorates a Querier with bounded exponential-backoff
// retries for transient store failures. The analytics core itself never
// retries; this lives on the collaborator side of the contract.
type RetryingQuerier struct {
	next      Querier
	logger    logx.Logger
	retries   counter
	cfg       RetryConfig
	retryable func(error) bool
}

// NewRetryingQuerier wraps next. retryable classifies which errors are
// worth another attempt; nil disables retries entirely.
func NewRetryingQuerier(next Querier, logger logx.Logger, retries counter, cfg RetryConfig, retryable func(error) bool) *RetryingQuerier {
	if next == nil {
		return nil
	}
	return &RetryingQuerier{
		next:      next,
		logger:    logger,
		retries:   retries,
		cfg:       cfg,
		retryable: retryable,
	}
}

// CountMatching retries CountMatching on transient failures.
func (q *RetryingQuerier) CountMatching(ctx context.Context, base Entity, joins []Join, where Predicate) (int64, error) {
	var n int64
	err := q.do(ctx, "CountMatching", func() error {
		var err error
		n, err = q.next.CountMatching(ctx, base, joins, where)
		return err
	})
	return n, err
}

// SelectGroupedAggregate retries SelectGroupedAggregate on transient failures.
func (q *RetryingQuerier) SelectGroupedAggregate(ctx context.Context, spec GroupSpec) ([]Row, error) {
	var rows []Row
	err := q.do(ctx, "SelectGroupedAggregate", func() error {
		var err error
		rows, err = q.next.SelectGroupedAggregate(ctx, spec)
		return err
	})
	return rows, err
}

// SelectJoinedRows retries SelectJoinedRows on transient failures.
func (q *RetryingQuerier) SelectJoinedRows(ctx context.Context, spec JoinSpec) ([]Row, error) {
	var rows []Row
	err := q.do(ctx, "SelectJoinedRows", func() error {
		var err error
		rows, err = q.next.SelectJoinedRows(ctx, spec)
		return err
	})
	return rows, err
}

func (q *RetryingQuerier) do(ctx context.Context, method string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == q.cfg.MaxAttempts || q.retryable == nil || !q.retryable(err) {
			break
		}
		delay := backoff(q.cfg.BaseDelay, q.cfg.MaxDelay, attempt)
		if q.retries != nil {
			q.retries.Inc()
		}
		q.logger.Warn("store query retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ Querier = (*RetryingQuerier)(nil)
