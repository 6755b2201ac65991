package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsRetryable - signals that retrying the query may succeed. Covers
// connection failures (class 08), serialization conflicts and server
// shutdown. Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		switch {
		case strings.HasPrefix(pgerr.Code, "08"):
			return true
		case pgerr.Code == "40001" || pgerr.Code == "40P01":
			return true
		case pgerr.Code == "57P01":
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
