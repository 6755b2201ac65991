package domain

import (
	"fmt"

	"delivery-analytics/internal/apperr"
)

// Window bounds which orders are considered, as Unix seconds. Both ends
// are inclusive.
type Window struct {
	Start int64
	End   int64
}

// Zero reports whether the window was never set.
func (w Window) Zero() bool { return w.Start == 0 && w.End == 0 }

// Valid reports whether the window is usable: both ends set, End after
// Start, and the span within maxDays (0 = no span limit).
func (w Window) Valid(maxDays int) bool {
	if w.Start <= 0 || w.End <= 0 || w.End <= w.Start {
		return false
	}
	if maxDays > 0 && w.End-w.Start > int64(maxDays)*86400 {
		return false
	}
	return true
}

// CheckWindow validates a window the way every analysis entry point does:
// a zero window is a missing parameter, anything else invalid maps onto
// ErrInvalid with the span limit in the message.
func CheckWindow(w Window, maxDays int) error {
	if w.Zero() {
		return apperr.ErrMissingWindow
	}
	if !w.Valid(maxDays) {
		return fmt.Errorf("%w: window must be positive, end after start, span at most %d days",
			apperr.ErrInvalid, maxDays)
	}
	return nil
}

// Days returns the window span in whole days, never less than one. Used by
// per-day averages so a sub-day window does not divide by zero.
func (w Window) Days() int64 {
	d := (w.End - w.Start) / 86400
	if d < 1 {
		return 1
	}
	return d
}

// TimeUnit selects trend bucketing granularity.
type TimeUnit string

// Supported trend granularities. Day buckets as calendar date, Week as ISO
// week, Month as calendar month.
const (
	UnitDay   TimeUnit = "day"
	UnitWeek  TimeUnit = "week"
	UnitMonth TimeUnit = "month"
)

// Valid reports whether u is a supported granularity.
func (u TimeUnit) Valid() bool {
	return u == UnitDay || u == UnitWeek || u == UnitMonth
}
