package ratelimit

// NopLimiter admits every request.
type NopLimiter struct{}

// Allow always reports true.
func (NopLimiter) Allow(string) bool { return true }

// NewNopLimiter returns a NopLimiter as a Limiter.
func NewNopLimiter() Limiter { return NopLimiter{} }
