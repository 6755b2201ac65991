package ratelimit

// Limiter decides whether a keyed client may proceed.
type Limiter interface {
	Allow(key string) bool
}
