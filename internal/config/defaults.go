package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "delivery",
}

var defaultKafka = Kafka{
	GroupID: "delivery-analytics",
	Topic:   "order-events",
}

var defaultAnalytics = Analytics{
	MaxWindowDays:    31,
	OperationTimeout: 10 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    false,
	Rate:       50,
	Burst:      100,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

var defaultPprof = PprofConfig{
	Enabled: false,
	Addr:    "127.0.0.1:6060",
}

var defaultStoreRetry = StoreRetry{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    200 * time.Millisecond,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default Kafka settings. Brokers stay empty so
// the consumer is off unless configured.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultAnalytics returns the default analysis settings.
func DefaultAnalytics() Analytics {
	return defaultAnalytics
}

// DefaultStoreRetry returns the default store retry policy.
func DefaultStoreRetry() StoreRetry {
	return defaultStoreRetry
}

// DefaultRateLimit returns the default HTTP rate limiter settings. The
// limiter is off unless enabled explicitly.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultPprof returns the default pprof server settings. The server is
// off and loopback-only unless configured.
func DefaultPprof() PprofConfig {
	return defaultPprof
}
