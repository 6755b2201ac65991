package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN renders the pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores order event consumer settings. Empty brokers disable the
// consumer.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Analytics stores analysis query settings.
type Analytics struct {
	MaxWindowDays    int
	OperationTimeout time.Duration
}

// StoreRetry stores the retry policy of the store querier.
type StoreRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// PprofConfig stores the debug pprof server settings.
type PprofConfig struct {
	Enabled bool
	Addr    string
	User    string
	Pass    string
}

// RateLimit stores the per-client HTTP rate limiter settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Config stores all service settings.
type Config struct {
	Port       int
	DB         DB
	Kafka      Kafka
	Analytics  Analytics
	StoreRetry StoreRetry
	RateLimit  RateLimit
	Pprof      PprofConfig
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:       DefaultPort(),
		DB:         DefaultDB(),
		Kafka:      DefaultKafka(),
		Analytics:  DefaultAnalytics(),
		StoreRetry: DefaultStoreRetry(),
		RateLimit:  DefaultRateLimit(),
		Pprof:      DefaultPprof(),
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = p
	}

	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid POSTGRES_PORT: %q", v)
		}
		cfg.DB.Port = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.DB.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.DB.Pass = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.DB.Name = v
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		cfg.Kafka.GroupID = v
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}

	if v := os.Getenv("ANALYTICS_MAX_WINDOW_DAYS"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid ANALYTICS_MAX_WINDOW_DAYS: %q", v)
		}
		cfg.Analytics.MaxWindowDays = d
	}
	if v := os.Getenv("ANALYTICS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid ANALYTICS_TIMEOUT: %q", v)
		}
		cfg.Analytics.OperationTimeout = d
	}

	if v := os.Getenv("PPROF_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PPROF_ENABLED: %q", v)
		}
		cfg.Pprof.Enabled = b
	}
	if v := os.Getenv("PPROF_ADDR"); v != "" {
		cfg.Pprof.Addr = v
	}
	if v := os.Getenv("PPROF_USER"); v != "" {
		cfg.Pprof.User = v
	}
	if v := os.Getenv("PPROF_PASS"); v != "" {
		cfg.Pprof.Pass = v
	}

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_ENABLED: %q", v)
		}
		cfg.RateLimit.Enabled = b
	}
	if v := os.Getenv("RATE_LIMIT_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RATE: %q", v)
		}
		cfg.RateLimit.Rate = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %q", v)
		}
		cfg.RateLimit.Burst = b
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := parseFlags(); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	return cfg, nil
}

func parseFlags() error {
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return err
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
