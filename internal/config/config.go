// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Sequence backends.
const (
	SequenceBackendPostgres = "postgres"
	SequenceBackendRedis    = "redis"
)

// Config holds application configuration.
type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	RequestTimeout time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	SequenceBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
}

// Load loads configuration from environment variables and .env file.
// A malformed numeric or duration value is an error, never a silent default.
func Load() (Config, error) {
	_ = godotenv.Load()

	env := &envReader{}
	cfg := Config{
		Port:            env.str("APP_PORT", "8080"),
		Environment:     env.str("APP_ENV", "development"),
		LogLevel:        env.str("LOG_LEVEL", "info"),
		RequestTimeout:  env.duration("REQUEST_TIMEOUT", 10*time.Second),
		DatabaseURL:     strings.TrimSpace(env.str("DATABASE_URL", "")),
		DBMaxConns:      int32(env.int("DB_MAX_CONNS", 25, 32)),
		DBMinConns:      int32(env.int("DB_MIN_CONNS", 5, 32)),
		SequenceBackend: strings.ToLower(env.str("SEQUENCE_BACKEND", SequenceBackendPostgres)),
		RedisAddr:       env.str("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   env.str("REDIS_PASSWORD", ""),
		RedisDB:         int(env.int("REDIS_DB", 0, 0)),
	}
	if err := env.err(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate checks required settings.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.SequenceBackend {
	case SequenceBackendPostgres, SequenceBackendRedis:
	default:
		return fmt.Errorf("SEQUENCE_BACKEND must be %q or %q, got %q",
			SequenceBackendPostgres, SequenceBackendRedis, c.SequenceBackend)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// IsDevelopment reports whether pretty logging should be used.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// envReader reads typed variables and remembers every malformed one.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// int parses key as a base-10 integer fitting in bitSize bits (0 means int).
func (r *envReader) int(key string, fallback int64, bitSize int) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, bitSize)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return fallback
	}
	return parsed
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, value))
		return fallback
	}
	return d
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
