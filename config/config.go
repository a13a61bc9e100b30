// Package config provides configuration management for the application.
// Everything is read once at startup into an explicit Config struct that is
// passed into constructors; the core packages never look at the environment
// themselves.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Cache   CacheConfig
	Ratings RatingsConfig
	Metrics MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// CatalogConfig holds catalog API client configuration
type CatalogConfig struct {
	// APIKey authenticates against the catalog API. Required.
	APIKey string

	// BaseURL overrides the catalog API root (empty selects the default).
	BaseURL string

	// RequestTimeout bounds every outbound catalog call.
	RequestTimeout time.Duration

	// RequestsPerSecond and Burst configure the outbound token bucket.
	RequestsPerSecond float64
	Burst             int

	// FallbacksFile optionally points at a YAML tag-fallback table.
	FallbacksFile string
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	// RedisURL selects the Redis backend; empty selects the in-memory store.
	RedisURL string

	// TTL is the freshness threshold for cached responses.
	TTL time.Duration
}

// RatingsConfig holds first-party rating store configuration
type RatingsConfig struct {
	// DatabaseURL selects the PostgreSQL store; empty serves null ratings.
	DatabaseURL string

	// MaxConns caps the connection pool size.
	MaxConns int
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	// Optional, won't fail if not found
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: envOr("PORT", "8080"),
		},
		Catalog: CatalogConfig{
			APIKey:            os.Getenv("RAWG_API_KEY"),
			BaseURL:           os.Getenv("RAWG_BASE_URL"),
			RequestTimeout:    envDuration("RAWG_REQUEST_TIMEOUT", 15*time.Second),
			RequestsPerSecond: envFloat("RAWG_REQUESTS_PER_SECOND", 4),
			Burst:             envInt("RAWG_BURST", 2),
			FallbacksFile:     os.Getenv("CATALOG_FALLBACKS_FILE"),
		},
		Cache: CacheConfig{
			RedisURL: os.Getenv("REDIS_URL"),
			TTL:      envDuration("CACHE_TTL", 24*time.Hour),
		},
		Ratings: RatingsConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			MaxConns:    envInt("DATABASE_MAX_CONNS", 10),
		},
		Metrics: MetricsConfig{
			Enabled: envBool("METRICS_ENABLED", true),
		},
	}

	return cfg, nil
}

// envOr reads a string from the environment, returning the default when unset.
func envOr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// envDuration reads a duration, accepting either plain integers (interpreted
// as seconds) or Go duration strings (e.g., "30m", "24h").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
