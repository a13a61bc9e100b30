package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisPrefix namespaces gateway entries in a shared Redis.
	DefaultRedisPrefix = "playdex:cache"

	// DefaultRedisExpiry is a safety expiry applied to every write so that
	// abandoned keys don't live forever. It is deliberately longer than the
	// gateway's freshness TTL: staleness is judged by entry age, not by
	// Redis eviction.
	DefaultRedisExpiry = 48 * time.Hour
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379")
	URL string

	// Prefix namespaces the gateway's keys (defaults to "playdex:cache")
	Prefix string

	// Expiry is the safety expiry for stored entries (defaults to 48 hours)
	Expiry time.Duration
}

// RedisStore implements Store using Redis for distributed storage.
// This is suitable for multi-instance deployments behind a load balancer.
// Entries are brotli-compressed; list payloads of 40 items compress well.
type RedisStore struct {
	client *redis.Client
	prefix string
	expiry time.Duration
}

// NewRedisStore creates a new Redis-backed response cache.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	expiry := cfg.Expiry
	if expiry == 0 {
		expiry = DefaultRedisExpiry
	}

	slog.Info("redis cache connected", "prefix", prefix, "expiry", expiry)

	return &RedisStore{
		client: client,
		prefix: prefix,
		expiry: expiry,
	}, nil
}

// redisKey digests the canonical key. Passthrough filters can make canonical
// keys arbitrarily long; the digest keeps Redis keys short and uniform. The
// canonical key itself is preserved inside the entry.
func (s *RedisStore) redisKey(key string) string {
	return fmt.Sprintf("%s:%016x", s.prefix, xxhash.Sum64String(key))
}

// Get retrieves the entry for key from Redis.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // No entry yet, not an error
		}
		return nil, fmt.Errorf("failed to get entry from redis: %w", err)
	}

	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cached entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse cached entry: %w", err)
	}

	return &entry, nil
}

// Put stores the entry in Redis, replacing any previous entry for the key.
func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("failed to compress entry: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to compress entry: %w", err)
	}

	if err := s.client.Set(ctx, s.redisKey(entry.Key), buf.Bytes(), s.expiry).Err(); err != nil {
		return fmt.Errorf("failed to set entry in redis: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
