// Package ratings joins catalog items against the first-party aggregate
// rating store. Ratings are a sparse right-hand side: most catalog items have
// no first-party reviews, and absence is represented as an explicit null on
// the enriched item, never as an error.
package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines the lookups the enricher needs.
// Implementations must be safe for concurrent use.
type Store interface {
	// Rating returns the aggregate rating for one catalog item ID.
	// The bool reports whether a rating exists.
	Rating(ctx context.Context, gameID string) (float64, bool, error)

	// Ratings returns the aggregate ratings for a page of catalog item IDs in
	// a single batched lookup. IDs without a rating are simply absent from
	// the result map.
	Ratings(ctx context.Context, gameIDs []string) (map[string]float64, error)

	// Close releases any resources held by the store.
	Close() error
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	// URL is the PostgreSQL connection string. Required.
	URL string

	// MaxConns caps the connection pool size (defaults to 10).
	MaxConns int
}

// PostgresStore implements Store over the game_ratings table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a pooled PostgreSQL rating store.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("PostgreSQL URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	} else {
		poolCfg.MaxConns = 10 // default
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Rating performs a point lookup for a single catalog item.
func (s *PostgresStore) Rating(ctx context.Context, gameID string) (float64, bool, error) {
	var rating float64
	err := s.pool.QueryRow(ctx,
		`SELECT average_rating FROM game_ratings WHERE game_id = $1`,
		gameID,
	).Scan(&rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("rating lookup for %s: %w", gameID, err)
	}
	return rating, true, nil
}

// Ratings performs one batched lookup for a page of catalog item IDs.
func (s *PostgresStore) Ratings(ctx context.Context, gameIDs []string) (map[string]float64, error) {
	if len(gameIDs) == 0 {
		return map[string]float64{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT game_id, average_rating FROM game_ratings WHERE game_id = ANY($1)`,
		gameIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("batched rating lookup: %w", err)
	}
	defer rows.Close()

	found := make(map[string]float64, len(gameIDs))
	for rows.Next() {
		var id string
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, fmt.Errorf("scanning rating row: %w", err)
		}
		found[id] = rating
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rating rows: %w", err)
	}

	return found, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// NoopStore implements Store with no backing data. Used when no rating
// database is configured; every item enriches to a null rating.
type NoopStore struct{}

func (NoopStore) Rating(context.Context, string) (float64, bool, error) { return 0, false, nil }

func (NoopStore) Ratings(context.Context, []string) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (NoopStore) Close() error { return nil }
