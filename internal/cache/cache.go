// Package cache provides the response cache for catalog list and search queries.
// Supports both in-memory and Redis backends for multi-instance deployments.
//
// The store holds age-bearing entries and nothing else: whether an entry is
// still fresh is the gateway's decision, so the TTL policy can vary by route
// without touching storage.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one cached response. Payload is always the exact JSON body that was
// or would be returned to the client for this key; it is written only after
// the full enriched payload has been assembled.
type Entry struct {
	Key      string          `json:"key"`
	Mode     string          `json:"mode,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store defines the interface for response cache storage.
// Implementations must be safe for concurrent use; Put has upsert-by-key
// semantics and last-write-wins is acceptable under concurrent writers.
type Store interface {
	// Get retrieves the entry for key.
	// Returns nil, nil if no entry exists yet.
	Get(ctx context.Context, key string) (*Entry, error)

	// Put stores the entry, replacing any previous entry with the same key.
	Put(ctx context.Context, entry Entry) error

	// Close releases any resources held by the store.
	Close() error
}
