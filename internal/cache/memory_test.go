package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("AbsentKeyReturnsNil", func(t *testing.T) {
		store := NewMemoryStore()

		entry, err := store.Get(ctx, "/games?page_size=20")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Fatalf("expected nil entry for absent key, got %v", entry)
		}
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		store := NewMemoryStore()
		storedAt := time.Now().UTC()

		err := store.Put(ctx, Entry{
			Key:      "/games?page_size=20",
			Mode:     "primary",
			Payload:  json.RawMessage(`{"count":1,"results":[{"id":1}]}`),
			StoredAt: storedAt,
		})
		if err != nil {
			t.Fatalf("unexpected error on put: %v", err)
		}

		entry, err := store.Get(ctx, "/games?page_size=20")
		if err != nil {
			t.Fatalf("unexpected error on get: %v", err)
		}
		if entry == nil {
			t.Fatal("expected entry, got nil")
		}
		if !entry.StoredAt.Equal(storedAt) {
			t.Errorf("expected stored_at %v, got %v", storedAt, entry.StoredAt)
		}
		if string(entry.Payload) != `{"count":1,"results":[{"id":1}]}` {
			t.Errorf("payload mismatch: %s", entry.Payload)
		}
	})

	t.Run("PutIsUpsertByKey", func(t *testing.T) {
		store := NewMemoryStore()

		first := Entry{Key: "k", Payload: json.RawMessage(`{"v":1}`), StoredAt: time.Now().Add(-time.Hour)}
		second := Entry{Key: "k", Payload: json.RawMessage(`{"v":2}`), StoredAt: time.Now()}

		if err := store.Put(ctx, first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := store.Put(ctx, second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entry, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(entry.Payload) != `{"v":2}` {
			t.Errorf("expected last write to win, got %s", entry.Payload)
		}
		if !entry.StoredAt.Equal(second.StoredAt) {
			t.Errorf("expected stored_at to be replaced on upsert")
		}

		store.mu.RLock()
		n := len(store.entries)
		store.mu.RUnlock()
		if n != 1 {
			t.Errorf("expected one logical entry, got %d", n)
		}
	})

	t.Run("CallerCannotMutateStoredPayload", func(t *testing.T) {
		store := NewMemoryStore()
		if err := store.Put(ctx, Entry{Key: "k", Payload: json.RawMessage(`{"v":1}`)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entry, _ := store.Get(ctx, "k")
		entry.Payload[5] = '9'

		again, _ := store.Get(ctx, "k")
		if string(again.Payload) != `{"v":1}` {
			t.Errorf("stored payload was mutated: %s", again.Payload)
		}
	})
}
