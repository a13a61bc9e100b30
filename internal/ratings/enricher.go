package ratings

import (
	"context"
	"log/slog"
	"strconv"

	"playdex/internal/core"
)

// Field is the name attached to every enriched item. Absent ratings are an
// explicit null, never an omitted key.
const Field = "site_rating"

// Enrich left-joins a page of catalog items against the rating store with one
// batched lookup. Every item leaves with the rating field set; an empty item
// set is a no-op. A failed lookup degrades to all-null ratings; enrichment
// never fails the request.
func Enrich(ctx context.Context, store Store, items []core.Item) {
	if len(items) == 0 {
		return
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if id, ok := it.ID(); ok {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
	}

	var found map[string]float64
	if len(ids) > 0 {
		var err error
		found, err = store.Ratings(ctx, ids)
		if err != nil {
			slog.Warn("rating lookup failed, serving null ratings", "items", len(items), "error", err)
			found = nil
		}
	}

	for _, it := range items {
		it[Field] = nil
		if id, ok := it.ID(); ok {
			if rating, have := found[strconv.FormatInt(id, 10)]; have {
				it[Field] = rating
			}
		}
	}
}

// EnrichOne attaches the rating field to a single item via a point lookup.
// Same degradation rules as Enrich.
func EnrichOne(ctx context.Context, store Store, item core.Item) {
	item[Field] = nil

	id, ok := item.ID()
	if !ok {
		return
	}

	rating, exists, err := store.Rating(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		slog.Warn("rating lookup failed, serving null rating", "game_id", id, "error", err)
		return
	}
	if exists {
		item[Field] = rating
	}
}
