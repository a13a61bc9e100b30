// Package core provides shared types and the error taxonomy for the catalog gateway.
package core

// Serving modes for list responses. Fallback means the primary tag-filtered
// query came back empty and a broader replacement query served the request.
const (
	ModePrimary  = "primary"
	ModeFallback = "fallback"
)

// Item is a catalog item as returned by the upstream API. The gateway treats
// it as opaque JSON apart from a handful of well-known fields; everything else
// passes through untouched.
type Item map[string]any

// ID returns the numeric catalog ID, if present. JSON numbers decode as
// float64, but upstream IDs are integral.
func (it Item) ID() (int64, bool) {
	switch v := it["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// Name returns the item's display name, or "" when absent.
func (it Item) Name() string {
	s, _ := it["name"].(string)
	return s
}

// Rating returns the upstream popularity rating, or 0 when absent.
func (it Item) Rating() float64 {
	v, _ := it["rating"].(float64)
	return v
}

// Metacritic returns the upstream critic score, or 0 when absent.
func (it Item) Metacritic() float64 {
	v, _ := it["metacritic"].(float64)
	return v
}

// Page is the upstream pagination envelope for list and search responses.
type Page struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Item  `json:"results"`
}

// RatingRecord is one row of the first-party aggregate rating store, keyed by
// the catalog item's ID.
type RatingRecord struct {
	GameID        string  `json:"game_id"`
	AverageRating float64 `json:"average_rating"`
}
