// Package server provides HTTP handlers and server setup for the catalog gateway.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"playdex/internal/cache"
	"playdex/internal/catalog"
	"playdex/internal/core"
	"playdex/internal/ratings"
)

// DefaultTTL is the fixed staleness threshold for cached responses. Entries
// older than this are refetched and overwritten; there is no other
// invalidation path.
const DefaultTTL = 24 * time.Hour

// Diagnostic response headers. Never used for client-side branching.
const (
	HeaderCache  = "X-Cache"
	HeaderSource = "X-Catalog-Source"

	headerValueHit  = "HIT"
	headerValueMiss = "MISS"
)

// CatalogClient is the upstream surface the gateway needs.
type CatalogClient interface {
	GetGame(ctx context.Context, id int64) (core.Item, error)
	ListGames(ctx context.Context, params url.Values) (*core.Page, string, error)
	SearchGames(ctx context.Context, query string, pageSize int) (*core.Page, error)
}

// Handler holds the HTTP handlers. Each request is handled independently;
// all cross-request state lives in the cache and rating stores.
type Handler struct {
	catalog CatalogClient
	cache   cache.Store
	ratings ratings.Store
	ttl     time.Duration

	// now is the freshness clock, replaceable in tests.
	now func() time.Time
}

// NewHandler creates a new handler. A non-positive ttl selects DefaultTTL.
func NewHandler(catalogClient CatalogClient, cacheStore cache.Store, ratingStore ratings.Store, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Handler{
		catalog: catalogClient,
		cache:   cacheStore,
		ratings: ratingStore,
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetItem handles GET /catalog/items/:id
func (h *Handler) GetItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return handleError(c, core.NewValidationError("item id must be a positive integer"))
	}

	ctx := c.Request().Context()
	item, err := h.catalog.GetGame(ctx, id)
	if err != nil {
		return handleError(c, err)
	}

	ratings.EnrichOne(ctx, h.ratings, item)
	return c.JSON(http.StatusOK, item)
}

// Search handles GET /catalog/search
func (h *Handler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return handleError(c, core.NewValidationError("query parameter is required"))
	}

	pageSize := catalog.DefaultPageSize
	if raw := c.QueryParam("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageSize = n
		}
	}
	pageSize = catalog.ClampPageSize(pageSize)

	params := url.Values{}
	params.Set("search", query)
	params.Set("page_size", strconv.Itoa(pageSize))
	key := cache.Key("/games/search", params)

	ctx := c.Request().Context()
	if entry := h.freshEntry(ctx, key); entry != nil {
		cacheHits.WithLabelValues(c.Path()).Inc()
		return serveCached(c, entry)
	}
	cacheMisses.WithLabelValues(c.Path()).Inc()

	page, err := h.catalog.SearchGames(ctx, query, pageSize)
	if err != nil {
		return handleError(c, err)
	}

	ratings.Enrich(ctx, h.ratings, page.Results)
	catalog.Rank(query, page.Results)

	return h.respondAndStore(c, key, core.ModePrimary, page)
}

// List handles GET /catalog/list
func (h *Handler) List(c echo.Context) error {
	// The cache key is computed from the normalized query, so requests that
	// differ only in parameter order or in clamped/substituted values share
	// one entry.
	params := catalog.NormalizeListParams(passthroughParams(c.QueryParams()))
	key := cache.Key("/games", params)

	ctx := c.Request().Context()
	if entry := h.freshEntry(ctx, key); entry != nil {
		cacheHits.WithLabelValues(c.Path()).Inc()
		return serveCached(c, entry)
	}
	cacheMisses.WithLabelValues(c.Path()).Inc()

	page, mode, err := h.catalog.ListGames(ctx, params)
	if err != nil {
		return handleError(c, err)
	}
	upstreamServed.WithLabelValues(mode).Inc()

	ratings.Enrich(ctx, h.ratings, page.Results)

	return h.respondAndStore(c, key, mode, page)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// freshEntry returns the cached entry for key when one exists and is younger
// than the TTL. A store failure degrades to a miss: slower, never fatal.
func (h *Handler) freshEntry(ctx context.Context, key string) *cache.Entry {
	entry, err := h.cache.Get(ctx, key)
	if err != nil {
		cacheReadFailures.Inc()
		slog.Warn("cache read failed, treating as miss", "key", key, "error", err)
		return nil
	}
	if entry == nil {
		return nil
	}
	if h.now().Sub(entry.StoredAt) >= h.ttl {
		return nil
	}
	return entry
}

// respondAndStore marshals the final enriched payload once, upserts it into
// the cache, and serves those same bytes, so the cached payload is always
// exactly the body the client received. A failed write is logged and counted;
// the already-computed response is served regardless.
func (h *Handler) respondAndStore(c echo.Context, key, mode string, page *core.Page) error {
	body, err := json.Marshal(page)
	if err != nil {
		return handleError(c, err)
	}

	entry := cache.Entry{
		Key:      key,
		Mode:     mode,
		Payload:  body,
		StoredAt: h.now(),
	}
	if err := h.cache.Put(c.Request().Context(), entry); err != nil {
		cacheWriteFailures.Inc()
		slog.Warn("cache write failed, serving uncached response", "key", key, "error", err)
	}

	c.Response().Header().Set(HeaderCache, headerValueMiss)
	c.Response().Header().Set(HeaderSource, mode)
	return c.JSONBlob(http.StatusOK, body)
}

func serveCached(c echo.Context, entry *cache.Entry) error {
	mode := entry.Mode
	if mode == "" {
		mode = core.ModePrimary
	}
	c.Response().Header().Set(HeaderCache, headerValueHit)
	c.Response().Header().Set(HeaderSource, mode)
	return c.JSONBlob(http.StatusOK, entry.Payload)
}

// passthroughParams copies the inbound query, dropping anything the gateway
// must never forward upstream.
func passthroughParams(q url.Values) url.Values {
	params := url.Values{}
	for name, vals := range q {
		if name == "key" {
			continue // a client-supplied upstream credential
		}
		params[name] = vals
	}
	return params
}

// handleError converts gateway errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
