// Package catalog implements the client for the third-party game catalog API,
// including the list query policy, the tag fallback strategy, and relevance
// ranking of full-text search results.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"playdex/internal/core"
)

const (
	// DefaultBaseURL is the catalog API root.
	DefaultBaseURL = "https://api.rawg.io/api"

	// MaxPageSize bounds every upstream page request, regardless of what the
	// client asked for. Caps cache payload size and upstream load.
	MaxPageSize = 40

	// DefaultPageSize is used when a request carries no page_size.
	DefaultPageSize = 20

	// DefaultOrdering ranks by critic score. The upstream default ordering is
	// low-signal for this product, so it is overridden unless the caller asked
	// for something specific.
	DefaultOrdering = "-metacritic"

	// DefaultRequestsPerSecond and DefaultBurst gate outbound calls so the
	// gateway respects the upstream API's implicit rate constraints. The only
	// place two dependent calls happen in one request is the tag fallback, and
	// the limiter spaces those out as well.
	DefaultRequestsPerSecond = 4
	DefaultBurst             = 2

	maxBodySize = 4 * 1024 * 1024 // 4 MB
)

// lowSignalOrderings are upstream sort orders that carry no real preference;
// requests using them get DefaultOrdering instead.
var lowSignalOrderings = map[string]bool{
	"":           true,
	"relevance":  true,
	"-relevance": true,
	"-added":     true,
}

// Config holds catalog client configuration.
type Config struct {
	// APIKey authenticates against the catalog API. Required.
	APIKey string

	// BaseURL overrides the catalog API root (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient performs the outbound calls. The caller owns timeout policy;
	// a bounded timeout is expected (see httpclient.NewHTTPClient).
	HTTPClient *http.Client

	// RequestsPerSecond and Burst configure the outbound token bucket.
	RequestsPerSecond float64
	Burst             int

	// Fallbacks maps unreliable upstream tags to their broader replacement
	// queries (defaults to DefaultFallbacks).
	Fallbacks map[string]Fallback
}

// Client performs outbound calls to the catalog API.
// It is stateless apart from the shared rate limiter and safe for concurrent use.
type Client struct {
	apiKey    string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	fallbacks map[string]Fallback
}

// NewClient creates a new catalog API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("catalog API key is required")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}

	fallbacks := cfg.Fallbacks
	if fallbacks == nil {
		fallbacks = DefaultFallbacks()
	}

	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		fallbacks: fallbacks,
	}, nil
}

// GetGame fetches a single catalog item by its numeric ID.
func (c *Client) GetGame(ctx context.Context, id int64) (core.Item, error) {
	body, err := c.get(ctx, "/games/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}

	var item core.Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, core.NewUpstreamFailure("catalog api returned malformed item JSON", err)
	}
	return item, nil
}

// ListGames fetches a filtered/sorted list page. The query policy
// (NormalizeListParams) is applied before the call. When a known-unreliable
// tag filter yields an empty result set, one broader replacement query is
// attempted; a non-empty replacement silently serves the request.
//
// The returned mode (core.ModePrimary or core.ModeFallback) is diagnostic
// metadata only.
func (c *Client) ListGames(ctx context.Context, params url.Values) (*core.Page, string, error) {
	normalized := NormalizeListParams(params)

	body, err := c.get(ctx, "/games", normalized)
	if err != nil {
		return nil, "", err
	}

	mode := core.ModePrimary
	if fb, ok := c.fallbacks[normalized.Get("tags")]; ok && gjson.GetBytes(body, "results.#").Int() == 0 {
		altBody, altErr := c.get(ctx, "/games", fb.apply(normalized))
		switch {
		case altErr != nil:
			// The primary result (empty, but valid) still serves the request.
			slog.Warn("tag fallback query failed",
				"tag", normalized.Get("tags"),
				"error", altErr,
			)
		case gjson.GetBytes(altBody, "results.#").Int() > 0:
			body = altBody
			mode = core.ModeFallback
		}
	}

	var page core.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", core.NewUpstreamFailure("catalog api returned malformed list JSON", err)
	}
	return &page, mode, nil
}

// SearchGames fetches a full-text search page. Ordering is left to the
// relevance scorer, so no ordering override applies here; page size is still
// clamped.
func (c *Client) SearchGames(ctx context.Context, query string, pageSize int) (*core.Page, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("page_size", strconv.Itoa(ClampPageSize(pageSize)))

	body, err := c.get(ctx, "/games", params)
	if err != nil {
		return nil, err
	}

	var page core.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, core.NewUpstreamFailure("catalog api returned malformed search JSON", err)
	}
	return &page, nil
}

// NormalizeListParams applies the list query policy to a copy of params:
// the page size clamp and the default ordering substitution. Pure function;
// the input is never modified. Applying it twice is a no-op, so both the
// gateway (for cache keys) and the client use it freely.
func NormalizeListParams(params url.Values) url.Values {
	normalized := url.Values{}
	for name, vals := range params {
		if len(vals) > 0 {
			normalized.Set(name, vals[0])
		}
	}

	if lowSignalOrderings[normalized.Get("ordering")] {
		normalized.Set("ordering", DefaultOrdering)
	}

	size := DefaultPageSize
	if raw := normalized.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}
	normalized.Set("page_size", strconv.Itoa(ClampPageSize(size)))

	return normalized
}

// ClampPageSize bounds a requested page size to [1, MaxPageSize].
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// get performs one rate-limited upstream call and returns the response body.
// Non-2xx responses surface as upstream errors; the raw body is never passed
// through, only a truncated diagnostic detail.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, core.NewUpstreamFailure("rate limiter wait canceled", err)
	}

	query := url.Values{}
	for name, vals := range params {
		query[name] = vals
	}
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.NewUpstreamFailure("catalog api request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, core.NewUpstreamFailure("reading catalog api response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewUpstreamError(resp.StatusCode, upstreamDetail(body), nil)
	}

	return body, nil
}

// upstreamDetail extracts a short diagnostic from an upstream error body.
// The catalog API reports errors as {"detail": "..."}; anything else is
// truncated raw text.
func upstreamDetail(body []byte) string {
	detail := gjson.GetBytes(body, "detail").String()
	if detail == "" {
		detail = string(body)
	}
	const max = 200
	if len(detail) > max {
		detail = detail[:max] + "..."
	}
	return detail
}
