package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"playdex/internal/core"
)

// newTestClient points a client at a fake upstream with the rate limiter
// effectively disabled so tests don't sleep.
func newTestClient(t *testing.T, upstream *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           upstream.URL,
		HTTPClient:        upstream.Client(),
		RequestsPerSecond: 10000,
		Burst:             100,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestListGamesClampsPageSize(t *testing.T) {
	var got url.Values
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"count":1,"results":[{"id":1,"name":"Doom"}]}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream)

	params := url.Values{}
	params.Set("page_size", "100")
	if _, _, err := client.ListGames(context.Background(), params); err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	if got.Get("page_size") != "40" {
		t.Errorf("expected page_size forwarded as 40, got %q", got.Get("page_size"))
	}
	if got.Get("key") != "test-key" {
		t.Errorf("expected api key on the request, got %q", got.Get("key"))
	}
}

func TestListGamesOrderingPolicy(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		forwarded string
	}{
		{"AbsentGetsDefault", "", "-metacritic"},
		{"LowSignalGetsDefault", "-added", "-metacritic"},
		{"ExplicitIsPreserved", "-released", "-released"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got url.Values
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query()
				w.Write([]byte(`{"count":0,"results":[]}`))
			}))
			defer upstream.Close()

			client := newTestClient(t, upstream)

			params := url.Values{}
			if tc.requested != "" {
				params.Set("ordering", tc.requested)
			}
			if _, _, err := client.ListGames(context.Background(), params); err != nil {
				t.Fatalf("ListGames: %v", err)
			}

			if got.Get("ordering") != tc.forwarded {
				t.Errorf("ordering forwarded as %q, want %q", got.Get("ordering"), tc.forwarded)
			}
		})
	}
}

func TestListGamesTagFallback(t *testing.T) {
	var calls []url.Values
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		calls = append(calls, q)
		if q.Get("tags") == "battle-royale" {
			w.Write([]byte(`{"count":0,"results":[]}`))
			return
		}
		w.Write([]byte(`{"count":2,"results":[{"id":10,"name":"PUBG"},{"id":11,"name":"Apex Legends"}]}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream)

	params := url.Values{}
	params.Set("tags", "battle-royale")
	page, mode, err := client.ListGames(context.Background(), params)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	if mode != core.ModeFallback {
		t.Errorf("expected fallback mode, got %q", mode)
	}
	if len(page.Results) != 2 {
		t.Errorf("expected fallback results, got %d items", len(page.Results))
	}
	if len(calls) != 2 {
		t.Fatalf("expected exactly two upstream calls, got %d", len(calls))
	}

	fb := calls[1]
	if fb.Get("tags") != "" {
		t.Errorf("fallback call must drop the tag filter, got tags=%q", fb.Get("tags"))
	}
	if fb.Get("search") != "battle royale" {
		t.Errorf("fallback search = %q, want %q", fb.Get("search"), "battle royale")
	}
	if fb.Get("genres") != "shooter,action" {
		t.Errorf("fallback genres = %q, want %q", fb.Get("genres"), "shooter,action")
	}
}

func TestListGamesFallbackAlsoEmpty(t *testing.T) {
	var calls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream)

	params := url.Values{}
	params.Set("tags", "battle-royale")
	page, mode, err := client.ListGames(context.Background(), params)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	if mode != core.ModePrimary {
		t.Errorf("empty fallback must report primary mode, got %q", mode)
	}
	if len(page.Results) != 0 {
		t.Errorf("expected the original empty result, got %d items", len(page.Results))
	}
	if calls != 2 {
		t.Errorf("expected exactly two upstream calls, got %d", calls)
	}
}

func TestListGamesNoFallbackForOrdinaryTags(t *testing.T) {
	var calls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream)

	params := url.Values{}
	params.Set("tags", "singleplayer")
	_, mode, err := client.ListGames(context.Background(), params)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	if calls != 1 {
		t.Errorf("unexpected retry for a tag with no fallback entry: %d calls", calls)
	}
	if mode != core.ModePrimary {
		t.Errorf("expected primary mode, got %q", mode)
	}
}

func TestGetGameUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"upstream exploded"}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream)

	_, err := client.GetGame(context.Background(), 42)
	if err == nil {
		t.Fatal("expected an error for a non-2xx upstream response")
	}

	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected GatewayError, got %T", err)
	}
	if gatewayErr.Type != core.ErrorTypeUpstream {
		t.Errorf("expected upstream error type, got %q", gatewayErr.Type)
	}
	if gatewayErr.HTTPStatusCode() != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", gatewayErr.HTTPStatusCode())
	}
}

func TestGetGameFetchesByID(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games/42" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":42,"name":"Doom","metacritic":85}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream)

	item, err := client.GetGame(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if id, ok := item.ID(); !ok || id != 42 {
		t.Errorf("expected item id 42, got %v", item["id"])
	}
	if item.Metacritic() != 85 {
		t.Errorf("expected metacritic 85, got %v", item.Metacritic())
	}
}

func TestSearchGamesClampsPageSize(t *testing.T) {
	var got url.Values
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream)

	if _, err := client.SearchGames(context.Background(), "doom", 500); err != nil {
		t.Fatalf("SearchGames: %v", err)
	}

	if got.Get("search") != "doom" {
		t.Errorf("search forwarded as %q", got.Get("search"))
	}
	if got.Get("page_size") != "40" {
		t.Errorf("page_size forwarded as %q, want 40", got.Get("page_size"))
	}
	if got.Get("ordering") != "" {
		t.Errorf("search must not force an ordering, got %q", got.Get("ordering"))
	}
}

func TestNormalizeListParamsIsPureAndIdempotent(t *testing.T) {
	params := url.Values{}
	params.Set("page_size", "100")

	once := NormalizeListParams(params)
	twice := NormalizeListParams(once)

	if params.Get("page_size") != "100" {
		t.Error("input params were mutated")
	}
	if once.Encode() != twice.Encode() {
		t.Errorf("normalization not idempotent: %q vs %q", once.Encode(), twice.Encode())
	}
}
