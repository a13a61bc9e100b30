package cache

import (
	"net/url"
	"testing"
)

func TestKeyOrderInvariance(t *testing.T) {
	a := url.Values{}
	a.Set("page_size", "20")
	a.Set("ordering", "-metacritic")

	b := url.Values{}
	b.Set("ordering", "-metacritic")
	b.Set("page_size", "20")

	want := "/games?ordering=-metacritic&page_size=20"
	if got := Key("/games", a); got != want {
		t.Errorf("Key(a) = %q, want %q", got, want)
	}
	if got := Key("/games", b); got != want {
		t.Errorf("Key(b) = %q, want %q", got, want)
	}
}

func TestKeyManyParamsPermutations(t *testing.T) {
	params := map[string]string{
		"genres":    "shooter",
		"platforms": "4",
		"tags":      "battle-royale",
		"ordering":  "-released",
		"page_size": "40",
	}

	// Insertion order into url.Values must not matter; build the set in a few
	// different orders and compare.
	orders := [][]string{
		{"genres", "platforms", "tags", "ordering", "page_size"},
		{"page_size", "ordering", "tags", "platforms", "genres"},
		{"tags", "genres", "page_size", "platforms", "ordering"},
	}

	var first string
	for i, order := range orders {
		v := url.Values{}
		for _, name := range order {
			v.Set(name, params[name])
		}
		key := Key("/games", v)
		if i == 0 {
			first = key
			continue
		}
		if key != first {
			t.Errorf("permutation %d produced %q, want %q", i, key, first)
		}
	}
}

func TestKeyEmptyParams(t *testing.T) {
	if got := Key("/games", nil); got != "/games" {
		t.Errorf("Key with nil params = %q, want %q", got, "/games")
	}
	if got := Key("/games", url.Values{}); got != "/games" {
		t.Errorf("Key with empty params = %q, want %q", got, "/games")
	}
}
