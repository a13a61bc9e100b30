package catalog

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fallback describes the broader replacement query for a tag whose upstream
// taxonomy is known to be incomplete: the tag filter is dropped and replaced
// by a free-text search term plus wider genre filters.
type Fallback struct {
	Search string   `yaml:"search"`
	Genres []string `yaml:"genres"`
}

// apply builds the replacement query from a normalized primary query.
func (f Fallback) apply(params url.Values) url.Values {
	alt := url.Values{}
	for name, vals := range params {
		alt[name] = vals
	}
	alt.Del("tags")
	alt.Set("search", f.Search)
	alt.Set("genres", strings.Join(f.Genres, ","))
	return alt
}

// DefaultFallbacks returns the built-in tag fallback table. The battle-royale
// tag is sparsely applied upstream, so an empty result for it is far more
// likely to mean incomplete tagging than a genuinely empty category.
func DefaultFallbacks() map[string]Fallback {
	return map[string]Fallback{
		"battle-royale": {
			Search: "battle royale",
			Genres: []string{"shooter", "action"},
		},
	}
}

// LoadFallbacks reads a YAML tag→fallback table and merges it over the
// built-in defaults. An empty path returns just the defaults.
//
// File shape:
//
//	battle-royale:
//	  search: battle royale
//	  genres: [shooter, action]
func LoadFallbacks(path string) (map[string]Fallback, error) {
	fallbacks := DefaultFallbacks()
	if path == "" {
		return fallbacks, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fallback table: %w", err)
	}

	var loaded map[string]Fallback
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing fallback table: %w", err)
	}

	for tag, fb := range loaded {
		if fb.Search == "" {
			return nil, fmt.Errorf("fallback for tag %q has no search term", tag)
		}
		fallbacks[tag] = fb
	}

	return fallbacks, nil
}
