package catalog

import (
	"sort"
	"strings"

	"playdex/internal/core"
)

// Score weights. Match quality dominates; the popularity and critic boosts
// only break ties between equally good name matches.
const (
	scoreExact     = 1000
	scorePrefix    = 500
	scoreSubstring = 100
	scorePerWord   = 10
)

// Rank orders search results by relevance to the query, most relevant first.
// The upstream search ordering is not trusted; items with equal scores keep
// their upstream relative order. Scores are used for ordering and then
// discarded; they never appear in the items themselves.
func Rank(query string, items []core.Item) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(items) < 2 {
		return
	}
	words := strings.Fields(q)

	type scored struct {
		item  core.Item
		score float64
	}
	ranked := make([]scored, len(items))
	for i, it := range items {
		ranked[i] = scored{item: it, score: relevance(q, words, it)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	for i := range ranked {
		items[i] = ranked[i].item
	}
}

// relevance computes the composite score for one candidate: a base score from
// name match quality, plus 2× popularity rating and critic score / 10 as
// tie-breaking boosts (0 when absent).
func relevance(query string, words []string, it core.Item) float64 {
	name := strings.ToLower(it.Name())

	var base float64
	switch {
	case name == query:
		base = scoreExact
	case strings.HasPrefix(name, query):
		base = scorePrefix
	case strings.Contains(name, query):
		base = scoreSubstring
	default:
		for _, w := range words {
			if strings.Contains(name, w) {
				base += scorePerWord
			}
		}
	}

	return base + 2*it.Rating() + it.Metacritic()/10
}
