package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache effectiveness and degradation signals. A failed cache write never
// changes the response, so these counters and the warn log are the only place
// such failures surface.
var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playdex_cache_hits_total",
		Help: "Responses served from the cache, by route.",
	}, []string{"route"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playdex_cache_misses_total",
		Help: "Requests that required an upstream fetch (absent or stale entry), by route.",
	}, []string{"route"})

	cacheReadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playdex_cache_read_failures_total",
		Help: "Cache lookups that failed and degraded to a miss.",
	})

	cacheWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playdex_cache_write_failures_total",
		Help: "Cache writes that failed after the response was computed.",
	})

	upstreamServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playdex_upstream_served_total",
		Help: "List requests served from upstream, by query mode (primary or fallback).",
	}, []string{"mode"})
)
