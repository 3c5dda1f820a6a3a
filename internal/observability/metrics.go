package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageCacheHits counts index page cache hits.
	PageCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_page_cache_hits_total",
		Help: "Total number of index page cache hits",
	})

	// PageCacheMisses counts index page cache misses.
	PageCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_page_cache_misses_total",
		Help: "Total number of index page cache misses",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by statement kind.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// FollowEdgesCreated counts follow edges created through the registry.
	FollowEdgesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_follow_edges_created_total",
		Help: "Total number of follow edges created",
	})

	// FollowEdgesRemoved counts follow edges removed through the registry.
	FollowEdgesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_follow_edges_removed_total",
		Help: "Total number of follow edges removed",
	})
)

// ObserveQueryLatency records one database query's latency, keyed by the
// statement's leading keyword (select, insert, ...).
func ObserveQueryLatency(sql string, elapsed time.Duration) {
	op := "other"
	if fields := strings.Fields(sql); len(fields) > 0 {
		op = strings.ToLower(fields[0])
	}
	DatabaseQueryLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}
