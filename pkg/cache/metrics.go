package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// batchHits tracks batch reads served from the cache
	batchHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedcache_batch_hits_total",
			Help: "Total number of feed batch cache hits",
		},
	)

	// batchMisses tracks absent or expired batches
	batchMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedcache_batch_misses_total",
			Help: "Total number of feed batch cache misses",
		},
	)

	// batchWrites tracks successful batch replacements
	batchWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedcache_batch_writes_total",
			Help: "Total number of feed batches written to the store",
		},
	)

	// batchLength tracks how many IDs each written batch carried
	batchLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedcache_batch_length",
			Help:    "Number of content IDs per written feed batch",
			Buckets: []float64{10, 50, 100, 150, 200, 250},
		},
	)

	// ownerClears tracks whole-owner feed invalidations
	ownerClears = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedcache_owner_clears_total",
			Help: "Total number of whole-owner feed cache invalidations",
		},
	)

	// batchErrors tracks store operation errors
	batchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedcache_store_errors_total",
			Help: "Total number of batch store operation errors",
		},
		[]string{"operation"}, // "get", "put", "size", "delete", "clear", "recent", "record_seen"
	)
)
