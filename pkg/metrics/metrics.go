// Package metrics provides the central Prometheus registry reference for the
// feed batch cache. All metrics are defined in their respective packages
// (cache, feed) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the feed cache.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Batch Store Metrics (pkg/cache):
//   - feedcache_batch_hits_total (Counter): Batch reads served from the cache
//   - feedcache_batch_misses_total (Counter): Absent or expired batches
//   - feedcache_batch_writes_total (Counter): Successful batch replacements
//   - feedcache_batch_length (Histogram): Content IDs per written batch
//   - feedcache_owner_clears_total (Counter): Whole-owner invalidations
//   - feedcache_store_errors_total{operation} (Counter): Store operation errors
//
// Page Serving Metrics (pkg/feed):
//   - feedcache_pages_total{scope, outcome} (Counter): Page requests by feed
//     scope and outcome (hit, generated, empty, error)
//   - feedcache_page_duration_seconds{scope} (Histogram): Page request duration
//   - feedcache_generations_total{path} (Counter): Batch generations by path
//     (foreground, prefetch)
//   - feedcache_generation_failures_total{path} (Counter): Generation failures
//
// Prefetch Metrics (pkg/feed):
//   - feedcache_prefetch_triggered_total (Counter): Background prefetch dispatches
//   - feedcache_prefetch_skipped_total{reason} (Counter): Dispatches skipped
//     (saturated, present)
//   - feedcache_prefetch_failures_total (Counter): Background generation failures
//
// Example Prometheus Queries:
//
//   # Batch Cache Hit Rate
//   sum(rate(feedcache_batch_hits_total[5m])) /
//   (sum(rate(feedcache_batch_hits_total[5m])) + sum(rate(feedcache_batch_misses_total[5m])))
//
//   # Page Error Rate by Scope
//   sum(rate(feedcache_pages_total{outcome="error"}[5m])) by (scope) /
//   sum(rate(feedcache_pages_total[5m])) by (scope)
//
//   # P95 Page Latency
//   histogram_quantile(0.95, rate(feedcache_page_duration_seconds_bucket[5m]))
//
//   # Prefetch Effectiveness (generations moved off the request path)
//   rate(feedcache_generations_total{path="prefetch"}[5m]) /
//   rate(feedcache_generations_total[5m])
