// Package cache provides the feed batch store: Redis-backed, TTL-bound
// caching of precomputed batches of ranked content IDs.
//
// A batch is an immutable ordered list of up to 250 content IDs generated
// for one (owner, scope, language, category, batch number) key. Batches are
// created on cache miss, read many times, and either expire after their TTL
// or are cleared explicitly; they are never mutated in place.
//
// # Keys
//
//	key := cache.Key{
//		Owner:    cache.UserOwner(userID),
//		Scope:    cache.ScopeMain,
//		Language: "en",
//		Batch:    0,
//	}
//	// feed:main:0c3b…:lang:en:batch:0
//
// Unauthenticated traffic uses cache.Anonymous(), which renders as a fixed
// "anon" key component outside the user-ID space. All anonymous requests per
// language (and category) share the same batches.
//
// # Store
//
//	store := cache.NewStore(redisClient, 0)
//
//	ids, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrBatchMiss) {
//		// generate a new batch and Put it
//	}
//
// Put replaces the whole list and sets the TTL in a single Lua script, so a
// reader never observes a half-written batch, a list without a TTL, or a
// stale list after Put returns. Concurrent Puts to the same key are safe:
// each writes a complete batch and the last one wins.
//
// Storage layout:
//
//   - feed:main:<owner>:lang:<language>:batch:<n> -> list of content IDs
//   - feed:category:<category>:<owner>:lang:<language>:batch:<n> -> same
//   - feed:seen:<owner> -> capped list of recently seen content IDs
//
// # Failure model
//
// Transient Redis failures surface as ErrStoreUnavailable; callers fail the
// request instead of silently serving an empty feed. Every single-key
// operation runs under a bounded timeout.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - feedcache_batch_hits_total / feedcache_batch_misses_total
//   - feedcache_batch_writes_total, feedcache_batch_length
//   - feedcache_owner_clears_total
//   - feedcache_store_errors_total{operation}
package cache
