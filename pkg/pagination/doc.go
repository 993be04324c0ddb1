// Package pagination provides cursor and batch-offset arithmetic for the
// feed batch cache.
//
// The feed is a logical infinite sequence addressed by a monotonically
// increasing offset. Batches of DefaultBatchSize ranked content IDs are
// cached per offset range, and a page request is resolved to coordinates
// inside one batch:
//
//	offset := pagination.ParseCursor(cursor)
//	batch, within := pagination.Coordinates(offset, pagination.DefaultBatchSize)
//	ids := pagination.Slice(batchItems, within, limit)
//
// Slice always requests one extra element past the limit so the caller can
// derive hasNext from the same read that produced the page.
//
// All functions are pure and perform no I/O.
package pagination
