// Package pagination provides pure cursor and batch-offset arithmetic for the feed.
package pagination

import "strconv"

// DefaultBatchSize is the number of content IDs generated per cached batch.
const DefaultBatchSize = 250

// ParseCursor converts an opaque cursor string into a logical feed offset.
// An absent, malformed, or negative cursor starts the feed from offset 0.
func ParseCursor(cursor string) int64 {
	if cursor == "" {
		return 0
	}

	offset, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || offset < 0 {
		return 0
	}

	return offset
}

// Coordinates maps a logical feed offset onto (batch number, offset in batch).
// Invariant: batch*batchSize + within == offset, with 0 <= within < batchSize.
func Coordinates(offset int64, batchSize int) (batch int64, within int) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	size := int64(batchSize)
	return offset / size, int(offset % size)
}

// Slice returns up to limit+1 items starting at within. The extra lookahead
// element lets the caller decide hasNext without a second store round trip.
// Offsets at or past the end of a short batch yield an empty slice.
func Slice(items []string, within, limit int) []string {
	if within < 0 || within >= len(items) || limit < 0 {
		return nil
	}

	end := within + limit + 1
	if end > len(items) {
		end = len(items)
	}

	return items[within:end]
}

// NextCursor encodes the cursor for the page following one that started at
// offset and served the given number of items.
func NextCursor(offset int64, served int) string {
	return strconv.FormatInt(offset+int64(served), 10)
}
