package feed

import (
	"context"
	"time"

	"github.com/reelworks/feedcache/pkg/cache"
)

// RecommendationEngine produces ranked content IDs for an owner. The ranking
// itself is opaque to this module. The result is ordered, at most limit long,
// and may be shorter; category is empty for the main feed.
type RecommendationEngine interface {
	Generate(ctx context.Context, owner cache.Owner, limit int, excludeIDs []string, language, category string) ([]string, error)
}

// RecentlyViewedLookup returns content IDs the owner has recently seen, used
// to build the generation exclusion set.
type RecentlyViewedLookup interface {
	Recent(ctx context.Context, owner cache.Owner, limit int) ([]string, error)
}

// ContentDetailLookup resolves content IDs to full detail objects. The result
// preserves the input order and may silently omit blocked, deleted, or
// unknown IDs.
type ContentDetailLookup interface {
	Resolve(ctx context.Context, owner cache.Owner, ids []string) ([]ContentDetail, error)
}

// BatchStore is the cache the orchestrator reads and writes batches through.
// Implemented by cache.Store.
type BatchStore interface {
	Get(ctx context.Context, key cache.Key) ([]string, error)
	Put(ctx context.Context, key cache.Key, ids []string, ttl time.Duration) (bool, error)
	Size(ctx context.Context, key cache.Key) (int64, error)
	ClearOwner(ctx context.Context, owner cache.Owner) (int64, error)
}

// ContentDetail is one resolved feed entry.
type ContentDetail struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AuthorID     string    `json:"author_id"`
	MediaURL     string    `json:"media_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	DurationMS   int64     `json:"duration_ms"`
	PublishedAt  time.Time `json:"published_at"`
}

// Page is the result of one feed page request.
// HasNext is derived from the batch-level lookahead read; NextCursor is set
// iff HasNext. Items can be shorter than the requested limit when the detail
// lookup omitted blocked or deleted entries.
type Page struct {
	Items      []ContentDetail `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasNext    bool            `json:"has_next"`
}
