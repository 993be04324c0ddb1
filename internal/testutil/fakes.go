package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/reelworks/feedcache/pkg/cache"
	"github.com/reelworks/feedcache/pkg/feed"
)

// StaticCatalog is a ContentDetailLookup that resolves every ID to a stub
// detail, optionally omitting configured IDs the way the real lookup drops
// blocked or deleted content.
type StaticCatalog struct {
	mu      sync.RWMutex
	omitted map[string]bool
}

// NewStaticCatalog creates an empty static catalog.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{omitted: make(map[string]bool)}
}

// Omit marks IDs to be silently dropped from resolution results.
func (c *StaticCatalog) Omit(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.omitted[id] = true
	}
}

// Resolve implements feed.ContentDetailLookup.
func (c *StaticCatalog) Resolve(_ context.Context, _ cache.Owner, ids []string) ([]feed.ContentDetail, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]feed.ContentDetail, 0, len(ids))
	for _, id := range ids {
		if c.omitted[id] {
			continue
		}
		out = append(out, feed.ContentDetail{
			ID:          id,
			Title:       "Title " + id,
			AuthorID:    "author-" + id,
			MediaURL:    "https://cdn.example.com/media/" + id + ".m3u8",
			PublishedAt: time.Unix(1700000000, 0).UTC(),
		})
	}
	return out, nil
}

// NoRecentViews is a RecentlyViewedLookup with no history.
type NoRecentViews struct{}

// Recent implements feed.RecentlyViewedLookup.
func (NoRecentViews) Recent(context.Context, cache.Owner, int) ([]string, error) {
	return nil, nil
}
