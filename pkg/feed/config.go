package feed

import (
	"time"

	"github.com/reelworks/feedcache/pkg/pagination"
)

// Config holds the feed service configuration.
type Config struct {
	// BatchSize is the number of content IDs requested per generated batch.
	BatchSize int

	// TTL is how long a cached batch stays valid after a successful write.
	TTL time.Duration

	// PrefetchThreshold is the consumed fraction of the current batch past
	// which the next batch is generated in the background.
	PrefetchThreshold float64

	// MaxPrefetch caps concurrent background generations.
	MaxPrefetch int

	// PrefetchTimeout bounds one background generation.
	PrefetchTimeout time.Duration

	// DefaultLimit is used when a request asks for no or a non-positive limit.
	DefaultLimit int

	// MaxLimit caps the page size a caller may request.
	MaxLimit int

	// RecentWindow is how many recently seen IDs are excluded from generation.
	RecentWindow int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:         pagination.DefaultBatchSize,
		TTL:               30 * time.Minute,
		PrefetchThreshold: 0.5,
		MaxPrefetch:       4,
		PrefetchTimeout:   10 * time.Second,
		DefaultLimit:      20,
		MaxLimit:          100,
		RecentWindow:      500,
	}
}
