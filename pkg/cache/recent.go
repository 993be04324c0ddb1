package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRecentWindow is how many recently seen content IDs are kept per user.
const DefaultRecentWindow = 500

// DefaultRecentTTL is how long a user's recently-seen list survives without
// new views.
const DefaultRecentTTL = 24 * time.Hour

// RecentTracker records which content a user has recently seen, so batch
// generation can exclude it. Backed by a capped Redis list per user.
type RecentTracker struct {
	redis  *redis.Client
	window int
	ttl    time.Duration
}

// NewRecentTracker creates a recently-seen tracker. Non-positive window or
// ttl fall back to the defaults.
func NewRecentTracker(redisClient *redis.Client, window int, ttl time.Duration) *RecentTracker {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if window <= 0 {
		window = DefaultRecentWindow
	}
	if ttl <= 0 {
		ttl = DefaultRecentTTL
	}
	return &RecentTracker{
		redis:  redisClient,
		window: window,
		ttl:    ttl,
	}
}

// recentKey is the list of recently seen content IDs, newest first.
func recentKey(owner Owner) string {
	return fmt.Sprintf("feed:seen:%s", owner)
}

// Record marks contentIDs as seen by owner. A no-op for the anonymous owner:
// the anonymous surface is shared, so individual views must not shape it.
func (t *RecentTracker) Record(ctx context.Context, owner Owner, contentIDs ...string) error {
	if owner.IsAnonymous() || len(contentIDs) == 0 {
		return nil
	}

	key := recentKey(owner)
	args := make([]interface{}, len(contentIDs))
	for i, id := range contentIDs {
		args[i] = id
	}

	pipe := t.redis.Pipeline()
	pipe.LPush(ctx, key, args...)
	pipe.LTrim(ctx, key, 0, int64(t.window)-1)
	pipe.Expire(ctx, key, t.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		batchErrors.WithLabelValues("record_seen").Inc()
		return fmt.Errorf("%w: record seen: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Recent returns up to limit recently seen content IDs for owner, newest
// first. The anonymous owner has no history and always yields nil.
func (t *RecentTracker) Recent(ctx context.Context, owner Owner, limit int) ([]string, error) {
	if owner.IsAnonymous() || limit <= 0 {
		return nil, nil
	}

	ids, err := t.redis.LRange(ctx, recentKey(owner), 0, int64(limit)-1).Result()
	if err != nil {
		batchErrors.WithLabelValues("recent").Inc()
		return nil, fmt.Errorf("%w: recent: %v", ErrStoreUnavailable, err)
	}

	return ids, nil
}
