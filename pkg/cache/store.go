package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrBatchMiss indicates the requested batch is absent or expired.
	ErrBatchMiss = errors.New("batch miss")

	// ErrStoreUnavailable indicates a transient store failure (timeout,
	// connection error). Callers must surface it rather than fall back to
	// an empty feed.
	ErrStoreUnavailable = errors.New("batch store unavailable")
)

// DefaultOpTimeout bounds every store round trip so a degraded Redis cannot
// stall request handling indefinitely.
const DefaultOpTimeout = 2 * time.Second

// clearChunkSize is the number of keys deleted per DEL during an owner clear.
const clearChunkSize = 128

// putScript replaces a batch and sets its TTL as one server-side operation.
// A reader can never observe the new list without its TTL, and a crash
// between write and expire cannot leave an un-expiring key behind.
var putScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
redis.call('RPUSH', KEYS[1], unpack(ARGV, 1, #ARGV - 1))
redis.call('EXPIRE', KEYS[1], ARGV[#ARGV])
return redis.call('LLEN', KEYS[1])
`)

// Store persists batches of ranked content IDs in Redis lists.
type Store struct {
	redis     *redis.Client
	opTimeout time.Duration
}

// NewStore creates a batch store with the given per-operation timeout.
// A non-positive timeout falls back to DefaultOpTimeout.
func NewStore(redisClient *redis.Client, opTimeout time.Duration) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &Store{
		redis:     redisClient,
		opTimeout: opTimeout,
	}
}

// Get retrieves the full ordered batch for key.
// Returns ErrBatchMiss if the key doesn't exist or has expired.
func (s *Store) Get(ctx context.Context, key Key) ([]string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ids, err := s.redis.LRange(ctx, key.String(), 0, -1).Result()
	if err != nil {
		batchErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: lrange: %v", ErrStoreUnavailable, err)
	}

	// LRANGE on a missing key yields an empty list, not redis.Nil.
	if len(ids) == 0 {
		batchMisses.Inc()
		return nil, ErrBatchMiss
	}

	batchHits.Inc()
	return ids, nil
}

// Put atomically replaces the batch at key with ids and sets its TTL.
// An empty ids slice is a no-op returning false: an empty generation must
// never be cached as "the" batch, or it would poison every later read.
func (s *Store) Put(ctx context.Context, key Key, ids []string, ttl time.Duration) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	if ttl <= 0 {
		return false, fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, int64(ttl.Seconds()))

	if err := putScript.Run(ctx, s.redis, []string{key.String()}, args...).Err(); err != nil {
		batchErrors.WithLabelValues("put").Inc()
		return false, fmt.Errorf("%w: put script: %v", ErrStoreUnavailable, err)
	}

	batchWrites.Inc()
	batchLength.Observe(float64(len(ids)))
	return true, nil
}

// Size returns the number of IDs cached at key, 0 if absent.
func (s *Store) Size(ctx context.Context, key Key) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	n, err := s.redis.LLen(ctx, key.String()).Result()
	if err != nil {
		batchErrors.WithLabelValues("size").Inc()
		return 0, fmt.Errorf("%w: llen: %v", ErrStoreUnavailable, err)
	}

	return n, nil
}

// Delete removes a single batch.
func (s *Store) Delete(ctx context.Context, key Key) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		batchErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("%w: del: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// ClearOwner scans and deletes every batch belonging to owner, across all
// languages, categories, and batch numbers. Used to invalidate a user's feed
// entirely, e.g. on block/unblock. Returns the number of keys removed.
//
// The scan is not bounded by opTimeout; it runs under the caller's context
// since it may cover many keyspace pages.
func (s *Store) ClearOwner(ctx context.Context, owner Owner) (int64, error) {
	var deleted int64

	for _, pattern := range ownerPatterns(owner) {
		iter := s.redis.Scan(ctx, 0, pattern, clearChunkSize).Iterator()

		chunk := make([]string, 0, clearChunkSize)
		for iter.Next(ctx) {
			chunk = append(chunk, iter.Val())
			if len(chunk) == clearChunkSize {
				n, err := s.deleteKeys(ctx, chunk)
				deleted += n
				if err != nil {
					return deleted, err
				}
				chunk = chunk[:0]
			}
		}
		if err := iter.Err(); err != nil {
			batchErrors.WithLabelValues("clear").Inc()
			return deleted, fmt.Errorf("%w: scan %s: %v", ErrStoreUnavailable, pattern, err)
		}

		n, err := s.deleteKeys(ctx, chunk)
		deleted += n
		if err != nil {
			return deleted, err
		}
	}

	ownerClears.Inc()
	return deleted, nil
}

func (s *Store) deleteKeys(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		batchErrors.WithLabelValues("clear").Inc()
		return n, fmt.Errorf("%w: del: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// opContext bounds a single store round trip.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}
