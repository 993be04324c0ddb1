// Package feed provides the feed orchestrator: it composes the batch cache,
// cursor arithmetic, the recommendation engine, and the content detail
// lookup into paginated feed page requests with background prefetch.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reelworks/feedcache/pkg/cache"
	"github.com/reelworks/feedcache/pkg/pagination"
)

// Prometheus metrics for feed page serving.
var (
	feedPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedcache_pages_total",
		Help: "Total feed page requests by scope and outcome",
	}, []string{"scope", "outcome"}) // outcome: "hit", "generated", "empty", "error"

	feedPageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedcache_page_duration_seconds",
		Help:    "Feed page request duration in seconds by scope",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"scope"})

	feedGenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedcache_generations_total",
		Help: "Total batch generations by path",
	}, []string{"path"}) // "foreground", "prefetch"

	feedGenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedcache_generation_failures_total",
		Help: "Total batch generation failures by path",
	}, []string{"path"})
)

// Service answers feed page requests. Construct once at process start and
// share; all dependencies are injected, there is no global state beyond the
// batch store.
type Service struct {
	store      BatchStore
	engine     RecommendationEngine
	recent     RecentlyViewedLookup
	details    ContentDetailLookup
	prefetcher *Prefetcher
	config     Config
	logger     zerolog.Logger
}

// New creates a feed service.
func New(store BatchStore, engine RecommendationEngine, recent RecentlyViewedLookup, details ContentDetailLookup, cfg Config) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("batch store is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("recommendation engine is required")
	}
	if recent == nil {
		return nil, fmt.Errorf("recently-viewed lookup is required")
	}
	if details == nil {
		return nil, fmt.Errorf("content detail lookup is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive (got %d)", cfg.BatchSize)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("ttl must be positive (got %v)", cfg.TTL)
	}
	if cfg.PrefetchThreshold <= 0 || cfg.PrefetchThreshold > 1 {
		return nil, fmt.Errorf("prefetch threshold must be in (0, 1] (got %v)", cfg.PrefetchThreshold)
	}
	if cfg.DefaultLimit <= 0 || cfg.MaxLimit < cfg.DefaultLimit {
		return nil, fmt.Errorf("invalid page limits (default %d, max %d)", cfg.DefaultLimit, cfg.MaxLimit)
	}

	logger := log.With().Str("component", "feed-service").Logger()

	s := &Service{
		store:   store,
		engine:  engine,
		recent:  recent,
		details: details,
		config:  cfg,
		logger:  logger,
	}
	s.prefetcher = NewPrefetcher(store, s.generateBatch, cfg)

	return s, nil
}

// GetPage serves one page of the owner's main feed, scoped by language.
// An absent or invalid cursor starts from offset 0.
func (s *Service) GetPage(ctx context.Context, owner cache.Owner, cursor string, limit int, language string) (*Page, error) {
	if language == "" {
		return nil, ErrLanguageRequired
	}

	return s.page(ctx, cache.Key{
		Owner:    owner,
		Scope:    cache.ScopeMain,
		Language: language,
	}, cursor, limit)
}

// GetCategoryPage serves one page of a category feed, scoped by language and
// category. Unauthenticated callers pass cache.Anonymous() and share one
// cache surface per language and category.
func (s *Service) GetCategoryPage(ctx context.Context, owner cache.Owner, cursor string, limit int, language, category string) (*Page, error) {
	if language == "" {
		return nil, ErrLanguageRequired
	}
	if category == "" {
		return nil, ErrCategoryRequired
	}

	return s.page(ctx, cache.Key{
		Owner:    owner,
		Scope:    cache.ScopeCategory,
		Language: language,
		Category: category,
	}, cursor, limit)
}

// ClearOwner drops every cached batch of the owner, across all languages,
// categories, and batch numbers. Called on block/unblock and logout.
func (s *Service) ClearOwner(ctx context.Context, owner cache.Owner) (int64, error) {
	deleted, err := s.store.ClearOwner(ctx, owner)
	if err != nil {
		return deleted, err
	}

	s.logger.Info().
		Str("owner", owner.String()).
		Int64("deleted", deleted).
		Msg("Cleared owner feed cache")

	return deleted, nil
}

// Close waits for in-flight background prefetches to finish.
func (s *Service) Close() {
	s.prefetcher.Close()
}

// page runs the shared pipeline: cursor -> coordinates -> batch read (or
// generation on miss) -> lookahead slice -> prefetch dispatch -> detail
// resolution -> page assembly.
func (s *Service) page(ctx context.Context, key cache.Key, cursor string, limit int) (*Page, error) {
	scope := string(key.Scope)
	start := time.Now()
	defer func() {
		feedPageDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
	}()

	limit = s.clampLimit(limit)
	offset := pagination.ParseCursor(cursor)
	batch, within := pagination.Coordinates(offset, s.config.BatchSize)
	key.Batch = batch

	outcome := "hit"
	items, err := s.store.Get(ctx, key)
	if errors.Is(err, cache.ErrBatchMiss) {
		items, err = s.generateBatch(ctx, key, "foreground")
		if err != nil {
			feedPagesTotal.WithLabelValues(scope, "error").Inc()
			return nil, err
		}
		outcome = "generated"
	} else if err != nil {
		feedPagesTotal.WithLabelValues(scope, "error").Inc()
		return nil, err
	}

	// Empty generation: no batch available at this region of the feed.
	if len(items) == 0 {
		feedPagesTotal.WithLabelValues(scope, "empty").Inc()
		return &Page{Items: []ContentDetail{}}, nil
	}

	lookahead := pagination.Slice(items, within, limit)
	hasNext := len(lookahead) > limit
	pageIDs := lookahead
	if hasNext {
		pageIDs = lookahead[:limit]
	}
	served := len(pageIDs)

	// The only asynchronous branch: dispatched, never awaited. Caller
	// cancellation does not reach it.
	s.prefetcher.MaybePrefetch(key, within+served, len(items))

	details, err := s.details.Resolve(ctx, key.Owner, pageIDs)
	if err != nil {
		feedPagesTotal.WithLabelValues(scope, "error").Inc()
		return nil, fmt.Errorf("resolve content details: %w", err)
	}
	if details == nil {
		details = []ContentDetail{}
	}

	// hasNext stays batch-level even when the detail lookup dropped
	// blocked or deleted entries below the limit.
	page := &Page{
		Items:   details,
		HasNext: hasNext,
	}
	if hasNext {
		page.NextCursor = pagination.NextCursor(offset, served)
	}

	s.logger.Debug().
		Str("owner", key.Owner.String()).
		Str("scope", scope).
		Int64("batch", key.Batch).
		Int("within", within).
		Int("served", served).
		Bool("has_next", hasNext).
		Bool("cache_hit", outcome == "hit").
		Msg("Served feed page")

	feedPagesTotal.WithLabelValues(scope, outcome).Inc()
	return page, nil
}

// generateBatch fills one batch from the recommendation engine and caches
// it. Returns the generated IDs; an empty generation returns nil without
// caching anything. path is "foreground" or "prefetch" for observability.
func (s *Service) generateBatch(ctx context.Context, key cache.Key, path string) ([]string, error) {
	exclude, err := s.recent.Recent(ctx, key.Owner, s.config.RecentWindow)
	if err != nil {
		// The exclusion set is best effort: a degraded lookup must not
		// fail the page, it only risks repeats.
		s.logger.Warn().
			Err(err).
			Str("owner", key.Owner.String()).
			Msg("Recently-viewed lookup failed, generating without exclusions")
		exclude = nil
	}

	ids, err := s.engine.Generate(ctx, key.Owner, s.config.BatchSize, exclude, key.Language, key.Category)
	if err != nil {
		feedGenerationFailures.WithLabelValues(path).Inc()
		return nil, &GenerationError{Owner: key.Owner, Batch: key.Batch, Err: err}
	}

	feedGenerationsTotal.WithLabelValues(path).Inc()

	if len(ids) == 0 {
		s.logger.Info().
			Str("owner", key.Owner.String()).
			Int64("batch", key.Batch).
			Msg("Engine returned no items, nothing cached")
		return nil, nil
	}

	if _, err := s.store.Put(ctx, key, ids, s.config.TTL); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("owner", key.Owner.String()).
		Int64("batch", key.Batch).
		Int("size", len(ids)).
		Dur("ttl", s.config.TTL).
		Str("path", path).
		Msg("Generated and cached batch")

	return ids, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		return s.config.MaxLimit
	}
	return limit
}
