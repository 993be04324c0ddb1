package feed

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reelworks/feedcache/pkg/cache"
)

// Prometheus metrics for prefetch operations.
var (
	prefetchTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_prefetch_triggered_total",
		Help: "Total background prefetch dispatches",
	})

	prefetchSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedcache_prefetch_skipped_total",
		Help: "Total prefetch dispatches skipped by reason",
	}, []string{"reason"}) // "saturated", "present"

	prefetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedcache_prefetch_failures_total",
		Help: "Total background prefetch generation failures",
	})
)

// generateFunc fills one batch; everything it needs is carried by the key.
type generateFunc func(ctx context.Context, key cache.Key, path string) ([]string, error)

// Prefetcher generates the next batch in the background once consumption of
// the current batch crosses the threshold, so scrolling never stalls on a
// recomputation.
//
// The check-then-generate is deliberately not protected by a lock: two
// racing generations of the same batch each write a complete, valid list and
// the last Put wins, which is cheaper than coordinating writers.
type Prefetcher struct {
	store    BatchStore
	generate generateFunc
	config   Config
	sem      chan struct{}
	wg       sync.WaitGroup
	logger   zerolog.Logger
}

// NewPrefetcher creates a prefetch coordinator.
func NewPrefetcher(store BatchStore, generate generateFunc, cfg Config) *Prefetcher {
	if cfg.MaxPrefetch <= 0 {
		cfg.MaxPrefetch = DefaultConfig().MaxPrefetch
	}
	if cfg.PrefetchTimeout <= 0 {
		cfg.PrefetchTimeout = DefaultConfig().PrefetchTimeout
	}

	return &Prefetcher{
		store:    store,
		generate: generate,
		config:   cfg,
		sem:      make(chan struct{}, cfg.MaxPrefetch),
		logger:   log.With().Str("component", "feed-prefetch").Logger(),
	}
}

// MaybePrefetch dispatches generation of the batch after key when the page
// just served ended at endPos of a batch holding batchLen items (the actual
// retrieved length, which may be below the configured batch size) and
// endPos/batchLen has crossed the threshold.
//
// The dispatch is fire-and-forget: it runs on a fresh background context so
// the caller's cancellation cannot reach it, and any failure is logged and
// counted, never returned. When all prefetch slots are busy the batch is
// simply generated on demand by whichever request reaches it first.
func (p *Prefetcher) MaybePrefetch(key cache.Key, endPos, batchLen int) {
	if batchLen <= 0 {
		return
	}
	if float64(endPos)/float64(batchLen) < p.config.PrefetchThreshold {
		return
	}

	select {
	case p.sem <- struct{}{}:
	default:
		prefetchSkipped.WithLabelValues("saturated").Inc()
		return
	}

	next := key.Next()
	prefetchTriggered.Inc()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), p.config.PrefetchTimeout)
		defer cancel()

		size, err := p.store.Size(ctx, next)
		if err != nil {
			prefetchFailures.Inc()
			p.logger.Warn().
				Err(err).
				Str("key", next.String()).
				Msg("Prefetch absence check failed")
			return
		}
		if size > 0 {
			prefetchSkipped.WithLabelValues("present").Inc()
			return
		}

		if _, err := p.generate(ctx, next, "prefetch"); err != nil {
			prefetchFailures.Inc()
			p.logger.Error().
				Err(err).
				Str("key", next.String()).
				Msg("Background batch generation failed")
			return
		}

		p.logger.Debug().
			Str("key", next.String()).
			Msg("Prefetched next batch")
	}()
}

// Close waits for in-flight background generations to finish.
func (p *Prefetcher) Close() {
	p.wg.Wait()
}
