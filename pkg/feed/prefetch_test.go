package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/reelworks/feedcache/pkg/cache"
)

func TestPrefetch_TriggeredPastThreshold(t *testing.T) {
	store := newFakeStore()
	owner := cache.UserOwner(uuid.New())
	store.seed(mainKey(owner, 0), 250)

	svc, deps := newTestService(t, testDeps{store: store})
	ctx := context.Background()

	// Page ends at offset 200 of a 250-item batch: 200/250 = 0.8 >= 0.5.
	if _, err := svc.GetPage(ctx, owner, "180", 20, "en"); err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	svc.Close()

	next, err := store.Get(ctx, mainKey(owner, 1))
	if err != nil {
		t.Fatalf("Next batch was not prefetched: %v", err)
	}
	if len(next) != 250 {
		t.Errorf("Prefetched batch has %d IDs, want 250", len(next))
	}
	if deps.engine.callCount() != 1 {
		t.Errorf("Engine calls = %d, want 1 (prefetch only)", deps.engine.callCount())
	}
}

func TestPrefetch_NotTriggeredBelowThreshold(t *testing.T) {
	store := newFakeStore()
	owner := cache.UserOwner(uuid.New())
	store.seed(mainKey(owner, 0), 250)

	svc, deps := newTestService(t, testDeps{store: store})
	ctx := context.Background()

	// Page ends at offset 100: 100/250 = 0.4 < 0.5.
	if _, err := svc.GetPage(ctx, owner, "80", 20, "en"); err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	svc.Close()

	if _, err := store.Get(ctx, mainKey(owner, 1)); !errors.Is(err, cache.ErrBatchMiss) {
		t.Errorf("Batch 1 should not have been prefetched: %v", err)
	}
	if deps.engine.callCount() != 0 {
		t.Errorf("Engine calls = %d, want 0", deps.engine.callCount())
	}
}

func TestPrefetch_SkippedWhenNextPresent(t *testing.T) {
	store := newFakeStore()
	owner := cache.UserOwner(uuid.New())
	store.seed(mainKey(owner, 0), 250)
	store.seed(mainKey(owner, 1), 250)

	svc, deps := newTestService(t, testDeps{store: store})

	if _, err := svc.GetPage(context.Background(), owner, "180", 20, "en"); err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	svc.Close()

	if deps.engine.callCount() != 0 {
		t.Errorf("Engine calls = %d, want 0 (next batch already present)", deps.engine.callCount())
	}
}

func TestPrefetch_ShortBatchUsesActualLength(t *testing.T) {
	// A partially generated batch uses its real length as the threshold
	// denominator: 60/100 = 0.6 triggers even though 60/250 would not.
	store := newFakeStore()
	owner := cache.UserOwner(uuid.New())
	store.seed(mainKey(owner, 0), 100)

	svc, _ := newTestService(t, testDeps{store: store})
	ctx := context.Background()

	if _, err := svc.GetPage(ctx, owner, "40", 20, "en"); err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	svc.Close()

	if _, err := store.Get(ctx, mainKey(owner, 1)); err != nil {
		t.Errorf("Short batch should still trigger prefetch by actual length: %v", err)
	}
}

func TestPrefetch_FailureNeverReachesCaller(t *testing.T) {
	store := newFakeStore()
	owner := cache.UserOwner(uuid.New())
	store.seed(mainKey(owner, 0), 250)

	engine := &fakeEngine{err: errors.New("ranking backend down")}
	svc, _ := newTestService(t, testDeps{store: store, engine: engine})
	ctx := context.Background()

	page, err := svc.GetPage(ctx, owner, "180", 20, "en")
	if err != nil {
		t.Fatalf("Prefetch failure leaked into the foreground request: %v", err)
	}
	if len(page.Items) != 20 {
		t.Errorf("Items = %d, want 20", len(page.Items))
	}

	svc.Close()

	if _, err := store.Get(ctx, mainKey(owner, 1)); !errors.Is(err, cache.ErrBatchMiss) {
		t.Errorf("Failed prefetch must not cache anything: %v", err)
	}
}

func TestPrefetch_SurvivesCallerCancellation(t *testing.T) {
	store := newFakeStore()
	owner := cache.UserOwner(uuid.New())
	store.seed(mainKey(owner, 0), 250)

	svc, deps := newTestService(t, testDeps{store: store})

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.GetPage(ctx, owner, "180", 20, "en"); err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	// The request is done; its cancellation must not reach the dispatched
	// prefetch.
	cancel()

	svc.Close()

	if _, err := store.Get(context.Background(), mainKey(owner, 1)); err != nil {
		t.Errorf("Prefetch was cancelled along with the request: %v", err)
	}
	deps.engine.mu.Lock()
	ctxDone := deps.engine.ctxDoneAtCall
	deps.engine.mu.Unlock()
	if ctxDone {
		t.Error("Prefetch ran on an already-cancelled context")
	}
}

func TestPrefetch_EmptyBatchNoDispatch(t *testing.T) {
	p := NewPrefetcher(newFakeStore(), func(context.Context, cache.Key, string) ([]string, error) {
		t.Error("generate should not run for an empty batch")
		return nil, nil
	}, DefaultConfig())

	p.MaybePrefetch(mainKey(cache.Anonymous(), 0), 0, 0)
	p.Close()
}
