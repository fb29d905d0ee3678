package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_Get_ExpiresAtTTLBoundary(t *testing.T) {
	t.Parallel()

	ttl := 30 * time.Minute
	base := time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)
	current := base
	store := NewStoreWithClock(ttl, func() time.Time { return current })

	store.Set(context.Background(), "k", 42)

	current = base.Add(ttl - time.Second)
	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatal("expected hit just before TTL expiry")
	}

	current = base.Add(ttl + time.Second)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatal("expected miss just after TTL expiry")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, have %d entries", store.Len())
	}
}

func TestStore_EvictIfExpired_KeepsEntryRefreshedAfterExpiryCheck(t *testing.T) {
	t.Parallel()

	ttl := time.Minute
	base := time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)
	current := base
	store := NewStoreWithClock(ttl, func() time.Time { return current })

	store.Set(context.Background(), "k", "stale")

	// A reader observed the entry expired at this instant, then a writer
	// refreshed the key before the reader's eviction ran.
	observed := base.Add(2 * ttl)
	current = observed
	store.Set(context.Background(), "k", "fresh")

	store.evictIfExpired("k", observed)
	if v, ok := store.Get(context.Background(), "k"); !ok || v != "fresh" {
		t.Fatalf("entry = %v ok=%v, want refreshed value to survive eviction", v, ok)
	}

	// Without an intervening refresh the expired entry does go.
	current = observed.Add(2 * ttl)
	store.evictIfExpired("k", current)
	if store.Len() != 0 {
		t.Fatalf("expected expired entry removed, have %d entries", store.Len())
	}
}

func TestStore_DeletePrefixAndFunc(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	store.Set(ctx, "scores:g1:abc", 1)
	store.Set(ctx, "scores:g1:def", 2)
	store.Set(ctx, "scores:g2:abc", 3)
	store.Set(ctx, "batch:c1:g1,g2:stats", 4)

	store.DeletePrefix(ctx, "scores:g1:")
	if _, ok := store.Get(ctx, "scores:g1:abc"); ok {
		t.Fatal("prefixed entry should be gone")
	}
	if _, ok := store.Get(ctx, "scores:g2:abc"); !ok {
		t.Fatal("other game entry should survive")
	}

	store.DeleteFunc(ctx, func(key string) bool { return strings.Contains(key, "g1") })
	if _, ok := store.Get(ctx, "batch:c1:g1,g2:stats"); ok {
		t.Fatal("batch entry matching the predicate should be gone")
	}
	if _, ok := store.Get(ctx, "scores:g2:abc"); !ok {
		t.Fatal("non-matching entry should survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
