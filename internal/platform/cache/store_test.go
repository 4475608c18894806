package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetMissesAfterExpiryButKeepsEntry(t *testing.T) {
	t.Parallel()

	store := NewStore(50 * time.Millisecond)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")

	now = now.Add(51 * time.Millisecond)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expired entry still served fresh")
	}

	// The expired entry must stay for degraded-mode stale reads.
	if value, ok := store.GetStale(context.Background(), "k"); !ok || value != "v" {
		t.Fatalf("stale read after expiry returned (%v, %v)", value, ok)
	}
}

func TestStore_GetStaleSurvivesExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Millisecond)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", 42)
	now = now.Add(time.Hour)

	value, ok := store.GetStale(context.Background(), "k")
	if !ok {
		t.Fatalf("stale read missed an entry that was written")
	}
	if got, _ := value.(int); got != 42 {
		t.Fatalf("stale read returned %v, want 42", value)
	}
}

func TestStore_FreshWithinTTL(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set(context.Background(), "k", "fresh")

	value, ok := store.Get(context.Background(), "k")
	if !ok || value != "fresh" {
		t.Fatalf("fresh read returned (%v, %v)", value, ok)
	}
}

func TestStore_GetOrLoadUsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			if _, err := store.GetOrLoad(context.Background(), "same-key", loader); err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}
