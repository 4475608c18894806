package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

type entry struct {
	value     any
	writtenAt time.Time
}

// Store is a process-local TTL cache. Each logical dataset gets its own
// instance so TTLs can differ by domain.
//
// Expired entries are never dropped, only overwritten or explicitly deleted,
// so GetStale can serve degraded-mode fallbacks long after expiry. The key
// space is small and bounded (one entry per dataset or query), so the map
// never needs sweeping.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  resilience.SingleFlight
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key when the entry is within the store TTL.
// Expired entries miss but stay in place for GetStale.
func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(e, now) {
		return nil, false
	}

	return e.value, true
}

// GetStale returns the last written value regardless of age. Callers must
// treat the result as degraded data, never as a primary read.
func (s *Store) GetStale(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, writtenAt: s.now()}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or runs loader once per key across
// concurrent callers, caching its result.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) expired(e entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.writtenAt) > s.ttl
}
