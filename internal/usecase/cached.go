package usecase

import (
	"context"

	"github.com/jsvanda/infoboard/internal/platform/cache"
	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

// cachedLoad serves the fresh cache entry when one exists, otherwise loads
// from upstream through a singleflight group. When the load fails and a
// stale entry survives in the store, the stale value is served instead and
// the error is swallowed. Callers surface staleness to clients via the
// returned flag.
func cachedLoad[T any](
	ctx context.Context,
	store *cache.Store,
	flight *resilience.SingleFlight,
	key string,
	load func(context.Context) (T, error),
) (T, bool, error) {
	if v, ok := store.Get(ctx, key); ok {
		return v.(T), false, nil
	}

	v, err, _ := flight.Do(key, func() (any, error) {
		value, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		store.Set(ctx, key, value)
		return value, nil
	})
	if err == nil {
		return v.(T), false, nil
	}

	if sv, ok := store.GetStale(ctx, key); ok {
		return sv.(T), true, nil
	}

	var zero T
	return zero, false, err
}

// reloadCached always loads from upstream and overwrites the cache entry on
// success. On failure the previous entry, fresh or stale, stays in place.
func reloadCached[T any](
	ctx context.Context,
	store *cache.Store,
	flight *resilience.SingleFlight,
	key string,
	load func(context.Context) (T, error),
) error {
	_, err, _ := flight.Do("reload:"+key, func() (any, error) {
		value, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		store.Set(ctx, key, value)
		return value, nil
	})
	return err
}
