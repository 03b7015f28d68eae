package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL applies when callers have no better idea
const DefaultTTL = 24 * time.Hour

// maxStaleAge is the hard staleness ceiling: beyond it a cached entry
// is never served, whatever its own TTL says.
const maxStaleAge = 7 * 24 * time.Hour

// backgroundTimeout bounds the revalidation fetch that runs detached
// from the originating request.
const backgroundTimeout = 2 * time.Minute

// RefreshListener is told whenever a background revalidation lands,
// so consumers (the live hub) can prompt clients to re-pull.
type RefreshListener interface {
	CacheRefreshed(key string, at time.Time)
}

// GetWithSWR resolves key with stale-while-revalidate semantics:
//
//   - absent entry, or one older than the 7-day ceiling: call producer
//     in the foreground, cache the result, return it
//   - entry past its own TTL but under the ceiling: return the stale
//     value immediately and revalidate in the background; refresh
//     failures are logged and swallowed
//   - fresh entry: return it
//
// A failing cache never fails the call: the producer runs directly and
// its result is cached best-effort.
func GetWithSWR[T any](ctx context.Context, s *Store, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var cached T
	age, entryTTL, ok := s.peek(key, &cached)

	if !ok || age > maxStaleAge {
		fresh, err := producer(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		s.Set(key, fresh, ttl)
		return fresh, nil
	}

	if age > entryTTL {
		go func() {
			bctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
			defer cancel()

			fresh, err := producer(bctx)
			if err != nil {
				s.log.Warn("background cache refresh failed",
					zap.String("key", key), zap.Error(err))
				return
			}
			s.Set(key, fresh, ttl)
			s.notifyRefresh(key)
		}()
	}

	return cached, nil
}
