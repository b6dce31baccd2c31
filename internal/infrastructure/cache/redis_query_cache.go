// Package cache implements the read-side cache for platform responses:
// Redis-backed storage with per-endpoint freshness windows,
// stale-while-revalidate, and in-process deduplication of concurrent
// identical fetches.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"textloop-gateway/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// staleFactor bounds how long a stale entry may keep being served while
// refreshes fail: payloads live staleFactor times their fresh window.
const staleFactor = 10

const keyPrefix = "textloop:query:"

// RedisQueryCache implements ports.QueryCache on Redis.
type RedisQueryCache struct {
	rdb    *redis.Client
	group  singleflight.Group
	logger zerolog.Logger
}

// NewRedisQueryCache creates a new Redis-backed query cache
func NewRedisQueryCache(rdb *redis.Client, logger zerolog.Logger) *RedisQueryCache {
	return &RedisQueryCache{
		rdb:    rdb,
		logger: logger,
	}
}

// GetOrFetch serves key from cache while it is fresh. A stale entry is
// returned immediately and refreshed in the background; a miss fetches
// inline, deduplicated across concurrent callers of the same key.
func (c *RedisQueryCache) GetOrFetch(ctx context.Context, key string, fresh time.Duration, fetch ports.FetchFunc) (json.RawMessage, error) {
	payload, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err == nil {
		isFresh, markerErr := c.rdb.Exists(ctx, keyPrefix+key+":fresh").Result()
		if markerErr == nil && isFresh > 0 {
			return payload, nil
		}
		c.refreshInBackground(ctx, key, fresh, fetch)
		return payload, nil
	}
	if err != redis.Nil {
		// A cache outage degrades to uncached reads, it never fails them.
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, fetching from platform")
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		raw, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		c.store(ctx, key, fresh, raw)
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

// Invalidate drops all cached entries whose key starts with prefix.
func (c *RedisQueryCache) Invalidate(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// refreshInBackground revalidates a stale entry without blocking the caller.
// The parent's values (session, trace IDs) are kept; its cancellation is
// not, so a fast page load doesn't abort the refresh.
func (c *RedisQueryCache) refreshInBackground(ctx context.Context, key string, fresh time.Duration, fetch ports.FetchFunc) {
	detached := context.WithoutCancel(ctx)
	go func() {
		_, err, _ := c.group.Do(key+":refresh", func() (any, error) {
			raw, fetchErr := fetch(detached)
			if fetchErr != nil {
				return nil, fetchErr
			}
			c.store(detached, key, fresh, raw)
			return nil, nil
		})
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Background cache refresh failed, stale entry kept")
		}
	}()
}

func (c *RedisQueryCache) store(ctx context.Context, key string, fresh time.Duration, payload json.RawMessage) {
	if err := c.rdb.Set(ctx, keyPrefix+key, []byte(payload), fresh*staleFactor).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to write cache entry")
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+key+":fresh", "1", fresh).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to write cache freshness marker")
	}
}

var _ ports.QueryCache = (*RedisQueryCache)(nil)
