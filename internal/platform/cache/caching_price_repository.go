// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"market_backend/internal/feature/prices/domain/entity"
	"market_backend/internal/feature/prices/usecase"
)

const (
	segmentLatest  = "latest"
	segmentIndices = "indices"
)

// CachingPriceRepository decorates a PriceRepository with Redis caching.
// Only the read APIs are cached. Selection queries used by sync always hit the store.
type CachingPriceRepository struct {
	inner     usecase.PriceRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.PriceRepository = (*CachingPriceRepository)(nil)

// NewCachingPriceRepository decorates a PriceRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "prices".
func NewCachingPriceRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PriceRepository, namespace string) *CachingPriceRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "prices"
	}
	return &CachingPriceRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingPriceRepository) SymbolsNeedingRefresh(ctx context.Context) ([]entity.RefreshCandidate, error) {
	return c.inner.SymbolsNeedingRefresh(ctx)
}

func (c *CachingPriceRepository) ActiveTrackedIndices(ctx context.Context) ([]entity.TrackedIndex, error) {
	return c.inner.ActiveTrackedIndices(ctx)
}

// UpsertPrices writes through to the store and drops cached price listings.
func (c *CachingPriceRepository) UpsertPrices(ctx context.Context, batch []entity.PriceSnapshot) (int, error) {
	n, err := c.inner.UpsertPrices(ctx, batch)
	if err != nil {
		return 0, err
	}
	if c.rdb != nil && n > 0 {
		_ = c.deleteByPattern(ctx, c.cacheKeyPrefix(segmentLatest)+"*") // best effort
	}
	return n, nil
}

// UpsertTrackedIndexPrices writes through to the store and drops cached index listings.
func (c *CachingPriceRepository) UpsertTrackedIndexPrices(ctx context.Context, batch []entity.IndexSnapshot) (int, error) {
	n, err := c.inner.UpsertTrackedIndexPrices(ctx, batch)
	if err != nil {
		return 0, err
	}
	if c.rdb != nil && n > 0 {
		_ = c.deleteByPattern(ctx, c.cacheKeyPrefix(segmentIndices)+"*")
	}
	return n, nil
}

// InvalidateLatestPrices drops cached symbol price listings.
// Used when price rows are removed outside UpsertPrices, e.g. on symbol deactivation.
func (c *CachingPriceRepository) InvalidateLatestPrices(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.cacheKeyPrefix(segmentLatest)+"*")
}

// ListLatestPrices checks the cache first, then falls back to the store.
func (c *CachingPriceRepository) ListLatestPrices(ctx context.Context) ([]entity.LatestPrice, error) {
	return readThrough(ctx, c, c.cacheKey(segmentLatest), c.inner.ListLatestPrices)
}

// ListIndexPrices checks the cache first, then falls back to the store.
func (c *CachingPriceRepository) ListIndexPrices(ctx context.Context) ([]entity.IndexPrice, error) {
	return readThrough(ctx, c, c.cacheKey(segmentIndices), c.inner.ListIndexPrices)
}

func readThrough[T any](ctx context.Context, c *CachingPriceRepository, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load(ctx)
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// cacheKey generates the cache key for one listing.
func (c *CachingPriceRepository) cacheKey(segment string) string {
	return c.cacheKeyPrefix(segment) + "all"
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingPriceRepository) cacheKeyPrefix(segment string) string {
	return fmt.Sprintf("%s:%s:", safe(c.namespace), safe(segment))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPriceRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
