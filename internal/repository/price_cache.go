package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Hezi12/rothschild-backoffice/internal/models"
)

// CachedRepository decorates a Repository with a Redis read-through cache
// for dynamic price lookups, the one fetch that is hit on every calendar
// render. Cache trouble is never fatal: a miss or a Redis error falls
// through to the underlying store, and every price upsert invalidates the
// cached window.
type CachedRepository struct {
	Repository

	redis *redis.Client
	ttl   time.Duration
}

// NewCachedRepository wraps base with Redis caching for dynamic prices.
func NewCachedRepository(base Repository, redisClient *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{Repository: base, redis: redisClient, ttl: ttl}
}

// FetchDynamicPrices serves the window from cache when possible.
func (c *CachedRepository) FetchDynamicPrices(ctx context.Context, from, to time.Time) ([]models.DynamicPriceOverride, error) {
	key := priceCacheKey(from, to)

	var cached []models.DynamicPriceOverride
	if c.readCache(ctx, key, &cached) {
		return cached, nil
	}

	overrides, err := c.Repository.FetchDynamicPrices(ctx, from, to)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, overrides)
	return overrides, nil
}

// UpsertDynamicPrice writes through and drops the cached windows, so the
// next fetch sees the new override.
func (c *CachedRepository) UpsertDynamicPrice(ctx context.Context, roomID string, date time.Time, price float64) error {
	if err := c.Repository.UpsertDynamicPrice(ctx, roomID, date, price); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func priceCacheKey(from, to time.Time) string {
	return fmt.Sprintf("dynamic_prices:%s:%s", models.DateKey(from), models.DateKey(to))
}

func (c *CachedRepository) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *CachedRepository) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *CachedRepository) invalidate(ctx context.Context) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, "dynamic_prices:*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.redis.Del(ctx, iter.Val()).Err()
	}
}
