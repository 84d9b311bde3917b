// Package rediscache backs the series cache with Redis so generated series
// survive restarts and can be shared across replicas.
package rediscache

import (
	"context"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

// keyPrefix namespaces engine entries in a shared Redis instance.
const keyPrefix = "series:"

const opTimeout = 2 * time.Second

// Cache implements generator.SeriesCache on Redis. Failures degrade to
// cache misses: the generator regenerates, which is deterministic anyway.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Redis-backed series cache.
func New(addr string, db int, ttl time.Duration, logger *slog.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Ping verifies connectivity at startup.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Get(key string) ([]domain.DataPoint, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis get failed", "error", err)
		}
		return nil, false
	}

	var points []domain.DataPoint
	if err := sonic.Unmarshal(data, &points); err != nil {
		c.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		c.client.Del(ctx, redisKey(key))
		return nil, false
	}
	return points, true
}

func (c *Cache) Put(key string, points []domain.DataPoint) {
	data, err := sonic.Marshal(points)
	if err != nil {
		c.logger.Warn("failed to encode series for cache", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.client.Set(ctx, redisKey(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "error", err)
	}
}

// Clear scans for entries whose key contains pattern and deletes them,
// returning the number removed. An empty pattern clears every engine entry.
func (c *Cache) Clear(pattern string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	match := keyPrefix + "*" + pattern + "*"
	removed := 0
	iter := c.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("redis del failed", "key", iter.Val(), "error", err)
			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("redis scan failed", "error", err)
	}
	return removed
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func redisKey(key string) string {
	return keyPrefix + key
}
