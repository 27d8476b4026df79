package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const redisPrefix = "marketsnap:global:"

// RedisCache backs the global-data memo with Redis so that several collector
// processes pointed at the same low-rate-limit provider share one window.
// Failures degrade to cache misses; the cache must never fail a task.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache connects to addr.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewRedisCacheWithClient wraps an existing client; tests pass a mock.
func NewRedisCacheWithClient(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the value if present and unexpired.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, redisPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache get failed, treating as miss")
		}
		return nil, false
	}
	return val, true
}

// Set stores a value with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, redisPrefix+key, value, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache set failed")
	}
}

// Purge removes all cache entries under the prefix.
func (c *RedisCache) Purge(ctx context.Context) {
	keys, err := c.client.Keys(ctx, redisPrefix+"*").Result()
	if err != nil {
		log.Warn().Err(err).Msg("redis cache purge scan failed")
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			log.Warn().Err(err).Msg("redis cache purge delete failed")
		}
	}
}
