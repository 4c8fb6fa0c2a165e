package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/logger"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// CacheConfig configures the response cache.
type CacheConfig struct {
	Enabled  bool
	RedisURL string
}

// NewCache creates a Redis-backed cache, or a noop cache when caching is
// disabled or Redis is unreachable. Aggregate trees are served from cache
// when present; a cache failure is never fatal to a request.
func NewCache(ctx context.Context, config CacheConfig, log logger.Logger) ports.Cache {
	if !config.Enabled {
		return &noopCache{}
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		if log != nil {
			log.Warn(ctx, "Invalid Redis URL, caching disabled", map[string]interface{}{
				"redis_url": config.RedisURL,
				"error":     err.Error(),
			})
		}
		return &noopCache{}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if log != nil {
			log.Warn(ctx, "Redis unreachable, caching disabled", map[string]interface{}{
				"redis_url": config.RedisURL,
				"error":     err.Error(),
			})
		}
		return &noopCache{}
	}

	return &redisCache{client: client}
}

// redisCache implements ports.Cache with Redis
type redisCache struct {
	client *redis.Client
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// noopCache misses on every read and drops every write.
type noopCache struct{}

func (*noopCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (*noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
