package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

const keyPrefix = "agent-bds:search:"

// Cache memoizes search results in redis for a short TTL. A lost redis
// connection degrades to cache misses, it never fails a search.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger port.LoggerPort
}

// New parses redisURL, verifies connectivity with a ping and returns
// the cache. ttl bounds how long a memoized result stays valid.
func New(ctx context.Context, redisURL string, ttl time.Duration, logger port.LoggerPort) (*Cache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	logger.Info("Redis cache connected", port.Fields{"ttl": ttl.String()})
	return &Cache{client: client, ttl: ttl, logger: logger}, nil
}

// GetResult returns the memoized result for key. The second return is
// false on a miss; redis errors surface as errors, not misses, so the
// caller can tell a cold key from a broken cache.
func (c *Cache) GetResult(ctx context.Context, key string) (*domain.SearchResult, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", err)
	}

	var result domain.SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		c.logger.Warn("Dropping undecodable cache entry", port.Fields{"key": key})
		return nil, false, nil
	}

	result.FromCache = true
	return &result, true, nil
}

func (c *Cache) SetResult(ctx context.Context, key string, result *domain.SearchResult) error {
	if result == nil {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result for cache: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cached result: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
