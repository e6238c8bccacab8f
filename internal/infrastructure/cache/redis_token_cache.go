// Package cache stores short-lived values such as carrier access tokens.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkasa/orderhub/internal/infrastructure/config"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"github.com/redis/go-redis/v9"
)

// RedisTokenCache implements ekart.TokenCache on Redis, so every instance
// shares one token
type RedisTokenCache struct {
	client *redis.Client
}

// NewRedisTokenCache connects to Redis and verifies the connection
func NewRedisTokenCache(cfg config.RedisConfig) (*RedisTokenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisTokenCache{client: client}, nil
}

// NewRedisTokenCacheWithClient wraps an existing client
func NewRedisTokenCacheWithClient(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

// Get returns the cached value; ok is false on a miss
func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key for ttl
func (c *RedisTokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection
func (c *RedisTokenCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisTokenCache) Close() error {
	return c.client.Close()
}

var _ ekart.TokenCache = (*RedisTokenCache)(nil)
