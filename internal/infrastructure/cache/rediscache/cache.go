// Package rediscache backs the classification cache with Redis. Every
// operation is best-effort: a cache failure degrades to a cold lookup,
// never to a request failure.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// New connects to Redis and verifies the connection before handing the
// cache out. Callers that want to run without Redis fall back to
// NewMemory instead.
func New(cfg Config, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{client: client, logger: logger}, nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache delete failed", "key", key, "error", err)
	}
}

func (c *Cache) Exists(ctx context.Context, key string) bool {
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Warn("cache exists failed", "key", key, "error", err)
		return false
	}
	return count > 0
}

func (c *Cache) Close() error {
	return c.client.Close()
}
