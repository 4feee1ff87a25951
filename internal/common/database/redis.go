// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"nexus-talent/internal/common/config"
	apperrors "nexus-talent/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection pool behind the agent caches.
type RedisClient struct {
	Client *redis.Client
	addr   string
}

// NewRedis builds the pool from config. go-redis dials lazily, so a bad
// address only shows up on the first Ping.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	return &RedisClient{Client: rdb, addr: cfg.Address}, nil
}

// Ping reports CACHE_UNAVAILABLE when Redis does not answer.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(fmt.Errorf("ping %s: %w", c.addr, err))
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
