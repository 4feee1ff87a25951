// Package cache is the Redis JSON cache shared by the career agents.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/observability"

	"github.com/redis/go-redis/v9"
)

// Namespaces and TTLs. Bumping a version suffix invalidates old entries.
const (
	NamespaceATS      = "ats_v1"
	NamespaceJobs     = "jobs_v3"
	NamespaceLearning = "learning_v2"

	TTLATS      = 24 * time.Hour
	TTLJobs     = 30 * time.Minute
	TTLLearning = 7 * 24 * time.Hour
)

// GenerateKey returns "<namespace>:<sha256 of parts joined by |>".
func GenerateKey(namespace string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return namespace + ":" + hex.EncodeToString(sum[:])
}

// Cache stores JSON values in Redis and counts hits and misses per namespace.
// Redis errors never fail a caller; they are logged and reported as misses.
type Cache struct {
	client redis.Cmdable
	obs    *observability.Observability
	logger logger.Logger
}

func New(client redis.Cmdable, obs *observability.Observability, log logger.Logger) *Cache {
	return &Cache{client: client, obs: obs, logger: log}
}

func namespaceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

// GetJSON decodes the cached value into out and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	ns := namespaceOf(key)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		c.obs.RecordCacheMiss(ctx, ns)
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("Cache entry corrupt, ignoring", map[string]interface{}{"key": key, "error": err.Error()})
		c.obs.RecordCacheMiss(ctx, ns)
		return false
	}

	c.obs.RecordCacheHit(ctx, ns)
	return true
}

// SetJSON stores value under key with ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}

// Ping reports Redis availability.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("cache not configured")
	}
	return c.client.Ping(ctx).Err()
}
