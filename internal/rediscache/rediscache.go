// Package rediscache implements imgnamer.Cache on top of Redis.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "imgnamer:"

// DefaultTTL is how long suggestions stay cached.
const DefaultTTL = 30 * 24 * time.Hour

// Cache stores JSON-encoded values in Redis with a fixed TTL.
// Redis failures degrade to cache misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects lazily to the Redis server at addr.
func New(addr string, ttl time.Duration) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

// NewWithClient wraps an existing client. A non-positive ttl means DefaultTTL.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Ping checks that the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Key hashes value so arbitrary hints and site lists make valid, bounded keys.
func (c *Cache) Key(prefix, value string) string {
	sum := sha256.Sum256([]byte(value))
	return keyPrefix + prefix + ":" + hex.EncodeToString(sum[:16])
}

// Get decodes the value at key into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("rediscache: get failed", "key", key, "error", err.Error())
		}
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores value under key with the cache TTL. Errors are logged and dropped.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Debug("rediscache: set failed", "key", key, "error", err.Error())
	}
}
