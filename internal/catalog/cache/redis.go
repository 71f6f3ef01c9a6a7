package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/shopgrid/internal/catalog/domain"
	"github.com/tair/shopgrid/pkg/logger"
)

// DefaultKeyPrefix namespaces listing entries in Redis
const DefaultKeyPrefix = "catalog:list:"

// RedisCache stores listing payloads in Redis.
//
// Entry keys embed a generation number. InvalidateAll increments the
// generation, which hides every existing entry in one atomic step; orphaned
// entries of older generations expire through their TTL.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis-backed cache. A non-positive ttl falls back to DefaultTTL.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: DefaultKeyPrefix,
	}
}

// Get returns the cached payload for key in the current generation
func (c *RedisCache) Get(ctx context.Context, key string) (Lookup, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return Lookup{}, err
	}

	entryKey := c.entryKey(gen, key)
	data, err := c.client.Get(ctx, entryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Lookup{Generation: gen}, nil
	}
	if err != nil {
		return Lookup{Generation: gen}, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var result domain.ListResult
	if err := json.Unmarshal(data, &result); err != nil {
		// A corrupt entry behaves as a miss and is overwritten by the next Set.
		logger.Logger.Warn().
			Err(err).
			Str("cache_key", entryKey).
			Msg("Discarding undecodable cache entry")
		return Lookup{Generation: gen}, nil
	}
	return Lookup{Result: &result, Hit: true, Generation: gen}, nil
}

// Set stores the payload under key in the given generation. When the
// generation has moved on, the entry is unreachable and expires through its TTL.
func (c *RedisCache) Set(ctx context.Context, key string, generation int64, result *domain.ListResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	entryKey := c.entryKey(generation, key)
	if err := c.client.Set(ctx, entryKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	logger.Logger.Debug().
		Str("cache_key", entryKey).
		Dur("ttl", c.ttl).
		Int("size", len(data)).
		Msg("Listing cached")
	return nil
}

// InvalidateAll hides every entry by moving to a new generation
func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, c.generationKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	logger.Logger.Info().
		Int64("generation", gen).
		Msg("Listing cache invalidated")
	return nil
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) generationKey() string {
	return c.prefix + "generation"
}

// entryKey hashes the canonical query so keys stay short and opaque
func (c *RedisCache) entryKey(gen int64, key string) string {
	hash := sha256.Sum256([]byte(key))
	return c.prefix + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(hash[:])
}
