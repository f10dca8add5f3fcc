package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper provides common caching operations for repositories.
// Every method is a no-op or a miss when the client is nil.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

// NewCacheHelper creates a new cache helper instance
func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// CacheConfig defines cache configuration for different data types
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

// Default cache configurations
var (
	// Short-lived cache for frequently accessed data
	FastCacheConfig = CacheConfig{
		TTL:    1 * time.Minute,
		Prefix: "fast:",
	}

	// Course rows and detail views (course + instructor + lectures)
	CourseCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "course:",
	}

	// Lecture lists per course and single lectures
	LectureCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "lecture:",
	}

	// Public catalogue of published courses
	CatalogCacheConfig = CacheConfig{
		TTL:    2 * time.Minute,
		Prefix: "catalog:",
	}

	// User profiles
	UserCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "user:",
	}
)

// GetCacheKey generates a cache key with prefix
func (c *CacheHelper) GetCacheKey(key string) string {
	return fmt.Sprintf("%s%s", c.prefix, key)
}

// Get retrieves and unmarshals data from cache
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	cacheKey := c.GetCacheKey(key)
	data, err := c.client.Get(ctx, cacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data in cache
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Graceful degradation when cache not available
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	cacheKey := c.GetCacheKey(key)
	return c.client.Set(ctx, cacheKey, data, ttl).Err()
}

// Delete removes data from cache using pipeline for multiple keys
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}

	if len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}

	// Use pipeline for multiple keys
	if len(cacheKeys) > 1 {
		pipe := c.client.Pipeline()
		pipe.Del(ctx, cacheKeys...)
		_, err := pipe.Exec(ctx)
		return err
	}

	return c.client.Del(ctx, cacheKeys...).Err()
}

// InvalidatePattern removes all keys matching a pattern using SCAN instead of KEYS
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	fullPattern := c.GetCacheKey(pattern)
	var cursor uint64
	var keys []string

	// Use SCAN instead of KEYS for better performance
	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			slog.ErrorContext(ctx, "Cache scan pattern error",
				"error", err,
				"pattern", fullPattern)
			return fmt.Errorf("cache scan pattern error: %w", err)
		}
		keys = append(keys, scanKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}

	// Delete using pipeline for better performance
	pipe := c.client.Pipeline()
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		pipe.Del(ctx, keys[i:end]...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		slog.ErrorContext(ctx, "Cache pipeline delete error",
			"error", err,
			"total_keys", len(keys))
		return fmt.Errorf("cache pipeline delete error: %w", err)
	}

	return nil
}

// CacheOrExecute implements cache-aside: a hit decodes into dest, a miss runs
// fetchFunc, stores its result and copies it into dest. The store happens
// before returning so a following invalidation cannot be overtaken by it.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	if c.client != nil {
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		if err := c.client.Set(setCtx, c.GetCacheKey(key), data, ttl).Err(); err != nil {
			slog.WarnContext(ctx, "Cache set error", "error", err, "key", key)
		}
		cancel()
	}

	return json.Unmarshal(data, dest)
}

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheManager manages multiple cache helpers
type CacheManager struct {
	Course  *CacheHelper
	Lecture *CacheHelper
	Catalog *CacheHelper
	User    *CacheHelper
	Fast    *CacheHelper

	client *redis.Client
}

// NewCacheManager creates cache manager with all cache helpers. A nil client
// yields helpers that always miss and never store.
func NewCacheManager(client *redis.Client) *CacheManager {
	if client == nil {
		return &CacheManager{
			Course:  NewCacheHelper(nil, ""),
			Lecture: NewCacheHelper(nil, ""),
			Catalog: NewCacheHelper(nil, ""),
			User:    NewCacheHelper(nil, ""),
			Fast:    NewCacheHelper(nil, ""),
		}
	}

	return &CacheManager{
		Course:  NewCacheHelper(client, CourseCacheConfig.Prefix),
		Lecture: NewCacheHelper(client, LectureCacheConfig.Prefix),
		Catalog: NewCacheHelper(client, CatalogCacheConfig.Prefix),
		User:    NewCacheHelper(client, UserCacheConfig.Prefix),
		Fast:    NewCacheHelper(client, FastCacheConfig.Prefix),
		client:  client,
	}
}

// Enabled reports whether a redis client is attached.
func (cm *CacheManager) Enabled() bool {
	return cm.client != nil
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}

	if _, err := cm.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// Stats returns key counts per prefix, for the health endpoint.
func (cm *CacheManager) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{"cache_enabled": cm.client != nil}
	if cm.client == nil {
		return stats
	}

	for _, cfg := range []CacheConfig{CourseCacheConfig, LectureCacheConfig, CatalogCacheConfig, UserCacheConfig} {
		var count int
		iter := cm.client.Scan(ctx, 0, cfg.Prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			count++
		}
		if err := iter.Err(); err == nil {
			stats[cfg.Prefix+"count"] = count
		}
	}

	return stats
}
