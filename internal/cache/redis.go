package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/commjoen/whoisintel/pkg/models"
)

const redisKeyPrefix = "whoisintel:lookup:"

// Redis is a Store backed by a shared Redis instance, for deployments where
// multiple workers should see each other's results.
type Redis struct {
	client *redis.Client
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis connects to Redis using a go-redis URL
// (redis://[user:pass@]host:port/db) and verifies the connection.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Redis{client: client}, nil
}

// Get returns the stored result for key, or nil when absent or expired.
func (r *Redis) Get(ctx context.Context, key string) (*models.LookupResult, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var result models.LookupResult
	if err := json.Unmarshal(data, &result); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		r.misses.Add(1)
		return nil, nil
	}
	r.hits.Add(1)
	return &result, nil
}

// Set stores a result under key with the given TTL.
func (r *Redis) Set(ctx context.Context, key string, result *models.LookupResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a single entry.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every entry under the cache prefix, leaving other keys in
// the database untouched.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Stats reports key count under the prefix plus process-local hit/miss
// counters.
func (r *Redis) Stats(ctx context.Context) (models.CacheStats, error) {
	keys := 0
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys++
	}
	if err := iter.Err(); err != nil {
		return models.CacheStats{}, fmt.Errorf("redis scan: %w", err)
	}
	return models.CacheStats{
		Keys:   keys,
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
	}, nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
