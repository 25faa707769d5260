package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache wraps the Redis client with common operations
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ctx: context.Background(),
	}
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(key string) ([]byte, error) {
	val, err := c.client.Get(c.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Key doesn't exist
	}
	return val, err
}

// GetInt retrieves an integer value from Redis. The second return is
// false when the key does not exist.
func (c *RedisCache) GetInt(key string) (int64, bool, error) {
	val, err := c.client.Get(c.ctx, key).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// Set stores a value in Redis with TTL
func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	return c.client.Set(c.ctx, key, value, ttl).Err()
}

// Delete removes a key from Redis
func (c *RedisCache) Delete(key string) error {
	return c.client.Del(c.ctx, key).Err()
}

// Decr decrements the integer value at key by one
func (c *RedisCache) Decr(key string) error {
	return c.client.Decr(c.ctx, key).Err()
}

// Exists checks if a key exists
func (c *RedisCache) Exists(key string) bool {
	count, _ := c.client.Exists(c.ctx, key).Result()
	return count > 0
}

// TTL returns the remaining time-to-live of a key. The second return is
// false when the key does not exist or has no expiry.
func (c *RedisCache) TTL(key string) (time.Duration, bool) {
	ttl, err := c.client.TTL(c.ctx, key).Result()
	if err != nil || ttl < 0 {
		return 0, false
	}
	return ttl, true
}

// RunScript evaluates a server-side Lua script (EVALSHA with EVAL fallback)
func (c *RedisCache) RunScript(script *redis.Script, keys []string, args ...interface{}) (interface{}, error) {
	return script.Run(c.ctx, c.client, keys, args...).Result()
}

// Ping checks if Redis is alive
func (c *RedisCache) Ping() error {
	return c.client.Ping(c.ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
