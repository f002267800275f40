// internal/db/redis.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
)

type RedisDB struct {
	Client *redis.Client
}

func NewRedisDB(redisURL string) (*RedisDB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.App().Info("[Redis] Connected to Redis")
	return &RedisDB{Client: client}, nil
}

func (r *RedisDB) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisDB) Close() {
	if r.Client != nil {
		r.Client.Close()
		logger.App().Info("[Redis] Connection closed")
	}
}

// Cache methods
func (r *RedisDB) SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, "cache:"+key, data, expiration).Err()
}

// GetCache decodes the cached value into dest. A miss returns redis.Nil.
func (r *RedisDB) GetCache(ctx context.Context, key string, dest interface{}) error {
	data, err := r.Client.Get(ctx, "cache:"+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisDB) InvalidateCache(ctx context.Context, pattern string) error {
	var keys []string
	iter := r.Client.Scan(ctx, 0, "cache:"+pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.Client.Del(ctx, keys...).Err()
	}
	return nil
}

// StatsCache stores per-user dashboard payloads with a fixed TTL.
type StatsCache struct {
	redis *RedisDB
	ttl   time.Duration
}

func NewStatsCache(r *RedisDB, ttl time.Duration) *StatsCache {
	return &StatsCache{redis: r, ttl: ttl}
}

func (c *StatsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	err := c.redis.GetCache(ctx, key, dest)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *StatsCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.redis.SetCache(ctx, key, value, c.ttl)
}

func (c *StatsCache) Invalidate(ctx context.Context, pattern string) error {
	return c.redis.InvalidateCache(ctx, pattern)
}
