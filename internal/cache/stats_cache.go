package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/pkg/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "booking:stats:"

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// HostelKey is the cache key of one hostel's stats.
func HostelKey(hostelID uuid.UUID) string {
	return keyPrefix + "hostel:" + hostelID.String()
}

// LandlordKey is the cache key of a landlord's portfolio stats.
func LandlordKey(landlordID uuid.UUID) string {
	return keyPrefix + "landlord:" + landlordID.String()
}

// PlatformKey is the cache key of the platform-wide stats.
func PlatformKey() string {
	return keyPrefix + "platform"
}

// StatsCache keeps computed booking stats in Redis for a short TTL.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a new StatsCache.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns cached stats, or nil on a miss.
func (c *StatsCache) Get(ctx context.Context, key string) (*booking.Stats, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats from redis: %w", err)
	}

	var stats booking.Stats
	if err := json.Unmarshal(val, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return &stats, nil
}

// Set stores stats under key.
func (c *StatsCache) Set(ctx context.Context, key string, stats *booking.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set stats in redis: %w", err)
	}
	return nil
}

// Invalidate drops the given keys.
func (c *StatsCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *StatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
