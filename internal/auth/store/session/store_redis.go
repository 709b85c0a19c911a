package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"opsgate/internal/auth/models"
	"opsgate/internal/sentinel"
)

const sessionKeyPrefix = "session:"

// RedisCache persists cached admin state in Redis.
// This is the production-recommended implementation for distributed
// deployments where multiple instances need to share session state.
type RedisCache struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed session cache.
func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) key(jti string) string {
	return sessionKeyPrefix + jti
}

func (c *RedisCache) Put(ctx context.Context, jti string, admin *models.CachedAdmin, ttl time.Duration) error {
	if admin == nil {
		return fmt.Errorf("admin is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidInput)
	}

	data, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("marshal cached admin: %w", err)
	}
	if err := c.client.Set(ctx, c.key(jti), data, ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, jti string) (*models.CachedAdmin, error) {
	data, err := c.client.Get(ctx, c.key(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var admin models.CachedAdmin
	if err := json.Unmarshal([]byte(data), &admin); err != nil {
		return nil, fmt.Errorf("unmarshal cached admin: %w", err)
	}
	return &admin, nil
}

func (c *RedisCache) Delete(ctx context.Context, jti string) (bool, error) {
	deleted, err := c.client.Del(ctx, c.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return deleted > 0, nil
}

// DeleteExpired is a no-op: Redis expires session keys natively.
func (c *RedisCache) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
