package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "blacklist:"

// RedisBlacklist persists revoked token JTIs in Redis.
// This is the production-recommended implementation for distributed
// deployments: entries expire natively with the key TTL.
type RedisBlacklist struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed blacklist.
func NewRedis(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) key(jti string) string {
	return blacklistKeyPrefix + jti
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; the stateless check rejects it.
		return nil
	}
	if err := b.client.Set(ctx, b.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := b.client.Get(ctx, b.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}

// DeleteExpired is a no-op: Redis expires blacklist keys natively.
func (b *RedisBlacklist) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
