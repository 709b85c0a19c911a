package lockout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists lockout state in Redis with native TTL expiry.
// The failure counter is a plain INCR key so concurrent failures cannot
// undercount; the lock marker is a separate key holding the unlock time.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed lockout store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func failuresKey(key string) string { return key + ":failures" }
func lockKey(key string) string     { return key + ":lock" }

func (s *RedisStore) Get(ctx context.Context, key string) (*FailureRecord, error) {
	values, err := s.client.MGet(ctx, failuresKey(key), lockKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("get lockout record: %w", err)
	}

	record := &FailureRecord{}
	if raw, ok := values[0].(string); ok {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse lockout counter: %w", err)
		}
		record.FailureCount = count
	}
	if raw, ok := values[1].(string); ok {
		until, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse lockout marker: %w", err)
		}
		record.LockedUntil = &until
	}
	if record.FailureCount == 0 && record.LockedUntil == nil {
		return nil, nil
	}
	return record, nil
}

func (s *RedisStore) IncrFailures(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, failuresKey(key))
	// NX keeps the window anchored at the first failure.
	pipe.ExpireNX(ctx, failuresKey(key), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("count login failure: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, until time.Time, ttl time.Duration) error {
	if err := s.client.Set(ctx, lockKey(key), until.Format(time.RFC3339Nano), ttl).Err(); err != nil {
		return fmt.Errorf("store lockout record: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, failuresKey(key), lockKey(key)).Err(); err != nil {
		return fmt.Errorf("delete lockout record: %w", err)
	}
	return nil
}
