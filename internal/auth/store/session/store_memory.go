package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"opsgate/internal/auth/models"
	"opsgate/internal/sentinel"
)

type memoryEntry struct {
	admin     models.CachedAdmin
	expiresAt time.Time
}

// InMemoryCache is an in-memory implementation of Cache for tests and
// single-node development. Production deployments use RedisCache.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory constructs an empty in-memory session cache.
func NewMemory() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

func (c *InMemoryCache) Put(ctx context.Context, jti string, admin *models.CachedAdmin, ttl time.Duration) error {
	if admin == nil {
		return fmt.Errorf("admin is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidInput)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *admin
	cp.Roles = append([]string(nil), admin.Roles...)
	cp.Permissions = append([]string(nil), admin.Permissions...)
	c.entries[jti] = memoryEntry{admin: cp, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *InMemoryCache) Get(ctx context.Context, jti string) (*models.CachedAdmin, error) {
	c.mu.RLock()
	entry, ok := c.entries[jti]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	cp := entry.admin
	cp.Roles = append([]string(nil), entry.admin.Roles...)
	cp.Permissions = append([]string(nil), entry.admin.Permissions...)
	return &cp, nil
}

func (c *InMemoryCache) Delete(ctx context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[jti]
	if !ok {
		return false, nil
	}
	delete(c.entries, jti)
	// An entry that already lapsed by TTL does not count as a removal.
	return time.Now().Before(entry.expiresAt), nil
}

func (c *InMemoryCache) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for jti, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, jti)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of live entries. Test helper.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	now := time.Now()
	for _, entry := range c.entries {
		if now.Before(entry.expiresAt) {
			n++
		}
	}
	return n
}
