// Package revocation tracks blacklisted access tokens by JTI.
//
// The blacklist is the stateful half of token validation: a token that passes
// signature and expiry checks is still rejected if its JTI is present here.
// Entries carry a TTL equal to the token's remaining lifetime, after which
// the token would be rejected by the stateless check anyway.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Blacklist manages revoked access tokens by JTI.
type Blacklist interface {
	// Revoke adds a token JTI to the blacklist with TTL. Revoking an
	// already-revoked JTI succeeds.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked checks if a token JTI is in the blacklist.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpired removes entries whose retention has lapsed and returns
	// how many were removed. Backends with native TTL may no-op.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// InMemoryBlacklist is an in-memory implementation of Blacklist for tests and
// single-node development. Use RedisBlacklist or PostgresBlacklist for
// distributed revocation.
type InMemoryBlacklist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> entry expiry
}

// NewMemory creates a new in-memory blacklist.
func NewMemory() *InMemoryBlacklist {
	return &InMemoryBlacklist{
		revoked: make(map[string]time.Time),
	}
}

func (b *InMemoryBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	expiry, exists := b.revoked[jti]
	if !exists {
		return false, nil
	}
	// An expired entry means the token itself has expired; the stateless
	// check rejects it, so membership no longer matters.
	if time.Now().After(expiry) {
		return false, nil
	}
	return true, nil
}

func (b *InMemoryBlacklist) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	deleted := 0
	for jti, expiry := range b.revoked {
		if now.After(expiry) {
			delete(b.revoked, jti)
			deleted++
		}
	}
	return deleted, nil
}
