// Package session caches per-token admin state.
//
// Each entry is keyed by the access token's JTI and carries an explicit TTL:
// the cache is a convenience layer, never the source of truth, so a missing
// entry always means "log in again" rather than data loss.
package session

import (
	"context"
	"time"

	"opsgate/internal/auth/models"
)

// Cache defines the per-token admin state store.
// Error Contract: Get returns sentinel.ErrNotFound (wrapped) when the entry
// is missing or expired. Delete is idempotent and reports whether a live
// entry was actually removed, so callers can keep session accounting exact.
type Cache interface {
	Put(ctx context.Context, jti string, admin *models.CachedAdmin, ttl time.Duration) error
	Get(ctx context.Context, jti string) (*models.CachedAdmin, error)
	Delete(ctx context.Context, jti string) (bool, error)

	// DeleteExpired removes lapsed entries and returns how many were
	// removed. Backends with native TTL may no-op.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
