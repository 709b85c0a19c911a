package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevokeAndIsRevoked(t *testing.T) {
	ctx := context.Background()
	blacklist := NewMemory()

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeIdempotent(t *testing.T) {
	ctx := context.Background()
	blacklist := NewMemory()

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))
	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLapsedEntryNoLongerRevoked(t *testing.T) {
	ctx := context.Background()
	blacklist := NewMemory()

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	// The entry lapsed with the token's own expiry; the stateless check
	// rejects the token from here on.
	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	blacklist := NewMemory()

	require.NoError(t, blacklist.Revoke(ctx, "live", time.Hour))
	require.NoError(t, blacklist.Revoke(ctx, "stale-1", time.Millisecond))
	require.NoError(t, blacklist.Revoke(ctx, "stale-2", time.Millisecond))

	deleted, err := blacklist.DeleteExpired(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	revoked, err := blacklist.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}
