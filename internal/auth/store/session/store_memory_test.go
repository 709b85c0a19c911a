package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsgate/internal/auth/models"
	"opsgate/internal/sentinel"
	"opsgate/pkg/testutil"
)

func testAdmin() *models.CachedAdmin {
	return &models.CachedAdmin{
		AdminID:     testutil.TestIDs.AdminID1,
		Username:    "alice",
		Roles:       []string{"auditor"},
		Permissions: []string{"system:log:read"},
		LoggedInAt:  time.Now(),
	}
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()

	require.NoError(t, cache.Put(ctx, "jti-1", testAdmin(), time.Hour))

	got, err := cache.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, testutil.TestIDs.AdminID1, got.AdminID)
}

func TestGetMissing(t *testing.T) {
	cache := NewMemory()

	_, err := cache.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestGetExpired(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()

	require.NoError(t, cache.Put(ctx, "jti-1", testAdmin(), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := cache.Get(ctx, "jti-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPutRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()

	assert.Error(t, cache.Put(ctx, "jti-1", nil, time.Hour))
	assert.ErrorIs(t, cache.Put(ctx, "jti-1", testAdmin(), 0), sentinel.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()

	require.NoError(t, cache.Put(ctx, "jti-1", testAdmin(), time.Hour))

	removed, err := cache.Delete(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = cache.Get(ctx, "jti-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// Deleting again is fine but reports nothing removed.
	removed, err = cache.Delete(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteLapsedEntryNotCounted(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()

	require.NoError(t, cache.Put(ctx, "jti-1", testAdmin(), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	removed, err := cache.Delete(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestEntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()
	admin := testAdmin()

	require.NoError(t, cache.Put(ctx, "jti-1", admin, time.Hour))
	admin.Roles[0] = "tampered"

	got, err := cache.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"auditor"}, got.Roles)

	got.Permissions[0] = "tampered"
	again, err := cache.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"system:log:read"}, again.Permissions)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory()

	require.NoError(t, cache.Put(ctx, "fresh", testAdmin(), time.Hour))
	require.NoError(t, cache.Put(ctx, "stale-1", testAdmin(), time.Millisecond))
	require.NoError(t, cache.Put(ctx, "stale-2", testAdmin(), time.Millisecond))

	deleted, err := cache.DeleteExpired(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 1, cache.Len())
}
