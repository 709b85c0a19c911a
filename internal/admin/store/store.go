// Package store persists admin accounts and their role/permission grants.
//
// Error Contract: all Find methods return sentinel.ErrNotFound (wrapped) when
// the entity doesn't exist; writes that would violate email uniqueness return
// sentinel.ErrConflict (wrapped).
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"opsgate/internal/admin/models"
)

// Store defines the persistence interface for admin account data.
type Store interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)

	// UpdateProfile replaces the non-password profile fields. Email
	// uniqueness across other accounts is enforced here.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// RecordLogin stamps the last successful login time and source IP.
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error

	Roles(ctx context.Context, id uuid.UUID) ([]string, error)
	Permissions(ctx context.Context, id uuid.UUID) ([]string, error)
}
