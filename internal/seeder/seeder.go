// Package seeder populates the in-memory admin store with a development
// account so a fresh instance can be logged into immediately.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"opsgate/internal/admin/models"
	"opsgate/internal/admin/store"
	"opsgate/pkg/secrets"
)

// Dev credentials. Matched by nothing in production: the seeder only runs
// against the in-memory store.
const (
	DevUsername = "admin"
	DevPassword = "admin12345"
)

// Seeder creates demo admin accounts.
type Seeder struct {
	admins *store.InMemoryStore
	logger *slog.Logger
}

// New creates a seeder for the in-memory admin store.
func New(admins *store.InMemoryStore, logger *slog.Logger) *Seeder {
	return &Seeder{admins: admins, logger: logger}
}

// SeedAll creates the development admin with full roles and permissions.
func (s *Seeder) SeedAll(ctx context.Context) error {
	hash, err := secrets.Hash(DevPassword)
	if err != nil {
		return fmt.Errorf("hash dev password: %w", err)
	}

	now := time.Now()
	admin := &models.Admin{
		ID:           uuid.New(),
		Username:     DevUsername,
		RealName:     "Development Admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed dev admin: %w", err)
	}

	s.admins.SetRoles(admin.ID, "super_admin")
	s.admins.SetRolePermissions("super_admin",
		"system:admin:read",
		"system:admin:write",
		"system:log:read",
		"system:log:clear",
	)

	s.logger.Info("seeded development admin",
		"username", DevUsername,
		"admin_id", admin.ID,
	)
	return nil
}
