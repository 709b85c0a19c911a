// Package testutil provides fixtures and helpers shared across test suites.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"opsgate/internal/admin/models"
	"opsgate/pkg/secrets"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	AdminID1 uuid.UUID
	AdminID2 uuid.UUID
	LogID1   uuid.UUID
	LogID2   uuid.UUID
}{
	AdminID1: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
	AdminID2: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
	LogID1:   uuid.MustParse("aaaa0000-0000-0000-0000-000000000001"),
	LogID2:   uuid.MustParse("aaaa0000-0000-0000-0000-000000000002"),
}

// AdminBuilder provides a fluent interface for building test admins.
type AdminBuilder struct {
	admin *models.Admin
}

// NewAdminBuilder creates an AdminBuilder with sensible defaults.
func NewAdminBuilder() *AdminBuilder {
	now := time.Now()
	return &AdminBuilder{
		admin: &models.Admin{
			ID:        uuid.New(),
			Username:  "testadmin",
			RealName:  "Test Admin",
			Email:     "testadmin@example.com",
			Status:    models.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *AdminBuilder) WithID(id uuid.UUID) *AdminBuilder {
	b.admin.ID = id
	return b
}

func (b *AdminBuilder) WithUsername(username string) *AdminBuilder {
	b.admin.Username = username
	return b
}

func (b *AdminBuilder) WithEmail(email string) *AdminBuilder {
	b.admin.Email = email
	return b
}

func (b *AdminBuilder) WithStatus(status models.Status) *AdminBuilder {
	b.admin.Status = status
	return b
}

// WithPassword sets the password hash from a plaintext password.
// Panics on hashing failure, which only happens for absurd bcrypt costs.
func (b *AdminBuilder) WithPassword(password string) *AdminBuilder {
	hash, err := secrets.Hash(password)
	if err != nil {
		panic(err)
	}
	b.admin.PasswordHash = hash
	return b
}

// Build returns the constructed admin.
func (b *AdminBuilder) Build() *models.Admin {
	return b.admin
}
