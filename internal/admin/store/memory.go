package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"opsgate/internal/admin/models"
	"opsgate/internal/sentinel"
)

// InMemoryStore is an in-memory implementation of Store for tests and
// single-node development. Production deployments use PostgresStore.
type InMemoryStore struct {
	mu        sync.RWMutex
	admins    map[uuid.UUID]*models.Admin
	byName    map[string]uuid.UUID
	roles     map[uuid.UUID][]string
	rolePerms map[string][]string
}

// NewMemory constructs an empty in-memory admin store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		admins:    make(map[uuid.UUID]*models.Admin),
		byName:    make(map[string]uuid.UUID),
		roles:     make(map[uuid.UUID][]string),
		rolePerms: make(map[string][]string),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, admin *models.Admin) error {
	if admin == nil {
		return fmt.Errorf("admin is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[admin.Username]; exists {
		return fmt.Errorf("username taken: %w", sentinel.ErrConflict)
	}
	for _, existing := range s.admins {
		if existing.Email == admin.Email {
			return fmt.Errorf("email taken: %w", sentinel.ErrConflict)
		}
	}

	cp := *admin
	s.admins[admin.ID] = &cp
	s.byName[admin.Username] = admin.ID
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.admins[id]
	if !ok {
		return nil, fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
	}
	cp := *admin
	return &cp, nil
}

func (s *InMemoryStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
	}
	cp := *s.admins[id]
	return &cp, nil
}

func (s *InMemoryStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.admins[id]
	if !ok {
		return fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
	}
	for otherID, other := range s.admins {
		if otherID != id && other.Email == upd.Email {
			return fmt.Errorf("email already in use: %w", sentinel.ErrConflict)
		}
	}

	admin.RealName = upd.RealName
	admin.Email = upd.Email
	admin.Avatar = upd.Avatar
	admin.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.admins[id]
	if !ok {
		return fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
	}
	admin.PasswordHash = passwordHash
	admin.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.admins[id]
	if !ok {
		return fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
	}
	admin.LastLoginAt = &at
	admin.LastLoginIP = ip
	return nil
}

func (s *InMemoryStore) Roles(ctx context.Context, id uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := s.roles[id]
	out := make([]string, len(roles))
	copy(out, roles)
	return out, nil
}

func (s *InMemoryStore) Permissions(ctx context.Context, id uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, role := range s.roles[id] {
		for _, perm := range s.rolePerms[role] {
			if _, dup := seen[perm]; dup {
				continue
			}
			seen[perm] = struct{}{}
			out = append(out, perm)
		}
	}
	return out, nil
}

// SetRoles assigns roles to an admin. Test and seed helper.
func (s *InMemoryStore) SetRoles(id uuid.UUID, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[id] = append([]string(nil), roles...)
}

// SetRolePermissions defines the permissions a role grants. Test and seed helper.
func (s *InMemoryStore) SetRolePermissions(role string, perms ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolePerms[role] = append([]string(nil), perms...)
}
