package service

import (
	"context"

	adminModels "opsgate/internal/admin/models"
	"opsgate/internal/auth/models"
	dErrors "opsgate/pkg/domain-errors"
)

// UpdateProfile applies the profile change for the session identified by jti
// and refreshes the cached snapshot so /auth/info serves the new values
// immediately.
func (s *Service) UpdateProfile(ctx context.Context, jti string, req *adminModels.UpdateProfileRequest) (*models.CachedAdmin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.sessions.Get(ctx, jti)
	if err != nil {
		return nil, translateStoreError(err, dErrors.CodeTokenExpired, "session expired, log in again")
	}

	upd := adminModels.ProfileUpdate{
		RealName: req.RealName,
		Email:    req.Email,
		Avatar:   req.Avatar,
	}
	if err := s.admins.UpdateProfile(ctx, snapshot.AdminID, upd); err != nil {
		return nil, translateStoreError(err, dErrors.CodeNotFound, "admin not found")
	}

	snapshot.RealName = req.RealName
	snapshot.Email = req.Email
	snapshot.Avatar = req.Avatar
	if err := s.sessions.Put(ctx, jti, snapshot, s.cacheTTL); err != nil {
		// The database is the source of truth; a stale snapshot only
		// affects /auth/info until the next login.
		s.logger.ErrorContext(ctx, "failed to refresh cached session",
			"error", err,
			"jti", jti,
		)
	}

	s.logger.InfoContext(ctx, "profile updated",
		"admin_id", snapshot.AdminID,
		"username", snapshot.Username,
	)
	return snapshot, nil
}
