package service

import (
	"context"

	"opsgate/internal/auth/models"
	dErrors "opsgate/pkg/domain-errors"
)

// UserInfo returns the cached admin state for the session identified by jti.
// A cache miss means the session lapsed even if the token itself is still
// within its validity window.
func (s *Service) UserInfo(ctx context.Context, jti string) (*models.UserInfoResult, error) {
	snapshot, err := s.sessions.Get(ctx, jti)
	if err != nil {
		return nil, translateStoreError(err, dErrors.CodeTokenExpired, "session expired, log in again")
	}
	loggedInAt := snapshot.LoggedInAt
	return &models.UserInfoResult{
		ID:          snapshot.AdminID,
		Username:    snapshot.Username,
		RealName:    snapshot.RealName,
		Email:       snapshot.Email,
		Avatar:      snapshot.Avatar,
		LastLoginAt: &loggedInAt,
		Roles:       snapshot.Roles,
		Permissions: snapshot.Permissions,
	}, nil
}
