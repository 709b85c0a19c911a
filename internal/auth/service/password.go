package service

import (
	"context"
	"time"

	adminModels "opsgate/internal/admin/models"
	jwttoken "opsgate/internal/jwt_token"
	dErrors "opsgate/pkg/domain-errors"
	"opsgate/pkg/secrets"
)

// ChangePassword verifies the old password, stores the new hash, and then
// invalidates the current session (blacklist the JTI, drop the cached
// snapshot) before returning. The caller must log in again with the new
// password.
func (s *Service) ChangePassword(ctx context.Context, claims *jwttoken.AccessTokenClaims, req *adminModels.ChangePasswordRequest) (err error) {
	ctx, span := s.tracer.Start(ctx, "auth.change_password")
	defer func() { span.End(err) }()

	if err = req.Validate(); err != nil {
		return err
	}

	snapshot, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return translateStoreError(err, dErrors.CodeTokenExpired, "session expired, log in again")
	}

	admin, err := s.admins.FindByID(ctx, snapshot.AdminID)
	if err != nil {
		return translateStoreError(err, dErrors.CodeNotFound, "admin not found")
	}

	if err = secrets.Verify(req.OldPassword, admin.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadCredentials) {
			return dErrors.New(dErrors.CodeValidation, "old password is incorrect")
		}
		return err
	}

	hash, err := secrets.Hash(req.NewPassword)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "password hashing failed")
	}
	if err = s.admins.UpdatePassword(ctx, admin.ID, hash); err != nil {
		return translateStoreError(err, dErrors.CodeNotFound, "admin not found")
	}

	// Invalidate the current session before responding so the old token
	// cannot outlive the password it was issued under.
	if ttl := remainingTTL(claims, time.Now()); ttl > 0 {
		if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "token revocation failed")
		}
		if s.metrics != nil {
			s.metrics.TokensRevoked.Inc()
		}
	}
	removed, err := s.sessions.Delete(ctx, claims.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete cached session",
			"error", err,
			"jti", claims.ID,
		)
	}
	if removed && s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}

	s.logger.InfoContext(ctx, "password changed",
		"admin_id", admin.ID,
		"username", admin.Username,
		"jti", claims.ID,
	)
	return nil
}
