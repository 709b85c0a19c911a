package service

import (
	"context"
	"time"

	dErrors "opsgate/pkg/domain-errors"
)

// Logout blacklists the token and deletes its cached session. It accepts
// expired tokens so a late logout still lands the JTI on the blacklist, and
// it is idempotent: logging out twice succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.ParseSkipClaimsValidation(token)
	if err != nil {
		return err
	}

	now := time.Now()
	ttl := remainingTTL(claims, now)
	if ttl > 0 {
		if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "token revocation failed")
		}
		if s.metrics != nil {
			s.metrics.TokensRevoked.Inc()
		}
	}

	removed, err := s.sessions.Delete(ctx, claims.ID)
	if err != nil {
		// The blacklist entry already blocks the token; a stale cache
		// entry only lingers until its TTL.
		s.logger.ErrorContext(ctx, "failed to delete cached session",
			"error", err,
			"jti", claims.ID,
		)
	}
	if removed && s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}

	s.logger.InfoContext(ctx, "admin logged out",
		"username", claims.Username,
		"jti", claims.ID,
	)
	return nil
}

// Refresh exchanges a valid (or recently expired, within the grace window)
// token for a fresh one. The old JTI is blacklisted and its cached session is
// migrated to the new JTI, so exactly one token per session is usable.
func (s *Service) Refresh(ctx context.Context, token string) (newToken string, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.refresh")
	defer func() { span.End(err) }()

	claims, err := s.jwt.ParseSkipClaimsValidation(token)
	if err != nil {
		return "", err
	}

	now := time.Now()
	if claims.ExpiresAt == nil {
		return "", dErrors.New(dErrors.CodeTokenInvalid, "token has no expiry")
	}
	if now.After(claims.ExpiresAt.Time.Add(s.refreshGrace)) {
		return "", dErrors.New(dErrors.CodeTokenExpired, "token expired, log in again")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "revocation check failed")
	}
	if revoked {
		return "", dErrors.New(dErrors.CodeTokenInvalid, "token has been revoked")
	}

	snapshot, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		// No cached state means the session lapsed; forcing a fresh login
		// re-resolves roles and permissions.
		return "", translateStoreError(err, dErrors.CodeTokenExpired, "session expired, log in again")
	}

	fresh, newJTI, err := s.jwt.Generate(snapshot.AdminID, snapshot.Username)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	if err := s.sessions.Put(ctx, newJTI, snapshot, s.cacheTTL); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "session cache write failed")
	}

	// Retire the old token. Failures here are logged but don't fail the
	// refresh: the new token is already live, and the old one dies at
	// expiry regardless.
	if ttl := remainingTTL(claims, now); ttl > 0 {
		if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
			s.logger.ErrorContext(ctx, "failed to blacklist refreshed token",
				"error", err,
				"jti", claims.ID,
			)
		}
	}
	if _, err := s.sessions.Delete(ctx, claims.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete cached session",
			"error", err,
			"jti", claims.ID,
		)
	}

	if s.metrics != nil {
		s.metrics.TokensRefreshed.Inc()
	}
	s.logger.InfoContext(ctx, "token refreshed",
		"username", snapshot.Username,
		"old_jti", claims.ID,
		"new_jti", newJTI,
	)
	return fresh, nil
}
