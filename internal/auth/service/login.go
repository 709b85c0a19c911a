package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	adminModels "opsgate/internal/admin/models"
	"opsgate/internal/auth/models"
	"opsgate/internal/platform/metrics"
	"opsgate/internal/platform/tracer"
	"opsgate/internal/sentinel"
	dErrors "opsgate/pkg/domain-errors"
	"opsgate/pkg/secrets"
)

// Login authenticates an admin by username and password, mints an access
// token, and caches the admin snapshot under the token's JTI.
func (s *Service) Login(ctx context.Context, req *adminModels.LoginRequest, clientIP, userAgent string) (result *models.LoginResult, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.login",
		tracer.String("username", req.Username),
	)
	defer func() { span.End(err) }()

	if err = req.Validate(); err != nil {
		return nil, err
	}

	if s.lockout != nil {
		status, lockErr := s.lockout.Check(ctx, req.Username, clientIP)
		if lockErr != nil {
			return nil, dErrors.Wrap(lockErr, dErrors.CodeInternal, "lockout check failed")
		}
		if status.Locked {
			s.countLogin(metrics.OutcomeLocked)
			s.recordLoginAttempt(ctx, req.Username, clientIP, userAgent, false, "account locked")
			return nil, dErrors.New(dErrors.CodeAccountLocked,
				fmt.Sprintf("too many failed attempts, retry in %d seconds", int(status.RetryAfter.Seconds())))
		}
	}

	admin, err := s.admins.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Count unknown usernames toward lockout too, so they cannot
			// be used to probe which accounts exist.
			return nil, s.failLogin(ctx, req.Username, clientIP, userAgent, "unknown username")
		}
		s.countLogin(metrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "admin lookup failed")
	}

	if admin.IsDisabled() {
		s.countLogin(metrics.OutcomeDisabled)
		s.recordLoginAttempt(ctx, req.Username, clientIP, userAgent, false, "account disabled")
		return nil, dErrors.New(dErrors.CodeAccountDisabled, "account is disabled")
	}

	if err = secrets.Verify(req.Password, admin.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadCredentials) {
			return nil, s.failLogin(ctx, req.Username, clientIP, userAgent, "wrong password")
		}
		s.countLogin(metrics.OutcomeError)
		return nil, err
	}

	return s.completeLogin(ctx, admin, clientIP, userAgent)
}

// failLogin records a failed attempt and returns the uniform bad-credentials
// error. Unknown usernames and wrong passwords are indistinguishable to the
// caller.
func (s *Service) failLogin(ctx context.Context, username, ip, userAgent, reason string) error {
	s.countLogin(metrics.OutcomeBadCreds)
	s.recordLoginAttempt(ctx, username, ip, userAgent, false, reason)

	if s.lockout != nil {
		status, err := s.lockout.RecordFailure(ctx, username, ip)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to record login failure",
				"error", err,
				"username", username,
			)
		} else if status.Locked {
			return dErrors.New(dErrors.CodeAccountLocked,
				fmt.Sprintf("too many failed attempts, retry in %d seconds", int(status.RetryAfter.Seconds())))
		}
	}
	return dErrors.New(dErrors.CodeBadCredentials, "invalid username or password")
}

func (s *Service) completeLogin(ctx context.Context, admin *adminModels.Admin, clientIP, userAgent string) (*models.LoginResult, error) {
	now := time.Now()

	token, jti, err := s.jwt.Generate(admin.ID, admin.Username)
	if err != nil {
		s.countLogin(metrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	snapshot, err := s.buildSnapshot(ctx, admin, now)
	if err != nil {
		s.countLogin(metrics.OutcomeError)
		return nil, err
	}

	if err := s.sessions.Put(ctx, jti, snapshot, s.cacheTTL); err != nil {
		s.countLogin(metrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "session cache write failed")
	}

	if err := s.admins.RecordLogin(ctx, admin.ID, now, clientIP); err != nil {
		// Last-login stamping is informational; login still succeeds.
		s.logger.ErrorContext(ctx, "failed to stamp last login",
			"error", err,
			"admin_id", admin.ID,
		)
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, admin.Username, clientIP); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear lockout record",
				"error", err,
				"username", admin.Username,
			)
		}
	}

	s.recordLoginAttempt(ctx, admin.Username, clientIP, userAgent, true, "login ok")
	s.countLogin(metrics.OutcomeSuccess)
	if s.metrics != nil {
		s.metrics.TokensIssued.Inc()
		s.metrics.ActiveSessions.Inc()
	}
	s.logger.InfoContext(ctx, "admin logged in",
		"admin_id", admin.ID,
		"username", admin.Username,
		"ip", clientIP,
	)

	return &models.LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: s.jwt.TokenTTL(),
		Admin:     snapshot,
	}, nil
}

// buildSnapshot resolves roles and permissions and assembles the cacheable
// admin state.
func (s *Service) buildSnapshot(ctx context.Context, admin *adminModels.Admin, loggedInAt time.Time) (*models.CachedAdmin, error) {
	roles, err := s.admins.Roles(ctx, admin.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "role lookup failed")
	}
	perms, err := s.admins.Permissions(ctx, admin.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "permission lookup failed")
	}
	return &models.CachedAdmin{
		AdminID:     admin.ID,
		Username:    admin.Username,
		RealName:    admin.RealName,
		Email:       admin.Email,
		Avatar:      admin.Avatar,
		Roles:       roles,
		Permissions: perms,
		LoggedInAt:  loggedInAt,
	}, nil
}
