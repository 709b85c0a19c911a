package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	adminModels "opsgate/internal/admin/models"
	adminStore "opsgate/internal/admin/store"
	"opsgate/internal/auth/store/revocation"
	"opsgate/internal/auth/store/session"
	jwttoken "opsgate/internal/jwt_token"
	"opsgate/internal/lockout"
	"opsgate/internal/platform/config"
	"opsgate/internal/platform/metrics"
	dErrors "opsgate/pkg/domain-errors"
	"opsgate/pkg/testutil"
)

// Shared across the package: promauto registers with the default registry,
// which allows exactly one registration per process.
var testMetrics = metrics.New()

const (
	testPassword = "correct-horse-battery"
	testIP       = "203.0.113.7"
	testUA       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"
)

type AuthServiceSuite struct {
	suite.Suite
	admins    *adminStore.InMemoryStore
	sessions  *session.InMemoryCache
	blacklist *revocation.InMemoryBlacklist
	tokens    *jwttoken.Service
	lockouts  *lockout.Service
	service   *Service

	admin *adminModels.Admin
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.admins = adminStore.NewMemory()
	s.sessions = session.NewMemory()
	s.blacklist = revocation.NewMemory()
	s.tokens = jwttoken.NewService("test-key", "opsgate", "opsgate-admin", 30*time.Minute)

	var err error
	s.lockouts, err = lockout.New(lockout.NewMemory(), config.LockoutConfig{
		MaxFailures:  3,
		Window:       15 * time.Minute,
		LockDuration: 15 * time.Minute,
	})
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.admins, s.sessions, s.blacklist, s.tokens,
		WithLogger(logger),
		WithMetrics(testMetrics),
		WithLockout(s.lockouts),
		WithSessionCacheTTL(time.Hour),
		WithRefreshGrace(10*time.Minute),
	)

	s.admin = testutil.NewAdminBuilder().
		WithUsername("alice").
		WithEmail("alice@example.com").
		WithPassword(testPassword).
		Build()
	s.Require().NoError(s.admins.Create(context.Background(), s.admin))
	s.admins.SetRoles(s.admin.ID, "auditor")
	s.admins.SetRolePermissions("auditor", "system:log:read")
}

func (s *AuthServiceSuite) login() *authLoginResult {
	result, err := s.service.Login(context.Background(), &adminModels.LoginRequest{
		Username: "alice",
		Password: testPassword,
	}, testIP, testUA)
	s.Require().NoError(err)

	claims, err := s.tokens.Validate(result.Token)
	s.Require().NoError(err)
	return &authLoginResult{token: result.Token, jti: claims.ID, claims: claims}
}

type authLoginResult struct {
	token  string
	jti    string
	claims *jwttoken.AccessTokenClaims
}

func (s *AuthServiceSuite) TestLoginSuccess() {
	ctx := context.Background()

	result, err := s.service.Login(ctx, &adminModels.LoginRequest{
		Username: "alice",
		Password: testPassword,
	}, testIP, testUA)
	s.Require().NoError(err)

	s.Equal("Bearer", result.TokenType)
	s.Equal(30*time.Minute, result.ExpiresIn)
	s.Equal("alice", result.Admin.Username)
	s.Equal([]string{"auditor"}, result.Admin.Roles)
	s.Equal([]string{"system:log:read"}, result.Admin.Permissions)

	claims, err := s.tokens.Validate(result.Token)
	s.Require().NoError(err)

	cached, err := s.sessions.Get(ctx, claims.ID)
	s.Require().NoError(err)
	s.Equal(s.admin.ID, cached.AdminID)

	stored, err := s.admins.FindByID(ctx, s.admin.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.LastLoginAt)
	s.Equal(testIP, stored.LastLoginIP)
}

func (s *AuthServiceSuite) TestLoginUnknownUsername() {
	_, err := s.service.Login(context.Background(), &adminModels.LoginRequest{
		Username: "nobody",
		Password: testPassword,
	}, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeBadCredentials))
}

func (s *AuthServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Login(context.Background(), &adminModels.LoginRequest{
		Username: "alice",
		Password: "wrong-password",
	}, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeBadCredentials))
}

func (s *AuthServiceSuite) TestLoginDisabledAccount() {
	ctx := context.Background()
	disabled := testutil.NewAdminBuilder().
		WithUsername("mallory").
		WithEmail("mallory@example.com").
		WithPassword(testPassword).
		WithStatus(adminModels.StatusDisabled).
		Build()
	s.Require().NoError(s.admins.Create(ctx, disabled))

	_, err := s.service.Login(ctx, &adminModels.LoginRequest{
		Username: "mallory",
		Password: testPassword,
	}, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeAccountDisabled))
}

func (s *AuthServiceSuite) TestLoginLockoutAfterRepeatedFailures() {
	ctx := context.Background()
	req := &adminModels.LoginRequest{Username: "alice", Password: "wrong-password"}

	// Two plain failures, the third failure trips the lock.
	for i := 0; i < 2; i++ {
		_, err := s.service.Login(ctx, req, testIP, testUA)
		s.True(dErrors.HasCode(err, dErrors.CodeBadCredentials))
	}
	_, err := s.service.Login(ctx, req, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeAccountLocked))

	// The right password doesn't help while locked.
	_, err = s.service.Login(ctx, &adminModels.LoginRequest{
		Username: "alice",
		Password: testPassword,
	}, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeAccountLocked))

	// A different IP is a different identity.
	result, err := s.service.Login(ctx, &adminModels.LoginRequest{
		Username: "alice",
		Password: testPassword,
	}, "198.51.100.9", testUA)
	s.Require().NoError(err)
	s.NotEmpty(result.Token)
}

func (s *AuthServiceSuite) TestLoginUnknownUsernameCountsTowardLockout() {
	ctx := context.Background()
	req := &adminModels.LoginRequest{Username: "nobody", Password: "guess"}

	for i := 0; i < 2; i++ {
		_, err := s.service.Login(ctx, req, testIP, testUA)
		s.True(dErrors.HasCode(err, dErrors.CodeBadCredentials))
	}
	_, err := s.service.Login(ctx, req, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeAccountLocked))
}

func (s *AuthServiceSuite) TestLoginClearsFailureRecord() {
	ctx := context.Background()

	_, err := s.service.Login(ctx, &adminModels.LoginRequest{
		Username: "alice", Password: "wrong-password",
	}, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeBadCredentials))

	s.login()

	// The failure counter restarted, so two more failures don't lock.
	for i := 0; i < 2; i++ {
		_, err := s.service.Login(ctx, &adminModels.LoginRequest{
			Username: "alice", Password: "wrong-password",
		}, testIP, testUA)
		s.True(dErrors.HasCode(err, dErrors.CodeBadCredentials))
	}
}

func (s *AuthServiceSuite) TestLogout() {
	ctx := context.Background()
	login := s.login()

	s.Require().NoError(s.service.Logout(ctx, login.token))

	revoked, err := s.blacklist.IsRevoked(ctx, login.jti)
	s.Require().NoError(err)
	s.True(revoked)

	_, err = s.sessions.Get(ctx, login.jti)
	s.Error(err)
}

func (s *AuthServiceSuite) TestLogoutIdempotent() {
	ctx := context.Background()
	login := s.login()

	s.Require().NoError(s.service.Logout(ctx, login.token))
	s.Require().NoError(s.service.Logout(ctx, login.token))
}

func (s *AuthServiceSuite) TestLogoutKeepsSessionGaugeExact() {
	ctx := context.Background()
	login := s.login()

	before := promtestutil.ToFloat64(testMetrics.ActiveSessions)
	s.Require().NoError(s.service.Logout(ctx, login.token))
	s.InDelta(before-1, promtestutil.ToFloat64(testMetrics.ActiveSessions), 0.001)

	// Logging out again finds no cached session, so the gauge holds.
	s.Require().NoError(s.service.Logout(ctx, login.token))
	s.InDelta(before-1, promtestutil.ToFloat64(testMetrics.ActiveSessions), 0.001)
}

func (s *AuthServiceSuite) TestLogoutRejectsForgedToken() {
	err := s.service.Logout(context.Background(), "not-a-real-token")
	s.True(dErrors.HasCode(err, dErrors.CodeTokenInvalid))
}

func (s *AuthServiceSuite) TestRefresh() {
	ctx := context.Background()
	login := s.login()

	fresh, err := s.service.Refresh(ctx, login.token)
	s.Require().NoError(err)
	s.NotEqual(login.token, fresh)

	freshClaims, err := s.tokens.Validate(fresh)
	s.Require().NoError(err)
	s.NotEqual(login.jti, freshClaims.ID)

	// Old JTI is dead: blacklisted and its cache entry removed.
	revoked, err := s.blacklist.IsRevoked(ctx, login.jti)
	s.Require().NoError(err)
	s.True(revoked)
	_, err = s.sessions.Get(ctx, login.jti)
	s.Error(err)

	// New JTI carries the migrated snapshot.
	cached, err := s.sessions.Get(ctx, freshClaims.ID)
	s.Require().NoError(err)
	s.Equal("alice", cached.Username)
}

func (s *AuthServiceSuite) TestRefreshRevokedToken() {
	ctx := context.Background()
	login := s.login()

	s.Require().NoError(s.service.Logout(ctx, login.token))

	_, err := s.service.Refresh(ctx, login.token)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenInvalid))
}

func (s *AuthServiceSuite) TestRefreshSessionLapsed() {
	ctx := context.Background()
	login := s.login()

	_, err := s.sessions.Delete(ctx, login.jti)
	s.Require().NoError(err)

	_, err = s.service.Refresh(ctx, login.token)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenExpired))
}

func (s *AuthServiceSuite) TestRefreshBeyondGrace() {
	// Issue from a service whose tokens are already expired past the grace
	// window.
	expired := jwttoken.NewService("test-key", "opsgate", "opsgate-admin", -time.Hour)
	token, _, err := expired.Generate(s.admin.ID, "alice")
	s.Require().NoError(err)

	_, err = s.service.Refresh(context.Background(), token)
	s.True(dErrors.HasCode(err, dErrors.CodeTokenExpired))
}

func (s *AuthServiceSuite) TestRefreshWithinGrace() {
	ctx := context.Background()

	// Expired five minutes ago, inside the ten minute grace window.
	graced := jwttoken.NewService("test-key", "opsgate", "opsgate-admin", -5*time.Minute)
	token, jti, err := graced.Generate(s.admin.ID, "alice")
	s.Require().NoError(err)

	snapshot, err := s.service.buildSnapshot(ctx, s.admin, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.sessions.Put(ctx, jti, snapshot, time.Hour))

	fresh, err := s.service.Refresh(ctx, token)
	s.Require().NoError(err)

	_, err = s.tokens.Validate(fresh)
	s.NoError(err)
}

func (s *AuthServiceSuite) TestUserInfo() {
	ctx := context.Background()
	login := s.login()

	info, err := s.service.UserInfo(ctx, login.jti)
	s.Require().NoError(err)
	s.Equal(s.admin.ID, info.ID)
	s.Equal("alice", info.Username)
	s.Equal([]string{"auditor"}, info.Roles)
	s.Equal([]string{"system:log:read"}, info.Permissions)
}

func (s *AuthServiceSuite) TestUserInfoSessionLapsed() {
	_, err := s.service.UserInfo(context.Background(), "unknown-jti")
	s.True(dErrors.HasCode(err, dErrors.CodeTokenExpired))
}

func (s *AuthServiceSuite) TestUpdateProfile() {
	ctx := context.Background()
	login := s.login()

	snapshot, err := s.service.UpdateProfile(ctx, login.jti, &adminModels.UpdateProfileRequest{
		RealName: "Alice A.",
		Email:    "alice.a@example.com",
		Avatar:   "https://cdn.example.com/a.png",
	})
	s.Require().NoError(err)
	s.Equal("Alice A.", snapshot.RealName)

	// Both the store and the cached snapshot see the change.
	stored, err := s.admins.FindByID(ctx, s.admin.ID)
	s.Require().NoError(err)
	s.Equal("alice.a@example.com", stored.Email)

	info, err := s.service.UserInfo(ctx, login.jti)
	s.Require().NoError(err)
	s.Equal("Alice A.", info.RealName)
}

func (s *AuthServiceSuite) TestUpdateProfileEmailConflict() {
	ctx := context.Background()
	other := testutil.NewAdminBuilder().
		WithUsername("bob").
		WithEmail("bob@example.com").
		WithPassword(testPassword).
		Build()
	s.Require().NoError(s.admins.Create(ctx, other))

	login := s.login()

	_, err := s.service.UpdateProfile(ctx, login.jti, &adminModels.UpdateProfileRequest{
		RealName: "Alice",
		Email:    "bob@example.com",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *AuthServiceSuite) TestUpdateProfileValidation() {
	login := s.login()

	_, err := s.service.UpdateProfile(context.Background(), login.jti, &adminModels.UpdateProfileRequest{
		RealName: "Alice",
		Email:    "not-an-email",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *AuthServiceSuite) TestChangePassword() {
	ctx := context.Background()
	login := s.login()

	err := s.service.ChangePassword(ctx, login.claims, &adminModels.ChangePasswordRequest{
		OldPassword:     testPassword,
		NewPassword:     "brand-new-password",
		ConfirmPassword: "brand-new-password",
	})
	s.Require().NoError(err)

	// The current session died with the old password.
	revoked, err := s.blacklist.IsRevoked(ctx, login.jti)
	s.Require().NoError(err)
	s.True(revoked)
	_, err = s.sessions.Get(ctx, login.jti)
	s.Error(err)

	// Old password stops working, the new one logs in.
	_, err = s.service.Login(ctx, &adminModels.LoginRequest{
		Username: "alice", Password: testPassword,
	}, testIP, testUA)
	s.True(dErrors.HasCode(err, dErrors.CodeBadCredentials))

	result, err := s.service.Login(ctx, &adminModels.LoginRequest{
		Username: "alice", Password: "brand-new-password",
	}, testIP, testUA)
	s.Require().NoError(err)
	s.NotEmpty(result.Token)
}

func (s *AuthServiceSuite) TestChangePasswordWrongOldPassword() {
	login := s.login()

	err := s.service.ChangePassword(context.Background(), login.claims, &adminModels.ChangePasswordRequest{
		OldPassword:     "wrong-password",
		NewPassword:     "brand-new-password",
		ConfirmPassword: "brand-new-password",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *AuthServiceSuite) TestChangePasswordValidation() {
	login := s.login()

	tests := []struct {
		name string
		req  adminModels.ChangePasswordRequest
	}{
		{
			name: "too short",
			req: adminModels.ChangePasswordRequest{
				OldPassword: testPassword, NewPassword: "short", ConfirmPassword: "short",
			},
		},
		{
			name: "confirmation mismatch",
			req: adminModels.ChangePasswordRequest{
				OldPassword: testPassword, NewPassword: "brand-new-password", ConfirmPassword: "other-password",
			},
		},
		{
			name: "same as old",
			req: adminModels.ChangePasswordRequest{
				OldPassword: testPassword, NewPassword: testPassword, ConfirmPassword: testPassword,
			},
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.service.ChangePassword(context.Background(), login.claims, &tt.req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
