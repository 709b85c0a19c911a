package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	adminModels "opsgate/internal/admin/models"
	"opsgate/internal/auth/models"
	jwttoken "opsgate/internal/jwt_token"
	"opsgate/internal/lockout"
	"opsgate/internal/platform/metrics"
	"opsgate/internal/platform/tracer"
	"opsgate/internal/sentinel"
	dErrors "opsgate/pkg/domain-errors"
)

// AdminStore defines the persistence interface for admin account data.
// Error Contract: Find methods return sentinel.ErrNotFound (wrapped) when the
// entity doesn't exist; email conflicts surface as sentinel.ErrConflict.
type AdminStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*adminModels.Admin, error)
	FindByUsername(ctx context.Context, username string) (*adminModels.Admin, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd adminModels.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error
	Roles(ctx context.Context, id uuid.UUID) ([]string, error)
	Permissions(ctx context.Context, id uuid.UUID) ([]string, error)
}

// SessionCache stores per-token admin snapshots keyed by JTI. Delete
// reports whether a live entry was removed so session accounting stays
// exact under repeated logouts.
type SessionCache interface {
	Put(ctx context.Context, jti string, admin *models.CachedAdmin, ttl time.Duration) error
	Get(ctx context.Context, jti string) (*models.CachedAdmin, error)
	Delete(ctx context.Context, jti string) (bool, error)
}

// Blacklist tracks revoked token JTIs.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenService mints and verifies access tokens.
type TokenService interface {
	Generate(adminID uuid.UUID, username string) (token, jti string, err error)
	Validate(tokenString string) (*jwttoken.AccessTokenClaims, error)
	ParseSkipClaimsValidation(tokenString string) (*jwttoken.AccessTokenClaims, error)
	TokenTTL() time.Duration
}

// LoginLogRecorder appends login attempt records.
type LoginLogRecorder interface {
	Record(ctx context.Context, username, ip, userAgent string, success bool, message string) error
}

// Lockout throttles repeated login failures per username+IP.
type Lockout interface {
	Check(ctx context.Context, username, ip string) (*lockout.Status, error)
	RecordFailure(ctx context.Context, username, ip string) (*lockout.Status, error)
	Clear(ctx context.Context, username, ip string) error
}

// Service implements the admin authentication flows: login, logout, refresh,
// cached user info, profile update, and password change.
type Service struct {
	admins    AdminStore
	sessions  SessionCache
	blacklist Blacklist
	jwt       TokenService
	loginLogs LoginLogRecorder
	lockout   Lockout

	cacheTTL     time.Duration
	refreshGrace time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

const (
	defaultCacheTTL     = 12 * time.Hour
	defaultRefreshGrace = 10 * time.Minute
)

// Option configures Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithLoginLogs(recorder LoginLogRecorder) Option {
	return func(s *Service) {
		s.loginLogs = recorder
	}
}

func WithLockout(l Lockout) Option {
	return func(s *Service) {
		s.lockout = l
	}
}

// WithSessionCacheTTL configures the time-to-live for cached admin snapshots.
// If not set or non-positive, defaults to 12 hours.
func WithSessionCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithRefreshGrace configures how long past expiry a token is still accepted
// by the refresh flow.
func WithRefreshGrace(grace time.Duration) Option {
	return func(s *Service) {
		if grace > 0 {
			s.refreshGrace = grace
		}
	}
}

// NewService constructs the auth service.
func NewService(admins AdminStore, sessions SessionCache, blacklist Blacklist, jwt TokenService, opts ...Option) *Service {
	svc := &Service{
		admins:       admins,
		sessions:     sessions,
		blacklist:    blacklist,
		jwt:          jwt,
		cacheTTL:     defaultCacheTTL,
		refreshGrace: defaultRefreshGrace,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc
}

// translateStoreError converts sentinel store errors into domain errors
// exactly once, at the service boundary.
func translateStoreError(err error, notFoundCode dErrors.Code, notFoundMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(notFoundCode, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "email already in use")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}

// remainingTTL returns how long a token is still valid, or zero when expired.
func remainingTTL(claims *jwttoken.AccessTokenClaims, now time.Time) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	if d := claims.ExpiresAt.Time.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (s *Service) recordLoginAttempt(ctx context.Context, username, ip, userAgent string, success bool, message string) {
	if s.loginLogs == nil {
		return
	}
	if err := s.loginLogs.Record(ctx, username, ip, userAgent, success, message); err != nil {
		// Login logging is best-effort; a log write must never fail a login.
		s.logger.ErrorContext(ctx, "failed to record login attempt",
			"error", err,
			"username", username,
		)
	}
}

func (s *Service) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}
