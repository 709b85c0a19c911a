// Package lockout throttles brute-force login attempts.
//
// Failures are counted per username+IP inside a rolling window; once the
// threshold is reached the identity is locked for a fixed duration and login
// attempts fail fast without touching the password hash.
package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"opsgate/internal/platform/config"
)

const keyPrefix = "lockout"

// FailureRecord is the current failure state for one identity.
type FailureRecord struct {
	FailureCount int
	LockedUntil  *time.Time
}

// Store persists failure state. Counting happens inside the store so
// concurrent failures for the same identity cannot undercount toward the
// threshold.
type Store interface {
	// Get returns the current failure state, or nil when nothing is on
	// file for the identity.
	Get(ctx context.Context, key string) (*FailureRecord, error)

	// IncrFailures atomically increments the failure counter and returns
	// the new count. The counter expires window after the first failure.
	IncrFailures(ctx context.Context, key string, window time.Duration) (int, error)

	// Lock marks the identity locked until the given time. The marker is
	// retained for ttl.
	Lock(ctx context.Context, key string, until time.Time, ttl time.Duration) error

	// Delete removes both the counter and the lock marker.
	Delete(ctx context.Context, key string) error
}

// Status reports the lockout state for one identity.
type Status struct {
	Locked       bool
	FailureCount int
	RetryAfter   time.Duration
}

// Metrics counts triggered lockouts. Optional.
type Metrics interface {
	CountLockout()
}

// Service applies the lockout policy on top of a Store.
type Service struct {
	store   Store
	cfg     config.LockoutConfig
	logger  *slog.Logger
	metrics Metrics
}

// Option configures Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a lockout service.
func New(store Store, cfg config.LockoutConfig, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("lockout store is required")
	}
	svc := &Service{
		store:  store,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func identityKey(username, ip string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, username, ip)
}

// Check reports whether the identity is currently locked out.
func (s *Service) Check(ctx context.Context, username, ip string) (*Status, error) {
	record, err := s.store.Get(ctx, identityKey(username, ip))
	if err != nil {
		return nil, fmt.Errorf("get lockout record: %w", err)
	}
	if record == nil {
		return &Status{}, nil
	}

	now := time.Now()
	if record.LockedUntil != nil && now.Before(*record.LockedUntil) {
		s.logger.WarnContext(ctx, "login attempt while locked out",
			"username", username,
			"ip", ip,
			"locked_until", record.LockedUntil,
		)
		return &Status{
			Locked:       true,
			FailureCount: record.FailureCount,
			RetryAfter:   record.LockedUntil.Sub(now),
		}, nil
	}
	return &Status{FailureCount: record.FailureCount}, nil
}

// RecordFailure counts one failed attempt and locks the identity when the
// threshold is reached inside the window.
func (s *Service) RecordFailure(ctx context.Context, username, ip string) (*Status, error) {
	key := identityKey(username, ip)

	count, err := s.store.IncrFailures(ctx, key, s.cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("count login failure: %w", err)
	}

	status := &Status{FailureCount: count}
	if count < s.cfg.MaxFailures {
		return status, nil
	}

	// The counter is monotonic inside a window, so the threshold is
	// crossed exactly once per window.
	if count == s.cfg.MaxFailures && s.metrics != nil {
		s.metrics.CountLockout()
	}

	lockedUntil := time.Now().Add(s.cfg.LockDuration)
	ttl := s.cfg.LockDuration
	if s.cfg.Window > ttl {
		ttl = s.cfg.Window
	}
	if err := s.store.Lock(ctx, key, lockedUntil, ttl); err != nil {
		return nil, fmt.Errorf("store lockout record: %w", err)
	}

	status.Locked = true
	status.RetryAfter = s.cfg.LockDuration
	s.logger.WarnContext(ctx, "login lockout triggered",
		"username", username,
		"ip", ip,
		"failures", count,
		"locked_until", lockedUntil,
	)
	return status, nil
}

// Clear removes the failure record after a successful login.
func (s *Service) Clear(ctx context.Context, username, ip string) error {
	if err := s.store.Delete(ctx, identityKey(username, ip)); err != nil {
		return fmt.Errorf("clear lockout record: %w", err)
	}
	return nil
}
