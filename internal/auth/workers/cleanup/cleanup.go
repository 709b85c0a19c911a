// Package cleanup periodically removes lapsed auth artifacts: expired
// blacklist entries and expired session cache entries. Backends with native
// TTL expiry (Redis) make these calls no-ops.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// BlacklistStore exposes cleanup for expired revocation entries.
type BlacklistStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// SessionStore exposes cleanup for expired cached sessions.
type SessionStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Result summarizes the deletions performed by a cleanup run.
type Result struct {
	DeletedBlacklistEntries int
	DeletedSessions         int
}

// Metrics keeps session accounting in step with reaping. Optional.
type Metrics interface {
	ReapSessions(n int)
}

// Service periodically removes expired auth artifacts.
type Service struct {
	blacklist BlacklistStore
	sessions  SessionStore
	interval  time.Duration
	logger    *slog.Logger
	metrics   Metrics
}

// Option configures Service.
type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger overrides the logger used for cleanup errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics reports reaped sessions so the active-session gauge tracks
// TTL expiry, not just explicit logouts.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a cleanup Service with required stores and options applied.
func New(blacklist BlacklistStore, sessions SessionStore, opts ...Option) (*Service, error) {
	if blacklist == nil || sessions == nil {
		return nil, fmt.Errorf("blacklist and sessions stores are required")
	}
	svc := &Service{
		blacklist: blacklist,
		sessions:  sessions,
		interval:  5 * time.Minute,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "auth cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single cleanup pass over both stores. Errors from one
// store do not stop the other; they are aggregated and returned together.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	now := time.Now()
	var res Result
	var errs []error

	deletedEntries, err := s.blacklist.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete expired blacklist entries: %w", err))
	} else {
		res.DeletedBlacklistEntries = deletedEntries
	}

	deletedSessions, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete expired sessions: %w", err))
	} else {
		res.DeletedSessions = deletedSessions
		if deletedSessions > 0 && s.metrics != nil {
			s.metrics.ReapSessions(deletedSessions)
		}
	}

	if deletedEntries > 0 || deletedSessions > 0 {
		s.logger.InfoContext(ctx, "auth cleanup completed",
			"deleted_blacklist_entries", deletedEntries,
			"deleted_sessions", deletedSessions,
		)
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}
