// Package service exposes login log recording and querying.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"opsgate/internal/auth/device"
	"opsgate/internal/loginlog"
	"opsgate/internal/loginlog/store"
	"opsgate/internal/sentinel"
	dErrors "opsgate/pkg/domain-errors"
)

// Service records and queries login attempts.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the login log service.
func NewService(st store.Store, opts ...Option) *Service {
	svc := &Service{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Record appends a login attempt. The User-Agent header is parsed into
// browser and OS fields; the raw header is not stored.
func (s *Service) Record(ctx context.Context, username, ip, userAgent string, success bool, message string) error {
	info := device.Parse(userAgent)

	status := loginlog.StatusFailed
	if success {
		status = loginlog.StatusSuccess
	}

	record := &loginlog.Record{
		ID:        uuid.New(),
		Username:  username,
		IP:        ip,
		Browser:   info.Browser,
		OS:        info.OS,
		Status:    status,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.store.Append(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "login log write failed")
	}
	return nil
}

// List returns one page of login records matching the query, newest first.
func (s *Service) List(ctx context.Context, q loginlog.Query) (*loginlog.Page, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login log query failed")
	}
	return &loginlog.Page{
		Total: total,
		Page:  q.Page,
		Size:  q.Size,
		Items: items,
	}, nil
}

// Get returns a single login record by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*loginlog.Record, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "login record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login log lookup failed")
	}
	return record, nil
}

// Clear removes all login records and returns how many were removed.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	removed, err := s.store.Clear(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "login log clear failed")
	}
	s.logger.InfoContext(ctx, "login logs cleared", "removed", removed)
	return removed, nil
}
