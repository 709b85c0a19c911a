// Package loginlog records and queries admin login attempts.
package loginlog

import (
	"time"

	"github.com/google/uuid"

	dErrors "opsgate/pkg/domain-errors"
)

// Status classifies a login attempt outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record is a persisted login attempt.
type Record struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	IP       string    `json:"ip"`
	Browser  string    `json:"browser"`
	OS       string    `json:"os"`
	Status   Status    `json:"status"`
	// Message carries the failure reason for failed attempts and a short
	// confirmation for successful ones.
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Query filters and paginates login log listings. Zero-valued filters are
// ignored.
type Query struct {
	Username string
	IP       string
	Status   Status
	From     time.Time
	To       time.Time
	Page     int
	Size     int
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Normalize applies paging defaults and bounds. It mutates the query in
// place and returns validation errors for unusable filter combinations.
func (q *Query) Normalize() error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = defaultPageSize
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
	if q.Status != "" && q.Status != StatusSuccess && q.Status != StatusFailed {
		return dErrors.New(dErrors.CodeValidation, "status must be success or failed")
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return dErrors.New(dErrors.CodeValidation, "time range end precedes start")
	}
	return nil
}

// Offset returns the row offset for the normalized query.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.Size
}

// Matches reports whether a record satisfies the query filters.
func (q *Query) Matches(r *Record) bool {
	if q.Username != "" && r.Username != q.Username {
		return false
	}
	if q.IP != "" && r.IP != q.IP {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if !q.From.IsZero() && r.CreatedAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.CreatedAt.After(q.To) {
		return false
	}
	return true
}

// Page is one page of login log records plus paging metadata.
type Page struct {
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
	Items []*Record `json:"items"`
}
