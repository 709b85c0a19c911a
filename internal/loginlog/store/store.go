// Package store persists login log records.
//
// Error Contract: FindByID returns sentinel.ErrNotFound (wrapped) when the
// record doesn't exist.
package store

import (
	"context"

	"github.com/google/uuid"

	"opsgate/internal/loginlog"
)

// Store defines the persistence interface for login logs.
type Store interface {
	Append(ctx context.Context, record *loginlog.Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*loginlog.Record, error)

	// List returns one page of records matching the query, newest first,
	// together with the total match count.
	List(ctx context.Context, q loginlog.Query) ([]*loginlog.Record, int64, error)

	// Clear removes all records and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
}
