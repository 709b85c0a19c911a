package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"opsgate/internal/loginlog"
	"opsgate/internal/sentinel"
)

// PostgresStore persists login logs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed login log store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record *loginlog.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	query := `
		INSERT INTO login_logs (id, username, ip, browser, os, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Username, record.IP, record.Browser, record.OS,
		string(record.Status), record.Message, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert login log: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*loginlog.Record, error) {
	query := `
		SELECT id, username, ip, browser, os, status, message, created_at
		FROM login_logs WHERE id = $1
	`
	var r loginlog.Record
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Username, &r.IP, &r.Browser, &r.OS, &status, &r.Message, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("login log not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find login log: %w", err)
	}
	r.Status = loginlog.Status(status)
	return &r, nil
}

func (s *PostgresStore) List(ctx context.Context, q loginlog.Query) ([]*loginlog.Record, int64, error) {
	where, args := buildFilter(q)

	var total int64
	countQuery := `SELECT COUNT(*) FROM login_logs` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count login logs: %w", err)
	}

	listQuery := `
		SELECT id, username, ip, browser, os, status, message, created_at
		FROM login_logs` + where + `
		ORDER BY created_at DESC
		LIMIT ` + strconv.Itoa(q.Size) + ` OFFSET ` + strconv.Itoa(q.Offset())

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list login logs: %w", err)
	}
	defer rows.Close()

	var records []*loginlog.Record
	for rows.Next() {
		var r loginlog.Record
		var status string
		if err := rows.Scan(&r.ID, &r.Username, &r.IP, &r.Browser, &r.OS, &status, &r.Message, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan login log: %w", err)
		}
		r.Status = loginlog.Status(status)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate login logs: %w", err)
	}
	return records, total, nil
}

func (s *PostgresStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM login_logs`)
	if err != nil {
		return 0, fmt.Errorf("clear login logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// buildFilter assembles the WHERE clause for the query's non-zero filters.
func buildFilter(q loginlog.Query) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if q.Username != "" {
		add("username = ?", q.Username)
	}
	if q.IP != "" {
		add("ip = ?", q.IP)
	}
	if q.Status != "" {
		add("status = ?", string(q.Status))
	}
	if !q.From.IsZero() {
		add("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		add("created_at <= ?", q.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
