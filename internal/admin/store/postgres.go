package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"opsgate/internal/admin/models"
	"opsgate/internal/sentinel"
)

// PostgresStore persists admin accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed admin store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const adminColumns = `id, username, real_name, email, avatar, password_hash, status, last_login_at, last_login_ip, created_at, updated_at`

func scanAdmin(row interface{ Scan(...any) error }) (*models.Admin, error) {
	var a models.Admin
	var status string
	var lastLoginAt sql.NullTime
	var lastLoginIP sql.NullString
	err := row.Scan(&a.ID, &a.Username, &a.RealName, &a.Email, &a.Avatar,
		&a.PasswordHash, &status, &lastLoginAt, &lastLoginIP, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.Status(status)
	if lastLoginAt.Valid {
		t := lastLoginAt.Time
		a.LastLoginAt = &t
	}
	a.LastLoginIP = lastLoginIP.String
	return &a, nil
}

func (s *PostgresStore) Create(ctx context.Context, admin *models.Admin) error {
	if admin == nil {
		return fmt.Errorf("admin is required")
	}
	query := `
		INSERT INTO sys_admins (id, username, real_name, email, avatar, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		admin.ID, admin.Username, admin.RealName, admin.Email, admin.Avatar,
		admin.PasswordHash, string(admin.Status), time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM sys_admins WHERE id = $1`, id)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return admin, nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM sys_admins WHERE username = $1`, username)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return admin, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) error {
	query := `
		UPDATE sys_admins
		SET real_name = $2, email = $3, avatar = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, upd.RealName, upd.Email, upd.Avatar, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already in use: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("update admin profile: %w", err)
	}
	return requireRowAffected(res, "admin")
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sys_admins SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return requireRowAffected(res, "admin")
}

func (s *PostgresStore) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, ip string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sys_admins SET last_login_at = $2, last_login_ip = $3 WHERE id = $1`,
		id, at, ip)
	if err != nil {
		return fmt.Errorf("record admin login: %w", err)
	}
	return requireRowAffected(res, "admin")
}

func (s *PostgresStore) Roles(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role FROM admin_roles WHERE admin_id = $1 ORDER BY role`, id)
	if err != nil {
		return nil, fmt.Errorf("list admin roles: %w", err)
	}
	defer rows.Close()
	return collectStrings(rows)
}

func (s *PostgresStore) Permissions(ctx context.Context, id uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT rp.permission
		FROM admin_roles ar
		JOIN role_permissions rp ON rp.role = ar.role
		WHERE ar.admin_id = $1
		ORDER BY rp.permission
	`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list admin permissions: %w", err)
	}
	defer rows.Close()
	return collectStrings(rows)
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func requireRowAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %w", entity, sentinel.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
