package models

import (
	"time"

	"github.com/google/uuid"
)

// CachedAdmin is the admin snapshot cached per access token (keyed by JTI).
// It is written at login, served by /auth/info, and removed on logout,
// refresh, and password change. Roles and permissions are resolved once at
// login and live only as long as the cache entry TTL.
type CachedAdmin struct {
	AdminID     uuid.UUID `json:"admin_id"`
	Username    string    `json:"username"`
	RealName    string    `json:"real_name"`
	Email       string    `json:"email"`
	Avatar      string    `json:"avatar"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	LoggedInAt  time.Time `json:"logged_in_at"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresIn time.Duration `json:"-"`
	Admin     *CachedAdmin  `json:"admin"`
}

// UserInfoResult is the response shape for GET /auth/info.
type UserInfoResult struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	RealName    string     `json:"real_name"`
	Email       string     `json:"email"`
	Avatar      string     `json:"avatar"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
}
