package models

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	dErrors "opsgate/pkg/domain-errors"
)

// LoginRequest carries the credentials for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if utf8.RuneCountInString(r.Username) > 64 {
		return dErrors.New(dErrors.CodeValidation, "username is too long")
	}
	return nil
}

// UpdateProfileRequest carries the fields for PUT /auth/profile.
// Password changes go through ChangePasswordRequest only.
type UpdateProfileRequest struct {
	RealName string `json:"real_name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

func (r *UpdateProfileRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "email is not valid")
	}
	if utf8.RuneCountInString(r.RealName) > 128 {
		return dErrors.New(dErrors.CodeValidation, "real name is too long")
	}
	if len(r.Avatar) > 2048 {
		return dErrors.New(dErrors.CodeValidation, "avatar url is too long")
	}
	return nil
}

// ChangePasswordRequest carries the fields for PUT /auth/password.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "old password is required")
	}
	if utf8.RuneCountInString(r.NewPassword) < 8 {
		return dErrors.New(dErrors.CodeValidation, "new password must be at least 8 characters")
	}
	if r.NewPassword != r.ConfirmPassword {
		return dErrors.New(dErrors.CodeValidation, "password confirmation does not match")
	}
	if r.NewPassword == r.OldPassword {
		return dErrors.New(dErrors.CodeValidation, "new password must differ from the old one")
	}
	return nil
}
