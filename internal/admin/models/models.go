package models

import (
	"time"

	"github.com/google/uuid"
)

// This file contains pure domain models for admin accounts: entities that
// should not depend on transport or HTTP-specific concerns.

// Admin represents an administrator account.
// This is a pure domain entity - use the auth service result types for JSON responses.
type Admin struct {
	ID           uuid.UUID
	Username     string
	RealName     string
	Email        string
	Avatar       string
	PasswordHash string
	Status       Status

	LastLoginAt *time.Time
	LastLoginIP string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status models the account lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// IsDisabled reports whether the account may not authenticate.
func (a *Admin) IsDisabled() bool {
	return a.Status == StatusDisabled
}

// ProfileUpdate carries the non-password fields an admin may change about
// themselves.
type ProfileUpdate struct {
	RealName string
	Email    string
	Avatar   string
}
