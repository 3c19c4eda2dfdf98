package users

import (
	"errors"
	"time"
)

// User represents an account for management purposes. The password hash
// never leaves the package.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	RoleID    *int64    `json:"role_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrEmailTaken indicates an email collision.
	ErrEmailTaken = errors.New("users: email already in use")
	// ErrRoleMissing indicates the referenced role does not exist.
	ErrRoleMissing = errors.New("users: role not found")
)
