package rbac

import (
	"errors"
	"time"
)

// ProfileType classifies which kind of profile a role is meant for.
type ProfileType string

// Profile types accepted on a role.
const (
	ProfileClient   ProfileType = "CLIENTE"
	ProfileEmployee ProfileType = "EMPLEADO"
	ProfileNone     ProfileType = "NINGUNO"
)

// Valid reports whether the profile type is one of the enumerated values.
func (p ProfileType) Valid() bool {
	switch p {
	case ProfileClient, ProfileEmployee, ProfileNone:
		return true
	}
	return false
}

// Role represents a named bundle of permissions assignable to a user.
// Roles are never hard-deleted; IsActive toggles availability.
type Role struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ProfileType ProfileType `json:"profile_type"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Permission represents an atomic named capability.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// Grant ties a permission to a role. GrantedBy is the user that created
// the association, when known.
type Grant struct {
	RoleID       int64     `json:"role_id"`
	PermissionID int64     `json:"permission_id"`
	GrantedBy    *int64    `json:"granted_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleChange is one append-only audit entry describing a field change on a role.
type RoleChange struct {
	ID       int64     `json:"id"`
	RoleID   int64     `json:"role_id"`
	ActorID  *int64    `json:"actor_id,omitempty"`
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	At       time.Time `json:"at"`
}

// User is the account projection the resolver needs: identity, role link
// and active flag. Password handling lives in the auth package.
type User struct {
	ID       int64
	Email    string
	RoleID   *int64
	IsActive bool
}

// Sentinel errors surfaced by the service.
var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("rbac: not found")
	// ErrNameTaken indicates a role name collision.
	ErrNameTaken = errors.New("rbac: role name already in use")
	// ErrInvalidProfile indicates a profile type outside the enumerated set.
	ErrInvalidProfile = errors.New("rbac: invalid profile type")
)
