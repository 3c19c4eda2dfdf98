package users

import (
	"context"
	"errors"
	"strings"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/auth"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, email, passwordHash string, roleID *int64) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
}

// PermissionInvalidator discards cached permission sets after role
// assignments change.
type PermissionInvalidator interface {
	InvalidatePermissions(ctx context.Context) error
}

// Service handles user management logic.
type Service struct {
	repo        RepositoryPort
	invalidator PermissionInvalidator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, invalidator PermissionInvalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser registers a new account. The role is optional; a user without
// a role holds no permissions until one is assigned.
func (s *Service) CreateUser(ctx context.Context, email, password string, roleID *int64) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, errors.New("users: email required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, email, hash, roleID)
}

// UserUpdate is a partial update over a user's mutable fields.
type UserUpdate struct {
	Email     *string
	RoleID    *int64
	ClearRole bool
	IsActive  *bool
}

// UpdateUser applies the partial update. Changing the role assignment or
// active flag invalidates cached permission sets.
func (s *Service) UpdateUser(ctx context.Context, id int64, update UserUpdate) (User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}

	affectsPermissions := false
	if update.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*update.Email))
	}
	if update.ClearRole {
		user.RoleID = nil
		affectsPermissions = true
	} else if update.RoleID != nil {
		user.RoleID = update.RoleID
		affectsPermissions = true
	}
	if update.IsActive != nil && *update.IsActive != user.IsActive {
		user.IsActive = *update.IsActive
		affectsPermissions = true
	}

	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	if affectsPermissions && s.invalidator != nil {
		if err := s.invalidator.InvalidatePermissions(ctx); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

// ChangePassword replaces the account password.
func (s *Service) ChangePassword(ctx context.Context, id int64, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, id, hash)
}
