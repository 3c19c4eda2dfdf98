package rbac

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

// RepositoryPort describes the persistence operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetUser(ctx context.Context, id int64) (User, error)
	RolePermissionNames(ctx context.Context, roleID int64) ([]string, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	ListRoles(ctx context.Context, includeInactive bool) ([]Role, error)
	CreateRole(ctx context.Context, role Role) (Role, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	EnsurePermission(ctx context.Context, name, description string) (Permission, error)
	ListRoleGrants(ctx context.Context, roleID int64) ([]Grant, error)
	AddGrant(ctx context.Context, roleID, permissionID int64, grantedBy *int64) error
	RemoveGrant(ctx context.Context, roleID, permissionID int64) error
	RoleHistory(ctx context.Context, roleID int64, limit, offset int) ([]RoleChange, int, error)
}

// Service orchestrates role, permission and grant management.
type Service struct {
	repo  RepositoryPort
	cache *PermissionCache
}

// NewService constructs a Service. The cache may be nil.
func NewService(repo RepositoryPort, cache *PermissionCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ResolvePermissions computes the authoritative permission set for a user:
// the active permissions of the user's active role. Users without a role,
// with an inactive role, or deactivated themselves resolve to the empty
// set. A missing user yields ErrNotFound.
func (s *Service) ResolvePermissions(ctx context.Context, userID int64) ([]string, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || user.RoleID == nil {
		return []string{}, nil
	}
	roleID := *user.RoleID
	perms, err := s.cache.Fetch(ctx, userID, func(ctx context.Context) ([]string, error) {
		return s.repo.RolePermissionNames(ctx, roleID)
	})
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, nil
}

// Authorize reports whether the required permission name is a member of the
// resolved set. Matching is exact-string; there is no hierarchy.
func Authorize(granted []string, required string) bool {
	for _, p := range granted {
		if p == required {
			return true
		}
	}
	return false
}

// CreateRoleInput carries the fields accepted when creating a role.
type CreateRoleInput struct {
	Name        string
	Description string
	ProfileType ProfileType
}

// CreateRole inserts a new active role.
func (s *Service) CreateRole(ctx context.Context, input CreateRoleInput) (Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	profile := input.ProfileType
	if profile == "" {
		profile = ProfileNone
	}
	if !profile.Valid() {
		return Role{}, ErrInvalidProfile
	}
	return s.repo.CreateRole(ctx, Role{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ProfileType: profile,
		IsActive:    true,
	})
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// ListRoles returns roles ordered by name.
func (s *Service) ListRoles(ctx context.Context, includeInactive bool) ([]Role, error) {
	return s.repo.ListRoles(ctx, includeInactive)
}

// ListPermissions returns the full permission catalogue.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// EnsurePermission upserts a permission, used at seed time.
func (s *Service) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Permission{}, errors.New("rbac: permission name required")
	}
	return s.repo.EnsurePermission(ctx, name, strings.TrimSpace(description))
}

// RoleUpdate is a partial update over a role's mutable fields. Nil fields
// are left untouched.
type RoleUpdate struct {
	Name        *string
	Description *string
	ProfileType *ProfileType
	IsActive    *bool
}

// UpdateRole applies the partial update and records one audit entry per
// field whose value actually changed. The update and its audit rows commit
// atomically; on any failure nothing is applied.
func (s *Service) UpdateRole(ctx context.Context, roleID int64, update RoleUpdate, actorID *int64) (Role, error) {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return Role{}, errors.New("rbac: role name required")
		}
		update.Name = &trimmed
	}
	if update.ProfileType != nil && !update.ProfileType.Valid() {
		return Role{}, ErrInvalidProfile
	}

	var updated Role
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		role, err := tx.GetRoleForUpdate(ctx, roleID)
		if err != nil {
			return err
		}

		now := time.Now()
		var changes []RoleChange
		record := func(field, oldValue, newValue string) {
			changes = append(changes, RoleChange{
				RoleID:   roleID,
				ActorID:  actorID,
				Field:    field,
				OldValue: oldValue,
				NewValue: newValue,
				At:       now,
			})
		}

		if update.Name != nil && *update.Name != role.Name {
			record("nombre", role.Name, *update.Name)
			role.Name = *update.Name
		}
		if update.Description != nil && *update.Description != role.Description {
			record("descripcion", role.Description, *update.Description)
			role.Description = *update.Description
		}
		if update.ProfileType != nil && *update.ProfileType != role.ProfileType {
			record("tipo_perfil", string(role.ProfileType), string(*update.ProfileType))
			role.ProfileType = *update.ProfileType
		}
		if update.IsActive != nil && *update.IsActive != role.IsActive {
			record("estado", strconv.FormatBool(role.IsActive), strconv.FormatBool(*update.IsActive))
			role.IsActive = *update.IsActive
		}

		if len(changes) == 0 {
			updated = role
			return nil
		}

		if err := tx.UpdateRole(ctx, role); err != nil {
			return err
		}
		for _, change := range changes {
			if err := tx.InsertChange(ctx, change); err != nil {
				return err
			}
		}
		role.UpdatedAt = now
		updated = role
		return nil
	})
	if err != nil {
		return Role{}, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// Grant attaches a permission to a role. Granting an existing pair is a
// no-op; a missing role or permission yields ErrNotFound.
func (s *Service) Grant(ctx context.Context, roleID, permissionID int64, grantedBy *int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	if _, err := s.repo.GetPermission(ctx, permissionID); err != nil {
		return err
	}
	if err := s.repo.AddGrant(ctx, roleID, permissionID, grantedBy); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx)
}

// Revoke detaches a permission from a role. Revoking an absent pair is a
// no-op; a missing role or permission yields ErrNotFound.
func (s *Service) Revoke(ctx context.Context, roleID, permissionID int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	if _, err := s.repo.GetPermission(ctx, permissionID); err != nil {
		return err
	}
	if err := s.repo.RemoveGrant(ctx, roleID, permissionID); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx)
}

// SetRolePermissions replaces the grant set of a role with the given
// permission IDs, applying only the difference, atomically.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64, grantedBy *int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.ListGrantPermissionIDs(ctx, roleID)
		if err != nil {
			return err
		}
		existing := make(map[int64]struct{}, len(current))
		for _, id := range current {
			existing[id] = struct{}{}
		}
		keep := make(map[int64]struct{}, len(permissionIDs))
		for _, id := range permissionIDs {
			keep[id] = struct{}{}
			if _, ok := existing[id]; !ok {
				if err := tx.AddGrant(ctx, roleID, id, grantedBy); err != nil {
					return err
				}
			}
		}
		for id := range existing {
			if _, ok := keep[id]; !ok {
				if err := tx.RemoveGrant(ctx, roleID, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.cache.Invalidate(ctx)
}

// RoleGrants lists the grants attached to a role.
func (s *Service) RoleGrants(ctx context.Context, roleID int64) ([]Grant, error) {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.repo.ListRoleGrants(ctx, roleID)
}

// RoleHistory returns the audit ledger for a role, newest first.
func (s *Service) RoleHistory(ctx context.Context, roleID int64, page, perPage int) ([]RoleChange, shared.Pagination, error) {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return nil, shared.Pagination{}, err
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	changes, total, err := s.repo.RoleHistory(ctx, roleID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return changes, shared.NewPagination(page, perPage, total), nil
}

// InvalidatePermissions discards cached permission sets. Called by the
// users module when a user's role assignment changes.
func (s *Service) InvalidatePermissions(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}
