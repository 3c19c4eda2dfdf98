package rbac

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence over the legacy
// schema (rol, permisos, permisos_x_rol, usuario, historial_cambios_rol).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside a role-mutation transaction.
type TxRepository interface {
	GetRoleForUpdate(ctx context.Context, id int64) (Role, error)
	UpdateRole(ctx context.Context, role Role) error
	InsertChange(ctx context.Context, change RoleChange) error
	ListGrantPermissionIDs(ctx context.Context, roleID int64) ([]int64, error)
	AddGrant(ctx context.Context, roleID, permissionID int64, grantedBy *int64) error
	RemoveGrant(ctx context.Context, roleID, permissionID int64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const roleColumns = `id_rol, nombre, descripcion, tipo_perfil, estado, created_at, updated_at`

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.ProfileType, &role.IsActive, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// GetUser fetches the account projection used by permission resolution.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT id_usuario, correo, id_rol, estado FROM usuario WHERE id_usuario = $1`, id).
		Scan(&user.ID, &user.Email, &user.RoleID, &user.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// RolePermissionNames returns the names of active permissions granted to an
// active role. An inactive role yields no rows.
func (r *Repository) RolePermissionNames(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.nombre
		FROM permisos p
		JOIN permisos_x_rol pr ON pr.id_permiso = p.id_permiso
		JOIN rol r ON r.id_rol = pr.id_rol
		WHERE pr.id_rol = $1 AND r.estado AND p.estado`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM rol WHERE id_rol = $1`, id))
}

// GetRoleByName fetches a role by its unique name.
func (r *Repository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM rol WHERE nombre = $1`, name))
}

// ListRoles returns roles ordered by name.
func (r *Repository) ListRoles(ctx context.Context, includeInactive bool) ([]Role, error) {
	query := `SELECT ` + roleColumns + ` FROM rol`
	if !includeInactive {
		query += ` WHERE estado`
	}
	query += ` ORDER BY nombre`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, role Role) (Role, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO rol (nombre, descripcion, tipo_perfil, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id_rol`,
		role.Name, role.Description, role.ProfileType, role.IsActive, now).Scan(&role.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Role{}, ErrNameTaken
		}
		return Role{}, err
	}
	role.CreatedAt = now
	role.UpdatedAt = now
	return role, nil
}

// ListPermissions returns all permissions ordered by name.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id_permiso, nombre, descripcion, estado FROM permisos ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IsActive); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// GetPermission fetches a permission by ID.
func (r *Repository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `SELECT id_permiso, nombre, descripcion, estado FROM permisos WHERE id_permiso = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

// EnsurePermission upserts a permission by name, refreshing the description.
func (r *Repository) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permisos (nombre, descripcion, estado)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (nombre) DO UPDATE SET descripcion = EXCLUDED.descripcion
		RETURNING id_permiso, nombre, descripcion, estado`,
		name, description).Scan(&p.ID, &p.Name, &p.Description, &p.IsActive)
	if err != nil {
		return Permission{}, err
	}
	return p, nil
}

// ListRoleGrants returns the grants attached to a role.
func (r *Repository) ListRoleGrants(ctx context.Context, roleID int64) ([]Grant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id_rol, id_permiso, id_usuario_otorga, created_at
		FROM permisos_x_rol WHERE id_rol = $1 ORDER BY id_permiso`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grants []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.RoleID, &g.PermissionID, &g.GrantedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// AddGrant inserts a (role, permission) pair. Inserting an existing pair is a no-op.
func (r *Repository) AddGrant(ctx context.Context, roleID, permissionID int64, grantedBy *int64) error {
	return addGrant(ctx, r.pool, roleID, permissionID, grantedBy)
}

// RemoveGrant deletes a (role, permission) pair. Removing an absent pair is a no-op.
func (r *Repository) RemoveGrant(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM permisos_x_rol WHERE id_rol = $1 AND id_permiso = $2`, roleID, permissionID)
	return err
}

// RoleHistory returns the audit ledger for a role, newest first.
func (r *Repository) RoleHistory(ctx context.Context, roleID int64, limit, offset int) ([]RoleChange, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM historial_cambios_rol WHERE id_rol = $1`, roleID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id_historial, id_rol, id_usuario_modifica, campo, valor_anterior, valor_nuevo, fecha_cambio
		FROM historial_cambios_rol
		WHERE id_rol = $1
		ORDER BY fecha_cambio DESC, id_historial DESC
		LIMIT $2 OFFSET $3`, roleID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var changes []RoleChange
	for rows.Next() {
		var c RoleChange
		if err := rows.Scan(&c.ID, &c.RoleID, &c.ActorID, &c.Field, &c.OldValue, &c.NewValue, &c.At); err != nil {
			return nil, 0, err
		}
		changes = append(changes, c)
	}
	return changes, total, rows.Err()
}

// Transactional operations

func (t *txRepo) GetRoleForUpdate(ctx context.Context, id int64) (Role, error) {
	return scanRole(t.tx.QueryRow(ctx, `SELECT `+roleColumns+` FROM rol WHERE id_rol = $1 FOR UPDATE`, id))
}

func (t *txRepo) UpdateRole(ctx context.Context, role Role) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE rol SET nombre = $2, descripcion = $3, tipo_perfil = $4, estado = $5, updated_at = $6
		WHERE id_rol = $1`,
		role.ID, role.Name, role.Description, role.ProfileType, role.IsActive, time.Now())
	if isUniqueViolation(err) {
		return ErrNameTaken
	}
	return err
}

func (t *txRepo) InsertChange(ctx context.Context, change RoleChange) error {
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO historial_cambios_rol (id_rol, id_usuario_modifica, campo, valor_anterior, valor_nuevo, fecha_cambio)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		change.RoleID, change.ActorID, change.Field, change.OldValue, change.NewValue, at)
	return err
}

func (t *txRepo) ListGrantPermissionIDs(ctx context.Context, roleID int64) ([]int64, error) {
	rows, err := t.tx.Query(ctx, `SELECT id_permiso FROM permisos_x_rol WHERE id_rol = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *txRepo) AddGrant(ctx context.Context, roleID, permissionID int64, grantedBy *int64) error {
	return addGrant(ctx, t.tx, roleID, permissionID, grantedBy)
}

func (t *txRepo) RemoveGrant(ctx context.Context, roleID, permissionID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM permisos_x_rol WHERE id_rol = $1 AND id_permiso = $2`, roleID, permissionID)
	return err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func addGrant(ctx context.Context, db execer, roleID, permissionID int64, grantedBy *int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO permisos_x_rol (id_rol, id_permiso, id_usuario_otorga, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id_rol, id_permiso) DO NOTHING`,
		roleID, permissionID, grantedBy, time.Now())
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
