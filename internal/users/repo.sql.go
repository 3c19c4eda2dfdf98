package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id_usuario, correo, id_rol, estado, created_at, updated_at`

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM usuario ORDER BY id_usuario`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.RoleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM usuario WHERE id_usuario = $1`, id).
		Scan(&user.ID, &user.Email, &user.RoleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// CreateUser inserts a new account with the given password hash.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string, roleID *int64) (User, error) {
	now := time.Now()
	var user User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO usuario (correo, contrasena, id_rol, estado, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $4)
		RETURNING `+userColumns,
		email, passwordHash, roleID, now).
		Scan(&user.ID, &user.Email, &user.RoleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, translateError(err)
	}
	return user, nil
}

// UpdateUser persists the mutable fields of a user.
func (r *Repository) UpdateUser(ctx context.Context, user User) (User, error) {
	var updated User
	err := r.pool.QueryRow(ctx, `
		UPDATE usuario SET correo = $2, id_rol = $3, estado = $4, updated_at = $5
		WHERE id_usuario = $1
		RETURNING `+userColumns,
		user.ID, user.Email, user.RoleID, user.IsActive, time.Now()).
		Scan(&updated.ID, &updated.Email, &updated.RoleID, &updated.IsActive, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, translateError(err)
	}
	return updated, nil
}

// SetPassword replaces the stored password hash.
func (r *Repository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE usuario SET contrasena = $2, updated_at = $3 WHERE id_usuario = $1`, id, passwordHash, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrEmailTaken
		case "23503":
			return ErrRoleMissing
		}
	}
	return err
}
