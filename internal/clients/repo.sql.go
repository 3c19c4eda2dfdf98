package clients

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides postgres access to the cliente table.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id_cliente, nombre, apellido, tipo_documento, numero_documento, correo, telefono, id_usuario, estado`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.DocumentType, &c.DocumentNumber,
		&c.Email, &c.Phone, &c.UserID, &c.IsActive)
	return c, err
}

// ListClients returns a filtered page plus the unfiltered total.
func (r *Repository) ListClients(ctx context.Context, search string, active *bool, limit, offset int) ([]Client, int, error) {
	query := `SELECT ` + clientColumns + ` FROM cliente WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM cliente WHERE 1=1`
	args := []any{}
	argCount := 0

	if search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		clause := ` AND (nombre ILIKE $` + n + ` OR apellido ILIKE $` + n + ` OR numero_documento ILIKE $` + n + ` OR correo ILIKE $` + n + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
	}
	if active != nil {
		argCount++
		clause := ` AND estado = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *active)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY apellido, nombre LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (r *Repository) GetClient(ctx context.Context, id int64) (Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM cliente WHERE id_cliente = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	if err != nil {
		return Client{}, err
	}
	return c, nil
}

func (r *Repository) CreateClient(ctx context.Context, c Client) (Client, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cliente (nombre, apellido, tipo_documento, numero_documento, correo, telefono, id_usuario, estado)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id_cliente`,
		c.FirstName, c.LastName, c.DocumentType, c.DocumentNumber,
		c.Email, c.Phone, c.UserID, c.IsActive,
	).Scan(&c.ID)
	if err != nil {
		return Client{}, translateError(err)
	}
	return c, nil
}

func (r *Repository) UpdateClient(ctx context.Context, c Client) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cliente
		 SET nombre = $1, apellido = $2, tipo_documento = $3, numero_documento = $4,
		     correo = $5, telefono = $6, id_usuario = $7, estado = $8
		 WHERE id_cliente = $9`,
		c.FirstName, c.LastName, c.DocumentType, c.DocumentNumber,
		c.Email, c.Phone, c.UserID, c.IsActive, c.ID,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cliente WHERE id_cliente = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrHasHistory
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// translateError maps unique violations to the specific taken-field
// sentinel using the constraint name.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "correo") {
			return ErrEmailTaken
		}
		return ErrDocumentTaken
	}
	return err
}
