package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Service, int, error)
	Get(ctx context.Context, id int64) (Service, error)
	Create(ctx context.Context, service Service) (Service, error)
	Update(ctx context.Context, id int64, service Service) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const serviceColumns = `id_servicio, nombre, descripcion, precio, duracion_minutos, estado`

func scanService(row pgx.Row) (Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes, &s.IsActive)
	return s, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Service, int, error) {
	query := `SELECT ` + serviceColumns + ` FROM servicio WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM servicio WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND nombre ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		clause := ` AND estado = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch filters.SortBy {
	case "price":
		query += ` ORDER BY precio ` + dir
	default:
		query += ` ORDER BY nombre ` + dir
	}

	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Service, error) {
	s, err := scanService(r.pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM servicio WHERE id_servicio = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, shared.ErrNotFound
	}
	if err != nil {
		return Service{}, err
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, service Service) (Service, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO servicio (nombre, descripcion, precio, duracion_minutos, estado)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id_servicio`,
		service.Name, service.Description, service.Price, service.DurationMinutes, service.IsActive,
	).Scan(&service.ID)
	if err != nil {
		return Service{}, translateError(err)
	}
	return service, nil
}

func (r *repository) Update(ctx context.Context, id int64, service Service) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE servicio
		 SET nombre = $1, descripcion = $2, precio = $3, duracion_minutos = $4, estado = $5
		 WHERE id_servicio = $6`,
		service.Name, service.Description, service.Price, service.DurationMinutes, service.IsActive, id,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM servicio WHERE id_servicio = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.ErrDuplicate
		case "23503":
			return shared.ErrInUse
		}
	}
	return err
}
