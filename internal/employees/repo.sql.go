package employees

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides postgres access to empleado and related tables.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id_empleado, nombre, apellido, tipo_documento, numero_documento, correo, telefono, id_usuario, estado`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.DocumentType, &e.DocumentNumber,
		&e.Email, &e.Phone, &e.UserID, &e.IsActive)
	return e, err
}

func (r *Repository) ListEmployees(ctx context.Context, search string, active *bool, limit, offset int) ([]Employee, int, error) {
	query := `SELECT ` + employeeColumns + ` FROM empleado WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM empleado WHERE 1=1`
	args := []any{}
	argCount := 0

	if search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		clause := ` AND (nombre ILIKE $` + n + ` OR apellido ILIKE $` + n + ` OR numero_documento ILIKE $` + n + `)`
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

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *Repository) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM empleado WHERE id_empleado = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	e.SpecialtyIDs, err = r.SpecialtyIDs(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (r *Repository) SpecialtyIDs(ctx context.Context, employeeID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id_servicio FROM empleado_especialidad WHERE id_empleado = $1 ORDER BY id_servicio`,
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Employee{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO empleado (nombre, apellido, tipo_documento, numero_documento, correo, telefono, id_usuario, estado)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id_empleado`,
		e.FirstName, e.LastName, e.DocumentType, e.DocumentNumber,
		e.Email, e.Phone, e.UserID, e.IsActive,
	).Scan(&e.ID)
	if err != nil {
		return Employee{}, translateError(err)
	}
	if err := replaceSpecialties(ctx, tx, e.ID, e.SpecialtyIDs); err != nil {
		return Employee{}, translateError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (r *Repository) UpdateEmployee(ctx context.Context, e Employee) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE empleado
		 SET nombre = $1, apellido = $2, tipo_documento = $3, numero_documento = $4,
		     correo = $5, telefono = $6, estado = $7
		 WHERE id_empleado = $8`,
		e.FirstName, e.LastName, e.DocumentType, e.DocumentNumber,
		e.Email, e.Phone, e.IsActive, e.ID,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := replaceSpecialties(ctx, tx, e.ID, e.SpecialtyIDs); err != nil {
		return translateError(err)
	}
	return tx.Commit(ctx)
}

func replaceSpecialties(ctx context.Context, tx pgx.Tx, employeeID int64, serviceIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM empleado_especialidad WHERE id_empleado = $1`, employeeID); err != nil {
		return err
	}
	for _, serviceID := range serviceIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO empleado_especialidad (id_empleado, id_servicio) VALUES ($1, $2)`,
			employeeID, serviceID); err != nil {
			return err
		}
	}
	return nil
}

const noveltyColumns = `id_novedad, id_empleado, fecha_inicio, fecha_fin, hora_inicio, hora_fin, motivo`

func scanNovelty(row pgx.Row) (Novelty, error) {
	var n Novelty
	err := row.Scan(&n.ID, &n.EmployeeID, &n.StartDate, &n.EndDate, &n.StartHour, &n.EndHour, &n.Reason)
	return n, err
}

func (r *Repository) ListNovelties(ctx context.Context, employeeID int64) ([]Novelty, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noveltyColumns+` FROM novedades WHERE id_empleado = $1 ORDER BY fecha_inicio`,
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var novelties []Novelty
	for rows.Next() {
		n, err := scanNovelty(rows)
		if err != nil {
			return nil, err
		}
		novelties = append(novelties, n)
	}
	return novelties, rows.Err()
}

// OverlappingNovelties returns novelties for the employee whose date
// range intersects [start, end].
func (r *Repository) OverlappingNovelties(ctx context.Context, employeeID int64, start, end time.Time) ([]Novelty, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noveltyColumns+` FROM novedades
		 WHERE id_empleado = $1 AND fecha_inicio <= $3 AND fecha_fin >= $2`,
		employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var novelties []Novelty
	for rows.Next() {
		n, err := scanNovelty(rows)
		if err != nil {
			return nil, err
		}
		novelties = append(novelties, n)
	}
	return novelties, rows.Err()
}

func (r *Repository) CreateNovelty(ctx context.Context, n Novelty) (Novelty, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO novedades (id_empleado, fecha_inicio, fecha_fin, hora_inicio, hora_fin, motivo)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id_novedad`,
		n.EmployeeID, n.StartDate, n.EndDate, n.StartHour, n.EndHour, n.Reason,
	).Scan(&n.ID)
	if err != nil {
		return Novelty{}, translateError(err)
	}
	return n, nil
}

func (r *Repository) DeleteNovelty(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM novedades WHERE id_novedad = $1`, id)
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
			return ErrDocumentTaken
		case "23503":
			return ErrNotFound
		}
	}
	return err
}
