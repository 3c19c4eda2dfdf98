package appointments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides postgres access to cita and cita_servicio.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFilter narrows the appointment listing.
type ListFilter struct {
	EmployeeID *int64
	ClientID   *int64
	// OwnerUserID restricts results to appointments of the client
	// linked to this user account.
	OwnerUserID *int64
	Status      *Status
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

const appointmentColumns = `id_cita, id_cliente, id_empleado, fecha_inicio, fecha_fin, estado_cita, total, creado_en`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClientID, &a.EmployeeID, &a.StartTime, &a.EndTime,
		&a.Status, &a.Total, &a.CreatedAt)
	return a, err
}

func (r *Repository) ListAppointments(ctx context.Context, filter ListFilter) ([]Appointment, int, error) {
	query := `SELECT ` + appointmentColumns + ` FROM cita WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM cita WHERE 1=1`
	args := []any{}
	argCount := 0

	add := func(clause string, value any) {
		argCount++
		c := clause + strconv.Itoa(argCount)
		query += c
		countQuery += c
		args = append(args, value)
	}

	if filter.EmployeeID != nil {
		add(` AND id_empleado = $`, *filter.EmployeeID)
	}
	if filter.ClientID != nil {
		add(` AND id_cliente = $`, *filter.ClientID)
	}
	if filter.OwnerUserID != nil {
		add(` AND id_cliente IN (SELECT id_cliente FROM cliente WHERE id_usuario = $`, *filter.OwnerUserID)
		query += `)`
		countQuery += `)`
	}
	if filter.Status != nil {
		add(` AND estado_cita = $`, *filter.Status)
	}
	if filter.From != nil {
		add(` AND fecha_inicio >= $`, *filter.From)
	}
	if filter.To != nil {
		add(` AND fecha_inicio < $`, *filter.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY fecha_inicio DESC LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, a)
	}
	return appointments, total, rows.Err()
}

func (r *Repository) GetAppointment(ctx context.Context, id int64) (Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM cita WHERE id_cita = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	if err != nil {
		return Appointment{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT cs.id_servicio, s.nombre, cs.precio
		 FROM cita_servicio cs
		 JOIN servicio s ON s.id_servicio = cs.id_servicio
		 WHERE cs.id_cita = $1
		 ORDER BY cs.id_servicio`, id)
	if err != nil {
		return Appointment{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var line AppointmentLine
		if err := rows.Scan(&line.ServiceID, &line.ServiceName, &line.Price); err != nil {
			return Appointment{}, err
		}
		a.Lines = append(a.Lines, line)
	}
	return a, rows.Err()
}

// CreateAppointment inserts the header and its lines in one transaction.
func (r *Repository) CreateAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Appointment{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO cita (id_cliente, id_empleado, fecha_inicio, fecha_fin, estado_cita, total, creado_en)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 RETURNING id_cita, creado_en`,
		a.ClientID, a.EmployeeID, a.StartTime, a.EndTime, a.Status, a.Total,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return Appointment{}, translateError(err)
	}

	for _, line := range a.Lines {
		if _, err := tx.Exec(ctx,
			`INSERT INTO cita_servicio (id_cita, id_servicio, precio) VALUES ($1, $2, $3)`,
			a.ID, line.ServiceID, line.Price); err != nil {
			return Appointment{}, translateError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// UpdateStatus moves the appointment to next only when the current row
// status still allows it, guarding against concurrent transitions.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cita SET estado_cita = $1 WHERE id_cita = $2 AND estado_cita = $3`,
		to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// OverlappingCount counts non-cancelled appointments for the employee
// intersecting [start, end).
func (r *Repository) OverlappingCount(ctx context.Context, employeeID int64, start, end time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cita
		 WHERE id_empleado = $1 AND estado_cita <> $2
		   AND fecha_inicio < $4 AND fecha_fin > $3`,
		employeeID, StatusCancelled, start, end).Scan(&count)
	return count, err
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}
