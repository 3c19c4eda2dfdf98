package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MonthlySales is total revenue for one calendar month.
type MonthlySales struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// TopService is a treatment ranked by booking volume.
type TopService struct {
	ServiceID int64   `json:"service_id"`
	Name      string  `json:"name"`
	Bookings  int     `json:"bookings"`
	Revenue   float64 `json:"revenue"`
}

// AppointmentCounts groups appointments by status.
type AppointmentCounts struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Repository runs the read-side aggregate queries.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesPerMonth sums non-voided sale totals for the trailing months.
func (r *Repository) SalesPerMonth(ctx context.Context, months int) ([]MonthlySales, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(date_trunc('month', fecha), 'YYYY-MM') AS mes, COALESCE(SUM(total), 0)
		 FROM venta
		 WHERE estado_venta <> 'ANULADA' AND fecha >= date_trunc('month', now()) - make_interval(months => $1 - 1)
		 GROUP BY mes
		 ORDER BY mes`, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlySales
	for rows.Next() {
		var m MonthlySales
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TopServices ranks treatments by completed appointment volume.
func (r *Repository) TopServices(ctx context.Context, since time.Time, limit int) ([]TopService, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id_servicio, s.nombre, COUNT(*), COALESCE(SUM(cs.precio), 0)
		 FROM cita_servicio cs
		 JOIN cita c ON c.id_cita = cs.id_cita
		 JOIN servicio s ON s.id_servicio = cs.id_servicio
		 WHERE c.estado_cita = 'COMPLETADA' AND c.fecha_inicio >= $1
		 GROUP BY s.id_servicio, s.nombre
		 ORDER BY COUNT(*) DESC
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopService
	for rows.Next() {
		var t TopService
		if err := rows.Scan(&t.ServiceID, &t.Name, &t.Bookings, &t.Revenue); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountAppointments groups appointment rows by status since the cutoff.
func (r *Repository) CountAppointments(ctx context.Context, since time.Time) (AppointmentCounts, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT estado_cita, COUNT(*) FROM cita WHERE fecha_inicio >= $1 GROUP BY estado_cita`, since)
	if err != nil {
		return AppointmentCounts{}, err
	}
	defer rows.Close()

	var counts AppointmentCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return AppointmentCounts{}, err
		}
		switch status {
		case "PENDIENTE":
			counts.Pending = n
		case "CONFIRMADA":
			counts.Confirmed = n
		case "COMPLETADA":
			counts.Completed = n
		case "CANCELADA":
			counts.Cancelled = n
		}
	}
	return counts, rows.Err()
}
