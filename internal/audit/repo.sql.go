package audit

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the merged audit timeline from audit_logs and
// historial_cambios_rol.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Role history rows are folded into the same shape as audit_logs so both
// sources sort and filter uniformly. The synthetic action for role history
// is "role.changed" with the field name in the detail column.
const timelineBase = `
	SELECT at, actor_id, actor_email, action, entity, entity_id, detail FROM (
		SELECT al.occurred_at AS at,
		       al.actor_id,
		       COALESCE(u.correo, '') AS actor_email,
		       al.action,
		       al.entity,
		       al.entity_id,
		       COALESCE(al.meta::text, '') AS detail
		FROM audit_logs al
		LEFT JOIN usuario u ON u.id_usuario = al.actor_id
		UNION ALL
		SELECT h.fecha_cambio,
		       h.id_usuario_modifica,
		       COALESCE(u.correo, ''),
		       'role.changed',
		       'rol',
		       h.id_rol::text,
		       h.campo || ': ' || COALESCE(h.valor_anterior, '') || ' -> ' || COALESCE(h.valor_nuevo, '')
		FROM historial_cambios_rol h
		LEFT JOIN usuario u ON u.id_usuario = h.id_usuario_modifica
	) t WHERE 1=1`

// TimelineWindow returns one page of timeline rows, newest first. The caller
// passes limit one higher than the page size to detect a next page.
func (r *Repository) TimelineWindow(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	query, args := timelineQuery(filters)
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))
	return r.queryEntries(ctx, query, args)
}

// TimelineAll returns every timeline row matching the filters, newest first.
func (r *Repository) TimelineAll(ctx context.Context, filters TimelineFilters) ([]Entry, error) {
	query, args := timelineQuery(filters)
	return r.queryEntries(ctx, query, args)
}

func timelineQuery(filters TimelineFilters) (string, []any) {
	query := timelineBase
	args := []any{}

	if !filters.From.IsZero() {
		args = append(args, filters.From)
		query += ` AND at >= $` + strconv.Itoa(len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		query += ` AND at < $` + strconv.Itoa(len(args))
	}
	if filters.ActorID > 0 {
		args = append(args, filters.ActorID)
		query += ` AND actor_id = $` + strconv.Itoa(len(args))
	}
	if filters.Entity != "" {
		args = append(args, filters.Entity)
		query += ` AND entity = $` + strconv.Itoa(len(args))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		query += ` AND action = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY at DESC`
	return query, args
}

func (r *Repository) queryEntries(ctx context.Context, query string, args []any) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.At, &e.ActorID, &e.ActorEmail, &e.Action, &e.Entity, &e.EntityID, &e.Detail); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
