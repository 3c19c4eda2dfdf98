package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides postgres access to venta and its line tables.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFilter narrows the sale listing.
type ListFilter struct {
	ClientID *int64
	Status   *SaleStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

const saleColumns = `id_venta, id_cliente, id_usuario, estado_venta, total, fecha`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.ClientID, &s.SellerUserID, &s.Status, &s.Total, &s.CreatedAt)
	return s, err
}

func (r *Repository) ListSales(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	query := `SELECT ` + saleColumns + ` FROM venta WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM venta WHERE 1=1`
	args := []any{}
	argCount := 0

	add := func(clause string, value any) {
		argCount++
		c := clause + strconv.Itoa(argCount)
		query += c
		countQuery += c
		args = append(args, value)
	}

	if filter.ClientID != nil {
		add(` AND id_cliente = $`, *filter.ClientID)
	}
	if filter.Status != nil {
		add(` AND estado_venta = $`, *filter.Status)
	}
	if filter.From != nil {
		add(` AND fecha >= $`, *filter.From)
	}
	if filter.To != nil {
		add(` AND fecha < $`, *filter.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY fecha DESC LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	return sales, total, rows.Err()
}

func (r *Repository) GetSale(ctx context.Context, id int64) (Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM venta WHERE id_venta = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	if err != nil {
		return Sale{}, err
	}

	productRows, err := r.pool.Query(ctx,
		`SELECT vp.id_producto, p.nombre, vp.cantidad, vp.precio_unitario
		 FROM venta_producto vp
		 JOIN producto p ON p.id_producto = vp.id_producto
		 WHERE vp.id_venta = $1 ORDER BY vp.id_producto`, id)
	if err != nil {
		return Sale{}, err
	}
	defer productRows.Close()
	for productRows.Next() {
		var line ProductLine
		if err := productRows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.UnitPrice); err != nil {
			return Sale{}, err
		}
		s.Products = append(s.Products, line)
	}
	if err := productRows.Err(); err != nil {
		return Sale{}, err
	}

	serviceRows, err := r.pool.Query(ctx,
		`SELECT vs.id_servicio, sv.nombre, vs.precio
		 FROM venta_servicio vs
		 JOIN servicio sv ON sv.id_servicio = vs.id_servicio
		 WHERE vs.id_venta = $1 ORDER BY vs.id_servicio`, id)
	if err != nil {
		return Sale{}, err
	}
	defer serviceRows.Close()
	for serviceRows.Next() {
		var line ServiceLine
		if err := serviceRows.Scan(&line.ServiceID, &line.ServiceName, &line.Price); err != nil {
			return Sale{}, err
		}
		s.Services = append(s.Services, line)
	}
	return s, serviceRows.Err()
}

// CreateSale inserts the receipt and decrements product stock in one
// transaction. A product without enough stock aborts the whole sale.
func (r *Repository) CreateSale(ctx context.Context, s Sale) (Sale, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return Sale{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO venta (id_cliente, id_usuario, estado_venta, total, fecha)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING id_venta, fecha`,
		s.ClientID, s.SellerUserID, s.Status, s.Total,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return Sale{}, translateError(err)
	}

	for _, line := range s.Products {
		tag, err := tx.Exec(ctx,
			`UPDATE producto SET existencia = existencia - $1
			 WHERE id_producto = $2 AND existencia >= $1`,
			line.Quantity, line.ProductID)
		if err != nil {
			return Sale{}, translateError(err)
		}
		if tag.RowsAffected() == 0 {
			return Sale{}, ErrInsufficientStock
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO venta_producto (id_venta, id_producto, cantidad, precio_unitario)
			 VALUES ($1, $2, $3, $4)`,
			s.ID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
			return Sale{}, translateError(err)
		}
	}
	for _, line := range s.Services {
		if _, err := tx.Exec(ctx,
			`INSERT INTO venta_servicio (id_venta, id_servicio, precio) VALUES ($1, $2, $3)`,
			s.ID, line.ServiceID, line.Price); err != nil {
			return Sale{}, translateError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, err
	}
	return s, nil
}

// VoidSale marks the sale ANULADA and restores product stock atomically.
func (r *Repository) VoidSale(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status SaleStatus
	err = tx.QueryRow(ctx,
		`SELECT estado_venta FROM venta WHERE id_venta = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == SaleVoided {
		return ErrAlreadyVoided
	}

	if _, err := tx.Exec(ctx,
		`UPDATE producto p SET existencia = existencia + vp.cantidad
		 FROM venta_producto vp
		 WHERE vp.id_venta = $1 AND vp.id_producto = p.id_producto`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE venta SET estado_venta = $1 WHERE id_venta = $2`, SaleVoided, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}
