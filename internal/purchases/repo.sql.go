package purchases

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides postgres access to compra and compra_producto.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFilter narrows the purchase listing.
type ListFilter struct {
	SupplierID *int64
	Status     *PurchaseStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

const purchaseColumns = `id_compra, id_proveedor, id_usuario, estado_compra, total, fecha`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.SupplierID, &p.BuyerUserID, &p.Status, &p.Total, &p.CreatedAt)
	return p, err
}

func (r *Repository) ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	query := `SELECT ` + purchaseColumns + ` FROM compra WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM compra WHERE 1=1`
	args := []any{}
	argCount := 0

	add := func(clause string, value any) {
		argCount++
		c := clause + strconv.Itoa(argCount)
		query += c
		countQuery += c
		args = append(args, value)
	}

	if filter.SupplierID != nil {
		add(` AND id_proveedor = $`, *filter.SupplierID)
	}
	if filter.Status != nil {
		add(` AND estado_compra = $`, *filter.Status)
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

	var purchases []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, err
		}
		purchases = append(purchases, p)
	}
	return purchases, total, rows.Err()
}

func (r *Repository) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM compra WHERE id_compra = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrNotFound
	}
	if err != nil {
		return Purchase{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT cp.id_producto, pr.nombre, cp.cantidad, cp.costo_unitario
		 FROM compra_producto cp
		 JOIN producto pr ON pr.id_producto = cp.id_producto
		 WHERE cp.id_compra = $1 ORDER BY cp.id_producto`, id)
	if err != nil {
		return Purchase{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var line PurchaseLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.UnitCost); err != nil {
			return Purchase{}, err
		}
		p.Lines = append(p.Lines, line)
	}
	return p, rows.Err()
}

// CreatePurchase inserts the intake and increments product stock in one
// transaction.
func (r *Repository) CreatePurchase(ctx context.Context, p Purchase) (Purchase, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return Purchase{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO compra (id_proveedor, id_usuario, estado_compra, total, fecha)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING id_compra, fecha`,
		p.SupplierID, p.BuyerUserID, p.Status, p.Total,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Purchase{}, translateError(err)
	}

	for _, line := range p.Lines {
		if _, err := tx.Exec(ctx,
			`UPDATE producto SET existencia = existencia + $1 WHERE id_producto = $2`,
			line.Quantity, line.ProductID); err != nil {
			return Purchase{}, translateError(err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO compra_producto (id_compra, id_producto, cantidad, costo_unitario)
			 VALUES ($1, $2, $3, $4)`,
			p.ID, line.ProductID, line.Quantity, line.UnitCost); err != nil {
			return Purchase{}, translateError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Purchase{}, err
	}
	return p, nil
}

// VoidPurchase marks the intake ANULADA and removes its units from
// stock. Units already sold make the void fail.
func (r *Repository) VoidPurchase(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status PurchaseStatus
	err = tx.QueryRow(ctx,
		`SELECT estado_compra FROM compra WHERE id_compra = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == PurchaseVoided {
		return ErrAlreadyVoided
	}

	rows, err := tx.Query(ctx,
		`SELECT id_producto, cantidad FROM compra_producto WHERE id_compra = $1`, id)
	if err != nil {
		return err
	}
	type entry struct {
		productID int64
		quantity  int
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.productID, &e.quantity); err != nil {
			rows.Close()
			return err
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, e := range entries {
		tag, err := tx.Exec(ctx,
			`UPDATE producto SET existencia = existencia - $1
			 WHERE id_producto = $2 AND existencia >= $1`,
			e.quantity, e.productID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStockBelowZero
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE compra SET estado_compra = $1 WHERE id_compra = $2`, PurchaseVoided, id); err != nil {
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
