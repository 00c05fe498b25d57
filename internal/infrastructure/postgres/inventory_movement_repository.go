package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, producto_id, cantidad, tipo, origen, operacion_id::text, created_at`

// Append inserta el movimiento; created_at usa clock_timestamp() para respetar el orden de commit por producto.
func (r *InventoryMovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO inventario_movimientos (producto_id, cantidad, tipo, origen, operacion_id)
		VALUES ($1, $2, $3, $4, $5::text::uuid)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, m.Quantity, string(m.Kind), string(m.Source), m.OperationID,
	).Scan(&m.ID, &m.RecordedAt)
	if isForeignKeyViolation(err) {
		return domain.ErrProductUnknown
	}
	return classify("append movement", err)
}

// ListRecent devuelve los últimos movimientos de todos los productos.
func (r *InventoryMovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventario_movimientos
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, classify("list movements", err)
	}
	return scanMovements(rows)
}

// ListByProduct devuelve los últimos movimientos de un producto.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventario_movimientos
		WHERE producto_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, classify("list movements by product", err)
	}
	return scanMovements(rows)
}

// Totals agrega el ledger del producto. SUM sobre BIGINT devuelve NUMERIC; se castea a BIGINT.
func (r *InventoryMovementRepo) Totals(ctx context.Context, productID int64) (entity.LedgerTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(cantidad) FILTER (WHERE tipo = 'entrada'), 0)::bigint,
			COALESCE(SUM(cantidad) FILTER (WHERE tipo = 'salida'), 0)::bigint,
			COUNT(*),
			COALESCE(MAX(id), 0)
		FROM inventario_movimientos
		WHERE producto_id = $1`
	var t entity.LedgerTotals
	err := r.q.QueryRow(ctx, query, productID).Scan(&t.Inbound, &t.Outbound, &t.Count, &t.LastMovementID)
	if err != nil {
		return entity.LedgerTotals{}, classify("ledger totals", err)
	}
	return t, nil
}

// CountOrphanSaleMovements cuenta salidas de venta sin fila en ventas.
func (r *InventoryMovementRepo) CountOrphanSaleMovements(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM inventario_movimientos m
		WHERE m.origen = 'venta'
		  AND NOT EXISTS (SELECT 1 FROM ventas v WHERE v.movimiento_id = m.id)`
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, classify("count orphan sale movements", err)
	}
	return n, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		var (
			m            entity.Movement
			kind, source string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Quantity, &kind, &source, &m.OperationID, &m.RecordedAt); err != nil {
			return nil, classify("scan movement", err)
		}
		m.Kind = entity.MovementKind(kind)
		m.Source = entity.MovementSource(source)
		list = append(list, &m)
	}
	return list, classify("scan movements", rows.Err())
}
