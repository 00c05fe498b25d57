package postgres

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const fkSaleProduct = "ventas_producto_id_fkey"

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la venta. movimiento_id es UNIQUE: un movimiento pertenece a una sola venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO ventas (producto_id, cantidad, precio_unitario, total, movimiento_id, operacion_id)
		VALUES ($1, $2, $3, $4, $5, $6::text::uuid)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		s.ProductID, s.Quantity, s.UnitPrice, s.Total, s.MovementID, s.OperationID,
	).Scan(&s.ID, &s.CreatedAt)
	return saleInsertError(err)
}

// saleInsertError: solo la llave hacia productos es un error del caller; un movimiento
// inexistente indica una venta mal compuesta dentro de la transacción.
func saleInsertError(err error) error {
	if isForeignKeyViolation(err) {
		if violatedConstraint(err) == fkSaleProduct {
			return domain.ErrProductUnknown
		}
		return domain.NewStorageError("insert sale", err)
	}
	return classify("insert sale", err)
}

// ListRecent devuelve las últimas ventas.
func (r *SaleRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Sale, error) {
	query := `
		SELECT id, producto_id, cantidad, precio_unitario, total, movimiento_id, operacion_id::text, created_at
		FROM ventas
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, classify("list sales", err)
	}
	defer rows.Close()
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Quantity, &s.UnitPrice, &s.Total,
			&s.MovementID, &s.OperationID, &s.CreatedAt); err != nil {
			return nil, classify("scan sale", err)
		}
		list = append(list, &s)
	}
	return list, classify("list sales", rows.Err())
}

// CountMismatched cuenta ventas cuyo movimiento no es una salida del mismo producto y cantidad.
func (r *SaleRepo) CountMismatched(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM ventas v
		LEFT JOIN inventario_movimientos m ON m.id = v.movimiento_id
		WHERE m.id IS NULL
		   OR m.producto_id <> v.producto_id
		   OR m.cantidad <> v.cantidad
		   OR m.tipo <> 'salida'`
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, classify("count mismatched sales", err)
	}
	return n, nil
}
