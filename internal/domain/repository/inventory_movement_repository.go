package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// InventoryMovementRepository define el puerto del ledger de movimientos.
// Es append-only: no expone Update ni Delete.
type InventoryMovementRepository interface {
	// Append persiste el movimiento y asigna ID y RecordedAt.
	Append(ctx context.Context, movement *entity.Movement) error
	// ListRecent devuelve los últimos movimientos (más reciente primero).
	ListRecent(ctx context.Context, limit int) ([]*entity.Movement, error)
	// ListByProduct devuelve los movimientos de un producto (más reciente primero).
	ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.Movement, error)
	// Totals agrega entradas, salidas, conteo y último ID del producto.
	Totals(ctx context.Context, productID int64) (entity.LedgerTotals, error)
	// CountOrphanSaleMovements cuenta salidas de origen venta sin registro de venta asociado.
	CountOrphanSaleMovements(ctx context.Context) (int64, error)
}
