package inventory

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda ningún efecto.
type TxRunner interface {
	// Run abre una transacción de lectura/escritura. La exclusividad por producto la da
	// StockRepository.LockForUpdate.
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error

	// RunReadOnly abre una transacción de solo lectura sobre una instantánea consistente
	// (REPEATABLE READ). Usada por la conciliación.
	RunReadOnly(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
	) error) error
}
