package sales

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// SalesTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y ventas.
type SalesTxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// InventoryUseCase interfaz para integrar ventas con el motor de inventario.
// ApplyMovementInTx ejecuta la salida usando los repositorios del caller (misma transacción).
// Si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type InventoryUseCase interface {
	ApplyMovementInTx(
		ctx context.Context,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		in inventory.MovementInput,
	) (*inventory.MovementResult, error)
}
