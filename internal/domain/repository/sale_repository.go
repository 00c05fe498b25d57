package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	// Create persiste la venta y asigna ID y CreatedAt.
	Create(ctx context.Context, sale *entity.Sale) error
	ListRecent(ctx context.Context, limit int) ([]*entity.Sale, error)
	// CountMismatched cuenta ventas cuyo movimiento no es una salida del mismo producto y cantidad.
	CountMismatched(ctx context.Context) (int64, error)
}
