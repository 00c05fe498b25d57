package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// StockRepository define el puerto de la proyección de stock por producto.
// LockForUpdate y Save solo tienen sentido dentro de una transacción.
type StockRepository interface {
	// Get lee la proyección confirmada; (nil, nil) si el producto nunca tuvo movimientos.
	Get(ctx context.Context, productID int64) (*entity.StockProjection, error)
	// LockForUpdate crea la fila en cero si falta y la bloquea hasta el fin de la transacción.
	LockForUpdate(ctx context.Context, productID int64) (*entity.StockProjection, error)
	// Save reemplaza la cantidad de una fila previamente bloqueada.
	Save(ctx context.Context, stock *entity.StockProjection) error
	// ListProductIDs productos con proyección, en orden ascendente.
	ListProductIDs(ctx context.Context) ([]int64, error)
}
