package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para el catálogo (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// Exists es la consulta productExists usada por el motor de inventario.
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Update devuelve domain.ErrNotFound si el producto no existe.
	Update(ctx context.Context, product *entity.Product) error
	// Delete devuelve domain.ErrConflict si el producto ya tiene movimientos o ventas.
	Delete(ctx context.Context, id int64) error
}
