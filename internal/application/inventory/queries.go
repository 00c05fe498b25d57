package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Projection vista de la proyección de stock de un producto.
// Exists es false si el producto aún no tiene movimientos (Quantity = 0).
type Projection struct {
	ProductID int64
	Quantity  int64
	Exists    bool
	UpdatedAt time.Time
}

// GetProjection devuelve el stock confirmado de un producto.
func (uc *RegisterMovementUseCase) GetProjection(ctx context.Context, productID int64) (*Projection, error) {
	ok, err := uc.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrProductUnknown
	}
	stock, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return &Projection{ProductID: productID}, nil
	}
	return &Projection{
		ProductID: stock.ProductID,
		Quantity:  stock.Quantity,
		Exists:    true,
		UpdatedAt: stock.UpdatedAt,
	}, nil
}

// ListRecentMovements devuelve los últimos movimientos confirmados, más reciente primero.
func (uc *RegisterMovementUseCase) ListRecentMovements(ctx context.Context, limit int) ([]*entity.Movement, error) {
	return uc.movRepo.ListRecent(ctx, ClampLimit(limit))
}

// ListProductMovements devuelve el ledger de un producto, más reciente primero.
func (uc *RegisterMovementUseCase) ListProductMovements(ctx context.Context, productID int64, limit int) ([]*entity.Movement, error) {
	ok, err := uc.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrProductUnknown
	}
	return uc.movRepo.ListByProduct(ctx, productID, ClampLimit(limit))
}

// ClampLimit normaliza el tamaño de página: no positivo usa el valor por defecto.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
