package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// ReportRepository consultas de solo lectura para reportes de ventas.
type ReportRepository interface {
	// SalesByProduct agrega ventas por producto ordenado por total vendido descendente.
	SalesByProduct(ctx context.Context, limit int) ([]entity.SalesReportRow, error)
}
