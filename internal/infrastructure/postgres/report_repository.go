package postgres

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reportes (solo lectura).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// SalesByProduct agrega cantidad y total vendido por producto.
func (r *ReportRepo) SalesByProduct(ctx context.Context, limit int) ([]entity.SalesReportRow, error) {
	query := `
		SELECT p.id, p.nombre, SUM(v.cantidad)::bigint AS cantidad_total, SUM(v.total) AS total_vendido
		FROM ventas v
		JOIN productos p ON p.id = v.producto_id
		GROUP BY p.id, p.nombre
		ORDER BY total_vendido DESC, p.id
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, classify("sales by product", err)
	}
	defer rows.Close()
	list := make([]entity.SalesReportRow, 0)
	for rows.Next() {
		var row entity.SalesReportRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.TotalQuantity, &row.TotalSold); err != nil {
			return nil, classify("scan sales row", err)
		}
		list = append(list, row)
	}
	return list, classify("sales by product", rows.Err())
}
