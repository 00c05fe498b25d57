package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type reportRepo struct {
	s *Store
}

func (r *reportRepo) SalesByProduct(_ context.Context, limit int) ([]entity.SalesReportRow, error) {
	r.s.mu.RLock()
	byProduct := make(map[int64]*entity.SalesReportRow)
	for _, s := range r.s.committed.sales {
		row, ok := byProduct[s.ProductID]
		if !ok {
			row = &entity.SalesReportRow{
				ProductID:   s.ProductID,
				ProductName: r.s.committed.products[s.ProductID].Name,
				TotalSold:   decimal.Zero,
			}
			byProduct[s.ProductID] = row
		}
		row.TotalQuantity += s.Quantity
		row.TotalSold = row.TotalSold.Add(s.Total)
	}
	r.s.mu.RUnlock()

	rows := make([]entity.SalesReportRow, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].TotalSold.Cmp(rows[j].TotalSold); c != 0 {
			return c > 0
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return page(rows, limit, 0), nil
}
