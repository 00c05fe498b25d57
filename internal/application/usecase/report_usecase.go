package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// topProducts tamaño del reporte de ventas por producto.
const topProducts = 50

// SalesReportPDFGenerator renderiza el reporte de ventas por producto.
type SalesReportPDFGenerator interface {
	GenerateSalesReportPDF(ctx context.Context, rows []entity.SalesReportRow, generatedAt time.Time) ([]byte, error)
}

// ReportUseCase reportes de ventas (solo lectura).
type ReportUseCase struct {
	repo      repository.ReportRepository
	generator SalesReportPDFGenerator
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(repo repository.ReportRepository, generator SalesReportPDFGenerator) *ReportUseCase {
	return &ReportUseCase{repo: repo, generator: generator, now: time.Now}
}

// SalesByProduct devuelve los productos con mayor total vendido.
func (uc *ReportUseCase) SalesByProduct(ctx context.Context) ([]dto.SalesReportRowResponse, error) {
	rows, err := uc.repo.SalesByProduct(ctx, topProducts)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SalesReportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SalesReportRowResponse{
			ProductoID:    r.ProductID,
			Nombre:        r.ProductName,
			CantidadTotal: r.TotalQuantity,
			TotalVendido:  r.TotalSold,
		})
	}
	return out, nil
}

// SalesByProductPDF genera el mismo reporte en PDF. Devuelve bytes y nombre de archivo sugerido.
func (uc *ReportUseCase) SalesByProductPDF(ctx context.Context) ([]byte, string, error) {
	rows, err := uc.repo.SalesByProduct(ctx, topProducts)
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	pdf, err := uc.generator.GenerateSalesReportPDF(ctx, rows, now)
	if err != nil {
		return nil, "", fmt.Errorf("reporte pdf: %w", err)
	}
	return pdf, fmt.Sprintf("reporte-ventas-%s.pdf", now.Format("20060102")), nil
}
