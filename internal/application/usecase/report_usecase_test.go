package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/application/sales"
	"github.com/jhoicas/inventario-tienda/internal/application/usecase"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/memory"
)

type fakePDF struct {
	rows []entity.SalesReportRow
	err  error
}

func (f *fakePDF) GenerateSalesReportPDF(_ context.Context, rows []entity.SalesReportRow, _ time.Time) ([]byte, error) {
	f.rows = rows
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

func seedSales(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	inv := inventory.NewRegisterMovementUseCase(store, store.Products(), store.Stock(), store.Movements(), inventory.Options{})
	rs := sales.NewRecordSaleUseCase(store, inv, store.Sales(), inventory.Options{})

	sell := func(name string, qty int64, price string) {
		p := &entity.Product{Name: name, Price: decimal.RequireFromString(price)}
		require.NoError(t, store.Products().Create(ctx, p))
		_, err := inv.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Quantity: qty, Kind: entity.MovementKindInbound})
		require.NoError(t, err)
		_, err = rs.RecordSale(ctx, sales.SaleInput{ProductID: p.ID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)})
		require.NoError(t, err)
	}
	sell("barato", 10, "1.00")
	sell("caro", 2, "50.00")
}

func TestReportUseCase_OrdenaPorTotalVendido(t *testing.T) {
	store := memory.NewStore()
	seedSales(t, store)
	uc := usecase.NewReportUseCase(store.Reports(), &fakePDF{})

	rows, err := uc.SalesByProduct(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "caro", rows[0].Nombre)
	assert.True(t, rows[0].TotalVendido.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, int64(10), rows[1].CantidadTotal)
}

func TestReportUseCase_PDF(t *testing.T) {
	store := memory.NewStore()
	seedSales(t, store)
	gen := &fakePDF{}
	uc := usecase.NewReportUseCase(store.Reports(), gen)

	out, name, err := uc.SalesByProductPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	assert.True(t, strings.HasPrefix(name, "reporte-ventas-"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Len(t, gen.rows, 2)

	gen.err = errors.New("fuente no disponible")
	_, _, err = uc.SalesByProductPDF(context.Background())
	assert.Error(t, err)
}
