package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /ventas. El precio es obligatorio; el formulario web lo
// envía como "precio".
type CreateSaleRequest struct {
	ProductoID     int64            `json:"producto_id"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	Precio         *decimal.Decimal `json:"precio"`
}

// UnitPrice devuelve el precio enviado. ok es false si falta o si precio_unitario y precio
// llegan con valores distintos.
func (r CreateSaleRequest) UnitPrice() (price decimal.Decimal, ok bool) {
	switch {
	case r.PrecioUnitario != nil && r.Precio != nil:
		return *r.PrecioUnitario, r.PrecioUnitario.Equal(*r.Precio)
	case r.PrecioUnitario != nil:
		return *r.PrecioUnitario, true
	case r.Precio != nil:
		return *r.Precio, true
	}
	return decimal.Zero, false
}

// SaleResponse una venta registrada.
type SaleResponse struct {
	ID             int64           `json:"id"`
	ProductoID     int64           `json:"producto_id"`
	Cantidad       int64           `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	MovimientoID   int64           `json:"movimiento_id"`
	OperacionID    string          `json:"operacion_id"`
	CreatedAt      time.Time       `json:"created_at"`
	// Stock solo se informa al crear la venta.
	Stock *int64 `json:"stock,omitempty"`
}

// SalesReportRowResponse fila del reporte de ventas por producto.
type SalesReportRowResponse struct {
	ProductoID    int64           `json:"producto_id"`
	Nombre        string          `json:"nombre"`
	CantidadTotal int64           `json:"cantidad_total"`
	TotalVendido  decimal.Decimal `json:"total_vendido"`
}
