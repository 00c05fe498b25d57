package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /inventario.
// Cantidad se recibe como número arbitrario y se valida como entero positivo.
type RegisterMovementRequest struct {
	ProductoID int64           `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Tipo       string          `json:"tipo"` // entrada | salida
}

// SetStockRequest body para PUT /inventario (conteo físico).
type SetStockRequest struct {
	ProductoID int64           `json:"producto_id"`
	Stock      decimal.Decimal `json:"stock"`
}

// MovementResponse un movimiento del ledger.
type MovementResponse struct {
	ID          int64     `json:"id"`
	ProductoID  int64     `json:"producto_id"`
	Cantidad    int64     `json:"cantidad"`
	Tipo        string    `json:"tipo"`
	Origen      string    `json:"origen"`
	OperacionID string    `json:"operacion_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterMovementResponse respuesta 201 de POST /inventario.
type RegisterMovementResponse struct {
	MovementResponse
	Stock int64 `json:"stock"`
}

// SetStockResponse respuesta de PUT /inventario.
type SetStockResponse struct {
	ProductoID int64             `json:"producto_id"`
	Stock      int64             `json:"stock"`
	Anterior   int64             `json:"anterior"`
	Aplicado   bool              `json:"aplicado"`
	Movimiento *MovementResponse `json:"movimiento,omitempty"`
}

// ProjectionResponse stock actual de un producto.
type ProjectionResponse struct {
	ProductoID int64      `json:"producto_id"`
	Stock      int64      `json:"stock"`
	Existe     bool       `json:"existe"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ReconciliationResponse resultado de conciliar un producto.
type ReconciliationResponse struct {
	ProductoID         int64 `json:"producto_id"`
	Proyectado         int64 `json:"proyectado"`
	Derivado           int64 `json:"derivado"`
	Drift              int64 `json:"drift"`
	Movimientos        int64 `json:"movimientos"`
	UltimoMovimientoID int64 `json:"ultimo_movimiento_id"`
	Consistente        bool  `json:"consistente"`
}

// ReconciliationReportResponse resultado de conciliar todo el inventario.
type ReconciliationReportResponse struct {
	Revisados            int                      `json:"revisados"`
	ConDrift             []ReconciliationResponse `json:"con_drift"`
	MovimientosHuerfanos int64                    `json:"movimientos_venta_huerfanos"`
	VentasInconsistentes int64                    `json:"ventas_inconsistentes"`
	Consistente          bool                     `json:"consistente"`
}

// ParseQuantity convierte un decimal recibido por JSON en una cantidad entera.
// ok es false si no es entero o no cabe en int64.
func ParseQuantity(d decimal.Decimal) (n int64, ok bool) {
	if !d.IsInteger() {
		return 0, false
	}
	if !d.BigInt().IsInt64() {
		return 0, false
	}
	return d.IntPart(), true
}
