package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El stock no vive aquí: se maneja
// en StockProjection a través del motor de inventario.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal // precio de venta de referencia
	SKU       *string         // único cuando está presente
	CreatedAt time.Time
}
