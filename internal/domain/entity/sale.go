package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale registro de ingreso. Cada venta corresponde exactamente a un movimiento de
// salida (MovementID) con el mismo producto y cantidad, creado en la misma transacción.
type Sale struct {
	ID          int64
	ProductID   int64
	Quantity    int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal // Quantity * UnitPrice
	MovementID  int64
	OperationID string
	CreatedAt   time.Time
}
