package entity

import "time"

// StockProjection es el stock actual materializado de un producto: el fold de sus
// movimientos. Se crea en el primer movimiento y se actualiza en sitio.
type StockProjection struct {
	ProductID int64
	Quantity  int64
	UpdatedAt time.Time
}

// Apply devuelve la cantidad candidata tras aplicar un movimiento.
func (s StockProjection) Apply(kind MovementKind, quantity int64) int64 {
	return s.Quantity + kind.Sign()*quantity
}
