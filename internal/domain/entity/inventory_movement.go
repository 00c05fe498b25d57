package entity

import "time"

// MovementKind tipo de movimiento de inventario. Los valores coinciden con los
// persistidos en inventario_movimientos.tipo.
type MovementKind string

const (
	MovementKindInbound  MovementKind = "entrada"
	MovementKindOutbound MovementKind = "salida"
)

// Valid indica si el tipo es uno de los admitidos por el ledger.
func (k MovementKind) Valid() bool {
	return k == MovementKindInbound || k == MovementKindOutbound
}

// Sign devuelve +1 para entradas y -1 para salidas.
func (k MovementKind) Sign() int64 {
	if k == MovementKindOutbound {
		return -1
	}
	return 1
}

// MovementSource origen del movimiento (auditoría).
type MovementSource string

const (
	MovementSourceManual MovementSource = "manual" // ajuste manual de stock
	MovementSourceSale   MovementSource = "venta"  // salida ligada a una venta
	MovementSourceCount  MovementSource = "conteo" // conteo físico (fijar nivel de stock)
)

// Movement es un hecho inmutable del ledger. Solo lo crea el motor de inventario;
// nunca se actualiza ni se elimina. El orden canónico es (RecordedAt, ID).
type Movement struct {
	ID          int64
	ProductID   int64
	Quantity    int64 // siempre positivo; el signo lo da Kind
	Kind        MovementKind
	Source      MovementSource
	OperationID string // agrupa los registros escritos en la misma unidad atómica
	RecordedAt  time.Time
}

// SignedQuantity cantidad con signo según el tipo.
func (m Movement) SignedQuantity() int64 {
	return m.Kind.Sign() * m.Quantity
}
