package entity

// Reconciliation compara la proyección almacenada con la suma con signo del ledger.
type Reconciliation struct {
	ProductID      int64
	Projected      int64
	Derived        int64
	Drift          int64 // Projected - Derived; distinto de cero indica violación de consistencia
	MovementCount  int64
	LastMovementID int64
	HasProjection  bool
}

// Consistent indica si proyección y ledger coinciden.
func (r Reconciliation) Consistent() bool { return r.Drift == 0 }

// LedgerTotals agregados del ledger de un producto.
type LedgerTotals struct {
	Inbound        int64
	Outbound       int64
	Count          int64
	LastMovementID int64
}

// Derived suma con signo de los movimientos.
func (t LedgerTotals) Derived() int64 { return t.Inbound - t.Outbound }
