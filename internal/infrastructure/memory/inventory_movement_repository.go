package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

type movementRepo struct {
	s  *Store
	tx *tx
}

func (r *movementRepo) Append(_ context.Context, m *entity.Movement) error {
	if err := writable(r.tx); err != nil {
		return domain.NewStorageError("append movement", err)
	}
	m.ID = r.s.nextMovementID.Add(1)
	m.RecordedAt = r.s.now()
	r.tx.movements = append(r.tx.movements, *m)
	return nil
}

// visible movimientos confirmados más los pendientes de la transacción.
func (r *movementRepo) visible() []entity.Movement {
	var out []entity.Movement
	r.s.view(r.tx, func(st *state) {
		out = append(out, st.movements...)
	})
	if r.tx != nil {
		out = append(out, r.tx.movements...)
	}
	return out
}

func (r *movementRepo) ListRecent(_ context.Context, limit int) ([]*entity.Movement, error) {
	return newestFirst(r.visible(), func(entity.Movement) bool { return true }, limit), nil
}

func (r *movementRepo) ListByProduct(_ context.Context, productID int64, limit int) ([]*entity.Movement, error) {
	return newestFirst(r.visible(), func(m entity.Movement) bool { return m.ProductID == productID }, limit), nil
}

func (r *movementRepo) Totals(_ context.Context, productID int64) (entity.LedgerTotals, error) {
	var t entity.LedgerTotals
	for _, m := range r.visible() {
		if m.ProductID != productID {
			continue
		}
		t.Count++
		if m.Kind == entity.MovementKindOutbound {
			t.Outbound += m.Quantity
		} else {
			t.Inbound += m.Quantity
		}
		if m.ID > t.LastMovementID {
			t.LastMovementID = m.ID
		}
	}
	return t, nil
}

func (r *movementRepo) CountOrphanSaleMovements(_ context.Context) (int64, error) {
	linked := make(map[int64]struct{})
	for _, s := range (&saleRepo{s: r.s, tx: r.tx}).visible() {
		linked[s.MovementID] = struct{}{}
	}
	var n int64
	for _, m := range r.visible() {
		if m.Source != entity.MovementSourceSale {
			continue
		}
		if _, ok := linked[m.ID]; !ok {
			n++
		}
	}
	return n, nil
}

// newestFirst orden canónico del ledger invertido: (RecordedAt, ID) descendente.
func newestFirst(all []entity.Movement, keep func(entity.Movement) bool, limit int) []*entity.Movement {
	list := make([]*entity.Movement, 0)
	for i := range all {
		if keep(all[i]) {
			m := all[i]
			list = append(list, &m)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].RecordedAt.Equal(list[j].RecordedAt) {
			return list[i].RecordedAt.After(list[j].RecordedAt)
		}
		return list[i].ID > list[j].ID
	})
	return page(list, limit, 0)
}
