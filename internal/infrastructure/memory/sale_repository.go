package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

type saleRepo struct {
	s  *Store
	tx *tx
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if err := writable(r.tx); err != nil {
		return domain.NewStorageError("create sale", err)
	}
	for _, s := range r.visible() {
		if s.MovementID == sale.MovementID {
			return domain.ErrDuplicate
		}
	}
	sale.ID = r.s.nextSaleID.Add(1)
	sale.CreatedAt = r.s.now()
	r.tx.sales = append(r.tx.sales, *sale)
	return nil
}

func (r *saleRepo) visible() []entity.Sale {
	var out []entity.Sale
	r.s.view(r.tx, func(st *state) {
		out = append(out, st.sales...)
	})
	if r.tx != nil {
		out = append(out, r.tx.sales...)
	}
	return out
}

func (r *saleRepo) ListRecent(_ context.Context, limit int) ([]*entity.Sale, error) {
	all := r.visible()
	list := make([]*entity.Sale, 0, len(all))
	for i := range all {
		s := all[i]
		list = append(list, &s)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return page(list, limit, 0), nil
}

func (r *saleRepo) CountMismatched(_ context.Context) (int64, error) {
	movs := make(map[int64]entity.Movement)
	for _, m := range (&movementRepo{s: r.s, tx: r.tx}).visible() {
		movs[m.ID] = m
	}
	var n int64
	for _, s := range r.visible() {
		m, ok := movs[s.MovementID]
		if !ok || m.ProductID != s.ProductID || m.Quantity != s.Quantity || m.Kind != entity.MovementKindOutbound {
			n++
		}
	}
	return n, nil
}
