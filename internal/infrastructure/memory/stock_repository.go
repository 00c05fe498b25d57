package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

type stockRepo struct {
	s  *Store
	tx *tx
}

func (r *stockRepo) Get(_ context.Context, productID int64) (*entity.StockProjection, error) {
	if r.tx != nil {
		if st, ok := r.tx.stock[productID]; ok {
			return &st, nil
		}
	}
	var (
		st entity.StockProjection
		ok bool
	)
	r.s.view(r.tx, func(state *state) {
		st, ok = state.stock[productID]
	})
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// LockForUpdate toma el bloqueo del producto, vuelve a comprobar que siga en el catálogo
// y deja la fila (creada en cero si falta) como cambio pendiente.
func (r *stockRepo) LockForUpdate(ctx context.Context, productID int64) (*entity.StockProjection, error) {
	if err := writable(r.tx); err != nil {
		return nil, domain.NewStorageError("lock stock", err)
	}
	if err := r.s.acquire(ctx, r.tx, productID); err != nil {
		return nil, err
	}
	if st, ok := r.tx.stock[productID]; ok {
		return &st, nil
	}

	r.s.mu.RLock()
	_, known := r.s.committed.products[productID]
	st, ok := r.s.committed.stock[productID]
	r.s.mu.RUnlock()
	if !known {
		return nil, domain.ErrProductUnknown
	}
	if !ok {
		st = entity.StockProjection{ProductID: productID, UpdatedAt: r.s.now()}
	}
	r.tx.stock[productID] = st
	return &st, nil
}

func (r *stockRepo) Save(_ context.Context, stock *entity.StockProjection) error {
	if err := writable(r.tx); err != nil {
		return domain.NewStorageError("save stock", err)
	}
	if _, ok := r.tx.held[stock.ProductID]; !ok {
		return domain.NewStorageError("save stock", errOutsideTransaction)
	}
	r.tx.stock[stock.ProductID] = *stock
	return nil
}

func (r *stockRepo) ListProductIDs(_ context.Context) ([]int64, error) {
	seen := make(map[int64]struct{})
	r.s.view(r.tx, func(st *state) {
		for id := range st.stock {
			seen[id] = struct{}{}
		}
	})
	if r.tx != nil {
		for id := range r.tx.stock {
			seen[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
