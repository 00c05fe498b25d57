package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

type productRepo struct {
	s *Store
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if skuTaken(r.s.committed, p.SKU, 0) {
		return domain.ErrDuplicate
	}
	p.ID = r.s.nextProductID.Add(1)
	p.CreatedAt = r.s.now()
	r.s.committed.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.committed.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.committed.products[id]
	return ok, nil
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Product, 0, len(r.s.committed.products))
	for _, p := range r.s.committed.products {
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, limit, offset), nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.committed.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if skuTaken(r.s.committed, p.SKU, p.ID) {
		return domain.ErrDuplicate
	}
	p.CreatedAt = cur.CreatedAt
	r.s.committed.products[p.ID] = *p
	return nil
}

// Delete toma el bloqueo del producto para no competir con un movimiento en curso.
func (r *productRepo) Delete(ctx context.Context, id int64) error {
	t := &tx{held: make(map[int64]struct{})}
	defer r.s.release(t)
	if err := r.s.acquire(ctx, t, id); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.committed.products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, m := range r.s.committed.movements {
		if m.ProductID == id {
			return domain.ErrConflict
		}
	}
	for _, sl := range r.s.committed.sales {
		if sl.ProductID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.committed.products, id)
	delete(r.s.committed.stock, id)
	return nil
}

func skuTaken(st *state, sku *string, except int64) bool {
	if sku == nil {
		return false
	}
	for id, p := range st.products {
		if id != except && p.SKU != nil && *p.SKU == *sku {
			return true
		}
	}
	return false
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
