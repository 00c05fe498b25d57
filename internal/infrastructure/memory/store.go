// Package memory implementa los puertos de persistencia en proceso (tests y DB_DRIVER=memory).
//
// Las transacciones de escritura acumulan sus cambios y los publican juntos al confirmar.
// La exclusividad por producto se obtiene con un bloqueo por product_id que se mantiene
// hasta el fin de la transacción, igual que SELECT ... FOR UPDATE en PostgreSQL.
// Las transacciones de solo lectura trabajan sobre una copia del estado confirmado.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/application/sales"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var (
	_ inventory.TxRunner  = (*Store)(nil)
	_ sales.SalesTxRunner = (*Store)(nil)
)

var (
	errOutsideTransaction  = errors.New("escritura fuera de transacción")
	errReadOnlyTransaction = errors.New("escritura en transacción de solo lectura")
)

// state datos confirmados.
type state struct {
	products  map[int64]entity.Product
	movements []entity.Movement
	stock     map[int64]entity.StockProjection
	sales     []entity.Sale
}

func (st *state) clone() *state {
	c := &state{
		products:  make(map[int64]entity.Product, len(st.products)),
		movements: append([]entity.Movement(nil), st.movements...),
		stock:     make(map[int64]entity.StockProjection, len(st.stock)),
		sales:     append([]entity.Sale(nil), st.sales...),
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.stock {
		c.stock[k] = v
	}
	return c
}

// Store almacén en memoria.
type Store struct {
	mu        sync.RWMutex
	committed *state

	locksMu sync.Mutex
	locks   map[int64]chan struct{}

	nextProductID  atomic.Int64
	nextMovementID atomic.Int64
	nextSaleID     atomic.Int64

	now        func() time.Time
	commitHook func() error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		committed: &state{
			products: make(map[int64]entity.Product),
			stock:    make(map[int64]entity.StockProjection),
		},
		locks: make(map[int64]chan struct{}),
		now:   time.Now,
	}
}

// SetCommitHook instala una función que se ejecuta antes de publicar cada transacción de escritura;
// si devuelve error la transacción se descarta como un fallo de commit.
func (s *Store) SetCommitHook(fn func() error) {
	s.mu.Lock()
	s.commitHook = fn
	s.mu.Unlock()
}

// Ping siempre responde; el almacén vive en el proceso.
func (s *Store) Ping(context.Context) error { return nil }

// Products repositorio de catálogo.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Movements repositorio del ledger fuera de transacción (solo lectura).
func (s *Store) Movements() repository.InventoryMovementRepository { return &movementRepo{s: s} }

// Stock repositorio de proyección fuera de transacción (solo lectura).
func (s *Store) Stock() repository.StockRepository { return &stockRepo{s: s} }

// Sales repositorio de ventas fuera de transacción (solo lectura).
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{s: s} }

// Reports repositorio de reportes.
func (s *Store) Reports() repository.ReportRepository { return &reportRepo{s: s} }

// tx cambios pendientes de una transacción.
type tx struct {
	readOnly  bool
	snap      *state
	held      map[int64]struct{}
	movements []entity.Movement
	stock     map[int64]entity.StockProjection
	sales     []entity.Sale
}

// Run ejecuta fn en una transacción de escritura.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.runWrite(ctx, func(t *tx) error {
		return fn(&movementRepo{s: s, tx: t}, &stockRepo{s: s, tx: t}, &productRepo{s: s})
	})
}

// RunSale ejecuta fn en una transacción de escritura con el repositorio de ventas.
func (s *Store) RunSale(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.runWrite(ctx, func(t *tx) error {
		return fn(&movementRepo{s: s, tx: t}, &stockRepo{s: s, tx: t}, &productRepo{s: s}, &saleRepo{s: s, tx: t})
	})
}

// RunReadOnly ejecuta fn sobre una instantánea del estado confirmado.
func (s *Store) RunReadOnly(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("begin", err)
	}
	s.mu.RLock()
	t := &tx{readOnly: true, snap: s.committed.clone()}
	s.mu.RUnlock()
	return fn(&movementRepo{s: s, tx: t}, &stockRepo{s: s, tx: t}, &saleRepo{s: s, tx: t})
}

func (s *Store) runWrite(ctx context.Context, fn func(t *tx) error) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("begin", err)
	}
	t := &tx{
		held:  make(map[int64]struct{}),
		stock: make(map[int64]entity.StockProjection),
	}
	defer s.release(t)

	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("commit", err)
	}
	return s.commit(t)
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitHook != nil {
		if err := s.commitHook(); err != nil {
			return domain.NewStorageError("commit", err)
		}
	}
	s.committed.movements = append(s.committed.movements, t.movements...)
	for id, st := range t.stock {
		s.committed.stock[id] = st
	}
	s.committed.sales = append(s.committed.sales, t.sales...)
	return nil
}

func (s *Store) release(t *tx) {
	for id := range t.held {
		s.lockFor(id) <- struct{}{}
	}
}

// lockFor devuelve el semáforo del producto: un buffer lleno significa libre.
func (s *Store) lockFor(productID int64) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[productID]
	if !ok {
		ch = make(chan struct{}, 1)
		ch <- struct{}{}
		s.locks[productID] = ch
	}
	return ch
}

// acquire bloquea el producto para t; respeta la cancelación del contexto.
func (s *Store) acquire(ctx context.Context, t *tx, productID int64) error {
	if _, ok := t.held[productID]; ok {
		return nil
	}
	select {
	case <-s.lockFor(productID):
		t.held[productID] = struct{}{}
		return nil
	case <-ctx.Done():
		return domain.NewStorageError("lock stock", ctx.Err())
	}
}

// view ejecuta f sobre el estado visible para t: la instantánea si es de solo lectura,
// el estado confirmado en otro caso.
func (s *Store) view(t *tx, f func(st *state)) {
	if t != nil && t.snap != nil {
		f(t.snap)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f(s.committed)
}

func writable(t *tx) error {
	if t == nil {
		return errOutsideTransaction
	}
	if t.readOnly {
		return errReadOnlyTransaction
	}
	return nil
}
