package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

func seedProduct(t *testing.T, s *Store) int64 {
	t.Helper()
	p := &entity.Product{Name: "P", Price: decimal.Zero}
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p.ID
}

// addStock escribe un movimiento de entrada y su proyección en una transacción.
func addStock(s *Store, productID, qty int64) error {
	ctx := context.Background()
	return s.Run(ctx, func(movRepo repository.InventoryMovementRepository, stockRepo repository.StockRepository, _ repository.ProductRepository) error {
		st, err := stockRepo.LockForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		m := &entity.Movement{ProductID: productID, Quantity: qty, Kind: entity.MovementKindInbound, Source: entity.MovementSourceManual}
		if err := movRepo.Append(ctx, m); err != nil {
			return err
		}
		st.Quantity += qty
		return stockRepo.Save(ctx, st)
	})
}

func TestStore_RollbackDescartaCambios(t *testing.T) {
	s := NewStore()
	id := seedProduct(t, s)
	ctx := context.Background()

	err := s.Run(ctx, func(movRepo repository.InventoryMovementRepository, stockRepo repository.StockRepository, _ repository.ProductRepository) error {
		st, err := stockRepo.LockForUpdate(ctx, id)
		require.NoError(t, err)
		require.NoError(t, movRepo.Append(ctx, &entity.Movement{ProductID: id, Quantity: 3, Kind: entity.MovementKindInbound}))
		st.Quantity = 3
		require.NoError(t, stockRepo.Save(ctx, st))

		inTx, err := movRepo.ListByProduct(ctx, id, 10)
		require.NoError(t, err)
		assert.Len(t, inTx, 1, "la transacción ve sus propios cambios")
		return errors.New("rollback")
	})
	require.Error(t, err)

	st, err := s.Stock().Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, st)
	movs, err := s.Movements().ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestStore_LecturaInstantaneaAislada(t *testing.T) {
	s := NewStore()
	id := seedProduct(t, s)
	require.NoError(t, addStock(s, id, 2))
	ctx := context.Background()

	err := s.RunReadOnly(ctx, func(movRepo repository.InventoryMovementRepository, stockRepo repository.StockRepository, _ repository.SaleRepository) error {
		require.NoError(t, addStock(s, id, 5))

		st, err := stockRepo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(2), st.Quantity)
		totals, err := movRepo.Totals(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(2), totals.Derived())

		_, err = stockRepo.LockForUpdate(ctx, id)
		assert.ErrorIs(t, err, domain.ErrStorageFailure, "solo lectura no admite escrituras")
		return nil
	})
	require.NoError(t, err)

	st, err := s.Stock().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), st.Quantity)
}

func TestStore_BloqueoPorProductoIndependiente(t *testing.T) {
	s := NewStore()
	a := seedProduct(t, s)
	b := seedProduct(t, s)

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Run(context.Background(), func(_ repository.InventoryMovementRepository, stockRepo repository.StockRepository, _ repository.ProductRepository) error {
			_, _ = stockRepo.LockForUpdate(context.Background(), a)
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	require.NoError(t, addStock(s, b, 1), "otro producto no espera")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := s.Run(ctx, func(_ repository.InventoryMovementRepository, stockRepo repository.StockRepository, _ repository.ProductRepository) error {
		_, err := stockRepo.LockForUpdate(ctx, a)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_EscrituraFueraDeTransaccion(t *testing.T) {
	s := NewStore()
	id := seedProduct(t, s)
	ctx := context.Background()

	err := s.Movements().Append(ctx, &entity.Movement{ProductID: id, Quantity: 1, Kind: entity.MovementKindInbound})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	err = s.Stock().Save(ctx, &entity.StockProjection{ProductID: id, Quantity: 9})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}

func TestStore_VentaUnicaPorMovimiento(t *testing.T) {
	s := NewStore()
	id := seedProduct(t, s)
	ctx := context.Background()

	err := s.RunSale(ctx, func(_ repository.InventoryMovementRepository, _ repository.StockRepository, _ repository.ProductRepository, saleRepo repository.SaleRepository) error {
		require.NoError(t, saleRepo.Create(ctx, &entity.Sale{ProductID: id, Quantity: 1, MovementID: 77}))
		return saleRepo.Create(ctx, &entity.Sale{ProductID: id, Quantity: 1, MovementID: 77})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := s.Sales().ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_EliminarProductoLiberaProyeccion(t *testing.T) {
	s := NewStore()
	id := seedProduct(t, s)
	ctx := context.Background()

	_, err := s.Stock().Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.Products().Delete(ctx, id))

	err = s.Run(ctx, func(_ repository.InventoryMovementRepository, stockRepo repository.StockRepository, _ repository.ProductRepository) error {
		_, err := stockRepo.LockForUpdate(ctx, id)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrProductUnknown)
}
