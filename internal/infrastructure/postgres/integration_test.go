package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/application/sales"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-tienda/pkg/config"
)

type pgEnv struct {
	tx       *postgres.TxRunner
	inv      *inventory.RegisterMovementUseCase
	sales    *sales.RecordSaleUseCase
	rc       *inventory.ReconcileUseCase
	products *postgres.ProductRepo
}

// newPGEnv requiere TEST_DATABASE_URL; sin ella el test se omite.
func newPGEnv(t *testing.T) *pgEnv {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	tx := postgres.NewTxRunner(pool)
	products := postgres.NewProductRepository(pool)
	opts := inventory.Options{TxTimeout: 10 * time.Second}
	inv := inventory.NewRegisterMovementUseCase(tx, products, postgres.NewStockRepository(pool), postgres.NewInventoryMovementRepository(pool), opts)
	return &pgEnv{
		tx:       tx,
		inv:      inv,
		sales:    sales.NewRecordSaleUseCase(tx, inv, postgres.NewSaleRepository(pool), opts),
		rc:       inventory.NewReconcileUseCase(tx, products, nil, nil),
		products: products,
	}
}

func (e *pgEnv) product(t *testing.T) int64 {
	t.Helper()
	p := &entity.Product{Name: "integración " + t.Name(), Price: decimal.RequireFromString("2.50")}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p.ID
}

func TestPostgres_FlujoCompleto(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	id := env.product(t)

	res, err := env.inv.ApplyMovement(ctx, inventory.MovementInput{ProductID: id, Quantity: 10, Kind: entity.MovementKindInbound})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.NewQuantity)

	_, err = env.inv.ApplyMovement(ctx, inventory.MovementInput{ProductID: id, Quantity: 3, Kind: entity.MovementKindOutbound})
	require.NoError(t, err)

	_, err = env.inv.ApplyMovement(ctx, inventory.MovementInput{ProductID: id, Quantity: 8, Kind: entity.MovementKindOutbound})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	sale, err := env.sales.RecordSale(ctx, sales.SaleInput{ProductID: id, Quantity: 7, UnitPrice: decimal.RequireFromString("2.50")})
	require.NoError(t, err)
	assert.True(t, sale.Sale.Total.Equal(decimal.RequireFromString("17.50")))
	assert.Zero(t, sale.NewQuantity)

	rec, err := env.rc.Reconcile(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
	assert.Equal(t, int64(3), rec.MovementCount)

	_, err = env.inv.ApplyMovement(ctx, inventory.MovementInput{ProductID: -1, Quantity: 1, Kind: entity.MovementKindInbound})
	assert.ErrorIs(t, err, domain.ErrProductUnknown)
	assert.ErrorIs(t, env.products.Delete(ctx, id), domain.ErrConflict)
}

func TestPostgres_SalidasConcurrentes(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	id := env.product(t)
	_, err := env.inv.ApplyMovement(ctx, inventory.MovementInput{ProductID: id, Quantity: 5, Kind: entity.MovementKindInbound})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, deny int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.inv.ApplyMovement(ctx, inventory.MovementInput{ProductID: id, Quantity: 1, Kind: entity.MovementKindOutbound})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				deny++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 25, deny)
	p, err := env.inv.GetProjection(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, p.Quantity)
}

func TestPostgres_CommitFueraDelPlazoDeLaOperacion(t *testing.T) {
	env := newPGEnv(t)
	id := env.product(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := env.tx.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		st, err := stockRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		st.Quantity = st.Apply(entity.MovementKindInbound, 3)
		if err := stockRepo.Save(ctx, st); err != nil {
			return err
		}
		if err := movRepo.Append(ctx, &entity.Movement{
			ProductID:   id,
			Quantity:    3,
			Kind:        entity.MovementKindInbound,
			Source:      entity.MovementSourceManual,
			OperationID: uuid.New().String(),
		}); err != nil {
			return err
		}
		// el plazo vence con las escrituras ya hechas y antes del COMMIT
		<-ctx.Done()
		return nil
	})
	require.NoError(t, err)

	p, err := env.inv.GetProjection(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Quantity)
	rc, err := env.rc.Reconcile(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, rc.Consistent())
}
