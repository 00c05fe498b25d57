package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-tienda/pkg/metrics"
)

func newEngine(t *testing.T, opts inventory.Options) (*memory.Store, *inventory.RegisterMovementUseCase) {
	t.Helper()
	store := memory.NewStore()
	uc := inventory.NewRegisterMovementUseCase(store, store.Products(), store.Stock(), store.Movements(), opts)
	return store, uc
}

func newProduct(t *testing.T, store *memory.Store, name string) int64 {
	t.Helper()
	p := &entity.Product{Name: name, Price: decimal.RequireFromString("1.00")}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p.ID
}

func apply(uc *inventory.RegisterMovementUseCase, productID, qty int64, kind entity.MovementKind) (*inventory.MovementResult, error) {
	return uc.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: productID, Quantity: qty, Kind: kind})
}

func stockOf(t *testing.T, uc *inventory.RegisterMovementUseCase, productID int64) int64 {
	t.Helper()
	p, err := uc.GetProjection(context.Background(), productID)
	require.NoError(t, err)
	return p.Quantity
}

func ledger(t *testing.T, uc *inventory.RegisterMovementUseCase, productID int64) []*entity.Movement {
	t.Helper()
	movs, err := uc.ListProductMovements(context.Background(), productID, 1000)
	require.NoError(t, err)
	return movs
}

func TestApplyMovement_EntradaCreaProyeccion(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")

	before, err := uc.GetProjection(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, before.Exists)
	assert.Zero(t, before.Quantity)

	res, err := apply(uc, id, 10, entity.MovementKindInbound)
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.NewQuantity)
	assert.Equal(t, entity.MovementSourceManual, res.Source)
	assert.NotEmpty(t, res.OperationID)
	assert.NotZero(t, res.MovementID)

	after, err := uc.GetProjection(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, after.Exists)
	assert.Equal(t, int64(10), after.Quantity)
}

func TestApplyMovement_SalidaDescuentaYRegistraMovimiento(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")
	_, err := apply(uc, id, 10, entity.MovementKindInbound)
	require.NoError(t, err)

	res, err := apply(uc, id, 3, entity.MovementKindOutbound)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.NewQuantity)
	assert.Equal(t, int64(7), stockOf(t, uc, id))

	movs := ledger(t, uc, id)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindOutbound, movs[0].Kind)
	assert.Equal(t, int64(3), movs[0].Quantity)
}

func TestApplyMovement_StockInsuficienteNoDejaEfectos(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")
	_, err := apply(uc, id, 7, entity.MovementKindInbound)
	require.NoError(t, err)

	_, err = apply(uc, id, 8, entity.MovementKindOutbound)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, id, stockErr.ProductID)
	assert.Equal(t, int64(7), stockErr.Available)
	assert.Equal(t, int64(8), stockErr.Requested)

	assert.Equal(t, int64(7), stockOf(t, uc, id))
	assert.Len(t, ledger(t, uc, id), 1)
}

func TestApplyMovement_EntradaInvalidaSeRechazaSiempre(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")

	cases := []struct {
		name string
		qty  int64
		kind entity.MovementKind
		want error
	}{
		{"cantidad cero", 0, entity.MovementKindInbound, domain.ErrInvalidQuantity},
		{"cantidad negativa", -5, entity.MovementKindOutbound, domain.ErrInvalidQuantity},
		{"tipo vacío", 1, "", domain.ErrInvalidKind},
		{"tipo desconocido", 1, "transferencia", domain.ErrInvalidKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := apply(uc, id, tc.qty, tc.kind)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	p, err := uc.GetProjection(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, p.Exists, "un rechazo no crea la fila de proyección")
	assert.Empty(t, ledger(t, uc, id))

	_, err = apply(uc, id, 4, entity.MovementKindInbound)
	require.NoError(t, err)
	_, err = apply(uc, id, 0, entity.MovementKindInbound)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cero se rechaza con independencia del stock")
}

func TestApplyMovement_ProductoDesconocido(t *testing.T) {
	_, uc := newEngine(t, inventory.Options{})

	_, err := apply(uc, 42, 1, entity.MovementKindInbound)
	assert.ErrorIs(t, err, domain.ErrProductUnknown)
	_, err = uc.GetProjection(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrProductUnknown)

	all, err := uc.ListRecentMovements(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestApplyMovement_DesbordamientoDeEntrada(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")
	_, err := apply(uc, id, math.MaxInt64-1, entity.MovementKindInbound)
	require.NoError(t, err)

	_, err = apply(uc, id, 2, entity.MovementKindInbound)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, int64(math.MaxInt64-1), stockOf(t, uc, id))
}

func TestApplyMovement_SalidasConcurrentesSinSobreventa(t *testing.T) {
	const (
		initial = 5
		callers = 40
	)
	store, uc := newEngine(t, inventory.Options{TxTimeout: 5 * time.Second})
	id := newProduct(t, store, "P")
	_, err := apply(uc, id, initial, entity.MovementKindInbound)
	require.NoError(t, err)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
		other        []error
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := apply(uc, id, 1, entity.MovementKindOutbound)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, initial, ok)
	assert.Equal(t, callers-initial, rejected)
	assert.Zero(t, stockOf(t, uc, id))
	assert.Len(t, ledger(t, uc, id), initial+1)
}

func TestApplyMovement_ConcurrenciaMixtaMantieneLedgerYProyeccion(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	ids := []int64{newProduct(t, store, "A"), newProduct(t, store, "B")}
	for _, id := range ids {
		_, err := apply(uc, id, 10, entity.MovementKindInbound)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := entity.MovementKindOutbound
			if i%3 == 0 {
				kind = entity.MovementKindInbound
			}
			_, _ = apply(uc, ids[i%2], int64(i%4+1), kind)
		}(i)
	}
	wg.Wait()

	rc := inventory.NewReconcileUseCase(store, store.Products(), nil, nil)
	rep, err := rc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Consistent())
	assert.Equal(t, 2, rep.Checked)
	for _, id := range ids {
		assert.GreaterOrEqual(t, stockOf(t, uc, id), int64(0))
	}
}

func TestApplyMovement_FalloAlConfirmarNoDejaEscrituraParcial(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")
	_, err := apply(uc, id, 5, entity.MovementKindInbound)
	require.NoError(t, err)

	store.SetCommitHook(func() error { return errors.New("conexión perdida") })
	_, err = apply(uc, id, 2, entity.MovementKindOutbound)
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.True(t, domain.IsRetryable(err))
	assert.False(t, domain.IsClientError(err))

	store.SetCommitHook(nil)
	assert.Equal(t, int64(5), stockOf(t, uc, id))
	assert.Len(t, ledger(t, uc, id), 1)

	_, err = apply(uc, id, 2, entity.MovementKindOutbound)
	require.NoError(t, err, "el reintento tras el fallo se aplica normalmente")
	assert.Equal(t, int64(3), stockOf(t, uc, id))
}

func TestApplyMovement_TimeoutEsperandoBloqueo(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{TxTimeout: 50 * time.Millisecond})
	id := newProduct(t, store, "P")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.Run(context.Background(), func(
			_ repository.InventoryMovementRepository,
			stockRepo repository.StockRepository,
			_ repository.ProductRepository,
		) error {
			if _, err := stockRepo.LockForUpdate(context.Background(), id); err != nil {
				return err
			}
			close(locked)
			<-release
			return errors.New("abortar")
		})
	}()
	<-locked

	_, err := apply(uc, id, 1, entity.MovementKindInbound)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.Error(t, <-done)

	_, err = apply(uc, id, 1, entity.MovementKindInbound)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stockOf(t, uc, id))
}

func TestApplyMovement_ContextoCancelado(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.ApplyMovement(ctx, inventory.MovementInput{ProductID: id, Quantity: 1, Kind: entity.MovementKindInbound})
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Empty(t, ledger(t, uc, id))
}

func TestSetStockLevel_AjustaConMovimientoDeConteo(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	id := newProduct(t, store, "P")
	ctx := context.Background()

	up, err := uc.SetStockLevel(ctx, id, 12)
	require.NoError(t, err)
	assert.True(t, up.Applied)
	assert.Zero(t, up.Previous)
	assert.Equal(t, int64(12), up.NewQuantity)
	require.NotNil(t, up.Movement)
	assert.Equal(t, entity.MovementKindInbound, up.Movement.Kind)
	assert.Equal(t, entity.MovementSourceCount, up.Movement.Source)

	down, err := uc.SetStockLevel(ctx, id, 9)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindOutbound, down.Movement.Kind)
	assert.Equal(t, int64(3), down.Movement.Quantity)

	same, err := uc.SetStockLevel(ctx, id, 9)
	require.NoError(t, err)
	assert.False(t, same.Applied)
	assert.Nil(t, same.Movement)
	assert.Len(t, ledger(t, uc, id), 2)

	_, err = uc.SetStockLevel(ctx, id, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = uc.SetStockLevel(ctx, 999, 1)
	assert.ErrorIs(t, err, domain.ErrProductUnknown)
	assert.Equal(t, int64(9), stockOf(t, uc, id))
}

func TestListRecentMovements_MasRecientePrimero(t *testing.T) {
	store, uc := newEngine(t, inventory.Options{})
	a := newProduct(t, store, "A")
	b := newProduct(t, store, "B")
	_, err := apply(uc, a, 1, entity.MovementKindInbound)
	require.NoError(t, err)
	_, err = apply(uc, b, 2, entity.MovementKindInbound)
	require.NoError(t, err)
	_, err = apply(uc, a, 1, entity.MovementKindOutbound)
	require.NoError(t, err)

	movs, err := uc.ListRecentMovements(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Greater(t, movs[0].ID, movs[1].ID)
	assert.Equal(t, entity.MovementKindOutbound, movs[0].Kind)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, inventory.ClampLimit(0))
	assert.Equal(t, 100, inventory.ClampLimit(-3))
	assert.Equal(t, 25, inventory.ClampLimit(25))
	assert.Equal(t, 1000, inventory.ClampLimit(5000))
}

func TestRejectReason(t *testing.T) {
	cases := map[error]string{
		domain.ErrInvalidQuantity:                                   metrics.ReasonInvalidQuantity,
		domain.ErrInvalidKind:                                       metrics.ReasonInvalidKind,
		domain.ErrProductUnknown:                                    metrics.ReasonProductUnknown,
		&domain.InsufficientStockError{ProductID: 1, Requested: 2}:  metrics.ReasonInsufficientStock,
		domain.ErrDuplicate:                                         metrics.ReasonConflict,
		domain.ErrConflict:                                          metrics.ReasonConflict,
		domain.NewStorageError("commit", errors.New("x")):           metrics.ReasonStorageFailure,
		domain.NewUnconfirmedCommitError("commit", errors.New("x")): metrics.ReasonStorageFailure,
	}
	for err, want := range cases {
		assert.Equal(t, want, inventory.RejectReason(err), err.Error())
	}
}
