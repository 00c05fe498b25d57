package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/application/sales"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and sales.SalesTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.SalesTxRunner = (*TxRunner)(nil)

// commitTimeout acota el COMMIT, que corre fuera del plazo de la operación.
const commitTimeout = 5 * time.Second

var (
	// readWrite: la exclusividad por producto la da el bloqueo de fila de inventario,
	// no el nivel de aislamiento.
	readWrite = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}
	// snapshot: conciliación sobre una única instantánea.
	snapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		return fn(NewInventoryMovementRepository(tx), NewStockRepository(tx), NewProductRepository(tx))
	})
}

// RunSale inicia una transacción con repos de inventario y ventas (para RecordSale).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		return fn(NewInventoryMovementRepository(tx), NewStockRepository(tx), NewProductRepository(tx), NewSaleRepository(tx))
	})
}

// RunReadOnly inicia una transacción REPEATABLE READ de solo lectura.
func (r *TxRunner) RunReadOnly(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, snapshot, func(tx pgx.Tx) error {
		return fn(NewInventoryMovementRepository(tx), NewStockRepository(tx), NewSaleRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	// Con el contexto cancelado pgx cierra la conexión; el servidor descarta la transacción igual.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(tx); err != nil {
		return classifyTxError(err)
	}
	// El plazo de la operación cubre esperas de bloqueo y sentencias; un COMMIT cortado a mitad
	// deja el resultado en el servidor sin confirmar.
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := tx.Commit(commitCtx); err != nil {
		return commitError(err)
	}
	return nil
}
