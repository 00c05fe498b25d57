package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
	"github.com/jhoicas/inventario-tienda/pkg/metrics"
	"github.com/shopspring/decimal"
)

// RecordSaleUseCase registra ventas: la salida de inventario y el registro de venta se
// confirman en la misma transacción o no se confirma ninguno.
type RecordSaleUseCase struct {
	txRunner  SalesTxRunner
	inventory InventoryUseCase
	saleRepo  repository.SaleRepository
	txTimeout time.Duration
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewRecordSaleUseCase construye el caso de uso. saleRepo se usa para las lecturas fuera de transacción.
func NewRecordSaleUseCase(
	txRunner SalesTxRunner,
	inv InventoryUseCase,
	saleRepo repository.SaleRepository,
	opts inventory.Options,
) *RecordSaleUseCase {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &RecordSaleUseCase{
		txRunner:  txRunner,
		inventory: inv,
		saleRepo:  saleRepo,
		txTimeout: opts.TxTimeout,
		metrics:   opts.Metrics,
		log:       log.Named("sales"),
	}
}

// SaleInput entrada para registrar una venta.
type SaleInput struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
}

// SaleResult venta confirmada más el stock resultante del producto.
type SaleResult struct {
	Sale        *entity.Sale
	NewQuantity int64
}

// RecordSale valida, aplica la salida (origen venta) y persiste la venta con total = cantidad * precio.
// La venta guarda el ID del movimiento y comparte su operation_id.
func (uc *RecordSaleUseCase) RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error) {
	if err := validateSale(in); err != nil {
		uc.rejected(in, err)
		return nil, err
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	opID := uuid.New().String()
	total := in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity))

	var res *SaleResult
	err := uc.txRunner.RunSale(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		mov, err := uc.inventory.ApplyMovementInTx(ctx, movRepo, stockRepo, productRepo, inventory.MovementInput{
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			Kind:        entity.MovementKindOutbound,
			Source:      entity.MovementSourceSale,
			OperationID: opID,
		})
		if err != nil {
			return err
		}
		sale := &entity.Sale{
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Total:       total,
			MovementID:  mov.MovementID,
			OperationID: opID,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		res = &SaleResult{Sale: sale, NewQuantity: mov.NewQuantity}
		return nil
	})
	if err != nil {
		uc.rejected(in, err)
		return nil, err
	}

	uc.metrics.ObserveApplied(string(entity.MovementKindOutbound), string(entity.MovementSourceSale), time.Since(start))
	uc.metrics.IncSales()
	uc.log.Debug().
		Int64("sale_id", res.Sale.ID).
		Int64("product_id", in.ProductID).
		Int64("quantity", in.Quantity).
		Str("total", total.StringFixed(2)).
		Msg("venta registrada")
	return res, nil
}

// ListRecentSales devuelve las últimas ventas, más reciente primero.
func (uc *RecordSaleUseCase) ListRecentSales(ctx context.Context, limit int) ([]*entity.Sale, error) {
	return uc.saleRepo.ListRecent(ctx, inventory.ClampLimit(limit))
}

func validateSale(in SaleInput) error {
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	// precio_unitario se persiste como NUMERIC con dos decimales
	if in.UnitPrice.IsNegative() || !in.UnitPrice.Equal(in.UnitPrice.Round(2)) {
		return domain.ErrInvalidInput
	}
	return nil
}

func (uc *RecordSaleUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.txTimeout)
}

func (uc *RecordSaleUseCase) rejected(in SaleInput, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		return
	}
	uc.metrics.ObserveRejected(inventory.RejectReason(err))
	ev := uc.log.Info()
	if errors.Is(err, domain.ErrStorageFailure) {
		ev = uc.log.Error().Bool("reintentable", domain.IsRetryable(err))
	}
	ev.Err(err).Int64("product_id", in.ProductID).Int64("quantity", in.Quantity).Msg("venta rechazada")
}
