package inventory

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
	"github.com/jhoicas/inventario-tienda/pkg/metrics"
)

// ReconcileUseCase compara la proyección de stock con el ledger. Solo lectura: nunca corrige.
type ReconcileUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	metrics     *metrics.Metrics
	log         *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(txRunner TxRunner, productRepo repository.ProductRepository, m *metrics.Metrics, log *logger.Logger) *ReconcileUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileUseCase{txRunner: txRunner, productRepo: productRepo, metrics: m, log: log.Named("reconcile")}
}

// Report resultado de conciliar todos los productos.
type Report struct {
	Checked int
	// Drifting solo los productos cuya proyección difiere del ledger.
	Drifting []entity.Reconciliation
	// OrphanSaleMovements salidas de origen venta sin venta asociada.
	OrphanSaleMovements int64
	// MismatchedSales ventas cuyo movimiento no coincide en producto, cantidad o tipo.
	MismatchedSales int64
}

// Consistent indica si no se encontró ninguna violación.
func (r Report) Consistent() bool {
	return len(r.Drifting) == 0 && r.OrphanSaleMovements == 0 && r.MismatchedSales == 0
}

// Reconcile recalcula el stock derivado del ledger de un producto y lo compara con el proyectado,
// ambos leídos de la misma instantánea.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, productID int64) (*entity.Reconciliation, error) {
	ok, err := uc.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrProductUnknown
	}

	var rec entity.Reconciliation
	err = uc.txRunner.RunReadOnly(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.SaleRepository,
	) error {
		var err error
		rec, err = reconcileOne(ctx, movRepo, stockRepo, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !rec.Consistent() {
		uc.metrics.AddDrift(1)
		uc.log.Error().Int64("product_id", productID).Int64("projected", rec.Projected).
			Int64("derived", rec.Derived).Msg("drift de inventario detectado")
	}
	return &rec, nil
}

// ReconcileAll concilia todos los productos con proyección y verifica el vínculo venta-movimiento.
func (uc *ReconcileUseCase) ReconcileAll(ctx context.Context) (*Report, error) {
	var rep Report
	err := uc.txRunner.RunReadOnly(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
	) error {
		ids, err := stockRepo.ListProductIDs(ctx)
		if err != nil {
			return err
		}
		rep = Report{Checked: len(ids)}
		for _, id := range ids {
			rec, err := reconcileOne(ctx, movRepo, stockRepo, id)
			if err != nil {
				return err
			}
			if !rec.Consistent() {
				rep.Drifting = append(rep.Drifting, rec)
			}
		}
		if rep.OrphanSaleMovements, err = movRepo.CountOrphanSaleMovements(ctx); err != nil {
			return err
		}
		rep.MismatchedSales, err = saleRepo.CountMismatched(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.AddDrift(len(rep.Drifting))
	if !rep.Consistent() {
		uc.log.Error().Int("drifting", len(rep.Drifting)).Int64("orphan_sale_movements", rep.OrphanSaleMovements).
			Int64("mismatched_sales", rep.MismatchedSales).Msg("conciliación con violaciones")
	} else {
		uc.log.Info().Int("checked", rep.Checked).Msg("conciliación sin diferencias")
	}
	return &rep, nil
}

func reconcileOne(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productID int64,
) (entity.Reconciliation, error) {
	stock, err := stockRepo.Get(ctx, productID)
	if err != nil {
		return entity.Reconciliation{}, err
	}
	totals, err := movRepo.Totals(ctx, productID)
	if err != nil {
		return entity.Reconciliation{}, err
	}
	rec := entity.Reconciliation{
		ProductID:      productID,
		Derived:        totals.Derived(),
		MovementCount:  totals.Count,
		LastMovementID: totals.LastMovementID,
	}
	if stock != nil {
		rec.Projected = stock.Quantity
		rec.HasProjection = true
	}
	rec.Drift = rec.Projected - rec.Derived
	return rec, nil
}
