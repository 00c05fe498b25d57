package inventory

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
	"github.com/jhoicas/inventario-tienda/pkg/metrics"
)

// Options dependencias opcionales del motor.
type Options struct {
	// TxTimeout acota cada operación, incluida la espera por el bloqueo del producto. 0 = sin límite propio.
	TxTimeout time.Duration
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// RegisterMovementUseCase es el motor de consistencia: registra movimientos de forma
// transaccional con bloqueo de fila por producto (SELECT FOR UPDATE) y Commit/Rollback.
// Es el único escritor del ledger y de la proyección de stock.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	movRepo     repository.InventoryMovementRepository
	txTimeout   time.Duration
	metrics     *metrics.Metrics
	log         *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso. productRepo, stockRepo y movRepo
// son los adaptadores fuera de transacción usados por las lecturas.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	opts Options,
) *RegisterMovementUseCase {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		txTimeout:   opts.TxTimeout,
		metrics:     opts.Metrics,
		log:         log.Named("inventory"),
	}
}

// MovementInput entrada para aplicar un movimiento.
// Source vacío equivale a manual; OperationID vacío genera un uuid nuevo.
type MovementInput struct {
	ProductID   int64
	Quantity    int64
	Kind        entity.MovementKind
	Source      entity.MovementSource
	OperationID string
}

// MovementResult resultado de un movimiento confirmado.
type MovementResult struct {
	MovementID  int64
	ProductID   int64
	Quantity    int64
	Kind        entity.MovementKind
	Source      entity.MovementSource
	OperationID string
	NewQuantity int64
	RecordedAt  time.Time
}

// ApplyMovement valida la entrada, abre una transacción, bloquea el stock del producto,
// verifica que no quede negativo, agrega el movimiento al ledger y actualiza la proyección.
// Todo o nada: ante cualquier error no queda movimiento ni cambio de stock.
func (uc *RegisterMovementUseCase) ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := ValidateMovement(in.Quantity, in.Kind); err != nil {
		uc.rejected(in.ProductID, in.Kind, in.Quantity, err)
		return nil, err
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var res *MovementResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		res, err = uc.ApplyMovementInTx(ctx, movRepo, stockRepo, productRepo, in)
		return err
	})
	if err != nil {
		uc.rejected(in.ProductID, in.Kind, in.Quantity, err)
		return nil, err
	}

	uc.metrics.ObserveApplied(string(res.Kind), string(res.Source), time.Since(start))
	uc.log.Debug().
		Int64("product_id", res.ProductID).
		Str("kind", string(res.Kind)).
		Int64("quantity", res.Quantity).
		Int64("movement_id", res.MovementID).
		Int64("stock", res.NewQuantity).
		Msg("movimiento aplicado")
	return res, nil
}

// ApplyMovementInTx aplica un movimiento usando los repositorios del caller (misma transacción).
// Lo usa el registro de ventas para que venta y salida se confirmen juntas.
// Si retorna error, el caller debe hacer rollback.
func (uc *RegisterMovementUseCase) ApplyMovementInTx(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
) (*MovementResult, error) {
	if err := ValidateMovement(in.Quantity, in.Kind); err != nil {
		return nil, err
	}
	stock, err := lockKnownProduct(ctx, stockRepo, productRepo, in.ProductID)
	if err != nil {
		return nil, err
	}
	return applyLocked(ctx, movRepo, stockRepo, stock, in)
}

// StockLevelResult resultado de fijar el nivel de stock por conteo físico.
type StockLevelResult struct {
	ProductID   int64
	Previous    int64
	NewQuantity int64
	// Applied es false cuando el conteo coincide con el stock y no se escribió movimiento.
	Applied  bool
	Movement *MovementResult
}

// SetStockLevel fija el stock de un producto a target registrando la diferencia como
// un movimiento de conteo (entrada si sube, salida si baja) bajo el mismo bloqueo.
func (uc *RegisterMovementUseCase) SetStockLevel(ctx context.Context, productID, target int64) (*StockLevelResult, error) {
	if target < 0 {
		uc.rejected(productID, "", target, domain.ErrInvalidQuantity)
		return nil, domain.ErrInvalidQuantity
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var res *StockLevelResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		stock, err := lockKnownProduct(ctx, stockRepo, productRepo, productID)
		if err != nil {
			return err
		}
		res = &StockLevelResult{ProductID: productID, Previous: stock.Quantity, NewQuantity: stock.Quantity}
		delta := target - stock.Quantity
		if delta == 0 {
			return nil
		}
		in := MovementInput{
			ProductID: productID,
			Quantity:  delta,
			Kind:      entity.MovementKindInbound,
			Source:    entity.MovementSourceCount,
		}
		if delta < 0 {
			in.Quantity = -delta
			in.Kind = entity.MovementKindOutbound
		}
		mov, err := applyLocked(ctx, movRepo, stockRepo, stock, in)
		if err != nil {
			return err
		}
		res.Applied = true
		res.NewQuantity = mov.NewQuantity
		res.Movement = mov
		return nil
	})
	if err != nil {
		uc.rejected(productID, "", target, err)
		return nil, err
	}
	if res.Applied {
		uc.metrics.ObserveApplied(string(res.Movement.Kind), string(res.Movement.Source), time.Since(start))
		uc.log.Info().
			Int64("product_id", productID).
			Int64("previous", res.Previous).
			Int64("stock", res.NewQuantity).
			Msg("stock ajustado por conteo")
	}
	return res, nil
}

// ValidateMovement rechaza cantidades no positivas y tipos desconocidos antes de cualquier escritura.
func ValidateMovement(quantity int64, kind entity.MovementKind) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !kind.Valid() {
		return domain.ErrInvalidKind
	}
	return nil
}

// lockKnownProduct verifica el producto en el catálogo y bloquea su fila de stock.
func lockKnownProduct(
	ctx context.Context,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	productID int64,
) (*entity.StockProjection, error) {
	ok, err := productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrProductUnknown
	}
	return stockRepo.LockForUpdate(ctx, productID)
}

// applyLocked requiere la fila de stock bloqueada por la transacción en curso.
func applyLocked(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	stock *entity.StockProjection,
	in MovementInput,
) (*MovementResult, error) {
	if in.Kind == entity.MovementKindInbound && stock.Quantity > math.MaxInt64-in.Quantity {
		return nil, domain.ErrInvalidQuantity
	}
	candidate := stock.Apply(in.Kind, in.Quantity)
	if candidate < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: stock.ProductID,
			Available: stock.Quantity,
			Requested: in.Quantity,
		}
	}

	source := in.Source
	if source == "" {
		source = entity.MovementSourceManual
	}
	opID := in.OperationID
	if opID == "" {
		opID = uuid.New().String()
	}

	mov := &entity.Movement{
		ProductID:   stock.ProductID,
		Quantity:    in.Quantity,
		Kind:        in.Kind,
		Source:      source,
		OperationID: opID,
	}
	if err := movRepo.Append(ctx, mov); err != nil {
		return nil, err
	}
	stock.Quantity = candidate
	stock.UpdatedAt = mov.RecordedAt
	if err := stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}

	return &MovementResult{
		MovementID:  mov.ID,
		ProductID:   mov.ProductID,
		Quantity:    mov.Quantity,
		Kind:        mov.Kind,
		Source:      mov.Source,
		OperationID: mov.OperationID,
		NewQuantity: candidate,
		RecordedAt:  mov.RecordedAt,
	}, nil
}

func (uc *RegisterMovementUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.txTimeout)
}

func (uc *RegisterMovementUseCase) rejected(productID int64, kind entity.MovementKind, quantity int64, err error) {
	uc.metrics.ObserveRejected(RejectReason(err))
	if errors.Is(err, domain.ErrStorageFailure) {
		uc.log.Error().Err(err).Int64("product_id", productID).Str("kind", string(kind)).Int64("quantity", quantity).
			Bool("reintentable", domain.IsRetryable(err)).
			Msg("fallo de almacenamiento al aplicar movimiento")
		return
	}
	uc.log.Info().Err(err).Int64("product_id", productID).Str("kind", string(kind)).Int64("quantity", quantity).
		Msg("movimiento rechazado")
}

// RejectReason traduce un error del motor a la etiqueta reason de las métricas.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return metrics.ReasonInvalidQuantity
	case errors.Is(err, domain.ErrInvalidKind):
		return metrics.ReasonInvalidKind
	case errors.Is(err, domain.ErrProductUnknown):
		return metrics.ReasonProductUnknown
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.ReasonInsufficientStock
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return metrics.ReasonConflict
	default:
		return metrics.ReasonStorageFailure
	}
}
