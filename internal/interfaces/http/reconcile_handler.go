package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// ReconcileHandler endpoints de auditoría (solo admin).
type ReconcileHandler struct {
	uc *inventory.ReconcileUseCase
}

// NewReconcileHandler construye el handler.
func NewReconcileHandler(uc *inventory.ReconcileUseCase) *ReconcileHandler {
	return &ReconcileHandler{uc: uc}
}

// Reconcile godoc
// @Summary      Conciliar un producto
// @Description  Compara el stock proyectado con la suma del ledger. No corrige diferencias.
// @Tags         auditoria
// @Security     Bearer
// @Produce      json
// @Param        producto_id  path  int  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /inventario/{producto_id}/reconciliacion [get]
func (h *ReconcileHandler) Reconcile(c *fiber.Ctx) error {
	id, err := paramID(c, "producto_id")
	if err != nil {
		return writeError(c, err)
	}
	rec, err := h.uc.Reconcile(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReconciliationResponse(*rec))
}

// ReconcileAll godoc
// @Summary      Conciliar todo el inventario
// @Description  Lista solo los productos con drift y verifica que cada salida de venta tenga su venta.
// @Tags         auditoria
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReportResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /inventario/reconciliacion [get]
func (h *ReconcileHandler) ReconcileAll(c *fiber.Ctx) error {
	rep, err := h.uc.ReconcileAll(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	drifting := make([]dto.ReconciliationResponse, 0, len(rep.Drifting))
	for _, r := range rep.Drifting {
		drifting = append(drifting, toReconciliationResponse(r))
	}
	return c.JSON(dto.ReconciliationReportResponse{
		Revisados:            rep.Checked,
		ConDrift:             drifting,
		MovimientosHuerfanos: rep.OrphanSaleMovements,
		VentasInconsistentes: rep.MismatchedSales,
		Consistente:          rep.Consistent(),
	})
}

func toReconciliationResponse(r entity.Reconciliation) dto.ReconciliationResponse {
	return dto.ReconciliationResponse{
		ProductoID:         r.ProductID,
		Proyectado:         r.Projected,
		Derivado:           r.Derived,
		Drift:              r.Drift,
		Movimientos:        r.MovementCount,
		UltimoMovimientoID: r.LastMovementID,
		Consistente:        r.Consistent(),
	}
}
