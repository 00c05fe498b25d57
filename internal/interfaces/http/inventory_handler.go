package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// InventoryHandler maneja movimientos y consultas de stock.
type InventoryHandler struct {
	uc        *inventory.RegisterMovementUseCase
	listLimit int
}

// NewInventoryHandler construye el handler. listLimit es el tamaño por defecto de los listados.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, listLimit int) *InventoryHandler {
	return &InventoryHandler{uc: uc, listLimit: listLimit}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Aplica una entrada o salida de forma atómica. Una salida que dejaría el stock negativo se rechaza con 409.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "producto_id, cantidad (entero positivo), tipo (entrada|salida)"
// @Success      201   {object}  dto.RegisterMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /inventario [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	qty, ok := dto.ParseQuantity(in.Cantidad)
	if !ok {
		return writeError(c, domain.ErrInvalidQuantity)
	}
	res, err := h.uc.ApplyMovement(c.Context(), inventory.MovementInput{
		ProductID: in.ProductoID,
		Quantity:  qty,
		Kind:      entity.MovementKind(strings.ToLower(strings.TrimSpace(in.Tipo))),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterMovementResponse{
		MovementResponse: resultResponse(res),
		Stock:            res.NewQuantity,
	})
}

// SetStock godoc
// @Summary      Fijar stock por conteo físico
// @Description  Registra la diferencia entre el conteo y el stock actual como un movimiento de origen conteo.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetStockRequest  true  "producto_id, stock"
// @Success      200   {object}  dto.SetStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /inventario [put]
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	target, ok := dto.ParseQuantity(in.Stock)
	if !ok {
		return writeError(c, domain.ErrInvalidQuantity)
	}
	res, err := h.uc.SetStockLevel(c.Context(), in.ProductoID, target)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SetStockResponse{
		ProductoID: res.ProductID,
		Stock:      res.NewQuantity,
		Anterior:   res.Previous,
		Aplicado:   res.Applied,
	}
	if res.Movement != nil {
		m := resultResponse(res.Movement)
		out.Movimiento = &m
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Últimos movimientos
// @Tags         inventario
// @Produce      json
// @Param        limit  query  int  false  "Cantidad máxima (por defecto configurable)"
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Router       /inventario [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	movs, err := h.uc.ListRecentMovements(c.Context(), c.QueryInt("limit", h.listLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[dto.MovementResponse]{Items: toMovementResponses(movs)})
}

// GetProjection godoc
// @Summary      Stock actual de un producto
// @Tags         inventario
// @Produce      json
// @Param        producto_id  path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProjectionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /inventario/{producto_id} [get]
func (h *InventoryHandler) GetProjection(c *fiber.Ctx) error {
	id, err := paramID(c, "producto_id")
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.GetProjection(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ProjectionResponse{ProductoID: p.ProductID, Stock: p.Quantity, Existe: p.Exists}
	if p.Exists {
		t := p.UpdatedAt
		out.UpdatedAt = &t
	}
	return c.JSON(out)
}

// ListProductMovements godoc
// @Summary      Ledger de un producto
// @Tags         inventario
// @Produce      json
// @Param        producto_id  path   int  true   "ID del producto"
// @Param        limit        query  int  false  "Cantidad máxima"
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /inventario/{producto_id}/movimientos [get]
func (h *InventoryHandler) ListProductMovements(c *fiber.Ctx) error {
	id, err := paramID(c, "producto_id")
	if err != nil {
		return writeError(c, err)
	}
	movs, err := h.uc.ListProductMovements(c.Context(), id, c.QueryInt("limit", h.listLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[dto.MovementResponse]{Items: toMovementResponses(movs)})
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductoID:  m.ProductID,
		Cantidad:    m.Quantity,
		Tipo:        string(m.Kind),
		Origen:      string(m.Source),
		OperacionID: m.OperationID,
		CreatedAt:   m.RecordedAt,
	}
}

func toMovementResponses(movs []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func resultResponse(r *inventory.MovementResult) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          r.MovementID,
		ProductoID:  r.ProductID,
		Cantidad:    r.Quantity,
		Tipo:        string(r.Kind),
		Origen:      string(r.Source),
		OperacionID: r.OperationID,
		CreatedAt:   r.RecordedAt,
	}
}
