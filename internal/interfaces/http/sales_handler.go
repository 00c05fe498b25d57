package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/application/sales"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

var errMissingUnitPrice = fmt.Errorf("%w: precio_unitario es obligatorio y debe coincidir con precio", domain.ErrInvalidInput)

// SalesHandler registra y lista ventas.
type SalesHandler struct {
	uc        *sales.RecordSaleUseCase
	listLimit int
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.RecordSaleUseCase, listLimit int) *SalesHandler {
	return &SalesHandler{uc: uc, listLimit: listLimit}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock y registra la venta en la misma transacción.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "producto_id, cantidad, precio_unitario (o precio)"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /ventas [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	qty, ok := dto.ParseQuantity(in.Cantidad)
	if !ok {
		return writeError(c, domain.ErrInvalidQuantity)
	}
	price, ok := in.UnitPrice()
	if !ok {
		return writeError(c, errMissingUnitPrice)
	}
	res, err := h.uc.RecordSale(c.Context(), sales.SaleInput{
		ProductID: in.ProductoID,
		Quantity:  qty,
		UnitPrice: price,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := toSaleResponse(res.Sale)
	stock := res.NewQuantity
	out.Stock = &stock
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Últimas ventas
// @Tags         ventas
// @Produce      json
// @Param        limit  query  int  false  "Cantidad máxima"
// @Success      200  {object}  dto.ListResponse[dto.SaleResponse]
// @Router       /ventas [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListRecentSales(c.Context(), c.QueryInt("limit", h.listLimit))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toSaleResponse(s))
	}
	return c.JSON(dto.ListResponse[dto.SaleResponse]{Items: items})
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:             s.ID,
		ProductoID:     s.ProductID,
		Cantidad:       s.Quantity,
		PrecioUnitario: s.UnitPrice,
		Total:          s.Total,
		MovimientoID:   s.MovementID,
		OperacionID:    s.OperationID,
		CreatedAt:      s.CreatedAt,
	}
}
