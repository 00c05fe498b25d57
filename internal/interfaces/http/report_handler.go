package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/application/usecase"
)

// ReportHandler reportes de ventas.
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// SalesByProduct godoc
// @Summary      Ventas por producto
// @Tags         reportes
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.SalesReportRowResponse]
// @Router       /reportes [get]
func (h *ReportHandler) SalesByProduct(c *fiber.Ctx) error {
	rows, err := h.uc.SalesByProduct(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[dto.SalesReportRowResponse]{Items: rows})
}

// SalesByProductPDF godoc
// @Summary      Ventas por producto (PDF)
// @Tags         reportes
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /reportes/pdf [get]
func (h *ReportHandler) SalesByProductPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.SalesByProductPDF(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}
