package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/domain"
)

// writeError traduce un error de dominio a la respuesta HTTP {code, message}.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stockErr.Error()},
			ProductoID:    stockErr.ProductID,
			Disponible:    stockErr.Available,
			Solicitado:    stockErr.Requested,
		})
	case errors.Is(err, domain.ErrInsufficientStock):
		return errorJSON(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err)
	case errors.Is(err, domain.ErrStorageFailure) && !domain.IsRetryable(err):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "COMMIT_UNKNOWN",
			Message: "no se pudo verificar si la operación se confirmó; consulte los movimientos antes de reintentar",
		})
	case errors.Is(err, domain.ErrStorageFailure):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "STORAGE_FAILURE",
			Message: "no se pudo confirmar la operación; no se aplicó ningún cambio, puede reintentar",
		})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_QUANTITY", err)
	case errors.Is(err, domain.ErrInvalidKind):
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_KIND", err)
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, fiber.StatusBadRequest, "VALIDATION", err)
	case errors.Is(err, domain.ErrProductUnknown):
		return errorJSON(c, fiber.StatusNotFound, "PRODUCT_UNKNOWN", err)
	case errors.Is(err, domain.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, domain.ErrDuplicate):
		return errorJSON(c, fiber.StatusConflict, "DUPLICATE", err)
	case errors.Is(err, domain.ErrConflict):
		return errorJSON(c, fiber.StatusConflict, "CONFLICT", err)
	case errors.Is(err, domain.ErrUnauthorized):
		return errorJSON(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err)
	case errors.Is(err, domain.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, "FORBIDDEN", err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func errorJSON(c *fiber.Ctx, status int, code string, err error) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// paramID lee un identificador numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}
