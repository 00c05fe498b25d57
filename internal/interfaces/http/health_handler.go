package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger almacén que puede verificar su conectividad (pgxpool.Pool, memory.Store).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler estado del servicio.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler construye el handler.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	body := fiber.Map{"service": "health", "time": time.Now().UTC().Format(time.RFC3339)}
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["store"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(body)
		}
	}
	body["status"] = "ok"
	return c.JSON(body)
}
