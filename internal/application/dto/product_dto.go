package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
	SKU    *string         `json:"sku"`
}

// UpdateProductRequest entrada para actualizar un producto. ID puede venir en el body
// (PUT /productos) o en la ruta (PUT /productos/:id).
type UpdateProductRequest struct {
	ID     int64            `json:"id"`
	Nombre *string          `json:"nombre"`
	Precio *decimal.Decimal `json:"precio"`
	SKU    *string          `json:"sku"`
}

// DeleteProductRequest body de DELETE /productos.
type DeleteProductRequest struct {
	ID int64 `json:"id"`
}

// DeleteProductResponse respuesta de borrado.
type DeleteProductResponse struct {
	Deleted int64 `json:"deleted"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        int64           `json:"id"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	SKU       *string         `json:"sku"`
	CreatedAt time.Time       `json:"created_at"`
}
