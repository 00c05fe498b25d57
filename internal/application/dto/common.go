package dto

// ListResponse envoltorio de listados: {"items": [...]} como espera el frontend.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o negativos.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InsufficientStockResponse cuerpo 409 con el detalle del rechazo.
type InsufficientStockResponse struct {
	ErrorResponse
	ProductoID int64 `json:"producto_id"`
	Disponible int64 `json:"disponible"`
	Solicitado int64 `json:"solicitado"`
}
