package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la proyección confirmada; (nil, nil) si el producto aún no tiene fila.
func (r *StockRepo) Get(ctx context.Context, productID int64) (*entity.StockProjection, error) {
	query := `SELECT producto_id, stock, updated_at FROM inventario WHERE producto_id = $1`
	var s entity.StockProjection
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get stock", err)
	}
	return &s, nil
}

// LockForUpdate asegura la fila (en cero si falta) y la bloquea (SELECT FOR UPDATE).
// El INSERT ... ON CONFLICT DO NOTHING espera a otra transacción que esté creando la
// misma fila, así dos primeros movimientos concurrentes no pueden perder una actualización.
// La fila creada aquí se confirma o se descarta junto con el movimiento.
func (r *StockRepo) LockForUpdate(ctx context.Context, productID int64) (*entity.StockProjection, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventario (producto_id, stock)
		VALUES ($1, 0)
		ON CONFLICT (producto_id) DO NOTHING`, productID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrProductUnknown
		}
		return nil, classify("ensure stock row", err)
	}

	query := `
		SELECT producto_id, stock, updated_at
		FROM inventario WHERE producto_id = $1
		FOR UPDATE`
	var s entity.StockProjection
	if err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.Quantity, &s.UpdatedAt); err != nil {
		return nil, classify("lock stock", err)
	}
	return &s, nil
}

// Save actualiza la cantidad de la fila bloqueada.
func (r *StockRepo) Save(ctx context.Context, stock *entity.StockProjection) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventario SET stock = $2, updated_at = clock_timestamp()
		WHERE producto_id = $1`, stock.ProductID, stock.Quantity)
	if err != nil {
		return classify("save stock", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.NewStorageError("save stock", fmt.Errorf("fila de inventario %d ausente", stock.ProductID))
	}
	return nil
}

// ListProductIDs productos con fila de inventario.
func (r *StockRepo) ListProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT producto_id FROM inventario ORDER BY producto_id`)
	if err != nil {
		return nil, classify("list stock", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, classify("list stock", err)
	}
	return ids, nil
}
