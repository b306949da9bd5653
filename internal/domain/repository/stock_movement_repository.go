package repository

import (
	"context"
	"time"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// MovementFilter rango de fechas del libro de movimientos. From inclusivo, To exclusivo.
type MovementFilter struct {
	From *time.Time
	To   *time.Time
}

// MovementRecord movimiento unido con la identidad del producto.
// ProductSKU y ProductName son nil cuando el producto ya no existe.
type MovementRecord struct {
	entity.StockMovement
	ProductSKU  *string
	ProductName *string
}

// StockMovementRepository puerto del libro de movimientos (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve los movimientos del rango, más recientes primero.
	List(ctx context.Context, filter MovementFilter) ([]MovementRecord, error)
	// DeleteBefore borra los movimientos con fecha < before y devuelve cuántos borró.
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
