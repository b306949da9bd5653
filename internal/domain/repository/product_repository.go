package repository

import (
	"context"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// ProductFilter filtros de listado del catálogo.
type ProductFilter struct {
	Search string // subcadena en sku o nombre (vacío = todos)
	Limit  int    // 0 = sin límite
	Offset int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Get* devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate lee y bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// Update persiste los campos descriptivos y precios; nunca el stock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id int64, stock int) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	ListBelowReorderPoint(ctx context.Context) ([]*entity.Product, error)
	// Delete devuelve domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id int64) error
}
