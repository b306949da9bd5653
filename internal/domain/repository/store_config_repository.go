package repository

import (
	"context"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// StoreConfigRepository acceso a la fila única de configuración.
type StoreConfigRepository interface {
	// GetOrCreate devuelve la configuración; si no existe inserta defaults una sola vez.
	GetOrCreate(ctx context.Context, defaults entity.StoreConfig) (*entity.StoreConfig, error)
	Save(ctx context.Context, cfg *entity.StoreConfig) error
}

// SupplierRepository persistencia de proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id int64) (*entity.Supplier, error)
	List(ctx context.Context) ([]*entity.Supplier, error)
}
