package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. StockActual es la carga inicial del catálogo.
type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=100"`
	Name              string          `json:"nombre" validate:"required,min=1,max=200"`
	Description       string          `json:"descripcion" validate:"max=2000"`
	PurchasePrice     decimal.Decimal `json:"precio_compra"`
	SalePrice         decimal.Decimal `json:"precio_venta"`
	Stock             int             `json:"stock_actual" validate:"min=0"`
	ReorderPoint      *int            `json:"punto_reorden" validate:"omitempty,min=0"`
	DefaultSupplierID *int64          `json:"proveedor_default_id" validate:"omitempty,min=1"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock: se maneja vía movimientos).
type UpdateProductRequest struct {
	SKU               *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name              *string          `json:"nombre" validate:"omitempty,min=1,max=200"`
	Description       *string          `json:"descripcion" validate:"omitempty,max=2000"`
	PurchasePrice     *decimal.Decimal `json:"precio_compra"`
	SalePrice         *decimal.Decimal `json:"precio_venta"`
	ReorderPoint      *int             `json:"punto_reorden" validate:"omitempty,min=0"`
	DefaultSupplierID *int64           `json:"proveedor_default_id" validate:"omitempty,min=1"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                int64           `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"nombre"`
	Description       string          `json:"descripcion"`
	PurchasePrice     decimal.Decimal `json:"precio_compra"`
	SalePrice         decimal.Decimal `json:"precio_venta"`
	Stock             int             `json:"stock_actual"`
	ReorderPoint      int             `json:"punto_reorden"`
	DefaultSupplierID *int64          `json:"proveedor_default_id"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// SupplierRequest alta de proveedor.
type SupplierRequest struct {
	CompanyName  string `json:"nombre_empresa" validate:"required,max=200"`
	ContactName  string `json:"contacto_nombre" validate:"max=200"`
	Phone        string `json:"telefono" validate:"max=50"`
	Email        string `json:"email" validate:"omitempty,email"`
	LeadTimeDays int    `json:"tiempo_entrega_dias" validate:"min=0"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID           int64  `json:"id"`
	CompanyName  string `json:"nombre_empresa"`
	ContactName  string `json:"contacto_nombre"`
	Phone        string `json:"telefono"`
	Email        string `json:"email"`
	LeadTimeDays int    `json:"tiempo_entrega_dias"`
}

// ImportResultResponse resultado de la importación desde Excel.
type ImportResultResponse struct {
	Created  int `json:"nuevos"`
	Updated  int `json:"actualizados"`
	Skipped  int `json:"omitidos"`
	Adjusted int `json:"ajustes_stock"`
}
