package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movimientos.
// Se indica el producto por producto_id O por sku, nunca ambos.
type RegisterMovementRequest struct {
	ProductID *int64 `json:"producto_id" validate:"required_without=SKU,excluded_with=SKU"`
	SKU       string `json:"sku" validate:"required_without=ProductID,max=100"`
	Type      string `json:"tipo_movimiento" validate:"required"`
	Quantity  int    `json:"cantidad" validate:"required,min=1"`
	Notes     string `json:"notas" validate:"max=1000"`
}

// MovementResponse movimiento registrado más el stock resultante.
type MovementResponse struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaccion_id"`
	ProductID     int64     `json:"producto_id"`
	Type          string    `json:"tipo_movimiento"`
	Quantity      int       `json:"cantidad"`
	Date          time.Time `json:"fecha_movimiento"`
	Actor         string    `json:"usuario_responsable"`
	Notes         string    `json:"notas,omitempty"`
	NewStock      int       `json:"nuevo_stock"`
}

// LedgerEntryResponse línea del historial de movimientos con identidad del producto.
type LedgerEntryResponse struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaccion_id"`
	ProductID     int64     `json:"producto_id"`
	ProductSKU    *string   `json:"sku"`
	ProductName   *string   `json:"producto"`
	Type          string    `json:"tipo_movimiento"`
	Quantity      int       `json:"cantidad"`
	Date          time.Time `json:"fecha_movimiento"`
	Actor         string    `json:"usuario_responsable"`
	Notes         string    `json:"notas,omitempty"`
}

// CheckoutItemRequest línea del carrito.
type CheckoutItemRequest struct {
	ProductID *int64 `json:"producto_id" validate:"required_without=SKU,excluded_with=SKU"`
	SKU       string `json:"sku" validate:"required_without=ProductID,max=100"`
	Quantity  int    `json:"cantidad" validate:"required,min=1"`
}

// CheckoutRequest body para POST /api/ventas/checkout y /api/ventas/ticket-pdf.
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CheckoutLineResponse detalle de una línea vendida.
type CheckoutLineResponse struct {
	ProductID int64           `json:"producto_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"nombre"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	NewStock  int             `json:"nuevo_stock"`
}

// CheckoutResponse resultado de una venta.
type CheckoutResponse struct {
	Message        string                 `json:"mensaje"`
	TransactionID  string                 `json:"transaccion_id"`
	ItemsProcessed int                    `json:"items_procesados"`
	Total          decimal.Decimal        `json:"total"`
	Lines          []CheckoutLineResponse `json:"detalle"`
}

// PurgeResponse resultado de la limpieza del historial.
type PurgeResponse struct {
	Message string `json:"mensaje"`
	Before  string `json:"fecha_limite"`
	Deleted int64  `json:"eliminados"`
}

// LowStockItemResponse producto en o bajo su punto de reorden.
type LowStockItemResponse struct {
	ProductID          int64           `json:"producto_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"nombre"`
	Stock              int             `json:"stock_actual"`
	ReorderPoint       int             `json:"punto_reorden"`
	SuggestedOrderQty  int             `json:"cantidad_sugerida"`
	UnitCost           decimal.Decimal `json:"precio_compra"`
	EstimatedOrderCost decimal.Decimal `json:"costo_estimado"`
	DefaultSupplierID  *int64          `json:"proveedor_default_id"`
}
