package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultReorderPoint punto de reorden asignado cuando el catálogo no indica uno.
const DefaultReorderPoint = 10

// Product representa un producto del catálogo de la tienda.
// Stock solo cambia a través del motor de movimientos (o la carga inicial del catálogo).
type Product struct {
	ID                int64
	SKU               string // código único
	Name              string
	Description       string
	PurchasePrice     decimal.Decimal // precio de compra (costo)
	SalePrice         decimal.Decimal // precio de venta
	Stock             int             // stock_actual, nunca negativo
	ReorderPoint      int
	DefaultSupplierID *int64
	CreatedAt         time.Time
}

// NeedsRestock indica si el stock está en o por debajo del punto de reorden.
func (p *Product) NeedsRestock() bool {
	return p.Stock <= p.ReorderPoint
}
