package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockTotalsResult agregados del catálogo completo para el resumen de finanzas.
type StockTotalsResult struct {
	CostValue    decimal.Decimal // SUM(stock_actual * precio_compra)
	SaleValue    decimal.Decimal // SUM(stock_actual * precio_venta)
	TotalUnits   int64
	ProductCount int64
}

// SaleLineResult una SALIDA del día con el precio de venta ACTUAL del producto.
// ProductName y SalePrice son nil si el producto fue eliminado después del movimiento.
type SaleLineResult struct {
	MovementID  int64
	ProductID   int64
	ProductName *string
	SalePrice   *decimal.Decimal
	Quantity    int
	Date        time.Time
}

// AnalyticsRepository define las consultas de lectura para reportes.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetInventoryValuation devuelve SUM(stock_actual * precio_compra); 0 con catálogo vacío.
	GetInventoryValuation(ctx context.Context) (decimal.Decimal, error)

	// GetStockTotals devuelve valor a costo, valor a precio de venta, unidades y número de productos.
	GetStockTotals(ctx context.Context) (StockTotalsResult, error)

	// GetSaleLines devuelve las SALIDAS con fecha en [start, end), ordenadas por fecha ascendente.
	GetSaleLines(ctx context.Context, start, end time.Time) ([]SaleLineResult, error)
}
