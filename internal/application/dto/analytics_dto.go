package dto

import "github.com/shopspring/decimal"

// InventoryValuationResponse GET /api/reportes/valor-inventario.
type InventoryValuationResponse struct {
	Value decimal.Decimal `json:"valor_total_inventario"`
}

// CutoffLineDTO una SALIDA del corte valorizada al precio de venta actual.
type CutoffLineDTO struct {
	Product  string          `json:"producto"`
	Quantity int             `json:"cantidad"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Time     string          `json:"hora"` // HH:MM:SS en la zona de la tienda
}

// DailyCutoffResponse GET /api/reportes/corte-dia.
type DailyCutoffResponse struct {
	Date         string          `json:"fecha"`
	TotalSold    decimal.Decimal `json:"total_vendido"`
	ItemsSold    int             `json:"items_vendidos"`
	Transactions int             `json:"transacciones"`
	Lines        []CutoffLineDTO `json:"detalle"`
}

// FinanceSummaryResponse GET /api/reportes/finanzas.
type FinanceSummaryResponse struct {
	CostValue       decimal.Decimal `json:"capital_costo"`
	SaleValue       decimal.Decimal `json:"capital_venta"`
	PotentialProfit decimal.Decimal `json:"ganancia_potencial"`
	TotalUnits      int64           `json:"unidades_totales"`
	ProductCount    int64           `json:"productos"`
	LowStockCount   int             `json:"productos_bajo_stock"`
}
