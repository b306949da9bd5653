package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para reportes.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetInventoryValuation SUM(stock_actual * precio_compra); COALESCE garantiza 0 con catálogo vacío.
func (r *AnalyticsRepo) GetInventoryValuation(ctx context.Context) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(stock_actual * precio_compra), 0) FROM productos`
	var v decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&v); err != nil {
		return decimal.Zero, mapError("inventory valuation", err)
	}
	return v, nil
}

// GetStockTotals agregados del catálogo para el resumen financiero.
func (r *AnalyticsRepo) GetStockTotals(ctx context.Context) (repository.StockTotalsResult, error) {
	const query = `
	SELECT
	    COALESCE(SUM(stock_actual * precio_compra), 0) AS capital_costo,
	    COALESCE(SUM(stock_actual * precio_venta), 0)  AS capital_venta,
	    COALESCE(SUM(stock_actual), 0)                 AS unidades,
	    COUNT(*)                                       AS productos
	FROM productos`
	var res repository.StockTotalsResult
	err := r.q.QueryRow(ctx, query).Scan(&res.CostValue, &res.SaleValue, &res.TotalUnits, &res.ProductCount)
	if err != nil {
		return repository.StockTotalsResult{}, mapError("stock totals", err)
	}
	return res, nil
}

type saleLineRow struct {
	MovementID  int64            `db:"id"`
	ProductID   int64            `db:"producto_id"`
	ProductName *string          `db:"nombre"`
	SalePrice   *decimal.Decimal `db:"precio_venta"`
	Quantity    int              `db:"cantidad"`
	Date        time.Time        `db:"fecha_movimiento"`
}

// GetSaleLines SALIDAS en [start, end) con el precio de venta actual del producto (LEFT JOIN).
func (r *AnalyticsRepo) GetSaleLines(ctx context.Context, start, end time.Time) ([]repository.SaleLineResult, error) {
	sql, args, err := psql.Select(
		"m.id", "m.producto_id", "p.nombre", "p.precio_venta", "m.cantidad", "m.fecha_movimiento",
	).
		From(movementsTable + " m").
		LeftJoin(productsTable + " p ON p.id = m.producto_id").
		Where(squirrel.Eq{"m.tipo_movimiento": entity.MovementTypeSalida}).
		Where(squirrel.GtOrEq{"m.fecha_movimiento": start}).
		Where(squirrel.Lt{"m.fecha_movimiento": end}).
		OrderBy("m.fecha_movimiento", "m.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sale lines: %w", err)
	}
	var rows []saleLineRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, mapError("sale lines", err)
	}
	out := make([]repository.SaleLineResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.SaleLineResult{
			MovementID:  row.MovementID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			SalePrice:   row.SalePrice,
			Quantity:    row.Quantity,
			Date:        row.Date,
		})
	}
	return out, nil
}
