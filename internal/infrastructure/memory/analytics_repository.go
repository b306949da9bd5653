package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo reportes calculados sobre el estado en memoria.
type AnalyticsRepo struct {
	acc accessor
}

func (r *AnalyticsRepo) GetInventoryValuation(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	r.acc.read(func(st *state) {
		for _, p := range st.products {
			total = total.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Stock))))
		}
	})
	return total, nil
}

func (r *AnalyticsRepo) GetStockTotals(_ context.Context) (repository.StockTotalsResult, error) {
	res := repository.StockTotalsResult{CostValue: decimal.Zero, SaleValue: decimal.Zero}
	r.acc.read(func(st *state) {
		for _, p := range st.products {
			qty := decimal.NewFromInt(int64(p.Stock))
			res.CostValue = res.CostValue.Add(p.PurchasePrice.Mul(qty))
			res.SaleValue = res.SaleValue.Add(p.SalePrice.Mul(qty))
			res.TotalUnits += int64(p.Stock)
			res.ProductCount++
		}
	})
	return res, nil
}

func (r *AnalyticsRepo) GetSaleLines(_ context.Context, start, end time.Time) ([]repository.SaleLineResult, error) {
	out := []repository.SaleLineResult{}
	r.acc.read(func(st *state) {
		for _, m := range st.movements {
			if m.Type != entity.MovementTypeSalida || m.Date.Before(start) || !m.Date.Before(end) {
				continue
			}
			line := repository.SaleLineResult{
				MovementID: m.ID,
				ProductID:  m.ProductID,
				Quantity:   m.Quantity,
				Date:       m.Date,
			}
			if p, ok := st.products[m.ProductID]; ok {
				name, price := p.Name, p.SalePrice
				line.ProductName = &name
				line.SalePrice = &price
			}
			out = append(out, line)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].MovementID < out[j].MovementID
	})
	return out, nil
}
