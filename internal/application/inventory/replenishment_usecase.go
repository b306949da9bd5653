package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: productos en o bajo su punto de reorden.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// GenerateReplenishmentList devuelve los productos con stock_actual <= punto_reorden con la cantidad
// sugerida (hasta 1.5x el punto de reorden) y su costo estimado, mayor déficit primero.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.LowStockItemResponse, error) {
	products, err := uc.productRepo.ListBelowReorderPoint(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemResponse, 0, len(products))
	for _, p := range products {
		qty := inventory.SuggestedOrder(p.Stock, p.ReorderPoint)
		out = append(out, dto.LowStockItemResponse{
			ProductID:          p.ID,
			SKU:                p.SKU,
			Name:               p.Name,
			Stock:              p.Stock,
			ReorderPoint:       p.ReorderPoint,
			SuggestedOrderQty:  qty,
			UnitCost:           p.PurchasePrice,
			EstimatedOrderCost: p.PurchasePrice.Mul(decimal.NewFromInt(int64(qty))),
			DefaultSupplierID:  p.DefaultSupplierID,
		})
	}

	// Mayor déficit absoluto primero; desempate por SKU para un orden estable.
	sort.SliceStable(out, func(i, j int) bool {
		defA := out[i].ReorderPoint - out[i].Stock
		defB := out[j].ReorderPoint - out[j].Stock
		if defA != defB {
			return defA > defB
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}
