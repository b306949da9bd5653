// Package analytics contiene los casos de uso de reportes: valor del inventario,
// corte del día y resumen financiero.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

// DeletedProductName nombre mostrado en el corte para movimientos de productos eliminados.
const DeletedProductName = "Producto eliminado"

// ReportCache caché opcional de reportes. Las claves se invalidan al incrementar la versión.
// Get resuelve la clave versionada una sola vez y Set escribe bajo esa misma clave.
type ReportCache interface {
	Get(ctx context.Context, name string, dest any) (key string, ok bool, err error)
	Set(ctx context.Context, key string, value any) error
}

// ReportUseCase reportes read-only sobre AnalyticsRepository.
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
	clock         domain.Clock
	loc           *time.Location
	cache         ReportCache
	log           *logger.Logger
}

// NewReportUseCase construye el caso de uso. cache puede ser nil.
func NewReportUseCase(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	clock domain.Clock,
	loc *time.Location,
	cache ReportCache,
	log *logger.Logger,
) *ReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
		clock:         clock,
		loc:           loc,
		cache:         cache,
		log:           log,
	}
}

// cached intenta leer key de la caché; si no está, ejecuta load y guarda el resultado.
// Un fallo de la caché nunca rompe el reporte.
func cached[T any](ctx context.Context, uc *ReportUseCase, name string, load func() (T, error)) (T, error) {
	var key string
	if uc.cache != nil {
		var hit T
		k, ok, err := uc.cache.Get(ctx, name, &hit)
		if err != nil {
			uc.log.Warn().Err(err).Str("clave", name).Msg("leer caché de reportes")
		} else if ok {
			return hit, nil
		} else {
			key = k
		}
	}
	val, err := load()
	if err != nil {
		return val, err
	}
	if uc.cache != nil && key != "" {
		if err := uc.cache.Set(ctx, key, val); err != nil {
			uc.log.Warn().Err(err).Str("clave", key).Msg("guardar caché de reportes")
		}
	}
	return val, nil
}

// InventoryValuation suma stock_actual * precio_compra. Nunca nulo: 0 sin productos.
func (uc *ReportUseCase) InventoryValuation(ctx context.Context) (*dto.InventoryValuationResponse, error) {
	return cached(ctx, uc, "valor-inventario", func() (*dto.InventoryValuationResponse, error) {
		v, err := uc.analyticsRepo.GetInventoryValuation(ctx)
		if err != nil {
			return nil, fmt.Errorf("valor del inventario: %w", err)
		}
		return &dto.InventoryValuationResponse{Value: v.Round(2)}, nil
	})
}

// DailyCutoff corte del día (YYYY-MM-DD; vacío = hoy en la zona de la tienda).
// Las SALIDAS se valorizan al precio de venta ACTUAL del producto.
func (uc *ReportUseCase) DailyCutoff(ctx context.Context, day string) (*dto.DailyCutoffResponse, error) {
	var date time.Time
	if day == "" {
		date = inventory.StartOfDay(uc.clock.Now(), uc.loc)
	} else {
		d, err := inventory.ParseDay(day, uc.loc)
		if err != nil {
			return nil, err
		}
		date = d
	}
	label := date.Format(inventory.DateLayout)

	return cached(ctx, uc, "corte-dia:"+label, func() (*dto.DailyCutoffResponse, error) {
		start, end := inventory.DayWindow(date, uc.loc)
		lines, err := uc.analyticsRepo.GetSaleLines(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("corte del día %s: %w", label, err)
		}

		out := &dto.DailyCutoffResponse{
			Date:      label,
			TotalSold: decimal.Zero,
			Lines:     make([]dto.CutoffLineDTO, 0, len(lines)),
		}
		for _, l := range lines {
			name := DeletedProductName
			subtotal := decimal.Zero
			if l.ProductName != nil {
				name = *l.ProductName
			}
			if l.SalePrice != nil {
				subtotal = l.SalePrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
			}
			out.TotalSold = out.TotalSold.Add(subtotal)
			out.ItemsSold += l.Quantity
			out.Transactions++
			out.Lines = append(out.Lines, dto.CutoffLineDTO{
				Product:  name,
				Quantity: l.Quantity,
				Subtotal: subtotal.Round(2),
				Time:     l.Date.In(uc.loc).Format("15:04:05"),
			})
		}
		out.TotalSold = out.TotalSold.Round(2)
		return out, nil
	})
}

// FinanceSummary capital a costo y a precio de venta, ganancia potencial y conteo de bajo stock.
// Las dos consultas corren en paralelo.
func (uc *ReportUseCase) FinanceSummary(ctx context.Context) (*dto.FinanceSummaryResponse, error) {
	return cached(ctx, uc, "finanzas", func() (*dto.FinanceSummaryResponse, error) {
		var (
			totals   repository.StockTotalsResult
			lowStock int
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			totals, err = uc.analyticsRepo.GetStockTotals(gctx)
			if err != nil {
				return fmt.Errorf("totales de stock: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			low, err := uc.productRepo.ListBelowReorderPoint(gctx)
			if err != nil {
				return fmt.Errorf("productos bajo stock: %w", err)
			}
			lowStock = len(low)
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return &dto.FinanceSummaryResponse{
			CostValue:       totals.CostValue.Round(2),
			SaleValue:       totals.SaleValue.Round(2),
			PotentialProfit: totals.SaleValue.Sub(totals.CostValue).Round(2),
			TotalUnits:      totals.TotalUnits,
			ProductCount:    totals.ProductCount,
			LowStockCount:   lowStock,
		}, nil
	})
}
