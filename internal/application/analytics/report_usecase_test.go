package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot-api/internal/application/analytics"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/memory"
)

// cst zona de la tienda en las pruebas (UTC-6, sin horario de verano).
var cst = time.FixedZone("CST", -6*60*60)

// mapCache caché en memoria con ida y vuelta por JSON y claves versionadas, como la de Redis.
type mapCache struct {
	data    map[string][]byte
	version int
	fail    bool
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, name string, dest any) (string, bool, error) {
	if c.fail {
		return "", false, errors.New("caída")
	}
	key := fmt.Sprintf("v%d:%s", c.version, name)
	raw, ok := c.data[key]
	if !ok {
		return key, false, nil
	}
	return key, true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	if c.fail {
		return errors.New("caída")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mapCache) Bump(context.Context) error { c.version++; return nil }

// bumpingAnalytics simula un cambio confirmado mientras se calcula el reporte.
type bumpingAnalytics struct {
	repository.AnalyticsRepository
	onLoad func()
}

func (b *bumpingAnalytics) GetInventoryValuation(ctx context.Context) (decimal.Decimal, error) {
	v, err := b.AnalyticsRepository.GetInventoryValuation(ctx)
	if b.onLoad != nil {
		b.onLoad()
	}
	return v, err
}

func seed(t *testing.T, store *memory.Store, sku string, stock int, cost, price string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		SKU: sku, Name: "Producto " + sku, Stock: stock, ReorderPoint: 5,
		PurchasePrice: decimal.RequireFromString(cost),
		SalePrice:     decimal.RequireFromString(price),
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func sell(t *testing.T, store *memory.Store, at time.Time, id int64, qty int) {
	t.Helper()
	engine := inventory.NewRegisterMovementUseCase(store, store.Products(), domain.FixedClock{T: at}, inventory.Hooks{}, nil)
	_, err := engine.ApplyMovement(context.Background(), inventory.MovementInput{
		Product: inventory.ProductByID(id), Type: entity.MovementTypeSalida, Quantity: qty, Actor: "cajero",
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Corte del día
// ──────────────────────────────────────────────────────────────────────────────

func TestDailyCutoff_PrecioActualYProductoEliminado(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	a := seed(t, store, "A", 10, "5.00", "10.00")
	b := seed(t, store, "B", 10, "1.00", "3.00")

	// 21:00 hora local del día 10 = 03:00 UTC del día 11
	sell(t, store, time.Date(2024, 5, 11, 3, 0, 0, 0, time.UTC), a.ID, 2)
	sell(t, store, time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC), b.ID, 1)
	// otro día, no entra
	sell(t, store, time.Date(2024, 5, 11, 15, 0, 0, 0, time.UTC), a.ID, 1)

	a.SalePrice = decimal.RequireFromString("12.00")
	require.NoError(t, store.Products().Update(ctx, a))
	require.NoError(t, store.Products().Delete(ctx, b.ID))

	clock := domain.FixedClock{T: time.Date(2024, 5, 10, 18, 0, 0, 0, cst)}
	uc := analytics.NewReportUseCase(store.Analytics(), store.Products(), clock, cst, nil, nil)

	out, err := uc.DailyCutoff(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", out.Date, "vacío = hoy en la zona de la tienda")
	assert.Equal(t, 2, out.Transactions)
	assert.Equal(t, 3, out.ItemsSold)
	assert.True(t, decimal.RequireFromString("24").Equal(out.TotalSold),
		"A se valoriza al precio actual (12) y B eliminado suma 0; total %s", out.TotalSold)

	byName := map[string]string{}
	for _, l := range out.Lines {
		byName[l.Product] = l.Time
		if l.Product == analytics.DeletedProductName {
			assert.True(t, l.Subtotal.IsZero())
		}
	}
	assert.Contains(t, byName, analytics.DeletedProductName)
	assert.Equal(t, "21:00:00", byName["Producto A"], "hora en la zona de la tienda")
}

func TestDailyCutoff_DiaSinVentasYFechaInvalida(t *testing.T) {
	store := memory.NewStore()
	uc := analytics.NewReportUseCase(store.Analytics(), store.Products(), domain.FixedClock{T: time.Now()}, cst, nil, nil)

	out, err := uc.DailyCutoff(context.Background(), "2020-01-01")
	require.NoError(t, err)
	assert.True(t, out.TotalSold.IsZero())
	assert.NotNil(t, out.Lines, "detalle vacío, no nulo")

	_, err = uc.DailyCutoff(context.Background(), "2020/01/01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Valor y finanzas
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryValuation_VacioEsCero(t *testing.T) {
	store := memory.NewStore()
	uc := analytics.NewReportUseCase(store.Analytics(), store.Products(), domain.FixedClock{T: time.Now()}, cst, nil, nil)
	out, err := uc.InventoryValuation(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Value.IsZero())
}

func TestFinanceSummary(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "A", 10, "2.50", "4.00")
	seed(t, store, "B", 3, "1.00", "2.00") // bajo su punto de reorden (5)

	uc := analytics.NewReportUseCase(store.Analytics(), store.Products(), domain.FixedClock{T: time.Now()}, cst, nil, nil)
	out, err := uc.FinanceSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("28").Equal(out.CostValue), "costo %s", out.CostValue)
	assert.True(t, decimal.RequireFromString("46").Equal(out.SaleValue), "venta %s", out.SaleValue)
	assert.True(t, decimal.RequireFromString("18").Equal(out.PotentialProfit))
	assert.Equal(t, int64(13), out.TotalUnits)
	assert.Equal(t, int64(2), out.ProductCount)
	assert.Equal(t, 1, out.LowStockCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché
// ──────────────────────────────────────────────────────────────────────────────

func TestCache_SegundaLecturaDesdeCache(t *testing.T) {
	store := memory.NewStore()
	p := seed(t, store, "A", 2, "5.00", "6.00")
	cache := newMapCache()
	uc := analytics.NewReportUseCase(store.Analytics(), store.Products(), domain.FixedClock{T: time.Now()}, cst, cache, nil)
	ctx := context.Background()

	first, err := uc.InventoryValuation(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(first.Value))

	p.PurchasePrice = decimal.RequireFromString("100")
	require.NoError(t, store.Products().Update(ctx, p))

	second, err := uc.InventoryValuation(ctx)
	require.NoError(t, err)
	assert.True(t, first.Value.Equal(second.Value), "sin invalidar, se sirve la caché")
}

func TestCache_CambioDuranteLaCargaNoQuedaEnCache(t *testing.T) {
	store := memory.NewStore()
	p := seed(t, store, "A", 2, "5.00", "6.00")
	cache := newMapCache()
	ctx := context.Background()

	repo := &bumpingAnalytics{AnalyticsRepository: store.Analytics()}
	repo.onLoad = func() {
		repo.onLoad = nil
		p.PurchasePrice = decimal.RequireFromString("15.00")
		require.NoError(t, store.Products().Update(ctx, p))
		require.NoError(t, cache.Bump(ctx))
	}
	uc := analytics.NewReportUseCase(repo, store.Products(), domain.FixedClock{T: time.Now()}, cst, cache, nil)

	first, err := uc.InventoryValuation(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(first.Value), "valor leído antes del cambio")

	second, err := uc.InventoryValuation(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30").Equal(second.Value),
		"tras el Bump se recalcula; got %s", second.Value)
}

func TestCache_FalloNoRompeElReporte(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "A", 2, "5.00", "6.00")
	cache := newMapCache()
	cache.fail = true
	uc := analytics.NewReportUseCase(store.Analytics(), store.Products(), domain.FixedClock{T: time.Now()}, cst, cache, nil)

	out, err := uc.InventoryValuation(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(out.Value))
}
