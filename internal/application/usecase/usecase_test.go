package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot-api/internal/application/auth"
	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/usecase"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/memory"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

var testClock = domain.FixedClock{T: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}

type countingNotifier struct{ n int }

func (c *countingNotifier) Bump(context.Context) error { c.n++; return nil }

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func newProductUseCase() (*usecase.ProductUseCase, *memory.Store, *countingNotifier) {
	store := memory.NewStore()
	n := &countingNotifier{}
	return usecase.NewProductUseCase(store.Products(), store.Suppliers(), testClock, n, nil), store, n
}

type failingNotifier struct{}

func (failingNotifier) Bump(context.Context) error { return errors.New("redis caído") }

func TestProduct_FalloAlInvalidarCacheSeRegistra(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Level: "warn", Output: &buf})
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store.Products(), store.Suppliers(), testClock, failingNotifier{}, log)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "A", Name: "Arroz"})
	require.NoError(t, err, "el alta no depende de la caché")
	assert.Contains(t, buf.String(), "invalidar caché de reportes")
	assert.Contains(t, buf.String(), "redis caído")
}

func TestProduct_CreateValidaciones(t *testing.T) {
	uc, _, n := newProductUseCase()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Arroz", SalePrice: decimal.RequireFromString("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio negativo")

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Arroz", Stock: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "stock negativo")

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Arroz", DefaultSupplierID: ptr(int64(99))})
	assert.ErrorIs(t, err, domain.ErrNotFound, "proveedor inexistente")

	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: " A ", Name: "Arroz", Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, "A", p.SKU)
	assert.Equal(t, entity.DefaultReorderPoint, p.ReorderPoint)
	assert.Equal(t, 1, n.n, "el alta invalida la caché")

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProduct_UpdateNoTocaStock(t *testing.T) {
	uc, store, _ := newProductUseCase()
	ctx := context.Background()
	a, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Arroz", Stock: 7})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "B", Name: "Frijol"})
	require.NoError(t, err)

	out, err := uc.Update(ctx, a.ID, dto.UpdateProductRequest{
		Name:         ptr("Arroz blanco"),
		SalePrice:    ptr(decimal.RequireFromString("20")),
		ReorderPoint: ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Arroz blanco", out.Name)
	assert.Equal(t, 7, out.Stock)

	_, err = uc.Update(ctx, a.ID, dto.UpdateProductRequest{SKU: ptr("B")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Update(ctx, 404, dto.UpdateProductRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := store.Products().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Stock)
}

func TestProduct_ListBusquedaYPaginacion(t *testing.T) {
	uc, _, _ := newProductUseCase()
	ctx := context.Background()
	for _, in := range []dto.CreateProductRequest{
		{SKU: "AR-1", Name: "Arroz"}, {SKU: "AR-2", Name: "Arroz integral"}, {SKU: "FR-1", Name: "Frijol"},
	} {
		_, err := uc.Create(ctx, in)
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, "arroz", dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Page.Total)

	out, err = uc.List(ctx, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)
	assert.Equal(t, 100, out.Page.Limit, "límite por defecto")
}

func TestProduct_DeleteInexistente(t *testing.T) {
	uc, _, _ := newProductUseCase()
	assert.ErrorIs(t, uc.Delete(context.Background(), 1), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUser_NoSeBorraElUltimoAdmin(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	authUC := auth.NewAuthUseCase(store.Users(), testClock, auth.JWTConfig{Secret: "s", ExpMinutes: 5})
	admin, err := authUC.RegisterUser(ctx, dto.RegisterRequest{Username: "admin", Password: "password-1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	other, err := authUC.RegisterUser(ctx, dto.RegisterRequest{Username: "cajero", Password: "password-1"})
	require.NoError(t, err)

	uc := usecase.NewUserUseCase(store.Users(), nil)
	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, admin.ID), domain.ErrConflict, "no a sí mismo")
	assert.ErrorIs(t, uc.Delete(ctx, other.ID, admin.ID), domain.ErrConflict, "último admin")
	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, 999), domain.ErrUserNotFound)

	require.NoError(t, uc.Delete(ctx, admin.ID, other.ID))
	users, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
}

func TestUser_BorradoCruzadoDeAdmins_QuedaUno(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	authUC := auth.NewAuthUseCase(store.Users(), testClock, auth.JWTConfig{Secret: "s", ExpMinutes: 5})
	a, err := authUC.RegisterUser(ctx, dto.RegisterRequest{Username: "admin-a", Password: "password-1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	b, err := authUC.RegisterUser(ctx, dto.RegisterRequest{Username: "admin-b", Password: "password-1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	uc := usecase.NewUserUseCase(store.Users(), nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pair := range [][2]int64{{a.ID, b.ID}, {b.ID, a.ID}} {
		wg.Add(1)
		go func(i int, actor, target int64) {
			defer wg.Done()
			errs[i] = uc.Delete(ctx, actor, target)
		}(i, pair[0], pair[1])
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	assert.Equal(t, 1, ok, "solo un borrado se confirma")

	users, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, entity.RoleAdmin, users[0].Role)
}

// ──────────────────────────────────────────────────────────────────────────────
// Configuración y proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestStoreConfig_PrimeraLecturaCreaDefaults(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewStoreConfigUseCase(store.StoreConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := uc.Get(ctx)
			assert.NoError(t, err)
			assert.Equal(t, entity.DefaultStoreConfig().StoreName, cfg.StoreName)
		}()
	}
	wg.Wait()

	// la fila ya existe: otros defaults no la reemplazan
	existing, err := store.StoreConfig().GetOrCreate(ctx, entity.StoreConfig{ID: entity.StoreConfigID, StoreName: "Otra"})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultStoreConfig().StoreName, existing.StoreName)

	_, err = uc.Update(ctx, dto.StoreConfigRequest{StoreName: " Abarrotes Lupita ", TicketMessage: "Vuelva pronto"})
	require.NoError(t, err)
	out, err := uc.GetResponse(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Abarrotes Lupita", out.StoreName, "una lectura posterior no restablece los defaults")
	assert.Equal(t, "Vuelva pronto", out.TicketMessage)
}

func TestSupplier_CreateYList(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewSupplierUseCase(store.Suppliers())
	ctx := context.Background()

	s, err := uc.Create(ctx, dto.SupplierRequest{CompanyName: "Distribuidora Norte"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.LeadTimeDays, "tiempo de entrega por defecto")

	_, err = uc.Create(ctx, dto.SupplierRequest{CompanyName: "X", LeadTimeDays: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
