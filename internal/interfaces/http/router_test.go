package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot-api/internal/application/analytics"
	"github.com/stockpilot/stockpilot-api/internal/application/auth"
	"github.com/stockpilot/stockpilot-api/internal/application/catalog"
	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/application/sales"
	"github.com/stockpilot/stockpilot-api/internal/application/usecase"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/excel"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/memory"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/pdf"
	apphttp "github.com/stockpilot/stockpilot-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	testPassphrase = "clave-de-mantenimiento"
	adminUser      = "admin"
	adminPass      = "admin-password"
	employeeUser   = "cajero"
	employeePass   = "cajero-password"
)

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newTestServer(t *testing.T, loginRateLimit int) *testServer {
	t.Helper()
	store := memory.NewStore()
	clock := domain.FixedClock{T: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	loc := time.UTC

	engine := inventory.NewRegisterMovementUseCase(store, store.Products(), clock, inventory.Hooks{}, nil)
	checkout := inventory.NewCheckoutUseCase(engine, store, store.Products(), clock, inventory.Hooks{}, nil)
	ledger := inventory.NewLedgerUseCase(store.Movements(), loc, testPassphrase, inventory.Hooks{}, nil)
	configUC := usecase.NewStoreConfigUseCase(store.StoreConfig())
	authUC := auth.NewAuthUseCase(store.Users(), clock, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 30, Issuer: testIssuer})

	ctx := context.Background()
	_, err := authUC.EnsureAdmin(ctx, adminUser, adminPass)
	require.NoError(t, err)
	_, err = authUC.RegisterUser(ctx, dto.RegisterRequest{Username: employeeUser, Password: employeePass})
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:           authUC,
		UserUC:           usecase.NewUserUseCase(store.Users(), nil),
		ProductUC:        usecase.NewProductUseCase(store.Products(), store.Suppliers(), clock, nil, nil),
		SupplierUC:       usecase.NewSupplierUseCase(store.Suppliers()),
		StoreConfigUC:    configUC,
		RegisterMovement: engine,
		Ledger:           ledger,
		Checkout:         checkout,
		Replenishment:    inventory.NewReplenishmentUseCase(store.Products()),
		Reports:          analytics.NewReportUseCase(store.Analytics(), store.Products(), clock, loc, nil, nil),
		Ticket:           sales.NewTicketUseCase(checkout, configUC, pdf.NewMarotoPDFGenerator(), clock, loc),
		Excel:            catalog.NewExcelUseCase(excel.NewCodec(), engine, store, store.Products(), clock, nil, nil),
		JWTSecret:        testJWTSecret,
		LoginRateLimit:   loginRateLimit,
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/token", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login de %s", username)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return out.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) seedProduct(t *testing.T, sku string, stock int, salePrice string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		SKU: sku, Name: "Producto " + sku, Stock: stock, ReorderPoint: 2,
		PurchasePrice: decimal.RequireFromString("1.00"),
		SalePrice:     decimal.RequireFromString(salePrice),
	}
	require.NoError(t, s.store.Products().Create(context.Background(), p))
	return p
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_JSONYForm(t *testing.T) {
	s := newTestServer(t, 0)
	assert.NotEmpty(t, s.login(t, adminUser, adminPass))

	form := url.Values{"username": {employeeUser}, "password": {employeePass}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "login por formulario")

	var out dto.LoginResponse
	decode(t, resp, &out)
	assert.Equal(t, "bearer", out.TokenType)
	assert.Equal(t, entity.RoleEmpleado, out.User.Role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	s := newTestServer(t, 0)
	for _, in := range []dto.LoginRequest{
		{Username: adminUser, Password: "otra"},
		{Username: "nadie", Password: "x"},
	} {
		resp := s.do(t, http.MethodPost, "/api/auth/token", "", in)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "usuario %q", in.Username)
	}
}

func TestLogin_LimiteDeIntentos(t *testing.T) {
	s := newTestServer(t, 2)
	in := dto.LoginRequest{Username: adminUser, Password: "mala"}
	for i := 0; i < 2; i++ {
		resp := s.do(t, http.MethodPost, "/api/auth/token", "", in)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := s.do(t, http.MethodPost, "/api/auth/token", "", in)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRutaProtegida_SinToken(t *testing.T) {
	s := newTestServer(t, 0)
	resp := s.do(t, http.MethodGet, "/api/productos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsuarios_SoloAdmin(t *testing.T) {
	s := newTestServer(t, 0)
	body := dto.RegisterRequest{Username: "nuevo", Password: "password-largo"}

	resp := s.do(t, http.MethodPost, "/api/usuarios", s.login(t, employeeUser, employeePass), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "empleado no registra usuarios")

	admin := s.login(t, adminUser, adminPass)
	resp = s.do(t, http.MethodPost, "/api/usuarios", admin, body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/usuarios", admin, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "username duplicado")

	resp = s.do(t, http.MethodGet, "/api/usuarios", admin, nil)
	var users []dto.UserResponse
	decode(t, resp, &users)
	assert.Len(t, users, 3)
}

func TestUsuarios_NoPuedeBorrarseASiMismo(t *testing.T) {
	s := newTestServer(t, 0)
	admin := s.login(t, adminUser, adminPass)
	u, err := s.store.Users().GetByUsername(context.Background(), adminUser)
	require.NoError(t, err)

	resp := s.do(t, http.MethodDelete, "/api/usuarios/"+itoa(u.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductos_CrearYValidar(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.login(t, employeeUser, employeePass)

	resp := s.do(t, http.MethodPost, "/api/productos", tok, map[string]any{"nombre": "Sin SKU"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "sku requerido")

	resp = s.do(t, http.MethodPost, "/api/productos", tok, map[string]any{
		"sku": "A-1", "nombre": "Arroz", "precio_compra": "18.50", "precio_venta": "25.00", "stock_actual": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, entity.DefaultReorderPoint, p.ReorderPoint)

	resp = s.do(t, http.MethodGet, "/api/productos/999", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/productos/"+itoa(p.ID), tok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "borrar es solo admin")
}

func TestMovimientos_SalidaSinStockYEntrada(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.login(t, employeeUser, employeePass)
	p := s.seedProduct(t, "B-1", 2, "10.00")

	resp := s.do(t, http.MethodPost, "/api/movimientos", tok, map[string]any{
		"producto_id": p.ID, "tipo_movimiento": "SALIDA", "cantidad": 5,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = s.do(t, http.MethodPost, "/api/movimientos", tok, map[string]any{
		"sku": "B-1", "tipo_movimiento": "entrada", "cantidad": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mov dto.MovementResponse
	decode(t, resp, &mov)
	assert.Equal(t, 5, mov.NewStock)
	assert.Equal(t, employeeUser, mov.Actor, "el actor sale del token")

	resp = s.do(t, http.MethodPost, "/api/movimientos", tok, map[string]any{
		"producto_id": p.ID, "tipo_movimiento": "AJUSTE", "cantidad": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/movimientos?fecha_inicio=2024-05-10&fecha_fin=2024-05-10", tok, nil)
	var entries []dto.LedgerEntryResponse
	decode(t, resp, &entries)
	assert.Len(t, entries, 1)
}

func TestMovimientos_Purga(t *testing.T) {
	s := newTestServer(t, 0)
	p := s.seedProduct(t, "C-1", 0, "1.00")
	emp := s.login(t, employeeUser, employeePass)
	resp := s.do(t, http.MethodPost, "/api/movimientos", emp, map[string]any{
		"producto_id": p.ID, "tipo_movimiento": "ENTRADA", "cantidad": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	purge := func(token, passphrase string) *http.Response {
		req := httptest.NewRequest(http.MethodDelete, "/api/movimientos/limpiar?fecha_limite=2024-05-11", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(apphttp.HeaderMaintenancePassphrase, passphrase)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusForbidden, purge(emp, testPassphrase).StatusCode)

	admin := s.login(t, adminUser, adminPass)
	assert.Equal(t, http.StatusUnauthorized, purge(admin, "incorrecta").StatusCode)

	resp = purge(admin, testPassphrase)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.PurgeResponse
	decode(t, resp, &out)
	assert.Equal(t, int64(1), out.Deleted)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_YCorteDelDia(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.login(t, employeeUser, employeePass)
	a := s.seedProduct(t, "V-1", 10, "12.50")
	s.seedProduct(t, "V-2", 1, "10.00")

	resp := s.do(t, http.MethodPost, "/api/ventas/checkout", tok, map[string]any{
		"items": []map[string]any{{"producto_id": a.ID, "cantidad": 2}, {"sku": "V-2", "cantidad": 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.CheckoutResponse
	decode(t, resp, &out)
	assert.True(t, decimal.RequireFromString("35").Equal(out.Total), "total %s", out.Total)

	resp = s.do(t, http.MethodPost, "/api/ventas/checkout", tok, map[string]any{
		"items": []map[string]any{{"producto_id": a.ID, "cantidad": 1}, {"sku": "V-2", "cantidad": 1}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "V-2 ya no tiene stock")

	resp = s.do(t, http.MethodGet, "/api/reportes/corte-dia", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cut dto.DailyCutoffResponse
	decode(t, resp, &cut)
	assert.Equal(t, "2024-05-10", cut.Date)
	assert.Equal(t, 2, cut.Transactions)
	assert.Equal(t, 3, cut.ItemsSold)
	assert.True(t, decimal.RequireFromString("35").Equal(cut.TotalSold))

	resp = s.do(t, http.MethodGet, "/api/reportes/corte-dia?fecha=10-05-2024", tok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "fecha mal formada")
}

func TestTicketPDF(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.login(t, employeeUser, employeePass)
	s.seedProduct(t, "T-1", 5, "3.00")

	resp := s.do(t, http.MethodPost, "/api/ventas/ticket-pdf", tok, map[string]any{
		"items": []map[string]any{{"sku": "T-1", "cantidad": 2}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	p, _ := s.store.Products().GetBySKU(context.Background(), "T-1")
	assert.Equal(t, 5, p.Stock, "el ticket no descuenta stock")

	resp = s.do(t, http.MethodPost, "/api/ventas/ticket-pdf", tok, map[string]any{
		"items": []map[string]any{{"sku": "NO-EXISTE", "cantidad": 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportes_ValorYFinanzas(t *testing.T) {
	s := newTestServer(t, 0)
	tok := s.login(t, employeeUser, employeePass)
	s.seedProduct(t, "R-1", 3, "2.00") // costo 1.00

	resp := s.do(t, http.MethodGet, "/api/reportes/valor-inventario", tok, nil)
	var val dto.InventoryValuationResponse
	decode(t, resp, &val)
	assert.True(t, decimal.RequireFromString("3").Equal(val.Value))

	resp = s.do(t, http.MethodGet, "/api/reportes/finanzas", tok, nil)
	var fin dto.FinanceSummaryResponse
	decode(t, resp, &fin)
	assert.True(t, decimal.RequireFromString("3").Equal(fin.PotentialProfit))
	assert.Equal(t, int64(1), fin.ProductCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Configuración y Excel
// ──────────────────────────────────────────────────────────────────────────────

func TestConfiguracion(t *testing.T) {
	s := newTestServer(t, 0)
	emp := s.login(t, employeeUser, employeePass)

	resp := s.do(t, http.MethodGet, "/api/configuracion", emp, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	in := dto.StoreConfigRequest{StoreName: "Abarrotes Lupita", Address: "Centro", TicketMessage: "Gracias"}
	resp = s.do(t, http.MethodPut, "/api/configuracion", emp, in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/configuracion", s.login(t, adminUser, adminPass), in)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/configuracion", emp, nil)
	var cfg dto.StoreConfigResponse
	decode(t, resp, &cfg)
	assert.Equal(t, "Abarrotes Lupita", cfg.StoreName)
}

func TestExcel_ExportarEImportar(t *testing.T) {
	s := newTestServer(t, 0)
	s.seedProduct(t, "X-1", 5, "4.00")
	admin := s.login(t, adminUser, adminPass)

	resp := s.do(t, http.MethodGet, "/api/productos/exportar-excel", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "inventario.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/productos/importar-excel", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ImportResultResponse
	decode(t, resp, &out)
	assert.Equal(t, 1, out.Updated, "reimportar lo exportado actualiza sin crear")
	assert.Equal(t, 0, out.Created)
	assert.Equal(t, 0, out.Adjusted, "mismo stock, sin movimiento")
}

func itoa(id int64) string {
	return decimal.NewFromInt(id).String()
}
