package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/stockpilot/stockpilot-api/internal/application/analytics"
	"github.com/stockpilot/stockpilot-api/internal/application/auth"
	"github.com/stockpilot/stockpilot-api/internal/application/catalog"
	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/application/sales"
	"github.com/stockpilot/stockpilot-api/internal/application/usecase"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	ProductUC        *usecase.ProductUseCase
	SupplierUC       *usecase.SupplierUseCase
	StoreConfigUC    *usecase.StoreConfigUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Ledger           *inventory.LedgerUseCase
	Checkout         *inventory.CheckoutUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	Reports          *analytics.ReportUseCase
	Ticket           *sales.TicketUseCase
	Excel            *catalog.ExcelUseCase
	JWTSecret        string
	LoginRateLimit   int // intentos por minuto por IP; <= 0 desactiva el límite
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	loginHandlers := []fiber.Handler{}
	if deps.LoginRateLimit > 0 {
		loginHandlers = append(loginHandlers, limiter.New(limiter.Config{
			Max:        deps.LoginRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "TOO_MANY_REQUESTS", Message: "demasiados intentos, espere un minuto"})
			},
		}))
	}
	loginHandlers = append(loginHandlers, authHandler.Login)
	api.Post("/auth/token", loginHandlers...)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Usuarios (admin)
	users := protected.Group("/usuarios", adminOnly)
	users.Post("/", authHandler.Register)
	users.Get("/", authHandler.ListUsers)
	users.Delete("/:id", authHandler.DeleteUser)

	// Productos; las rutas fijas van antes de /:id
	products := protected.Group("/productos")
	productHandler := NewProductHandler(deps.ProductUC, deps.Replenishment, deps.Excel)
	products.Get("/bajo-stock", productHandler.LowStock)
	products.Get("/exportar-excel", productHandler.ExportExcel)
	products.Post("/importar-excel", adminOnly, productHandler.ImportExcel)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Proveedores
	suppliers := protected.Group("/proveedores")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", adminOnly, supplierHandler.Create)

	// Movimientos
	movements := protected.Group("/movimientos")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Ledger)
	movements.Post("/", inventoryHandler.RegisterMovement)
	movements.Get("/", inventoryHandler.ListMovements)
	movements.Delete("/limpiar", adminOnly, inventoryHandler.PurgeMovements)

	// Ventas
	salesGroup := protected.Group("/ventas")
	salesHandler := NewSalesHandler(deps.Checkout, deps.Ticket)
	salesGroup.Post("/checkout", salesHandler.Checkout)
	salesGroup.Post("/ticket-pdf", salesHandler.TicketPDF)

	// Reportes
	reports := protected.Group("/reportes")
	reportHandler := NewReportHandler(deps.Reports)
	reports.Get("/valor-inventario", reportHandler.InventoryValuation)
	reports.Get("/corte-dia", reportHandler.DailyCutoff)
	reports.Get("/finanzas", reportHandler.FinanceSummary)

	// Configuración de la tienda
	cfg := protected.Group("/configuracion")
	configHandler := NewStoreConfigHandler(deps.StoreConfigUC)
	cfg.Get("/", configHandler.Get)
	cfg.Put("/", adminOnly, configHandler.Update)
}
