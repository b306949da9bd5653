package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/stockpilot/stockpilot-api/internal/application/analytics"
	"github.com/stockpilot/stockpilot-api/internal/application/auth"
	"github.com/stockpilot/stockpilot-api/internal/application/catalog"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/application/sales"
	"github.com/stockpilot/stockpilot-api/internal/application/usecase"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/cache"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/excel"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/memory"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/metrics"
	infrapdf "github.com/stockpilot/stockpilot-api/internal/infrastructure/pdf"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/postgres"
	httpRouter "github.com/stockpilot/stockpilot-api/internal/interfaces/http"
	"github.com/stockpilot/stockpilot-api/pkg/config"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

// storage repositorios y TxRunner del driver elegido.
type storage struct {
	tx        inventory.TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
	config    repository.StoreConfigRepository
	suppliers repository.SupplierRepository
	analytics repository.AnalyticsRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			tx:        store,
			products:  store.Products(),
			movements: store.Movements(),
			users:     store.Users(),
			config:    store.StoreConfig(),
			suppliers: store.Suppliers(),
			analytics: store.Analytics(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		users:     postgres.NewUserRepository(pool),
		config:    postgres.NewStoreConfigRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Str("timezone", cfg.App.Timezone).
		Msg("iniciando aplicación")

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}
	clock := domain.SystemClock{Location: loc}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer store.close()

	// Caché de reportes opcional
	var reportCache *cache.ReportCache
	if cfg.Redis.Addr != "" {
		client, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, reportes sin caché")
		} else {
			defer client.Close()
			reportCache = cache.NewReportCache(client, cfg.App.Name+":reportes", cfg.Redis.TTL)
		}
	}

	m := metrics.New(strings.ReplaceAll(cfg.App.Name, "-", "_"))
	hooks := inventory.Hooks{Recorder: m}
	var reports analytics.ReportCache
	var notifier inventory.ChangeNotifier
	if reportCache != nil {
		hooks.Notifier = reportCache
		reports = reportCache
		notifier = reportCache
	}

	engine := inventory.NewRegisterMovementUseCase(store.tx, store.products, clock, hooks, log)
	checkoutUC := inventory.NewCheckoutUseCase(engine, store.tx, store.products, clock, hooks, log)
	ledgerUC := inventory.NewLedgerUseCase(store.movements, loc, cfg.Maintenance.Passphrase, hooks, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.products)
	reportUC := analytics.NewReportUseCase(store.analytics, store.products, clock, loc, reports, log)
	productUC := usecase.NewProductUseCase(store.products, store.suppliers, clock, notifier, log)
	supplierUC := usecase.NewSupplierUseCase(store.suppliers)
	configUC := usecase.NewStoreConfigUseCase(store.config)
	userUC := usecase.NewUserUseCase(store.users, log)
	ticketUC := sales.NewTicketUseCase(checkoutUC, configUC, infrapdf.NewMarotoPDFGenerator(), clock, loc)
	excelUC := catalog.NewExcelUseCase(excel.NewCodec(), engine, store.tx, store.products, clock, notifier, log)
	authUC := auth.NewAuthUseCase(store.users, clock, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Bootstrap.AdminUsername != "" && cfg.Bootstrap.AdminPassword != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("asegurar administrador inicial")
		}
		log.Info().Str("username", cfg.Bootstrap.AdminUsername).Bool("creado", created).Msg("administrador inicial")
	}

	if cfg.Maintenance.Passphrase == "" {
		log.Warn().Msg("MAINTENANCE_PASSPHRASE no configurada: purga de movimientos deshabilitada")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 << 20,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderMaintenancePassphrase,
	}))
	app.Use(httpRouter.RequestLogger(log))
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "StockPilot API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           userUC,
		ProductUC:        productUC,
		SupplierUC:       supplierUC,
		StoreConfigUC:    configUC,
		RegisterMovement: engine,
		Ledger:           ledgerUC,
		Checkout:         checkoutUC,
		Replenishment:    replenishmentUC,
		Reports:          reportUC,
		Ticket:           ticketUC,
		Excel:            excelUC,
		JWTSecret:        cfg.JWT.Secret,
		LoginRateLimit:   cfg.HTTP.LoginRateLimit,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
