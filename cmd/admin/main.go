// Command admin tareas de mantenimiento de la base de datos. No se expone por HTTP.
//
//	admin migrate
//	admin create-admin -username admin -password secreto
//	admin reset -confirm <nombre-de-la-base> -username admin -password secreto
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockpilot/stockpilot-api/internal/application/auth"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/postgres"
	"github.com/stockpilot/stockpilot-api/pkg/config"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "migrate":
		err = runMigrate(ctx, cfg, log)
	case "create-admin":
		err = runCreateAdmin(ctx, cfg, log, os.Args[2:])
	case "reset":
		err = runReset(ctx, cfg, log, os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Comando desconocido: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("comando", os.Args[1]).Msg("admin")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`StockPilot - administración

Uso:
  admin <comando> [opciones]

Comandos:
  migrate                                   Aplica las migraciones SQL pendientes
  create-admin -username U -password P      Crea el administrador o le cambia la contraseña
  reset -confirm DB -username U -password P Vacía todas las tablas y crea un administrador
  help                                      Muestra esta ayuda

Variables de entorno:
  DATABASE_URL o DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE`)
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return pool, nil
}

func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		log.Info().Msg("esquema al día, sin migraciones pendientes")
		return nil
	}
	log.Info().Strs("aplicadas", applied).Msg("migraciones aplicadas")
	return nil
}

// adminFlags -username y -password comunes a create-admin y reset.
func adminFlags(fs *flag.FlagSet) (username, password *string) {
	username = fs.String("username", "admin", "usuario administrador")
	password = fs.String("password", "", "contraseña (mínimo 8 caracteres)")
	return username, password
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, username, password string) (bool, error) {
	if len(password) < 8 {
		return false, fmt.Errorf("%w: -password debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}
	loc, err := cfg.App.Location()
	if err != nil {
		return false, err
	}
	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), domain.SystemClock{Location: loc}, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	return authUC.EnsureAdmin(ctx, username, password)
}

func runCreateAdmin(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	username, password := adminFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	created, err := ensureAdmin(ctx, pool, cfg, *username, *password)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("username", *username).Msg("administrador creado")
	} else {
		log.Info().Str("username", *username).Msg("administrador existente, contraseña actualizada")
	}
	return nil
}

func runReset(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	confirm := fs.String("confirm", "", "nombre de la base de datos, escrito de nuevo como confirmación")
	username, password := adminFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	dbName, err := postgres.CurrentDatabase(ctx, pool)
	if err != nil {
		return err
	}
	if *confirm == "" || *confirm != dbName {
		return fmt.Errorf("%w: -confirm debe ser exactamente %q", domain.ErrForbidden, dbName)
	}
	if len(*password) < 8 {
		return fmt.Errorf("%w: -password debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}

	log.Warn().Str("base", dbName).Msg("auditoría: reset de datos solicitado")
	if err := postgres.ResetData(ctx, pool); err != nil {
		return err
	}
	if _, err := ensureAdmin(ctx, pool, cfg, *username, *password); err != nil {
		return fmt.Errorf("recrear administrador: %w", err)
	}
	log.Warn().Str("base", dbName).Str("admin", *username).Msg("auditoría: datos borrados, administrador recreado")
	return nil
}
