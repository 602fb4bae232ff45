package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dicri/evidence-api/config"
	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/handlers"
	"github.com/dicri/evidence-api/logger"
	"github.com/dicri/evidence-api/metrics"
	"github.com/dicri/evidence-api/middleware"
	"github.com/dicri/evidence-api/repository"
	"github.com/dicri/evidence-api/routes"
	"github.com/dicri/evidence-api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version se sobreescribe en el build con -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dicri-api",
		Short:         "API de expedientes e indicios de DICRI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Cargar variables de entorno
			if err := godotenv.Load(); err != nil {
				log.Println("Advertencia: No se pudo cargar el archivo .env")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Inicia el servidor HTTP (comando por defecto)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "dbcheck",
			Short: "Verifica la conexión a la base de datos",
			RunE: func(cmd *cobra.Command, args []string) error {
				return dbcheck(cmd.Context(), cmd)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Muestra la versión",
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Println(version)
			},
		},
	)
	return root
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuración inválida: %w", err)
	}

	logg, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logg.Sync() }()

	m := metrics.NewManager(metrics.WithRuntimeCollectors())

	// Conectar a la base de datos. El pool conecta bajo demanda, así que el
	// servidor arranca aunque la base no responda todavía.
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if serverVersion, err := database.Ping(ctx, pool); err != nil {
		logg.Warn("la base de datos no responde; las peticiones fallarán hasta que esté disponible", zap.Error(err))
	} else {
		logg.Info("conexión a la base de datos establecida", zap.String("server_version", serverVersion))
	}

	procs := database.NewProcedures(pool, m, logg)
	jwt := middleware.NewJWT(cfg.JWTSecret, cfg.JWTTTL)

	h := routes.Handlers{
		Auth: handlers.NewAuthHandler(
			services.NewAuthService(repository.NewAuthRepository(procs), jwt, logg), logg),
		Expedientes: handlers.NewExpedienteHandler(
			services.NewExpedienteService(repository.NewExpedienteRepository(procs), logg), logg),
		Indicios: handlers.NewIndicioHandler(
			services.NewIndicioService(repository.NewIndicioRepository(procs), logg), logg),
		Reportes: handlers.NewReporteHandler(
			services.NewReporteService(repository.NewReporteRepository(procs), logg), logg),
		Catalogos: handlers.NewCatalogoHandler(
			services.NewCatalogoService(repository.NewCatalogoRepository(procs), logg), logg),
		Health: handlers.NewHealthHandler(pool, version, logg),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(logg),
		AppName:               "DICRI Evidence API " + version,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Configurar rutas
	if err := routes.SetupRoutes(app, routes.Deps{
		Config:  cfg,
		Logger:  logg,
		Metrics: m,
		JWT:     jwt,
	}, h); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info("servidor iniciado",
			zap.String("addr", cfg.Addr),
			zap.String("environment", cfg.Environment),
			zap.String("version", version),
		)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info("apagando el servidor")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("error al apagar el servidor: %w", err)
	}
	return nil
}

func dbcheck(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuración inválida: %w", err)
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	serverVersion, err := database.Ping(ctx, pool)
	if err != nil {
		return fmt.Errorf("la base de datos no responde: %w", err)
	}
	cmd.Println(serverVersion)
	return nil
}
