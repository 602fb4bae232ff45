package routes

import (
	"strings"

	"github.com/dicri/evidence-api/config"
	"github.com/dicri/evidence-api/docs"
	"github.com/dicri/evidence-api/handlers"
	"github.com/dicri/evidence-api/metrics"
	"github.com/dicri/evidence-api/middleware"
	"github.com/dicri/evidence-api/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handlers agrupa los handlers que se montan en las rutas
type Handlers struct {
	Auth        *handlers.AuthHandler
	Expedientes *handlers.ExpedienteHandler
	Indicios    *handlers.IndicioHandler
	Reportes    *handlers.ReporteHandler
	Catalogos   *handlers.CatalogoHandler
	Health      *handlers.HealthHandler
}

// Deps es lo que necesitan las rutas además de los handlers
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Manager
	JWT     *middleware.JWT
}

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(app *fiber.App, deps Deps, h Handlers) error {
	cfg := deps.Config

	// Middleware global
	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(middleware.LoggingMiddleware(deps.Logger, deps.Metrics))
	app.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodOptions,
		}, ","),
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization",
		ExposeHeaders: fiber.HeaderXRequestID,
	}))
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Plataforma
	app.Get("/health", h.Health.Health)
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	if err := docs.Register(app); err != nil {
		return err
	}

	api := app.Group("/api", middleware.DefaultRateLimiter(cfg))
	auth := deps.JWT.Middleware()

	// === RUTAS PÚBLICAS ===
	api.Post("/auth/login", middleware.AuthRateLimiter(cfg), h.Auth.Login)
	api.Get("/catalogos/tipo-expediente", h.Catalogos.TiposExpediente)

	// === RUTAS PROTEGIDAS ===
	api.Get("/auth/me", auth, h.Auth.Me)

	expedientes := api.Group("/expedientes", auth)
	expedientes.Post("/", middleware.RequireRole(models.RolTecnico), h.Expedientes.Create)
	expedientes.Get("/", h.Expedientes.List)
	expedientes.Get("/:id", h.Expedientes.Get)
	expedientes.Put("/:id/review", middleware.RequireRole(models.RolCoordinador), h.Expedientes.Review)
	expedientes.Delete("/:id", h.Expedientes.Delete)

	indicios := api.Group("/indicios", auth)
	indicios.Post("/", middleware.RequireRole(models.RolTecnico), h.Indicios.Create)
	indicios.Get("/:expedienteId", h.Indicios.List)

	api.Get("/reports", auth, h.Reportes.Get)

	app.Use(handlers.NotFound)
	return nil
}
