package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dicri/evidence-api/models"
	"github.com/dicri/evidence-api/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthService resuelve el login
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
}

// ExpedienteService es la lógica de expedientes que usan los handlers
type ExpedienteService interface {
	Create(ctx context.Context, in models.NuevoExpediente) (int, error)
	List(ctx context.Context, estado string) ([]models.Expediente, error)
	Get(ctx context.Context, id int) (*models.Expediente, error)
	Review(ctx context.Context, id int, status string, justificacion *string, userID int) error
	Delete(ctx context.Context, id, userID int) error
}

// IndicioService es la lógica de indicios que usan los handlers
type IndicioService interface {
	Create(ctx context.Context, in models.NuevoIndicio) (int, error)
	List(ctx context.Context, expedienteID int) ([]models.Indicio, error)
}

// ReporteService genera el reporte
type ReporteService interface {
	Get(ctx context.Context, filtro models.ReporteFiltro) ([]models.Registro, error)
}

// CatalogoService lista los catálogos
type CatalogoService interface {
	TiposExpediente(ctx context.Context) ([]models.Registro, error)
}

const detalleJSONInvalido = "El cuerpo de la petición no es JSON válido."

// MessageResponse es la respuesta de las operaciones sin datos
type MessageResponse struct {
	Message string `json:"message"`
}

func respondError(c *fiber.Ctx, status int, titulo, detalle string) error {
	return c.Status(status).JSON(models.ErrorResponse{Error: titulo, Details: detalle})
}

func badRequest(c *fiber.Ctx, detalle string) error {
	return respondError(c, fiber.StatusBadRequest, models.TituloValidacion, detalle)
}

func unauthorized(c *fiber.Ctx) error {
	return respondError(c, fiber.StatusUnauthorized, models.TituloNoAutorizado, "Token de autenticación inválido o ausente.")
}

func notFound(c *fiber.Ctx, detalle string) error {
	return respondError(c, fiber.StatusNotFound, models.TituloNoEncontrado, detalle)
}

// serviceError traduce los errores de services al código HTTP que corresponde.
// Lo que no es un error de negocio se registra y se responde con un 500 genérico.
func serviceError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		switch {
		case errors.Is(se, services.ErrValidation):
			return badRequest(c, se.Details)
		case errors.Is(se, services.ErrInvalidCredentials):
			return respondError(c, fiber.StatusUnauthorized, models.TituloNoAutorizado, se.Details)
		case errors.Is(se, services.ErrForbidden):
			return respondError(c, fiber.StatusForbidden, models.TituloDenegado, se.Details)
		case errors.Is(se, services.ErrNotFound):
			return notFound(c, se.Details)
		case errors.Is(se, services.ErrInternal):
			log.Error("error interno", zap.String("path", c.Path()), zap.Error(err))
			return respondError(c, fiber.StatusInternalServerError, models.TituloInterno, se.Details)
		}
	}

	log.Error("error no controlado",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return respondError(c, fiber.StatusInternalServerError, models.TituloInterno, models.DetalleInterno)
}

// parseID lee un parámetro de ruta entero
func parseID(c *fiber.Ctx, name string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Params(name)))
	return id, err == nil
}

// ErrorHandler responde los errores no controlados con el mismo formato que el resto del API
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			return respondError(c, code, models.TituloNoEncontrado, fe.Message)
		case code == fiber.StatusUnauthorized:
			return respondError(c, code, models.TituloNoAutorizado, fe.Message)
		case code == fiber.StatusForbidden:
			return respondError(c, code, models.TituloDenegado, fe.Message)
		case code < fiber.StatusInternalServerError:
			return respondError(c, code, models.TituloValidacion, fe.Message)
		}

		log.Error("error no controlado",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return respondError(c, code, models.TituloInterno, models.DetalleInterno)
	}
}

// NotFound responde las rutas inexistentes
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   models.TituloNoEncontrado,
		"details": "La ruta solicitada no existe en este servidor.",
		"path":    c.Path(),
		"method":  c.Method(),
	})
}
