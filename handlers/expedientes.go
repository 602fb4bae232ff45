package handlers

import (
	"fmt"

	"github.com/dicri/evidence-api/middleware"
	"github.com/dicri/evidence-api/models"
	"github.com/dicri/evidence-api/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const detalleIDInvalido = "El ID del expediente debe ser un número válido."

// ExpedienteHandler atiende /api/expedientes
type ExpedienteHandler struct {
	svc ExpedienteService
	log *zap.Logger
}

// NewExpedienteHandler crea el handler
func NewExpedienteHandler(svc ExpedienteService, log *zap.Logger) *ExpedienteHandler {
	return &ExpedienteHandler{svc: svc, log: log.Named("expedientes")}
}

// Create registra un expediente. Si no se indica tecnicoId se usa el del token.
func (h *ExpedienteHandler) Create(c *fiber.Ctx) error {
	sesion, ok := middleware.SesionFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CrearExpedienteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, detalleJSONInvalido)
	}
	if services.IsBlankJSON(req.DatosGenerales) {
		return badRequest(c, "El campo datosGenerales es requerido.")
	}
	if !req.TipoExpedienteID.Present() {
		return badRequest(c, "El campo tipoExpedienteId es requerido.")
	}

	tecnicoID := sesion.ID
	if req.TecnicoID.Present() {
		tecnicoID = req.TecnicoID.Value
	}

	id, err := h.svc.Create(c.UserContext(), models.NuevoExpediente{
		DatosGenerales:   req.DatosGenerales,
		TecnicoID:        tecnicoID,
		TipoExpedienteID: req.TipoExpedienteID.Value,
	})
	if err != nil {
		return serviceError(c, h.log, err)
	}

	middleware.LogAuditEvent(h.log, c, "expediente_creado",
		zap.Int("expediente_id", id),
		zap.Int("tecnico_id", tecnicoID),
		zap.Int("tipo_expediente_id", req.TipoExpedienteID.Value),
	)

	return c.Status(fiber.StatusCreated).JSON(models.CrearExpedienteResponse{
		ExpedienteID: id,
		Message:      "Expediente registrado con éxito.",
	})
}

// List lista los expedientes, opcionalmente filtrados por ?estado=
func (h *ExpedienteHandler) List(c *fiber.Ctx) error {
	expedientes, err := h.svc.List(c.UserContext(), c.Query("estado"))
	if err != nil {
		return serviceError(c, h.log, err)
	}
	return c.JSON(expedientes)
}

// Get retorna un expediente
func (h *ExpedienteHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, detalleIDInvalido)
	}

	exp, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return serviceError(c, h.log, err)
	}
	if exp == nil {
		return notFound(c, fmt.Sprintf(
			"El expediente ID %d no existe o tiene un técnico inválido. Verifique la integridad de los datos.", id))
	}

	return c.JSON(exp)
}

// Review aprueba o rechaza un expediente
func (h *ExpedienteHandler) Review(c *fiber.Ctx) error {
	sesion, ok := middleware.SesionFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.RevisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, detalleJSONInvalido)
	}
	if err := services.ValidateRevision(req.Status, req.Justificacion); err != nil {
		return serviceError(c, h.log, err)
	}

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, detalleIDInvalido)
	}

	if err := h.svc.Review(c.UserContext(), id, req.Status, req.Justificacion, sesion.ID); err != nil {
		return serviceError(c, h.log, err)
	}

	middleware.LogAuditEvent(h.log, c, "expediente_revisado",
		zap.Int("expediente_id", id),
		zap.String("status", req.Status),
	)

	return c.JSON(models.RevisionResponse{
		ExpedienteID: id,
		Status:       req.Status,
		Message:      "Expediente revisado exitosamente.",
	})
}

// Delete elimina un expediente
func (h *ExpedienteHandler) Delete(c *fiber.Ctx) error {
	sesion, ok := middleware.SesionFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, detalleIDInvalido)
	}

	if err := h.svc.Delete(c.UserContext(), id, sesion.ID); err != nil {
		return serviceError(c, h.log, err)
	}

	middleware.LogAuditEvent(h.log, c, "expediente_eliminado", zap.Int("expediente_id", id))

	return c.JSON(MessageResponse{Message: "Expediente eliminado exitosamente."})
}
