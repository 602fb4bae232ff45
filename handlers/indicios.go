package handlers

import (
	"github.com/dicri/evidence-api/middleware"
	"github.com/dicri/evidence-api/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IndicioHandler atiende /api/indicios
type IndicioHandler struct {
	svc IndicioService
	log *zap.Logger
}

// NewIndicioHandler crea el handler
func NewIndicioHandler(svc IndicioService, log *zap.Logger) *IndicioHandler {
	return &IndicioHandler{svc: svc, log: log.Named("indicios")}
}

// Create registra un indicio en un expediente
func (h *IndicioHandler) Create(c *fiber.Ctx) error {
	sesion, ok := middleware.SesionFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CrearIndicioRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, detalleJSONInvalido)
	}
	if !req.ExpedienteID.Present() || req.Descripcion == "" || req.Ubicacion == "" {
		return badRequest(c, "Los campos obligatorios son: expedienteId, descripcion, ubicacion.")
	}

	in := models.NuevoIndicio{
		ExpedienteID: req.ExpedienteID.Value,
		Descripcion:  req.Descripcion,
		Color:        req.Color,
		Tamano:       req.Tamano,
		Peso:         "0",
		Ubicacion:    req.Ubicacion,
		TecnicoID:    sesion.ID,
	}
	if req.Peso.Set {
		in.Peso = req.Peso.Value
	}
	if req.TecnicoID.Present() {
		in.TecnicoID = req.TecnicoID.Value
	}

	id, err := h.svc.Create(c.UserContext(), in)
	if err != nil {
		return serviceError(c, h.log, err)
	}

	middleware.LogAuditEvent(h.log, c, "indicio_registrado",
		zap.Int("indicio_id", id),
		zap.Int("expediente_id", in.ExpedienteID),
	)

	return c.Status(fiber.StatusCreated).JSON(models.CrearIndicioResponse{
		IndicioID: id,
		Message:   "Indicio registrado con éxito.",
	})
}

// List lista los indicios de un expediente
func (h *IndicioHandler) List(c *fiber.Ctx) error {
	expedienteID, ok := parseID(c, "expedienteId")
	if !ok {
		return badRequest(c, "El expedienteId debe ser un número válido.")
	}

	indicios, err := h.svc.List(c.UserContext(), expedienteID)
	if err != nil {
		return serviceError(c, h.log, err)
	}
	return c.JSON(indicios)
}
