package handlers

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dicri/evidence-api/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var fechaISO = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ReporteHandler atiende /api/reports
type ReporteHandler struct {
	svc ReporteService
	log *zap.Logger
}

// NewReporteHandler crea el handler
func NewReporteHandler(svc ReporteService, log *zap.Logger) *ReporteHandler {
	return &ReporteHandler{svc: svc, log: log.Named("reportes")}
}

// Get genera el reporte filtrado por ?start_date=&end_date=&status=
func (h *ReporteHandler) Get(c *fiber.Ctx) error {
	start, err := parseFecha(c.Query("start_date"))
	if err != nil {
		return badRequest(c, "El formato de start_date debe ser YYYY-MM-DD.")
	}
	end, err := parseFecha(c.Query("end_date"))
	if err != nil {
		return badRequest(c, "El formato de end_date debe ser YYYY-MM-DD.")
	}

	report, err := h.svc.Get(c.UserContext(), models.ReporteFiltro{
		StartDate: start,
		EndDate:   end,
		Estado:    c.Query("status"),
	})
	if err != nil {
		return serviceError(c, h.log, err)
	}
	return c.JSON(report)
}

// parseFecha acepta vacío (sin filtro) o una fecha YYYY-MM-DD
func parseFecha(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if !fechaISO.MatchString(s) {
		return nil, fmt.Errorf("fecha inválida: %q", s)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CatalogoHandler atiende /api/catalogos
type CatalogoHandler struct {
	svc CatalogoService
	log *zap.Logger
}

// NewCatalogoHandler crea el handler
func NewCatalogoHandler(svc CatalogoService, log *zap.Logger) *CatalogoHandler {
	return &CatalogoHandler{svc: svc, log: log.Named("catalogos")}
}

// TiposExpediente lista los tipos de expediente
func (h *CatalogoHandler) TiposExpediente(c *fiber.Ctx) error {
	tipos, err := h.svc.TiposExpediente(c.UserContext())
	if err != nil {
		return serviceError(c, h.log, err)
	}
	return c.JSON(tipos)
}
