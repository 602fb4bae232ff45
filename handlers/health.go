package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger lo satisface *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reporta el estado del servicio y de la base de datos
type HealthHandler struct {
	db      Pinger
	version string
	log     *zap.Logger
}

// NewHealthHandler crea el handler. db puede ser nil.
func NewHealthHandler(db Pinger, version string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, version: version, log: log.Named("health")}
}

// Health responde GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	database := "down"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn("la base de datos no responde", zap.Error(err))
		} else {
			database = "up"
		}
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "DICRI Evidence API",
		"version":  h.version,
		"database": database,
	})
}
