package handlers

import (
	"github.com/dicri/evidence-api/middleware"
	"github.com/dicri/evidence-api/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler atiende /api/auth
type AuthHandler struct {
	svc AuthService
	log *zap.Logger
}

// NewAuthHandler crea el handler
func NewAuthHandler(svc AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log.Named("auth")}
}

// Login valida las credenciales y retorna el token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "El email y la contraseña son requeridos.")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "El email y la contraseña son requeridos.")
	}

	resp, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, h.log, err)
	}

	return c.JSON(resp)
}

// Me retorna la sesión del token actual
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	s, ok := middleware.SesionFrom(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(s)
}
