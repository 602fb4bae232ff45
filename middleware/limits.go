package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dicri/evidence-api/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig configuración para rate limiting
type RateLimitConfig struct {
	Max        int           // Número máximo de requests
	Expiration time.Duration // Ventana de tiempo
	Message    string        // Mensaje de error personalizado
}

// CreateRateLimiter crea un middleware de rate limiting con la configuración especificada
func CreateRateLimiter(cfg RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(cfg.Expiration.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Demasiadas peticiones",
				"details": cfg.Message,
			})
		},
	})
}

// DefaultRateLimiter limita todas las rutas de /api
func DefaultRateLimiter(cfg *config.Config) fiber.Handler {
	return CreateRateLimiter(RateLimitConfig{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		Message:    "Demasiadas peticiones, intenta más tarde.",
	})
}

// AuthRateLimiter limita los intentos de login
func AuthRateLimiter(cfg *config.Config) fiber.Handler {
	return CreateRateLimiter(RateLimitConfig{
		Max:        cfg.AuthRateLimitMax,
		Expiration: cfg.AuthRateLimitWindow,
		Message:    "Demasiados intentos de login, intenta más tarde.",
	})
}

// RequestTimeout pone un límite de tiempo al contexto que usan los handlers
// para llamar a la base de datos
func RequestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// SecurityHeaders agrega los headers de seguridad. La documentación carga
// ReDoc desde un CDN y queda fuera.
func SecurityHeaders(production bool) fiber.Handler {
	cfg := helmet.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api-docs")
		},
	}
	if production {
		cfg.HSTSMaxAge = 31536000
	}
	return helmet.New(cfg)
}
