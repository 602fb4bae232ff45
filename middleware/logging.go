package middleware

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dicri/evidence-api/metrics"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// requestIDKey es la clave de c.Locals que usa el middleware requestid
const requestIDKey = "requestid"

const maxLoggedBody = 1000

var sensitiveFields = []string{"password", "contrasena", "secret", "token", "jwt_secret"}

// LoggingMiddleware registra cada petición HTTP y alimenta las métricas
func LoggingMiddleware(log *zap.Logger, m *metrics.Manager) fiber.Handler {
	log = log.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		elapsed := time.Since(start)
		status := statusOf(c, err)
		route := c.Route().Path

		m.ObserveHTTP(c.Method(), route, status, elapsed)

		if ce := log.Check(determineLogLevel(status), "petición HTTP"); ce != nil {
			ce.Write(requestFields(c, status, elapsed)...)
		}
		return err
	}
}

// statusOf obtiene el código final; si el handler retornó un error, el
// ErrorHandler aún no ha escrito la respuesta
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func requestFields(c *fiber.Ctx, status int, elapsed time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", elapsed),
		zap.String("ip", clientIP(c)),
		zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
	}

	if id := RequestID(c); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if s, ok := SesionFrom(c); ok {
		fields = append(fields, zap.Int("usuario_id", s.ID), zap.String("rol", s.Rol))
	}
	if params := c.AllParams(); len(params) > 0 {
		fields = append(fields, zap.Any("params", params))
	}
	if q := string(c.Request().URI().QueryString()); q != "" {
		fields = append(fields, zap.String("query", q))
	}

	switch c.Method() {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if body := c.Body(); len(body) > 0 {
			fields = append(fields, zap.String("body", filterSensitiveData(string(body))))
		}
	}
	return fields
}

// clientIP obtiene la IP real del cliente detrás de un proxy
func clientIP(c *fiber.Ctx) string {
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}

// RequestID retorna el identificador que asignó el middleware requestid
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// filterSensitiveData filtra información sensible del body
func filterSensitiveData(body string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return truncateBody(body)
	}

	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[FILTERED]"
		}
	}

	filteredJSON, err := json.Marshal(data)
	if err != nil {
		return truncateBody(body)
	}
	return truncateBody(string(filteredJSON))
}

func truncateBody(body string) string {
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody] + "...[truncated]"
	}
	return body
}

// determineLogLevel determina el nivel de log basado en el status code
func determineLogLevel(statusCode int) zapcore.Level {
	switch {
	case statusCode >= 500:
		return zapcore.ErrorLevel
	case statusCode >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// LogAuditEvent registra una acción de negocio con el usuario que la hizo
func LogAuditEvent(log *zap.Logger, c *fiber.Ctx, event string, fields ...zap.Field) {
	base := []zap.Field{zap.String("event", event)}
	if s, ok := SesionFrom(c); ok {
		base = append(base, zap.Int("usuario_id", s.ID), zap.String("email", s.Email), zap.String("rol", s.Rol))
	}
	if id := RequestID(c); id != "" {
		base = append(base, zap.String("request_id", id))
	}
	log.Named("audit").Info("evento de auditoría", append(base, fields...)...)
}
