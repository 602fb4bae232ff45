package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dicri/evidence-api/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// localSesion es la clave de c.Locals con la sesión autenticada
const localSesion = "sesion"

const detalleTokenInvalido = "Token de autenticación inválido o ausente."

// Claims personalizados para el JWT
type Claims struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Rol   string `json:"rol"`
	jwt.RegisteredClaims
}

// JWT firma y valida los tokens de sesión
type JWT struct {
	secret []byte
	ttl    time.Duration
}

// NewJWT crea el firmador con la clave y la vigencia configuradas
func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

// Generate genera un token JWT para un usuario
func (j *JWT) Generate(u *models.Usuario) (string, error) {
	if u == nil {
		return "", errors.New("usuario nulo")
	}
	now := time.Now()
	claims := Claims{
		ID:    u.ID,
		Email: u.Email,
		Rol:   u.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Parse valida la firma y la expiración del token
func (j *JWT) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("claims inválidos")
	}
	return claims, nil
}

// Middleware exige un token Bearer válido y guarda la sesión en el contexto
func (j *JWT) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			return unauthorized(c)
		}

		claims, err := j.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(localSesion, models.Sesion{
			ID:    claims.ID,
			Email: claims.Email,
			Rol:   claims.Rol,
		})
		return c.Next()
	}
}

// RequireRole middleware para requerir uno de los roles indicados
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s, ok := SesionFrom(c); ok {
			for _, role := range allowedRoles {
				if s.Rol == role {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{
			Error:   models.TituloDenegado,
			Details: fmt.Sprintf("El rol %s es requerido para esta acción.", strings.Join(allowedRoles, " o ")),
		})
	}
}

// SesionFrom retorna la sesión que dejó el middleware de autenticación
func SesionFrom(c *fiber.Ctx) (models.Sesion, bool) {
	s, ok := c.Locals(localSesion).(models.Sesion)
	return s, ok && s.ID != 0
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error:   models.TituloNoAutorizado,
		Details: detalleTokenInvalido,
	})
}
