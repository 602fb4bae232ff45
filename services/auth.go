package services

import (
	"context"
	"fmt"

	"github.com/dicri/evidence-api/models"
	"go.uber.org/zap"
)

// UsuarioStore valida credenciales; retorna nil si no coinciden
type UsuarioStore interface {
	Login(ctx context.Context, email, password string) (*models.Usuario, error)
}

// TokenGenerator firma el token de sesión de un usuario
type TokenGenerator interface {
	Generate(u *models.Usuario) (string, error)
}

// AuthService resuelve el login
type AuthService struct {
	users  UsuarioStore
	tokens TokenGenerator
	log    *zap.Logger
}

// NewAuthService crea el servicio
func NewAuthService(users UsuarioStore, tokens TokenGenerator, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, log: log.Named("auth")}
}

// Login valida las credenciales y emite el token
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if email == "" || password == "" {
		return nil, newError(ErrValidation, "El email y la contraseña son requeridos.", nil)
	}

	u, err := s.users.Login(ctx, email, password)
	if err != nil {
		return nil, classify(err)
	}
	if u == nil {
		s.log.Info("credenciales inválidas", zap.String("email", email))
		return nil, newError(ErrInvalidCredentials, "Credenciales inválidas.", nil)
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, fmt.Errorf("error generando token: %w", err)
	}

	s.log.Info("login exitoso", zap.Int("usuario_id", u.ID), zap.String("rol", u.Rol))
	return &models.LoginResponse{
		Token: token,
		User: models.UsuarioResumen{
			ID:     u.ID,
			Nombre: u.Nombre,
			Rol:    u.Rol,
		},
	}, nil
}
