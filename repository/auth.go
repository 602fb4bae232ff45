package repository

import (
	"context"

	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/models"
)

// AuthRepository valida credenciales contra dicri.sp_Auth_Login
type AuthRepository struct {
	db database.Caller
}

// NewAuthRepository crea el repositorio
func NewAuthRepository(db database.Caller) *AuthRepository {
	return &AuthRepository{db: db}
}

// Login retorna el usuario si las credenciales son válidas, o nil si no
func (r *AuthRepository) Login(ctx context.Context, email, password string) (*models.Usuario, error) {
	rows, err := r.db.Call(ctx, ProcAuthLogin, email, password)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	return &models.Usuario{
		ID:     row.Int("UsuarioID", "id"),
		Email:  row.String("EmailLogin", "email"),
		Rol:    row.String("Rol"),
		Nombre: row.String("NombreCompleto", "nombre"),
	}, nil
}
