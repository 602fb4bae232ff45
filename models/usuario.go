package models

// Roles de usuario
const (
	RolTecnico     = "Tecnico"
	RolCoordinador = "Coordinador"
)

// Usuario representa el resultado de dicri.sp_Auth_Login
type Usuario struct {
	ID     int    `json:"id"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
	Nombre string `json:"nombre"`
}

// LoginRequest representa la solicitud de login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UsuarioResumen es el usuario que se devuelve al frontend
type UsuarioResumen struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
}

// LoginResponse representa la respuesta del login
type LoginResponse struct {
	Token string         `json:"token"`
	User  UsuarioResumen `json:"user"`
}

// Sesion son los datos del usuario autenticado extraídos del token
type Sesion struct {
	ID    int    `json:"id"`
	Email string `json:"email,omitempty"`
	Rol   string `json:"rol"`
}
