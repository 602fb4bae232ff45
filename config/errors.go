package config

import "errors"

// Errores de configuración
var (
	ErrMissingField = errors.New("campo de configuración requerido")
	ErrInvalidValue = errors.New("valor de configuración inválido")
)
