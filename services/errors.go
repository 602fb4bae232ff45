// Package services contiene la lógica entre los handlers y los
// procedimientos: normalización de entradas, reformateo de resultados y
// clasificación de errores.
package services

import (
	"errors"
	"strings"

	"github.com/dicri/evidence-api/database"
)

// Tipos de error que los handlers traducen a códigos HTTP
var (
	ErrValidation         = errors.New("validación fallida")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInternal           = errors.New("error interno")
)

// Error lleva un tipo (ErrValidation, ErrNotFound, ...) y el detalle para el cliente
type Error struct {
	Kind    error
	Details string
	Err     error
}

func (e *Error) Error() string { return e.Details }

// Is permite errors.Is(err, ErrNotFound) y errors.Is(err, causa)
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind error, details string, cause error) *Error {
	return &Error{Kind: kind, Details: details, Err: cause}
}

// raisedMessage retorna el mensaje si err lo lanzó un procedimiento (RAISE EXCEPTION)
func raisedMessage(err error) (string, bool) {
	var pe *database.ProcedureError
	if errors.As(err, &pe) && pe.Raised() {
		return pe.Message, true
	}
	return "", false
}

// classify traduce errores de negocio de los procedimientos al tipo que
// corresponda según su mensaje. Los demás errores se retornan intactos.
func classify(err error) error {
	msg, ok := raisedMessage(err)
	if !ok {
		return err
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "permisos"):
		return newError(ErrForbidden, msg, err)
	case strings.Contains(lower, "no existe"), strings.Contains(lower, "no está activo"):
		return newError(ErrNotFound, msg, err)
	default:
		return newError(ErrValidation, msg, err)
	}
}
