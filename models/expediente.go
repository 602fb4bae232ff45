package models

import (
	"encoding/json"
	"time"
)

// Estados de un expediente
const (
	EstadoBorrador   = "BORRADOR"
	EstadoEnRevision = "EN_REVISION"
	EstadoAprobado   = "APROBADO"
	EstadoRechazado  = "RECHAZADO"
)

// Expediente es un caso normalizado a camelCase
type Expediente struct {
	ID                   int        `json:"id"`
	ExpedienteID         int        `json:"expedienteId"`
	Codigo               *string    `json:"codigo"`
	DatosGenerales       any        `json:"datosGenerales"`
	FechaRegistro        *time.Time `json:"fechaRegistro,omitempty"`
	TecnicoID            int        `json:"tecnicoId,omitempty"`
	TipoExpedienteID     int        `json:"tipoExpedienteId,omitempty"`
	Estado               string     `json:"estado,omitempty"`
	TecnicoNombre        string     `json:"tecnicoNombre,omitempty"`
	TipoExpedienteNombre string     `json:"tipoExpedienteNombre,omitempty"`
	JustificacionRechazo *string    `json:"justificacionRechazo,omitempty"`
}

// CrearExpedienteRequest es el cuerpo de POST /api/expedientes.
// DatosGenerales puede llegar como objeto o como texto JSON.
type CrearExpedienteRequest struct {
	DatosGenerales   json.RawMessage `json:"datosGenerales"`
	TecnicoID        FlexInt         `json:"tecnicoId"`
	TipoExpedienteID FlexInt         `json:"tipoExpedienteId"`
}

// NuevoExpediente son los datos ya resueltos que recibe el servicio
type NuevoExpediente struct {
	DatosGenerales   json.RawMessage
	TecnicoID        int
	TipoExpedienteID int
}

// CrearExpedienteResponse es la respuesta de creación
type CrearExpedienteResponse struct {
	ExpedienteID int    `json:"expedienteId"`
	Message      string `json:"message"`
}

// RevisionRequest es el cuerpo de PUT /api/expedientes/:id/review
type RevisionRequest struct {
	Status        string  `json:"status"`
	Justificacion *string `json:"justificacion"`
}

// RevisionResponse es la respuesta de la revisión
type RevisionResponse struct {
	ExpedienteID int    `json:"expedienteId"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}
