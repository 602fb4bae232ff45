package models

import "time"

// Indicio es una evidencia normalizada a camelCase
type Indicio struct {
	ID            int        `json:"id"`
	Descripcion   string     `json:"descripcion"`
	Color         string     `json:"color"`
	Tamano        string     `json:"tamano"`
	Peso          string     `json:"peso"`
	Ubicacion     string     `json:"ubicacion"`
	TecnicoID     int        `json:"tecnicoId,omitempty"`
	FechaRegistro *time.Time `json:"fechaRegistro,omitempty"`
}

// CrearIndicioRequest es el cuerpo de POST /api/indicios
type CrearIndicioRequest struct {
	ExpedienteID FlexInt    `json:"expedienteId"`
	Descripcion  string     `json:"descripcion"`
	Color        string     `json:"color"`
	Tamano       string     `json:"tamano"`
	Peso         FlexString `json:"peso"`
	Ubicacion    string     `json:"ubicacion"`
	TecnicoID    FlexInt    `json:"tecnicoId"`
}

// NuevoIndicio son los datos que recibe el servicio
type NuevoIndicio struct {
	ExpedienteID int
	Descripcion  string
	Color        string
	Tamano       string
	Peso         string
	Ubicacion    string
	TecnicoID    int
}

// CrearIndicioResponse es la respuesta de creación
type CrearIndicioResponse struct {
	IndicioID int    `json:"indicioId"`
	Message   string `json:"message"`
}
