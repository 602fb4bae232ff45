package models

import "time"

// ReporteFiltro son los filtros opcionales del reporte
type ReporteFiltro struct {
	StartDate *time.Time
	EndDate   *time.Time
	Estado    string
}

// Registro es una fila de reporte o catálogo con claves en camelCase
type Registro map[string]any
