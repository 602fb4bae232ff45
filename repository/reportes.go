package repository

import (
	"context"

	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/models"
)

// ReporteRepository invoca dicri.sp_Report_Get
type ReporteRepository struct {
	db database.Caller
}

// NewReporteRepository crea el repositorio
func NewReporteRepository(db database.Caller) *ReporteRepository {
	return &ReporteRepository{db: db}
}

// Get ejecuta el reporte; los filtros ausentes se envían como NULL
func (r *ReporteRepository) Get(ctx context.Context, filtro models.ReporteFiltro) ([]database.Row, error) {
	return r.db.Call(ctx, ProcReportGet, filtro.StartDate, filtro.EndDate, nullableString(filtro.Estado))
}

// CatalogoRepository expone los catálogos de apoyo
type CatalogoRepository struct {
	db database.Caller
}

// NewCatalogoRepository crea el repositorio
func NewCatalogoRepository(db database.Caller) *CatalogoRepository {
	return &CatalogoRepository{db: db}
}

// TiposExpediente lista los tipos de expediente
func (r *CatalogoRepository) TiposExpediente(ctx context.Context) ([]database.Row, error) {
	return r.db.Call(ctx, ProcTipoExpedienteSelectAll)
}
