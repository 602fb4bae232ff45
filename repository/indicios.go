package repository

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/models"
)

var leadingDecimal = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// IndicioRepository invoca los procedimientos de indicios
type IndicioRepository struct {
	db database.Caller
}

// NewIndicioRepository crea el repositorio
func NewIndicioRepository(db database.Caller) *IndicioRepository {
	return &IndicioRepository{db: db}
}

// Insert registra el indicio y retorna la fila con su ID
func (r *IndicioRepository) Insert(ctx context.Context, in models.NuevoIndicio) (database.Row, error) {
	rows, err := r.db.Call(ctx, ProcIndicioInsert,
		in.ExpedienteID,
		in.Descripcion,
		in.Color,
		in.Tamano,
		ParsePeso(in.Peso),
		in.Ubicacion,
		in.TecnicoID,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// SelectByExpediente lista los indicios de un expediente
func (r *IndicioRepository) SelectByExpediente(ctx context.Context, expedienteID int) ([]database.Row, error) {
	return r.db.Call(ctx, ProcIndicioSelectByExpediente, expedienteID)
}

// ParsePeso toma el prefijo decimal del texto ("12.5kg" -> 12.5), redondeado
// a dos decimales como la columna NUMERIC(10,2). Sin número retorna 0.
func ParsePeso(peso string) float64 {
	m := leadingDecimal.FindString(peso)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return math.Round(f*100) / 100
}

