package services

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/models"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// ReporteStore ejecuta el reporte
type ReporteStore interface {
	Get(ctx context.Context, filtro models.ReporteFiltro) ([]database.Row, error)
}

// CatalogoStore lista catálogos
type CatalogoStore interface {
	TiposExpediente(ctx context.Context) ([]database.Row, error)
}

// ReporteService genera el reporte de expedientes
type ReporteService struct {
	store ReporteStore
	log   *zap.Logger
}

// NewReporteService crea el servicio
func NewReporteService(store ReporteStore, log *zap.Logger) *ReporteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReporteService{store: store, log: log.Named("reportes")}
}

// Get retorna las filas del reporte con claves camelCase
func (s *ReporteService) Get(ctx context.Context, filtro models.ReporteFiltro) ([]models.Registro, error) {
	rows, err := s.store.Get(ctx, filtro)
	if err != nil {
		return nil, classify(err)
	}
	return toRegistros(rows, s.log), nil
}

// CatalogoService expone los catálogos públicos
type CatalogoService struct {
	store CatalogoStore
	log   *zap.Logger
}

// NewCatalogoService crea el servicio
func NewCatalogoService(store CatalogoStore, log *zap.Logger) *CatalogoService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogoService{store: store, log: log.Named("catalogos")}
}

// TiposExpediente lista los tipos de expediente
func (s *CatalogoService) TiposExpediente(ctx context.Context) ([]models.Registro, error) {
	rows, err := s.store.TiposExpediente(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return toRegistros(rows, s.log), nil
}

func toRegistros(rows []database.Row, log *zap.Logger) []models.Registro {
	out := make([]models.Registro, 0, len(rows))
	for _, row := range rows {
		reg := make(models.Registro, len(row))
		for col, v := range row {
			key := columnKey(col)
			if key == "datosGenerales" {
				decoded, err := DecodeDatosGenerales(v)
				if err != nil {
					log.Warn("datosGenerales no es JSON válido, se mantiene como texto", zap.Error(err))
				}
				reg[key] = decoded
				continue
			}
			reg[key] = plain(v)
		}
		out = append(out, reg)
	}
	return out
}

// columnasConocidas son las columnas de dicri.sp_Report_Get y
// dicri.sp_TipoExpediente_SelectAll. PostgreSQL las devuelve en minúsculas
// cuando no van entre comillas, y de ahí no se puede recuperar el camelCase.
var columnasConocidas = indexColumnas(
	"ExpedienteID", "Codigo", "DatosGenerales", "FechaRegistro", "Estado",
	"TecnicoID", "TecnicoNombre", "TipoExpedienteID", "TipoExpedienteNombre",
	"JustificacionRechazo", "CoordinadorID", "CoordinadorNombre", "FechaRevision",
	"TotalIndicios", "PesoTotal", "Nombre", "Descripcion", "Activo",
)

func indexColumnas(cols ...string) map[string]string {
	out := make(map[string]string, len(cols))
	for _, col := range cols {
		out[strings.ToLower(col)] = camelize(col)
	}
	return out
}

// columnKey resuelve la clave de salida de una columna sin importar su casing
func columnKey(col string) string {
	if key, ok := columnasConocidas[strings.ToLower(col)]; ok {
		return key
	}
	return camelize(col)
}

// camelize convierte un nombre de columna a camelCase: ExpedienteID -> expedienteId
func camelize(col string) string {
	if col == "" {
		return col
	}
	if strings.EqualFold(col, "id") {
		return "id"
	}
	if strings.HasSuffix(col, "ID") {
		col = col[:len(col)-2] + "Id"
	}
	r, size := utf8.DecodeRuneInString(col)
	return string(unicode.ToLower(r)) + col[size:]
}

// plain reemplaza los tipos de pgx que no se serializan como el cliente espera
func plain(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		if f, ok := database.NumericFloat(t); ok {
			return f
		}
		return nil
	case []byte:
		return string(t)
	}
	return v
}
