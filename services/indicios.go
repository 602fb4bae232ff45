package services

import (
	"context"
	"strconv"

	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/models"
	"go.uber.org/zap"
)

// IndicioStore es el acceso a los procedimientos de indicios
type IndicioStore interface {
	Insert(ctx context.Context, in models.NuevoIndicio) (database.Row, error)
	SelectByExpediente(ctx context.Context, expedienteID int) ([]database.Row, error)
}

// IndicioService registra y lista evidencias
type IndicioService struct {
	store IndicioStore
	log   *zap.Logger
}

// NewIndicioService crea el servicio
func NewIndicioService(store IndicioStore, log *zap.Logger) *IndicioService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IndicioService{store: store, log: log.Named("indicios")}
}

// Create registra un indicio y retorna su ID
func (s *IndicioService) Create(ctx context.Context, in models.NuevoIndicio) (int, error) {
	if in.ExpedienteID <= 0 || in.Descripcion == "" || in.Ubicacion == "" {
		return 0, newError(ErrValidation, "Los campos obligatorios son: expedienteId, descripcion, ubicacion.", nil)
	}
	if in.Peso == "" {
		in.Peso = "0"
	}

	row, err := s.store.Insert(ctx, in)
	if err != nil {
		return 0, classify(err)
	}

	id := row.Int("IndicioID", "indicioId", "id")
	if id == 0 {
		s.log.Error("el procedimiento no devolvió el ID del indicio", zap.Any("fila", row))
		return 0, newError(ErrInternal, "No se pudo obtener el ID del indicio creado.", nil)
	}
	return id, nil
}

// List retorna los indicios de un expediente normalizados
func (s *IndicioService) List(ctx context.Context, expedienteID int) ([]models.Indicio, error) {
	rows, err := s.store.SelectByExpediente(ctx, expedienteID)
	if err != nil {
		return nil, classify(err)
	}

	out := make([]models.Indicio, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Indicio{
			ID:            row.Int("IndicioID", "indicioId", "id"),
			Descripcion:   row.String("Descripcion", "descripcion"),
			Color:         row.String("Color", "color"),
			Tamano:        row.String("Tamano", "tamano"),
			Peso:          formatPeso(row),
			Ubicacion:     row.String("Ubicacion", "ubicacion"),
			TecnicoID:     row.Int("TecnicoID", "tecnicoId"),
			FechaRegistro: row.Time("FechaRegistro", "fechaRegistro"),
		})
	}
	return out, nil
}

// formatPeso muestra el peso numérico con unidad ("2.5kg"); el texto se deja igual
func formatPeso(row database.Row) string {
	v, ok := row.Raw("Peso", "peso")
	if !ok {
		return "0kg"
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := database.ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64) + "kg"
	}
	return database.ToString(v)
}
