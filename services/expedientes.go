package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/models"
	"go.uber.org/zap"
)

// ExpedienteStore es el acceso a los procedimientos de expedientes
type ExpedienteStore interface {
	Insert(ctx context.Context, datosGenerales string, tecnicoID, tipoExpedienteID int) (database.Row, error)
	SelectAll(ctx context.Context, estado string) ([]database.Row, error)
	SelectByID(ctx context.Context, id int) (database.Row, error)
	UpdateStatus(ctx context.Context, id int, status string, justificacion *string, userID int) error
	Delete(ctx context.Context, id, userID int) error
}

// ExpedienteService maneja el ciclo de vida de los expedientes
type ExpedienteService struct {
	store ExpedienteStore
	log   *zap.Logger
}

// NewExpedienteService crea el servicio
func NewExpedienteService(store ExpedienteStore, log *zap.Logger) *ExpedienteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExpedienteService{store: store, log: log.Named("expedientes")}
}

// Create registra un expediente y retorna su ID
func (s *ExpedienteService) Create(ctx context.Context, in models.NuevoExpediente) (int, error) {
	if in.TecnicoID <= 0 {
		return 0, newError(ErrValidation, "El ID del técnico es inválido", nil)
	}
	if in.TipoExpedienteID <= 0 {
		return 0, newError(ErrValidation, "El ID del tipo de expediente es inválido", nil)
	}

	datos, err := EncodeDatosGenerales(in.DatosGenerales)
	if err != nil {
		return 0, err
	}
	s.log.Debug("creando expediente",
		zap.Int("tecnico_id", in.TecnicoID),
		zap.Int("tipo_expediente_id", in.TipoExpedienteID),
		zap.String("datos", truncate(datos, 100)),
	)

	row, err := s.store.Insert(ctx, datos, in.TecnicoID, in.TipoExpedienteID)
	if err != nil {
		return 0, s.createError(err, in)
	}

	id := row.Int("ExpedienteID", "expedienteId", "id")
	if id == 0 {
		s.log.Error("el procedimiento no devolvió el ID del expediente", zap.Any("fila", row))
		return 0, newError(ErrInternal, "No se pudo obtener el ID del expediente creado.", nil)
	}
	return id, nil
}

// createError da un detalle más útil a los errores de referencias inexistentes.
// El tipo de expediente se revisa primero porque su mensaje también dice "no existe".
func (s *ExpedienteService) createError(err error, in models.NuevoExpediente) error {
	msg, ok := raisedMessage(err)
	if !ok {
		return err
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "tipo de expediente"), strings.Contains(lower, "no está activo"):
		return newError(ErrNotFound,
			fmt.Sprintf("El tipo de expediente con ID %d no existe o no está activo", in.TipoExpedienteID), err)
	case strings.Contains(lower, "técnico"), strings.Contains(lower, "no existe"):
		return newError(ErrNotFound,
			fmt.Sprintf("El técnico con ID %d no existe en la base de datos", in.TecnicoID), err)
	}
	return classify(err)
}

// List retorna los expedientes normalizados, filtrados por estado si se indica
func (s *ExpedienteService) List(ctx context.Context, estado string) ([]models.Expediente, error) {
	rows, err := s.store.SelectAll(ctx, estado)
	if err != nil {
		return nil, classify(err)
	}

	out := make([]models.Expediente, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.normalize(row))
	}
	return out, nil
}

// Get retorna el expediente normalizado, o nil si no existe
func (s *ExpedienteService) Get(ctx context.Context, id int) (*models.Expediente, error) {
	row, err := s.store.SelectByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if row == nil {
		s.log.Info("expediente no encontrado", zap.Int("expediente_id", id))
		return nil, nil
	}

	exp := s.normalize(row)
	if exp.TecnicoNombre == "" {
		s.log.Error("expediente sin tecnicoNombre: el técnico asociado no existe o el JOIN falló",
			zap.Int("expediente_id", id))
	}
	return &exp, nil
}

// Review aprueba o rechaza un expediente
func (s *ExpedienteService) Review(ctx context.Context, id int, status string, justificacion *string, userID int) error {
	if err := ValidateRevision(status, justificacion); err != nil {
		return err
	}
	if status == models.EstadoAprobado && justificacion != nil && *justificacion == "" {
		justificacion = nil
	}

	if err := s.store.UpdateStatus(ctx, id, status, justificacion, userID); err != nil {
		if msg, ok := raisedMessage(err); ok && strings.Contains(strings.ToLower(msg), "no existe") {
			return newError(ErrNotFound, fmt.Sprintf("El expediente ID %d no existe.", id), err)
		}
		return classify(err)
	}

	s.log.Info("expediente revisado",
		zap.Int("expediente_id", id),
		zap.String("status", status),
		zap.Int("usuario_id", userID),
	)
	return nil
}

// ValidateRevision revisa el status y la justificación de una revisión
func ValidateRevision(status string, justificacion *string) error {
	if status != models.EstadoAprobado && status != models.EstadoRechazado {
		return newError(ErrValidation, `El campo status debe ser "APROBADO" o "RECHAZADO".`, nil)
	}
	if status == models.EstadoRechazado && (justificacion == nil || strings.TrimSpace(*justificacion) == "") {
		return newError(ErrValidation, "La justificación es obligatoria para el rechazo.", nil)
	}
	return nil
}

// Delete elimina un expediente; el procedimiento valida permisos y estado
func (s *ExpedienteService) Delete(ctx context.Context, id, userID int) error {
	if err := s.store.Delete(ctx, id, userID); err != nil {
		return classify(err)
	}
	s.log.Info("expediente eliminado", zap.Int("expediente_id", id), zap.Int("usuario_id", userID))
	return nil
}

func (s *ExpedienteService) normalize(row database.Row) models.Expediente {
	id := row.Int("ExpedienteID", "expedienteId", "id")

	raw, _ := row.Lookup("DatosGenerales", "datosGenerales")
	datos, err := DecodeDatosGenerales(raw)
	if err != nil {
		s.log.Warn("datosGenerales no es JSON válido, se mantiene como texto",
			zap.Int("expediente_id", id), zap.Error(err))
	}

	return models.Expediente{
		ID:                   id,
		ExpedienteID:         id,
		Codigo:               codigoDe(datos),
		DatosGenerales:       datos,
		FechaRegistro:        row.Time("FechaRegistro", "fechaRegistro"),
		TecnicoID:            row.Int("TecnicoID", "tecnicoId"),
		TipoExpedienteID:     row.Int("TipoExpedienteID", "tipoExpedienteId"),
		Estado:               row.String("Estado", "estado"),
		TecnicoNombre:        row.String("TecnicoNombre", "tecnicoNombre", "tecnico"),
		TipoExpedienteNombre: row.String("TipoExpedienteNombre", "tipoExpedienteNombre"),
		JustificacionRechazo: row.StringPtr("JustificacionRechazo", "justificacionRechazo", "justificacion"),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
