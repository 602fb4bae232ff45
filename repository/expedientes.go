package repository

import (
	"context"

	"github.com/dicri/evidence-api/database"
)

// ExpedienteRepository invoca los procedimientos de expedientes
type ExpedienteRepository struct {
	db database.Caller
}

// NewExpedienteRepository crea el repositorio
func NewExpedienteRepository(db database.Caller) *ExpedienteRepository {
	return &ExpedienteRepository{db: db}
}

// Insert crea el expediente y retorna la fila con su ID (nil si el procedimiento no devolvió filas)
func (r *ExpedienteRepository) Insert(ctx context.Context, datosGenerales string, tecnicoID, tipoExpedienteID int) (database.Row, error) {
	rows, err := r.db.Call(ctx, ProcExpedienteInsert, datosGenerales, tecnicoID, tipoExpedienteID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// SelectAll lista los expedientes, filtrando por estado si se indica
func (r *ExpedienteRepository) SelectAll(ctx context.Context, estado string) ([]database.Row, error) {
	return r.db.Call(ctx, ProcExpedienteSelectAll, nullableString(estado))
}

// SelectByID retorna el expediente o nil si no existe
func (r *ExpedienteRepository) SelectByID(ctx context.Context, id int) (database.Row, error) {
	rows, err := r.db.Call(ctx, ProcExpedienteSelectByID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateStatus aplica la revisión; la validez de la transición la decide el procedimiento
func (r *ExpedienteRepository) UpdateStatus(ctx context.Context, id int, status string, justificacion *string, userID int) error {
	return r.db.Exec(ctx, ProcExpedienteUpdateStatus, id, status, justificacion, userID)
}

// Delete elimina el expediente; permisos y estado los valida el procedimiento
func (r *ExpedienteRepository) Delete(ctx context.Context, id, userID int) error {
	_, err := r.db.Call(ctx, ProcExpedienteDelete, id, userID)
	return err
}
