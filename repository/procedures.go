// Package repository encapsula cada procedimiento almacenado del esquema
// dicri detrás de un método. No contiene reglas de negocio: esas viven en
// los procedimientos.
package repository

// Nombres de los procedimientos almacenados
const (
	ProcAuthLogin                 = "dicri.sp_Auth_Login"
	ProcExpedienteInsert          = "dicri.sp_Expediente_Insert"
	ProcExpedienteSelectAll       = "dicri.sp_Expediente_SelectAll"
	ProcExpedienteSelectByID      = "dicri.sp_Expediente_SelectById"
	ProcExpedienteUpdateStatus    = "dicri.sp_Expediente_UpdateStatus"
	ProcExpedienteDelete          = "dicri.sp_Expediente_Delete"
	ProcIndicioInsert             = "dicri.sp_Indicio_Insert"
	ProcIndicioSelectByExpediente = "dicri.sp_Indicio_SelectByExpediente"
	ProcReportGet                 = "dicri.sp_Report_Get"
	ProcTipoExpedienteSelectAll   = "dicri.sp_TipoExpediente_SelectAll"
)

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
