package models

// Títulos de error que espera el frontend
const (
	TituloValidacion   = "Validación fallida"
	TituloNoAutorizado = "No Autorizado"
	TituloDenegado     = "Acceso Denegado"
	TituloNoEncontrado = "Recurso no encontrado"
	TituloInterno      = "Error Interno del Servidor"
)

// DetalleInterno es el detalle genérico de los errores 500
const DetalleInterno = "Consulte los logs del servidor para detalles."

// ErrorResponse es el cuerpo de toda respuesta de error
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
