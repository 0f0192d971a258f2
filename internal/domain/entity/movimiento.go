package entity

import "time"

// Acciones registrables en el historial de movimientos.
const (
	AccionCreacion        = "CREATE"
	AccionActualizacion   = "UPDATE"
	AccionEliminacion     = "DELETE"
	AccionRestauracion    = "RESTORE"
	AccionCambioEstado    = "STATUS_CHANGE"
	AccionImagenSubida    = "IMAGE_UPLOAD"
	AccionImagenReemplazo = "IMAGE_REPLACE"
	AccionImagenBorrado   = "IMAGE_DELETE"
	AccionCambioUbicacion = "LOCATION_CHANGE"
	AccionCambioEmpresa   = "COMPANY_CHANGE"
	AccionMantenimiento   = "MAINTENANCE"
)

// UsuarioSistema es el actor por defecto cuando no hay usuario autenticado.
const UsuarioSistema = "Sistema"

// Movimiento es una entrada inmutable del historial de auditoría. Una vez
// agregada nunca se reescribe ni se elimina desde el núcleo.
type Movimiento struct {
	ID                string
	LineaID           *string // nil si la línea fue eliminada después
	Accion            string
	Descripcion       string
	UsuarioID         string
	UsuarioNombre     string
	ValoresAnteriores map[string]any // solo campos rastreables
	ValoresNuevos     map[string]any
	CamposModificados []string
	IP                string
	UserAgent         string
	CreatedAt         time.Time
}
