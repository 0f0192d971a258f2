package entity

import "time"

// Acciones que requieren código de autorización.
const (
	AccionAutorizacionEliminar = "DELETE_RECORD"
)

// Estados del código de autorización. USED y EXPIRED son terminales.
const (
	CodigoPendiente = "PENDING"
	CodigoUsado     = "USED"
	CodigoExpirado  = "EXPIRED"
)

// CodigoPlaceholder ocupa el campo Codigo hasta que un aprobador genera uno real.
const CodigoPlaceholder = "--------"

// LongitudCodigo caracteres del código alfanumérico [A-Z0-9].
const LongitudCodigo = 8

// CodigoAutorizacion es una solicitud de autorización de borrado con código de
// un solo uso y vigencia corta. Las filas nunca se eliminan (auditoría).
type CodigoAutorizacion struct {
	ID            string
	Accion        string
	LineaID       string
	CodigoLinea   string // snapshot del código de la línea al solicitar
	SolicitanteID string
	AprobadorID   *string // nil hasta que se genera el código
	Estado        string
	Codigo        string
	Justificacion string
	IP            string
	CreatedAt     time.Time
	ExpiraEn      time.Time
	UsadoEn       *time.Time
}

// Expirado indica si la solicitud pasó su fecha de expiración.
func (c *CodigoAutorizacion) Expirado(ahora time.Time) bool {
	return ahora.After(c.ExpiraEn)
}
