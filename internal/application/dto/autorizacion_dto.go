package dto

import "time"

// SolicitarAutorizacionRequest entrada para pedir autorización de borrado.
type SolicitarAutorizacionRequest struct {
	Justificacion string `json:"justificacion" validate:"required"`
}

// ValidarCodigoRequest entrada para validar un código contra una línea.
type ValidarCodigoRequest struct {
	Codigo string `json:"codigo" validate:"required,len=8"`
}

// AutorizacionResponse salida de una solicitud de autorización. El código solo
// se expone en la respuesta de generación (al aprobador).
type AutorizacionResponse struct {
	ID            string     `json:"id"`
	Accion        string     `json:"accion"`
	LineaID       string     `json:"linea_id"`
	CodigoLinea   string     `json:"codigo_linea"`
	SolicitanteID string     `json:"solicitante_id"`
	AprobadorID   *string    `json:"aprobador_id,omitempty"`
	Estado        string     `json:"estado"`
	Codigo        string     `json:"codigo,omitempty"`
	Justificacion string     `json:"justificacion,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiraEn      time.Time  `json:"expira_en"`
	UsadoEn       *time.Time `json:"usado_en,omitempty"`
}

// ValidacionResponse resultado estructurado de validar un código.
type ValidacionResponse struct {
	Valido      bool   `json:"valido"`
	SolicitudID string `json:"solicitud_id,omitempty"`
	Motivo      string `json:"motivo,omitempty"`
}

// RequiereAutorizacionResponse respuesta de la consulta previa al borrado.
type RequiereAutorizacionResponse struct {
	Requiere bool `json:"requiere"`
}

// LimpiezaResponse resultado del barrido de códigos expirados.
type LimpiezaResponse struct {
	Expirados int `json:"expirados"`
}
