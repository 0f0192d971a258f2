package dto

import "time"

// MovimientoResponse salida de una entrada del historial.
type MovimientoResponse struct {
	ID                string         `json:"id"`
	LineaID           *string        `json:"linea_id,omitempty"`
	Accion            string         `json:"accion"`
	Descripcion       string         `json:"descripcion"`
	UsuarioID         string         `json:"usuario_id,omitempty"`
	UsuarioNombre     string         `json:"usuario_nombre"`
	ValoresAnteriores map[string]any `json:"valores_anteriores,omitempty"`
	ValoresNuevos     map[string]any `json:"valores_nuevos,omitempty"`
	CamposModificados []string       `json:"campos_modificados,omitempty"`
	IP                string         `json:"ip,omitempty"`
	UserAgent         string         `json:"user_agent,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// MovimientoListResponse historial paginado de una línea.
type MovimientoListResponse struct {
	Items []MovimientoResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// EventoImagenRequest entrada para auditar un evento de imagen.
type EventoImagenRequest struct {
	Accion      string `json:"accion" validate:"required"` // IMAGE_UPLOAD | IMAGE_REPLACE | IMAGE_DELETE
	Descripcion string `json:"descripcion"`
}

// MantenimientoRequest entrada para auditar un mantenimiento.
type MantenimientoRequest struct {
	Descripcion string `json:"descripcion" validate:"required"`
}
