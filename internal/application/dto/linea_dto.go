package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrearLineaRequest entrada para registrar una línea de vida.
type CrearLineaRequest struct {
	Codigo           string          `json:"codigo" validate:"required,min=1,max=50"`
	Cliente          string          `json:"cliente"`
	Ubicacion        string          `json:"ubicacion"`
	FechaInstalacion time.Time       `json:"fecha_instalacion" validate:"required"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
	Longitud         decimal.Decimal `json:"longitud"`
	Observaciones    string          `json:"observaciones"`
}

// ActualizarLineaRequest entrada para actualizar una línea (el estado no se
// acepta: es derivado o terminal).
type ActualizarLineaRequest struct {
	Cliente          *string          `json:"cliente"`
	Ubicacion        *string          `json:"ubicacion"`
	FechaVencimiento *time.Time       `json:"fecha_vencimiento"`
	Longitud         *decimal.Decimal `json:"longitud"`
	Observaciones    *string          `json:"observaciones"`
}

// EliminarLineaRequest entrada para eliminar una línea. El código de
// autorización solo es necesario cuando la línea no admite borrado directo.
type EliminarLineaRequest struct {
	CodigoAutorizacion string `json:"codigo_autorizacion"`
}

// LineaResponse salida de una línea de vida.
type LineaResponse struct {
	ID               string          `json:"id"`
	Codigo           string          `json:"codigo"`
	Cliente          string          `json:"cliente"`
	Ubicacion        string          `json:"ubicacion"`
	FechaInstalacion time.Time       `json:"fecha_instalacion"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento,omitempty"`
	Estado           string          `json:"estado"`
	Longitud         decimal.Decimal `json:"longitud"`
	Observaciones    string          `json:"observaciones"`
	Activa           bool            `json:"activa"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LineaListResponse lista paginada de líneas.
type LineaListResponse struct {
	Items []LineaResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ClasificacionResponse salida del clasificador de vigencia.
type ClasificacionResponse struct {
	Estado        string `json:"estado"`
	DiasRestantes int    `json:"dias_restantes"`
	Mensaje       string `json:"mensaje"`
	Prioridad     string `json:"prioridad"`
}

// RefrescoEstadosResponse resultado del refresco programado de estados.
type RefrescoEstadosResponse struct {
	Revisadas    int `json:"revisadas"`
	Actualizadas int `json:"actualizadas"`
}
