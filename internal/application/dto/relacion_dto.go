package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// HijaRequest definición completa de una línea hija a crear.
type HijaRequest struct {
	Codigo           string          `json:"codigo" validate:"required"`
	Cliente          string          `json:"cliente"`
	Ubicacion        string          `json:"ubicacion"`
	FechaInstalacion time.Time       `json:"fecha_instalacion" validate:"required"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
	Longitud         decimal.Decimal `json:"longitud"`
	Observaciones    string          `json:"observaciones"`
}

// CrearRelacionRequest entrada para retirar una línea padre creando sus hijas.
type CrearRelacionRequest struct {
	Tipo  string        `json:"tipo" validate:"required"` // REPLACEMENT | DIVISION | UPGRADE
	Hijas []HijaRequest `json:"hijas" validate:"required,min=1"`
	Notas string        `json:"notas"`
}

// RelacionResponse una fila de relación padre→hija.
type RelacionResponse struct {
	ID           string    `json:"id"`
	LineaPadreID string    `json:"linea_padre_id"`
	LineaHijaID  string    `json:"linea_hija_id"`
	Tipo         string    `json:"tipo"`
	Notas        string    `json:"notas,omitempty"`
	CreadaPor    string    `json:"creada_por"`
	CreatedAt    time.Time `json:"created_at"`
}

// CrearRelacionResponse resultado del retiro: padre, hijas y relaciones.
type CrearRelacionResponse struct {
	Padre      LineaResponse      `json:"padre"`
	Hijas      []LineaResponse    `json:"hijas"`
	Relaciones []RelacionResponse `json:"relaciones"`
}
