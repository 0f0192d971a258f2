package dto

import (
	"encoding/json"
	"time"
)

// AlertaResponse salida de una alerta.
type AlertaResponse struct {
	ID         string          `json:"id"`
	Tipo       string          `json:"tipo"`
	LineaID    string          `json:"linea_id"`
	Mensaje    string          `json:"mensaje"`
	Prioridad  string          `json:"prioridad"`
	Leida      bool            `json:"leida"`
	FechaLeida *time.Time      `json:"fecha_leida,omitempty"`
	Metadatos  json.RawMessage `json:"metadatos,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AlertaListResponse lista paginada de alertas.
type AlertaListResponse struct {
	Items []AlertaResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// EscaneoResponse contadores devueltos por un escaneo de alertas.
type EscaneoResponse struct {
	Evaluadas int `json:"evaluadas"`
	Generadas int `json:"generadas"`
}
