package entity

import (
	"encoding/json"
	"time"
)

// Tipos de alerta generados por el escaneo de vigencias.
const (
	AlertaPorVencer = "POR_VENCER"
	AlertaVencido   = "VENCIDO"
	AlertaCritico   = "CRITICO"
)

// Prioridades de una alerta.
const (
	PrioridadBaja    = "low"
	PrioridadMedia   = "medium"
	PrioridadAlta    = "high"
	PrioridadCritica = "critical"
)

// Alerta es una notificación generada por el generador de alertas. Nunca se
// modifica después de creada salvo las transiciones de lectura.
type Alerta struct {
	ID         string
	Tipo       string
	LineaID    string
	Mensaje    string
	Prioridad  string
	Leida      bool
	FechaLeida *time.Time
	Metadatos  json.RawMessage // snapshot opaco al momento de generación
	CreatedAt  time.Time
}
