package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una línea de vida. Los tres primeros se derivan de la fecha de
// vencimiento; los cuatro últimos son terminales y nunca se recalculan.
const (
	EstadoActivo    = "ACTIVO"
	EstadoPorVencer = "POR_VENCER"
	EstadoVencido   = "VENCIDO"

	EstadoReemplazada = "REEMPLAZADA"
	EstadoDividida    = "DIVIDIDA"
	EstadoActualizada = "ACTUALIZADA"
	EstadoInactivo    = "INACTIVO"
)

// EsEstadoTerminal indica si un estado es autoritativo (retirada por relación
// o baja) y por tanto queda fuera del refresco programado de estados.
func EsEstadoTerminal(estado string) bool {
	switch estado {
	case EstadoReemplazada, EstadoDividida, EstadoActualizada, EstadoInactivo:
		return true
	}
	return false
}

// LineaVida representa una línea de vida instalada (equipo de protección contra
// caídas). Estado es denormalizado: debe ser reconciliable con lo que el
// clasificador de vigencia calcula desde FechaVencimiento, salvo estados terminales.
type LineaVida struct {
	ID               string
	Codigo           string // código único de identificación física
	Cliente          string
	Ubicacion        string
	FechaInstalacion time.Time
	FechaVencimiento *time.Time // nil = sin vencimiento certificado
	Estado           string
	Longitud         decimal.Decimal // metros
	Observaciones    string
	Activa           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
