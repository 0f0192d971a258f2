// Package vigencia clasifica el riesgo de una línea de vida según su fecha de
// vencimiento (servicio de dominio puro, sin I/O).
package vigencia

import (
	"fmt"
	"math"
	"time"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// Umbrales por defecto (días). Configurables vía Opciones.
const (
	UmbralPorVencerDefault = 30 // días restantes para pasar a POR_VENCER
	UmbralCriticoDefault   = 60 // días vencidos para prioridad critical
	UmbralUrgente          = 7  // días restantes para prioridad high en POR_VENCER
)

// DiasSinVencimiento es el valor de DiasRestantes cuando no hay fecha de
// vencimiento (vigencia indefinida).
const DiasSinVencimiento = math.MaxInt32

// Opciones umbrales del clasificador.
type Opciones struct {
	UmbralPorVencer int
	UmbralCritico   int
}

// OpcionesDefault devuelve los umbrales por defecto.
func OpcionesDefault() Opciones {
	return Opciones{UmbralPorVencer: UmbralPorVencerDefault, UmbralCritico: UmbralCriticoDefault}
}

// Clasificacion resultado de clasificar una fecha de vencimiento.
type Clasificacion struct {
	Estado        string // ACTIVO | POR_VENCER | VENCIDO
	DiasRestantes int    // negativo si ya venció; DiasSinVencimiento si no aplica
	Mensaje       string
	Prioridad     string // low | medium | high | critical
}

// Clasificar calcula estado, días restantes, mensaje y prioridad a partir de la
// fecha de vencimiento y "ahora". Determinista dado ahora; sin efectos.
// Vencimiento nil ⇒ ACTIVO con vigencia indefinida y prioridad low.
func Clasificar(vencimiento *time.Time, ahora time.Time, opts Opciones) Clasificacion {
	if opts.UmbralPorVencer <= 0 {
		opts.UmbralPorVencer = UmbralPorVencerDefault
	}
	if opts.UmbralCritico <= 0 {
		opts.UmbralCritico = UmbralCriticoDefault
	}

	if vencimiento == nil {
		return Clasificacion{
			Estado:        entity.EstadoActivo,
			DiasRestantes: DiasSinVencimiento,
			Mensaje:       "línea sin fecha de vencimiento registrada",
			Prioridad:     entity.PrioridadBaja,
		}
	}

	dias := diasHasta(*vencimiento, ahora)

	var estado, prioridad string
	switch {
	case dias < 0:
		estado = entity.EstadoVencido
		if -dias > opts.UmbralCritico {
			prioridad = entity.PrioridadCritica
		} else {
			prioridad = entity.PrioridadAlta
		}
	case dias <= opts.UmbralPorVencer:
		estado = entity.EstadoPorVencer
		if dias <= UmbralUrgente {
			prioridad = entity.PrioridadAlta
		} else {
			prioridad = entity.PrioridadMedia
		}
	default:
		estado = entity.EstadoActivo
		prioridad = entity.PrioridadBaja
	}

	return Clasificacion{
		Estado:        estado,
		DiasRestantes: dias,
		Mensaje:       mensaje(estado, dias),
		Prioridad:     prioridad,
	}
}

// diasHasta calcula los días calendario entre hoy y el vencimiento, ambos
// truncados a medianoche en la zona de "ahora".
func diasHasta(vencimiento, ahora time.Time) int {
	v := medianoche(vencimiento.In(ahora.Location()))
	h := medianoche(ahora)
	return int(math.Ceil(v.Sub(h).Hours() / 24))
}

func medianoche(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mensaje(estado string, dias int) string {
	switch estado {
	case entity.EstadoVencido:
		return fmt.Sprintf("línea vencida hace %d días", -dias)
	case entity.EstadoPorVencer:
		if dias == 0 {
			return "la línea vence hoy"
		}
		return fmt.Sprintf("la línea vence en %d días", dias)
	}
	return fmt.Sprintf("línea vigente, vence en %d días", dias)
}
