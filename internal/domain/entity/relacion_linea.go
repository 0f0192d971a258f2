package entity

import "time"

// Tipos de relación padre→hija entre líneas de vida.
const (
	RelacionReemplazo     = "REPLACEMENT"
	RelacionDivision      = "DIVISION"
	RelacionActualizacion = "UPGRADE"
)

// EstadoTerminalPorRelacion devuelve el estado terminal que adquiere la línea
// padre según el tipo de relación. Cadena vacía si el tipo no es válido.
func EstadoTerminalPorRelacion(tipo string) string {
	switch tipo {
	case RelacionReemplazo:
		return EstadoReemplazada
	case RelacionDivision:
		return EstadoDividida
	case RelacionActualizacion:
		return EstadoActualizada
	}
	return ""
}

// RelacionLinea vincula una línea padre retirada con una línea hija creada en
// su lugar. Se crean en lote (una fila por hija) y nunca se actualizan.
type RelacionLinea struct {
	ID           string
	LineaPadreID string
	LineaHijaID  string
	Tipo         string
	Notas        string
	CreadaPor    string
	CreatedAt    time.Time
}
