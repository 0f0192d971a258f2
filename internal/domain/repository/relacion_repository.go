package repository

import (
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// RelacionRepository define el puerto de persistencia para relaciones
// padre→hija. Las filas se crean en lote y nunca se actualizan.
type RelacionRepository interface {
	Crear(relacion *entity.RelacionLinea) error
	ListarPorPadre(lineaPadreID string) ([]*entity.RelacionLinea, error)
	// ExisteComoPadre indica si la línea ya tiene alguna fila como padre
	// (grupo de relación ya creado).
	ExisteComoPadre(lineaID string) (bool, error)
	// ExisteComoHija indica si la línea ya figura como hija de alguna relación.
	ExisteComoHija(lineaID string) (bool, error)
}
