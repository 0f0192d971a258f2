package repository

import (
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// MovimientoRepository define el puerto del historial de auditoría
// (append-only: no hay operaciones de edición ni borrado).
type MovimientoRepository interface {
	Agregar(movimiento *entity.Movimiento) error
	ListarPorLinea(lineaID string, limit, offset int) ([]*entity.Movimiento, error)
	// PrimeraAccion devuelve la entrada más antigua de una acción dada para la
	// línea (ej. la creación original). nil si no existe.
	PrimeraAccion(lineaID, accion string) (*entity.Movimiento, error)
}
