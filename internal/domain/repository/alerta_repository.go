package repository

import (
	"time"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// AlertaRepository define el puerto de persistencia para alertas.
type AlertaRepository interface {
	// Crear inserta la alerta sin verificar el throttle (ruta manual).
	Crear(alerta *entity.Alerta) error
	// CrearSiNoReciente inserta la alerta solo si no existe otra del mismo
	// (línea, tipo) creada dentro de la ventana. La verificación y el insert
	// deben ser atómicos (una sola sentencia). Devuelve true si insertó.
	CrearSiNoReciente(alerta *entity.Alerta, ventana time.Duration) (bool, error)
	Listar(soloNoLeidas bool, limit, offset int) ([]*entity.Alerta, error)
	MarcarLeida(id string, ahora time.Time) error
	MarcarTodasLeidas(ahora time.Time) error
}
