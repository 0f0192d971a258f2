package repository

import (
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// LineaRepository define el puerto de persistencia para LineaVida (DIP).
type LineaRepository interface {
	Crear(linea *entity.LineaVida) error
	ObtenerPorID(id string) (*entity.LineaVida, error)
	ObtenerPorCodigo(codigo string) (*entity.LineaVida, error)
	Actualizar(linea *entity.LineaVida) error
	ActualizarEstado(id, estado string) error
	// Retirar fija el estado terminal y desactiva la línea (sale del escaneo
	// de alertas).
	Retirar(id, estado string) error
	Listar(limit, offset int) ([]*entity.LineaVida, error)
	// ListarConVencimiento devuelve las líneas activas con fecha de vencimiento
	// no nula (entrada del generador de alertas).
	ListarConVencimiento() ([]*entity.LineaVida, error)
	// ListarNoTerminales devuelve las líneas cuyo estado no es terminal
	// (entrada del refresco programado de estados).
	ListarNoTerminales() ([]*entity.LineaVida, error)
	Eliminar(id string) error
}
