package relaciones

import (
	"context"

	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Cada paso hija (línea + fila de relación +
// entrada de auditoría) se confirma o revierte como unidad; la compensación
// entre hijas sigue siendo responsabilidad del servicio.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lineas repository.LineaRepository,
		relaciones repository.RelacionRepository,
		movimientos repository.MovimientoRepository,
	) error) error
}
