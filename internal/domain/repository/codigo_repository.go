package repository

import (
	"time"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// CodigoRepository define el puerto de persistencia para códigos de
// autorización. Las filas nunca se eliminan; solo transicionan de estado.
type CodigoRepository interface {
	Crear(codigo *entity.CodigoAutorizacion) error
	ObtenerPorID(id string) (*entity.CodigoAutorizacion, error)
	// BuscarPendiente busca una solicitud PENDING no expirada para la pareja
	// (línea, solicitante). nil si no existe.
	BuscarPendiente(lineaID, solicitanteID string, ahora time.Time) (*entity.CodigoAutorizacion, error)
	// BuscarPorCodigo busca una fila PENDING que coincida con (código, línea,
	// solicitante), expirada o no. nil si no existe.
	BuscarPorCodigo(codigo, lineaID, solicitanteID string) (*entity.CodigoAutorizacion, error)
	// AsignarCodigo fija código, aprobador y nueva expiración solo si la fila
	// sigue PENDING (compare-and-swap). Devuelve true si la transición aplicó.
	AsignarCodigo(id, codigo, aprobadorID string, expiraEn time.Time) (bool, error)
	// MarcarUsado transiciona PENDING→USED (compare-and-swap sobre estado).
	MarcarUsado(id string, usadoEn time.Time) (bool, error)
	// MarcarExpirado transiciona PENDING→EXPIRED (compare-and-swap sobre estado).
	MarcarExpirado(id string) (bool, error)
	// ExpirarVencidos transiciona en lote toda fila PENDING cuya expiración ya
	// pasó. Idempotente. Devuelve cuántas filas transicionaron.
	ExpirarVencidos(ahora time.Time) (int, error)
}
