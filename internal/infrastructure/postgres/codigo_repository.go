package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

var _ repository.CodigoRepository = (*CodigoRepo)(nil)

// CodigoRepo implementación sobre PostgreSQL (usable con pool o tx). Las
// transiciones de estado son compare-and-swap: UPDATE ... WHERE estado =
// 'PENDING', el número de filas afectadas decide quién ganó.
type CodigoRepo struct {
	q Querier
}

// NewCodigoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCodigoRepository(q Querier) *CodigoRepo {
	return &CodigoRepo{q: q}
}

const codigoColumns = `id, accion, linea_id, codigo_linea, solicitante_id, aprobador_id, estado, codigo, justificacion, ip, created_at, expira_en, usado_en`

// Crear persiste una solicitud nueva.
func (r *CodigoRepo) Crear(c *entity.CodigoAutorizacion) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO codigos_autorizacion (` + codigoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.Accion, c.LineaID, c.CodigoLinea, c.SolicitanteID, c.AprobadorID,
		c.Estado, c.Codigo, c.Justificacion, c.IP, c.CreatedAt, c.ExpiraEn, c.UsadoEn,
	)
	if err != nil {
		return fmt.Errorf("crear solicitud: %w", err)
	}
	return nil
}

// ObtenerPorID obtiene una solicitud por ID. nil si no existe.
func (r *CodigoRepo) ObtenerPorID(id string) (*entity.CodigoAutorizacion, error) {
	query := `SELECT ` + codigoColumns + ` FROM codigos_autorizacion WHERE id = $1`
	return scanCodigo(r.q.QueryRow(context.Background(), query, id))
}

// BuscarPendiente busca una solicitud PENDING no expirada para la pareja
// (línea, solicitante). nil si no existe.
func (r *CodigoRepo) BuscarPendiente(lineaID, solicitanteID string, ahora time.Time) (*entity.CodigoAutorizacion, error) {
	query := `
		SELECT ` + codigoColumns + `
		FROM codigos_autorizacion
		WHERE linea_id = $1 AND solicitante_id = $2 AND estado = $3 AND expira_en > $4
		ORDER BY created_at DESC LIMIT 1`
	return scanCodigo(r.q.QueryRow(context.Background(), query,
		lineaID, solicitanteID, entity.CodigoPendiente, ahora))
}

// BuscarPorCodigo busca una fila PENDING que coincida con (código, línea,
// solicitante), expirada o no. nil si no existe.
func (r *CodigoRepo) BuscarPorCodigo(codigo, lineaID, solicitanteID string) (*entity.CodigoAutorizacion, error) {
	query := `
		SELECT ` + codigoColumns + `
		FROM codigos_autorizacion
		WHERE codigo = $1 AND linea_id = $2 AND solicitante_id = $3 AND estado = $4
		ORDER BY created_at DESC LIMIT 1`
	return scanCodigo(r.q.QueryRow(context.Background(), query,
		codigo, lineaID, solicitanteID, entity.CodigoPendiente))
}

// AsignarCodigo fija código, aprobador y nueva expiración solo si la fila
// sigue PENDING. Devuelve true si la transición aplicó.
func (r *CodigoRepo) AsignarCodigo(id, codigo, aprobadorID string, expiraEn time.Time) (bool, error) {
	query := `
		UPDATE codigos_autorizacion
		SET codigo = $2, aprobador_id = $3, expira_en = $4
		WHERE id = $1 AND estado = $5`
	tag, err := r.q.Exec(context.Background(), query,
		id, codigo, aprobadorID, expiraEn, entity.CodigoPendiente)
	if err != nil {
		return false, fmt.Errorf("asignar código: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarcarUsado transiciona PENDING→USED.
func (r *CodigoRepo) MarcarUsado(id string, usadoEn time.Time) (bool, error) {
	query := `
		UPDATE codigos_autorizacion
		SET estado = $2, usado_en = $3
		WHERE id = $1 AND estado = $4`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.CodigoUsado, usadoEn, entity.CodigoPendiente)
	if err != nil {
		return false, fmt.Errorf("marcar usado: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarcarExpirado transiciona PENDING→EXPIRED.
func (r *CodigoRepo) MarcarExpirado(id string) (bool, error) {
	query := `
		UPDATE codigos_autorizacion
		SET estado = $2
		WHERE id = $1 AND estado = $3`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.CodigoExpirado, entity.CodigoPendiente)
	if err != nil {
		return false, fmt.Errorf("marcar expirado: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExpirarVencidos transiciona en lote toda fila PENDING cuya expiración ya
// pasó. Idempotente.
func (r *CodigoRepo) ExpirarVencidos(ahora time.Time) (int, error) {
	query := `
		UPDATE codigos_autorizacion
		SET estado = $1
		WHERE estado = $2 AND expira_en <= $3`
	tag, err := r.q.Exec(context.Background(), query,
		entity.CodigoExpirado, entity.CodigoPendiente, ahora)
	if err != nil {
		return 0, fmt.Errorf("expirar vencidos: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanCodigo(row pgx.Row) (*entity.CodigoAutorizacion, error) {
	var c entity.CodigoAutorizacion
	err := row.Scan(
		&c.ID, &c.Accion, &c.LineaID, &c.CodigoLinea, &c.SolicitanteID,
		&c.AprobadorID, &c.Estado, &c.Codigo, &c.Justificacion, &c.IP,
		&c.CreatedAt, &c.ExpiraEn, &c.UsadoEn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan solicitud: %w", err)
	}
	return &c, nil
}
