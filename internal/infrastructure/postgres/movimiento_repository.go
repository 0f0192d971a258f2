package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

// MovimientoRepo implementación sobre PostgreSQL (usable con pool o tx).
// Los snapshots viajan como JSONB; la tabla es append-only.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

const movimientoColumns = `id, linea_id, accion, descripcion, usuario_id, usuario_nombre, valores_anteriores, valores_nuevos, campos_modificados, ip, user_agent, created_at`

// Agregar inserta una entrada del historial. Nunca hay UPDATE ni DELETE.
func (r *MovimientoRepo) Agregar(m *entity.Movimiento) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	anteriores, err := marshalSnapshot(m.ValoresAnteriores)
	if err != nil {
		return err
	}
	nuevos, err := marshalSnapshot(m.ValoresNuevos)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO movimientos (` + movimientoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(context.Background(), query,
		m.ID, m.LineaID, m.Accion, m.Descripcion, m.UsuarioID, m.UsuarioNombre,
		anteriores, nuevos, m.CamposModificados, m.IP, m.UserAgent, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("agregar movimiento: %w", err)
	}
	return nil
}

// ListarPorLinea lista el historial de una línea, más reciente primero.
func (r *MovimientoRepo) ListarPorLinea(lineaID string, limit, offset int) ([]*entity.Movimiento, error) {
	query := `
		SELECT ` + movimientoColumns + `
		FROM movimientos WHERE linea_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, lineaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movimiento
	for rows.Next() {
		m, err := scanMovimiento(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// PrimeraAccion devuelve la entrada más antigua de una acción dada para la
// línea (ej. la creación original). nil si no existe.
func (r *MovimientoRepo) PrimeraAccion(lineaID, accion string) (*entity.Movimiento, error) {
	query := `
		SELECT ` + movimientoColumns + `
		FROM movimientos WHERE linea_id = $1 AND accion = $2
		ORDER BY created_at ASC LIMIT 1`
	m, err := scanMovimiento(r.q.QueryRow(context.Background(), query, lineaID, accion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func scanMovimiento(row pgx.Row) (*entity.Movimiento, error) {
	var m entity.Movimiento
	var anteriores, nuevos []byte
	err := row.Scan(
		&m.ID, &m.LineaID, &m.Accion, &m.Descripcion, &m.UsuarioID, &m.UsuarioNombre,
		&anteriores, &nuevos, &m.CamposModificados, &m.IP, &m.UserAgent, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan movimiento: %w", err)
	}
	if m.ValoresAnteriores, err = unmarshalSnapshot(anteriores); err != nil {
		return nil, err
	}
	if m.ValoresNuevos, err = unmarshalSnapshot(nuevos); err != nil {
		return nil, err
	}
	return &m, nil
}

func marshalSnapshot(valores map[string]any) ([]byte, error) {
	if valores == nil {
		return nil, nil
	}
	b, err := json.Marshal(valores)
	if err != nil {
		return nil, fmt.Errorf("serializar snapshot: %w", err)
	}
	return b, nil
}

func unmarshalSnapshot(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var valores map[string]any
	if err := json.Unmarshal(b, &valores); err != nil {
		return nil, fmt.Errorf("deserializar snapshot: %w", err)
	}
	return valores, nil
}
