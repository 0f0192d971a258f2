package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

var _ repository.AlertaRepository = (*AlertaRepo)(nil)

// AlertaRepo implementación sobre PostgreSQL (usable con pool o tx).
type AlertaRepo struct {
	q Querier
}

// NewAlertaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertaRepository(q Querier) *AlertaRepo {
	return &AlertaRepo{q: q}
}

const alertaColumns = `id, tipo, linea_id, mensaje, prioridad, leida, fecha_leida, metadatos, created_at`

// Crear inserta la alerta sin verificar el throttle (ruta manual).
func (r *AlertaRepo) Crear(alerta *entity.Alerta) error {
	if alerta.ID == "" {
		alerta.ID = uuid.New().String()
	}
	query := `
		INSERT INTO alertas (` + alertaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		alerta.ID, alerta.Tipo, alerta.LineaID, alerta.Mensaje, alerta.Prioridad,
		alerta.Leida, alerta.FechaLeida, alerta.Metadatos, alerta.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("crear alerta: %w", err)
	}
	return nil
}

// CrearSiNoReciente inserta la alerta solo si no existe otra del mismo
// (línea, tipo) dentro de la ventana. Una sola sentencia: la verificación y
// el insert son atómicos, dos escaneos concurrentes no duplican.
func (r *AlertaRepo) CrearSiNoReciente(alerta *entity.Alerta, ventana time.Duration) (bool, error) {
	if alerta.ID == "" {
		alerta.ID = uuid.New().String()
	}
	query := `
		INSERT INTO alertas (` + alertaColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM alertas
			WHERE linea_id = $3 AND tipo = $2 AND created_at > $10
		)`
	corte := alerta.CreatedAt.Add(-ventana)
	tag, err := r.q.Exec(context.Background(), query,
		alerta.ID, alerta.Tipo, alerta.LineaID, alerta.Mensaje, alerta.Prioridad,
		alerta.Leida, alerta.FechaLeida, alerta.Metadatos, alerta.CreatedAt, corte,
	)
	if err != nil {
		return false, fmt.Errorf("crear alerta con throttle: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Listar lista alertas, opcionalmente solo las no leídas.
func (r *AlertaRepo) Listar(soloNoLeidas bool, limit, offset int) ([]*entity.Alerta, error) {
	query := `SELECT ` + alertaColumns + ` FROM alertas`
	if soloNoLeidas {
		query += ` WHERE NOT leida`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar alertas: %w", err)
	}
	defer rows.Close()

	var list []*entity.Alerta
	for rows.Next() {
		var a entity.Alerta
		if err := rows.Scan(&a.ID, &a.Tipo, &a.LineaID, &a.Mensaje, &a.Prioridad,
			&a.Leida, &a.FechaLeida, &a.Metadatos, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alerta: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// MarcarLeida marca una alerta como leída. Idempotente.
func (r *AlertaRepo) MarcarLeida(id string, ahora time.Time) error {
	query := `UPDATE alertas SET leida = true, fecha_leida = $2 WHERE id = $1 AND NOT leida`
	if _, err := r.q.Exec(context.Background(), query, id, ahora); err != nil {
		return fmt.Errorf("marcar leída: %w", err)
	}
	return nil
}

// MarcarTodasLeidas marca como leídas todas las alertas pendientes.
func (r *AlertaRepo) MarcarTodasLeidas(ahora time.Time) error {
	query := `UPDATE alertas SET leida = true, fecha_leida = $1 WHERE NOT leida`
	if _, err := r.q.Exec(context.Background(), query, ahora); err != nil {
		return fmt.Errorf("marcar todas leídas: %w", err)
	}
	return nil
}
