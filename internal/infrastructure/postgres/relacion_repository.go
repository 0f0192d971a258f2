package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

var _ repository.RelacionRepository = (*RelacionRepo)(nil)

// RelacionRepo implementación sobre PostgreSQL (usable con pool o tx).
// Las filas referencian lineas_vida con ON DELETE CASCADE sobre la hija: si la
// compensación del saga borra una línea hija, su fila de relación cae con ella.
type RelacionRepo struct {
	q Querier
}

// NewRelacionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRelacionRepository(q Querier) *RelacionRepo {
	return &RelacionRepo{q: q}
}

// Crear persiste una fila de relación padre→hija.
func (r *RelacionRepo) Crear(relacion *entity.RelacionLinea) error {
	if relacion.ID == "" {
		relacion.ID = uuid.New().String()
	}
	query := `
		INSERT INTO relaciones_linea (id, linea_padre_id, linea_hija_id, tipo, notas, creada_por, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		relacion.ID, relacion.LineaPadreID, relacion.LineaHijaID,
		relacion.Tipo, relacion.Notas, relacion.CreadaPor, relacion.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la línea hija ya está vinculada", domain.ErrRelacionExistente)
		}
		return fmt.Errorf("crear relación: %w", err)
	}
	return nil
}

// ListarPorPadre lista las filas de relación de una línea padre.
func (r *RelacionRepo) ListarPorPadre(lineaPadreID string) ([]*entity.RelacionLinea, error) {
	query := `
		SELECT id, linea_padre_id, linea_hija_id, tipo, notas, creada_por, created_at
		FROM relaciones_linea WHERE linea_padre_id = $1
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, lineaPadreID)
	if err != nil {
		return nil, fmt.Errorf("listar relaciones: %w", err)
	}
	defer rows.Close()

	var list []*entity.RelacionLinea
	for rows.Next() {
		var rel entity.RelacionLinea
		if err := rows.Scan(&rel.ID, &rel.LineaPadreID, &rel.LineaHijaID,
			&rel.Tipo, &rel.Notas, &rel.CreadaPor, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan relación: %w", err)
		}
		list = append(list, &rel)
	}
	return list, rows.Err()
}

// ExisteComoPadre indica si la línea ya tiene alguna fila como padre.
func (r *RelacionRepo) ExisteComoPadre(lineaID string) (bool, error) {
	return r.existe(`SELECT EXISTS (SELECT 1 FROM relaciones_linea WHERE linea_padre_id = $1)`, lineaID)
}

// ExisteComoHija indica si la línea ya figura como hija de alguna relación.
func (r *RelacionRepo) ExisteComoHija(lineaID string) (bool, error) {
	return r.existe(`SELECT EXISTS (SELECT 1 FROM relaciones_linea WHERE linea_hija_id = $1)`, lineaID)
}

func (r *RelacionRepo) existe(query, lineaID string) (bool, error) {
	var existe bool
	if err := r.q.QueryRow(context.Background(), query, lineaID).Scan(&existe); err != nil {
		return false, fmt.Errorf("consultar relación: %w", err)
	}
	return existe, nil
}
