package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

var _ repository.LineaRepository = (*LineaRepo)(nil)

// LineaRepo implementación sobre PostgreSQL (usable con pool o tx).
type LineaRepo struct {
	q Querier
}

// NewLineaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLineaRepository(q Querier) *LineaRepo {
	return &LineaRepo{q: q}
}

const lineaColumns = `id, codigo, cliente, ubicacion, fecha_instalacion, fecha_vencimiento, estado, longitud, observaciones, activa, created_at, updated_at`

// Crear persiste una línea nueva. Código duplicado -> ErrCodigoDuplicado.
func (r *LineaRepo) Crear(linea *entity.LineaVida) error {
	if linea.ID == "" {
		linea.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lineas_vida (` + lineaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		linea.ID, linea.Codigo, linea.Cliente, linea.Ubicacion,
		linea.FechaInstalacion, linea.FechaVencimiento, linea.Estado,
		linea.Longitud, linea.Observaciones, linea.Activa,
		linea.CreatedAt, linea.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrCodigoDuplicado, linea.Codigo)
		}
		return fmt.Errorf("crear línea: %w", err)
	}
	return nil
}

// ObtenerPorID obtiene una línea por ID. nil si no existe.
func (r *LineaRepo) ObtenerPorID(id string) (*entity.LineaVida, error) {
	query := `SELECT ` + lineaColumns + ` FROM lineas_vida WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// ObtenerPorCodigo obtiene una línea por su código único. nil si no existe.
func (r *LineaRepo) ObtenerPorCodigo(codigo string) (*entity.LineaVida, error) {
	query := `SELECT ` + lineaColumns + ` FROM lineas_vida WHERE codigo = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, codigo))
}

// Actualizar persiste todos los campos mutables de la línea.
func (r *LineaRepo) Actualizar(linea *entity.LineaVida) error {
	query := `
		UPDATE lineas_vida
		SET cliente = $2, ubicacion = $3, fecha_instalacion = $4, fecha_vencimiento = $5,
		    estado = $6, longitud = $7, observaciones = $8, activa = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		linea.ID, linea.Cliente, linea.Ubicacion, linea.FechaInstalacion,
		linea.FechaVencimiento, linea.Estado, linea.Longitud,
		linea.Observaciones, linea.Activa, linea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("actualizar línea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoEncontrada
	}
	return nil
}

// ActualizarEstado actualiza solo el estado denormalizado.
func (r *LineaRepo) ActualizarEstado(id, estado string) error {
	query := `UPDATE lineas_vida SET estado = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, estado)
	if err != nil {
		return fmt.Errorf("actualizar estado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoEncontrada
	}
	return nil
}

// Retirar fija el estado terminal de la línea y la desactiva, sacándola del
// universo de escaneo de alertas.
func (r *LineaRepo) Retirar(id, estado string) error {
	query := `UPDATE lineas_vida SET estado = $2, activa = false, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, estado)
	if err != nil {
		return fmt.Errorf("retirar línea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoEncontrada
	}
	return nil
}

// Listar lista líneas ordenadas por creación descendente.
func (r *LineaRepo) Listar(limit, offset int) ([]*entity.LineaVida, error) {
	query := `SELECT ` + lineaColumns + ` FROM lineas_vida ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar líneas: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListarConVencimiento devuelve las líneas activas con fecha de vencimiento
// no nula (entrada del generador de alertas).
func (r *LineaRepo) ListarConVencimiento() ([]*entity.LineaVida, error) {
	query := `
		SELECT ` + lineaColumns + `
		FROM lineas_vida
		WHERE activa AND fecha_vencimiento IS NOT NULL
		ORDER BY fecha_vencimiento ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("listar con vencimiento: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListarNoTerminales devuelve las líneas cuyo estado no es terminal
// (entrada del refresco programado de estados).
func (r *LineaRepo) ListarNoTerminales() ([]*entity.LineaVida, error) {
	query := `
		SELECT ` + lineaColumns + `
		FROM lineas_vida
		WHERE estado IN ($1, $2, $3)
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query,
		entity.EstadoActivo, entity.EstadoPorVencer, entity.EstadoVencido)
	if err != nil {
		return nil, fmt.Errorf("listar no terminales: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Eliminar borra la fila físicamente. Solo la usa la compensación del saga de
// relaciones; el borrado de negocio es la baja lógica del caso de uso.
// Las filas de relación de la línea caen en cascada (FK ON DELETE CASCADE).
func (r *LineaRepo) Eliminar(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM lineas_vida WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("eliminar línea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoEncontrada
	}
	return nil
}

func (r *LineaRepo) scanOne(row pgx.Row) (*entity.LineaVida, error) {
	var l entity.LineaVida
	err := row.Scan(
		&l.ID, &l.Codigo, &l.Cliente, &l.Ubicacion, &l.FechaInstalacion,
		&l.FechaVencimiento, &l.Estado, &l.Longitud, &l.Observaciones,
		&l.Activa, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan línea: %w", err)
	}
	return &l, nil
}

func (r *LineaRepo) scanAll(rows pgx.Rows) ([]*entity.LineaVida, error) {
	var list []*entity.LineaVida
	for rows.Next() {
		var l entity.LineaVida
		if err := rows.Scan(
			&l.ID, &l.Codigo, &l.Cliente, &l.Ubicacion, &l.FechaInstalacion,
			&l.FechaVencimiento, &l.Estado, &l.Longitud, &l.Observaciones,
			&l.Activa, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan línea: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
