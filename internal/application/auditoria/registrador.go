// Package auditoria implementa el historial de movimientos: una entrada
// inmutable por cada mutación de una línea de vida.
package auditoria

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

// CamposRastreables es la lista cerrada de campos cuyos cambios se auditan.
// El diff de actualización compara solo estos campos, por desigualdad estricta.
var CamposRastreables = []string{
	"codigo",
	"cliente",
	"ubicacion",
	"fecha_instalacion",
	"fecha_vencimiento",
	"estado",
	"longitud",
	"observaciones",
}

// Actor identifica a quien ejecuta la mutación. Nombre vacío se registra como
// el centinela "Sistema" (procesos programados).
type Actor struct {
	ID        string
	Nombre    string
	IP        string
	UserAgent string
}

func (a Actor) nombre() string {
	if a.Nombre == "" {
		return entity.UsuarioSistema
	}
	return a.Nombre
}

// Registrador escribe entradas del historial. Toda operación pública termina
// en el primitivo agregar; ninguna edita ni elimina entradas existentes.
type Registrador struct {
	repo  repository.MovimientoRepository
	reloj func() time.Time
}

// NewRegistrador construye el registrador. reloj nil usa time.Now.
func NewRegistrador(repo repository.MovimientoRepository, reloj func() time.Time) *Registrador {
	if reloj == nil {
		reloj = time.Now
	}
	return &Registrador{repo: repo, reloj: reloj}
}

// Snapshot devuelve el mapa campo→valor de los campos rastreables de la línea.
// Los valores se serializan a tipos planos (string) para que la comparación
// estricta y el almacenamiento JSONB sean estables.
func Snapshot(l *entity.LineaVida) map[string]any {
	venc := ""
	if l.FechaVencimiento != nil {
		venc = l.FechaVencimiento.Format(time.RFC3339)
	}
	return map[string]any{
		"codigo":            l.Codigo,
		"cliente":           l.Cliente,
		"ubicacion":         l.Ubicacion,
		"fecha_instalacion": l.FechaInstalacion.Format(time.RFC3339),
		"fecha_vencimiento": venc,
		"estado":            l.Estado,
		"longitud":          l.Longitud.String(),
		"observaciones":     l.Observaciones,
	}
}

// RegistrarCreacion agrega la entrada CREATE con snapshot completo.
func (r *Registrador) RegistrarCreacion(linea *entity.LineaVida, actor Actor) error {
	return r.agregar(&entity.Movimiento{
		LineaID:       &linea.ID,
		Accion:        entity.AccionCreacion,
		Descripcion:   fmt.Sprintf("línea de vida %s creada", linea.Codigo),
		ValoresNuevos: Snapshot(linea),
	}, actor)
}

// RegistrarActualizacion compara los campos rastreables entre el estado
// anterior y el nuevo. Si ningún campo cambió no se escribe entrada alguna.
func (r *Registrador) RegistrarActualizacion(anterior, nueva *entity.LineaVida, actor Actor) error {
	snapAnt := Snapshot(anterior)
	snapNew := Snapshot(nueva)

	var cambiados []string
	for _, campo := range CamposRastreables {
		if snapAnt[campo] != snapNew[campo] {
			cambiados = append(cambiados, campo)
		}
	}
	if len(cambiados) == 0 {
		return nil
	}

	return r.agregar(&entity.Movimiento{
		LineaID:           &nueva.ID,
		Accion:            entity.AccionActualizacion,
		Descripcion:       fmt.Sprintf("línea de vida %s actualizada", nueva.Codigo),
		ValoresAnteriores: snapAnt,
		ValoresNuevos:     snapNew,
		CamposModificados: cambiados,
	}, actor)
}

// RegistrarEliminacion agrega la entrada DELETE con snapshot completo previo.
func (r *Registrador) RegistrarEliminacion(linea *entity.LineaVida, actor Actor) error {
	return r.agregar(&entity.Movimiento{
		LineaID:           &linea.ID,
		Accion:            entity.AccionEliminacion,
		Descripcion:       fmt.Sprintf("línea de vida %s eliminada", linea.Codigo),
		ValoresAnteriores: Snapshot(linea),
	}, actor)
}

// RegistrarRestauracion agrega la entrada RESTORE.
func (r *Registrador) RegistrarRestauracion(linea *entity.LineaVida, actor Actor) error {
	return r.agregar(&entity.Movimiento{
		LineaID:       &linea.ID,
		Accion:        entity.AccionRestauracion,
		Descripcion:   fmt.Sprintf("línea de vida %s restaurada", linea.Codigo),
		ValoresNuevos: Snapshot(linea),
	}, actor)
}

// RegistrarCambioEstado agrega la entrada STATUS_CHANGE con el antes/después
// del campo estado.
func (r *Registrador) RegistrarCambioEstado(lineaID, estadoAnterior, estadoNuevo string, actor Actor) error {
	return r.agregar(&entity.Movimiento{
		LineaID:           &lineaID,
		Accion:            entity.AccionCambioEstado,
		Descripcion:       fmt.Sprintf("estado cambiado de %s a %s", estadoAnterior, estadoNuevo),
		ValoresAnteriores: map[string]any{"estado": estadoAnterior},
		ValoresNuevos:     map[string]any{"estado": estadoNuevo},
		CamposModificados: []string{"estado"},
	}, actor)
}

// RegistrarCambioUbicacion agrega la entrada LOCATION_CHANGE con el
// antes/después del campo ubicación.
func (r *Registrador) RegistrarCambioUbicacion(lineaID, anterior, nueva string, actor Actor) error {
	return r.agregar(&entity.Movimiento{
		LineaID:           &lineaID,
		Accion:            entity.AccionCambioUbicacion,
		Descripcion:       fmt.Sprintf("ubicación cambiada de %s a %s", anterior, nueva),
		ValoresAnteriores: map[string]any{"ubicacion": anterior},
		ValoresNuevos:     map[string]any{"ubicacion": nueva},
		CamposModificados: []string{"ubicacion"},
	}, actor)
}

// RegistrarCambioEmpresa agrega la entrada COMPANY_CHANGE con el antes/después
// del campo cliente.
func (r *Registrador) RegistrarCambioEmpresa(lineaID, anterior, nueva string, actor Actor) error {
	return r.agregar(&entity.Movimiento{
		LineaID:           &lineaID,
		Accion:            entity.AccionCambioEmpresa,
		Descripcion:       fmt.Sprintf("cliente cambiado de %s a %s", anterior, nueva),
		ValoresAnteriores: map[string]any{"cliente": anterior},
		ValoresNuevos:     map[string]any{"cliente": nueva},
		CamposModificados: []string{"cliente"},
	}, actor)
}

// RegistrarEventoImagen agrega una entrada IMAGE_UPLOAD / IMAGE_REPLACE /
// IMAGE_DELETE según la acción indicada.
func (r *Registrador) RegistrarEventoImagen(lineaID, accion, descripcion string, actor Actor) error {
	switch accion {
	case entity.AccionImagenSubida, entity.AccionImagenReemplazo, entity.AccionImagenBorrado:
	default:
		return fmt.Errorf("acción de imagen inválida: %s", accion)
	}
	return r.agregar(&entity.Movimiento{
		LineaID:     &lineaID,
		Accion:      accion,
		Descripcion: descripcion,
	}, actor)
}

// RegistrarMantenimiento agrega la entrada MAINTENANCE.
func (r *Registrador) RegistrarMantenimiento(lineaID, descripcion string, actor Actor) error {
	return r.agregar(&entity.Movimiento{
		LineaID:     &lineaID,
		Accion:      entity.AccionMantenimiento,
		Descripcion: descripcion,
	}, actor)
}

// Historial devuelve las entradas de una línea ordenadas por fecha.
func (r *Registrador) Historial(lineaID string, limit, offset int) ([]*entity.Movimiento, error) {
	return r.repo.ListarPorLinea(lineaID, limit, offset)
}

// PrimeraCreacion devuelve la entrada CREATE más antigua de la línea, usada
// para reconstruir fecha y autor de creación reales. nil si no existe.
func (r *Registrador) PrimeraCreacion(lineaID string) (*entity.Movimiento, error) {
	return r.repo.PrimeraAccion(lineaID, entity.AccionCreacion)
}

// agregar es el primitivo único de escritura: completa id, actor y timestamp
// y persiste la entrada.
func (r *Registrador) agregar(m *entity.Movimiento, actor Actor) error {
	m.ID = uuid.New().String()
	m.UsuarioID = actor.ID
	m.UsuarioNombre = actor.nombre()
	m.IP = actor.IP
	m.UserAgent = actor.UserAgent
	m.CreatedAt = r.reloj()
	return r.repo.Agregar(m)
}
