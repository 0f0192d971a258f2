// Package autorizacion implementa el flujo de códigos de autorización que
// protege el borrado de líneas "antiguas": solicitud → generación por un
// aprobador → validación de un solo uso, con expiración de 10 minutos.
package autorizacion

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dsuarez/lineasvida-api/internal/application/auditoria"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
	"github.com/dsuarez/lineasvida-api/pkg/codigo"
)

// Valores por defecto del flujo.
const (
	TTLDefault                    = 10 * time.Minute
	DiasEliminacionDirectaDefault = 3
)

// Config parámetros del flujo de autorización.
type Config struct {
	TTL                    time.Duration // vigencia de una solicitud y de su código
	DiasEliminacionDirecta int           // edad máxima para borrar sin autorización
}

// ConfigDefault devuelve la configuración por defecto.
func ConfigDefault() Config {
	return Config{TTL: TTLDefault, DiasEliminacionDirecta: DiasEliminacionDirectaDefault}
}

// Validacion resultado estructurado de validar un código. "No encontrado",
// "expirado" y "ya usado" son salidas esperadas de entrada no confiable, nunca
// errores.
type Validacion struct {
	Valido      bool   `json:"valido"`
	SolicitudID string `json:"solicitud_id,omitempty"`
	Motivo      string `json:"motivo,omitempty"`
}

// Servicio orquesta el ciclo de vida PENDING → {USED, EXPIRED}.
type Servicio struct {
	codigos   repository.CodigoRepository
	registro  *auditoria.Registrador
	cfg       Config
	reloj     func() time.Time
	genCodigo func(int) (string, error)
}

// NewServicio construye el flujo. reloj nil usa time.Now; genCodigo nil usa
// el generador [A-Z0-9] por defecto.
func NewServicio(codigos repository.CodigoRepository, registro *auditoria.Registrador, cfg Config, reloj func() time.Time, genCodigo func(int) (string, error)) *Servicio {
	if cfg.TTL <= 0 {
		cfg.TTL = TTLDefault
	}
	if cfg.DiasEliminacionDirecta <= 0 {
		cfg.DiasEliminacionDirecta = DiasEliminacionDirectaDefault
	}
	if reloj == nil {
		reloj = time.Now
	}
	if genCodigo == nil {
		genCodigo = codigo.Generar
	}
	return &Servicio{codigos: codigos, registro: registro, cfg: cfg, reloj: reloj, genCodigo: genCodigo}
}

// RequiereAutorizacion decide si el borrado necesita código, a partir de la
// entrada CREATE más antigua del historial (no de los datos de la línea):
//   - sin entrada CREATE: se requiere (default conservador);
//   - creador distinto del solicitante: se requiere sin importar la edad;
//   - mismo creador: se requiere solo si la línea tiene más de 3 días.
func (s *Servicio) RequiereAutorizacion(lineaID, solicitanteID string) (bool, error) {
	creacion, err := s.registro.PrimeraCreacion(lineaID)
	if err != nil {
		return false, fmt.Errorf("consultar creación de línea %s: %w", lineaID, err)
	}
	if creacion == nil {
		return true, nil
	}
	if creacion.UsuarioID != solicitanteID {
		return true, nil
	}
	return edadEnDias(s.reloj(), creacion.CreatedAt) > s.cfg.DiasEliminacionDirecta, nil
}

// Solicitar crea una solicitud PENDING con código placeholder. Falla si el
// borrado no requiere autorización ("puede eliminar directamente") o si ya hay
// una solicitud pendiente no expirada para la pareja (línea, solicitante).
func (s *Servicio) Solicitar(linea *entity.LineaVida, solicitanteID, justificacion, ip string) (*entity.CodigoAutorizacion, error) {
	if linea == nil {
		return nil, domain.ErrNoEncontrada
	}
	requiere, err := s.RequiereAutorizacion(linea.ID, solicitanteID)
	if err != nil {
		return nil, err
	}
	if !requiere {
		return nil, domain.ErrAutorizacionNoRequerida
	}

	ahora := s.reloj()
	pendiente, err := s.codigos.BuscarPendiente(linea.ID, solicitanteID, ahora)
	if err != nil {
		return nil, err
	}
	if pendiente != nil {
		return nil, domain.ErrSolicitudDuplicada
	}

	solicitud := &entity.CodigoAutorizacion{
		ID:            uuid.New().String(),
		Accion:        entity.AccionAutorizacionEliminar,
		LineaID:       linea.ID,
		CodigoLinea:   linea.Codigo,
		SolicitanteID: solicitanteID,
		Estado:        entity.CodigoPendiente,
		Codigo:        entity.CodigoPlaceholder,
		Justificacion: justificacion,
		IP:            ip,
		CreatedAt:     ahora,
		ExpiraEn:      ahora.Add(s.cfg.TTL),
	}
	if err := s.codigos.Crear(solicitud); err != nil {
		return nil, err
	}
	return solicitud, nil
}

// GenerarCodigo asigna el código de 8 caracteres a una solicitud PENDING no
// expirada, reinicia su vigencia y registra al aprobador. La transición es un
// compare-and-swap sobre el estado: si otra transición ganó, falla.
func (s *Servicio) GenerarCodigo(solicitudID, aprobadorID string) (*entity.CodigoAutorizacion, error) {
	solicitud, err := s.codigos.ObtenerPorID(solicitudID)
	if err != nil {
		return nil, err
	}
	if solicitud == nil {
		return nil, domain.ErrNoEncontrada
	}
	ahora := s.reloj()
	if solicitud.Estado != entity.CodigoPendiente || solicitud.Expirado(ahora) {
		return nil, domain.ErrSolicitudInvalida
	}

	nuevo, err := s.genCodigo(entity.LongitudCodigo)
	if err != nil {
		return nil, fmt.Errorf("generar código: %w", err)
	}
	expiraEn := ahora.Add(s.cfg.TTL)
	aplicada, err := s.codigos.AsignarCodigo(solicitudID, nuevo, aprobadorID, expiraEn)
	if err != nil {
		return nil, err
	}
	if !aplicada {
		return nil, domain.ErrSolicitudInvalida
	}

	solicitud.Codigo = nuevo
	solicitud.AprobadorID = &aprobadorID
	solicitud.ExpiraEn = expiraEn
	return solicitud, nil
}

// Validar consume un código contra (línea, solicitante). Código no hallado o
// ya terminal: inválido sin cambio de estado. Hallado pero expirado: la fila
// pasa a EXPIRED y se devuelve inválido. Hallado y vigente: pasa a USED (un
// solo uso, compare-and-swap) y se devuelve válido con el id de la solicitud.
//
// Solo se consultan códigos bien formados [A-Z0-9]: el placeholder de una
// solicitud aún sin aprobar jamás debe coincidir con su propia fila.
func (s *Servicio) Validar(lineaID, cod, solicitanteID string) (Validacion, error) {
	if !codigo.EsValido(cod, entity.LongitudCodigo) {
		return Validacion{Motivo: "formato de código inválido"}, nil
	}
	solicitud, err := s.codigos.BuscarPorCodigo(cod, lineaID, solicitanteID)
	if err != nil {
		return Validacion{}, err
	}
	if solicitud == nil {
		return Validacion{Motivo: "código no encontrado"}, nil
	}

	ahora := s.reloj()
	if solicitud.Expirado(ahora) {
		// La transición puede perderla contra el cleanup; el resultado es el
		// mismo en ambos casos.
		if _, err := s.codigos.MarcarExpirado(solicitud.ID); err != nil {
			return Validacion{}, err
		}
		return Validacion{Motivo: "código expirado"}, nil
	}

	usada, err := s.codigos.MarcarUsado(solicitud.ID, ahora)
	if err != nil {
		return Validacion{}, err
	}
	if !usada {
		return Validacion{Motivo: "código ya consumido"}, nil
	}
	return Validacion{Valido: true, SolicitudID: solicitud.ID}, nil
}

// LimpiarExpirados transiciona en lote PENDING→EXPIRED toda solicitud vencida.
// Idempotente; seguro de ejecutar con cualquier frecuencia.
func (s *Servicio) LimpiarExpirados() (int, error) {
	return s.codigos.ExpirarVencidos(s.reloj())
}

// edadEnDias días completos transcurridos entre la creación y ahora.
func edadEnDias(ahora, creada time.Time) int {
	return int(ahora.Sub(creada).Hours() / 24)
}
