// Package relaciones implementa el retiro de una línea padre mediante la
// creación en lote de sus líneas hijas (reemplazo, división o actualización).
//
// Es una saga de un solo disparo: las precondiciones se validan todas antes de
// escribir nada, cada paso hija corre en su propia transacción, y si un paso
// posterior falla se deshacen en orden inverso los pasos ya aplicados (el
// retiro del padre primero, luego las hijas creadas) antes de propagar el
// error original. No hay recuperación ante una caída del proceso entre hijas:
// ese hueco queda documentado, no parchado.
package relaciones

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dsuarez/lineasvida-api/internal/application/auditoria"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
	"github.com/dsuarez/lineasvida-api/internal/domain/vigencia"
	"github.com/dsuarez/lineasvida-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefinicionHija especifica por completo una línea hija a crear.
type DefinicionHija struct {
	Codigo           string
	Cliente          string
	Ubicacion        string
	FechaInstalacion time.Time
	FechaVencimiento *time.Time
	Longitud         decimal.Decimal
	Observaciones    string
}

// Entrada parámetros de creación de una relación.
type Entrada struct {
	LineaPadreID string
	Tipo         string // REPLACEMENT | DIVISION | UPGRADE
	Hijas        []DefinicionHija
	Notas        string
	Actor        auditoria.Actor
}

// Resultado de la creación: padre retirado, hijas creadas y filas de relación.
type Resultado struct {
	Padre      *entity.LineaVida
	Hijas      []*entity.LineaVida
	Relaciones []*entity.RelacionLinea
}

// Servicio es el motor de relaciones.
type Servicio struct {
	lineas     repository.LineaRepository
	relaciones repository.RelacionRepository
	registro   *auditoria.Registrador
	txRunner   TxRunner
	clasif     vigencia.Opciones
	reloj      func() time.Time
	log        *logger.Logger
}

// NewServicio construye el motor. reloj nil usa time.Now.
func NewServicio(
	lineas repository.LineaRepository,
	relaciones repository.RelacionRepository,
	registro *auditoria.Registrador,
	txRunner TxRunner,
	clasif vigencia.Opciones,
	reloj func() time.Time,
	log *logger.Logger,
) *Servicio {
	if reloj == nil {
		reloj = time.Now
	}
	return &Servicio{
		lineas:     lineas,
		relaciones: relaciones,
		registro:   registro,
		txRunner:   txRunner,
		clasif:     clasif,
		reloj:      reloj,
		log:        log,
	}
}

// Crear valida las precondiciones en conjunto, crea las hijas en orden y retira
// al padre con el estado terminal del tipo de relación.
func (s *Servicio) Crear(ctx context.Context, in Entrada) (*Resultado, error) {
	padre, err := s.validar(in)
	if err != nil {
		return nil, err
	}

	ahora := s.reloj()
	res := &Resultado{Padre: padre}

	// Fase de ejecución: a partir de aquí cualquier fallo dispara la
	// compensación sobre las hijas ya creadas.
	for _, def := range in.Hijas {
		hija, rel, err := s.crearHija(ctx, padre, in, def, ahora)
		if err != nil {
			s.compensar(res.Hijas)
			return nil, err
		}
		res.Hijas = append(res.Hijas, hija)
		res.Relaciones = append(res.Relaciones, rel)
	}

	estadoTerminal := entity.EstadoTerminalPorRelacion(in.Tipo)
	estadoAnterior := padre.Estado
	previo := *padre
	if err := s.lineas.Retirar(padre.ID, estadoTerminal); err != nil {
		s.compensar(res.Hijas)
		return nil, fmt.Errorf("retirar línea padre %s: %w", padre.Codigo, err)
	}
	padre.Estado = estadoTerminal
	padre.Activa = false

	if err := s.registro.RegistrarCambioEstado(padre.ID, estadoAnterior, estadoTerminal, in.Actor); err != nil {
		// Deshacer en orden inverso: primero el retiro del padre, después las
		// hijas. El padre nunca debe quedar terminal sin su grupo de hijas.
		s.restaurarPadre(&previo)
		s.compensar(res.Hijas)
		return nil, fmt.Errorf("auditar retiro de línea padre %s: %w", padre.Codigo, err)
	}

	return res, nil
}

// validar verifica todas las precondiciones antes de cualquier escritura.
func (s *Servicio) validar(in Entrada) (*entity.LineaVida, error) {
	if entity.EstadoTerminalPorRelacion(in.Tipo) == "" {
		return nil, fmt.Errorf("%w: tipo de relación desconocido %q", domain.ErrEntradaInvalida, in.Tipo)
	}
	if len(in.Hijas) == 0 {
		return nil, fmt.Errorf("%w: la relación requiere al menos una línea hija", domain.ErrEntradaInvalida)
	}

	padre, err := s.lineas.ObtenerPorID(in.LineaPadreID)
	if err != nil {
		return nil, err
	}
	if padre == nil {
		return nil, domain.ErrNoEncontrada
	}

	yaEsPadre, err := s.relaciones.ExisteComoPadre(padre.ID)
	if err != nil {
		return nil, err
	}
	if yaEsPadre {
		return nil, domain.ErrRelacionExistente
	}

	// Una línea derivada (hija de alguna relación) nunca puede ser padre.
	esDerivada, err := s.relaciones.ExisteComoHija(padre.ID)
	if err != nil {
		return nil, err
	}
	if esDerivada {
		return nil, fmt.Errorf("%w: %s", domain.ErrLineaDerivada, padre.Codigo)
	}

	vistos := make(map[string]struct{}, len(in.Hijas))
	for _, def := range in.Hijas {
		if def.Codigo == "" {
			return nil, fmt.Errorf("%w: código de hija vacío", domain.ErrEntradaInvalida)
		}
		if def.Codigo == padre.Codigo {
			return nil, fmt.Errorf("%w: la hija %s no puede repetir el código del padre", domain.ErrEntradaInvalida, def.Codigo)
		}
		if _, dup := vistos[def.Codigo]; dup {
			return nil, fmt.Errorf("%w: código de hija duplicado en el lote: %s", domain.ErrEntradaInvalida, def.Codigo)
		}
		vistos[def.Codigo] = struct{}{}

		// Una línea que ya es hija de otra relación no puede reutilizarse.
		existente, err := s.lineas.ObtenerPorCodigo(def.Codigo)
		if err != nil {
			return nil, err
		}
		if existente != nil {
			esHija, err := s.relaciones.ExisteComoHija(existente.ID)
			if err != nil {
				return nil, err
			}
			if esHija {
				return nil, fmt.Errorf("%w: %s", domain.ErrLineaDerivada, def.Codigo)
			}
		}
	}
	return padre, nil
}

// crearHija ejecuta un paso de la saga dentro de una transacción: verifica que
// el código siga libre, crea la línea, la fila de relación y la entrada CREATE.
func (s *Servicio) crearHija(ctx context.Context, padre *entity.LineaVida, in Entrada, def DefinicionHija, ahora time.Time) (*entity.LineaVida, *entity.RelacionLinea, error) {
	c := vigencia.Clasificar(def.FechaVencimiento, ahora, s.clasif)
	hija := &entity.LineaVida{
		ID:               uuid.New().String(),
		Codigo:           def.Codigo,
		Cliente:          def.Cliente,
		Ubicacion:        def.Ubicacion,
		FechaInstalacion: def.FechaInstalacion,
		FechaVencimiento: def.FechaVencimiento,
		Estado:           c.Estado,
		Longitud:         def.Longitud,
		Observaciones:    def.Observaciones,
		Activa:           true,
		CreatedAt:        ahora,
		UpdatedAt:        ahora,
	}
	rel := &entity.RelacionLinea{
		ID:           uuid.New().String(),
		LineaPadreID: padre.ID,
		LineaHijaID:  hija.ID,
		Tipo:         in.Tipo,
		Notas:        in.Notas,
		CreadaPor:    in.Actor.ID,
		CreatedAt:    ahora,
	}

	err := s.txRunner.Run(ctx, func(
		lineasTx repository.LineaRepository,
		relacionesTx repository.RelacionRepository,
		movimientosTx repository.MovimientoRepository,
	) error {
		// El código pudo ocuparse entre la validación y este paso.
		ocupada, err := lineasTx.ObtenerPorCodigo(def.Codigo)
		if err != nil {
			return err
		}
		if ocupada != nil {
			return fmt.Errorf("%w: %s", domain.ErrCodigoDuplicado, def.Codigo)
		}
		if err := lineasTx.Crear(hija); err != nil {
			return err
		}
		if err := relacionesTx.Crear(rel); err != nil {
			return err
		}
		registroTx := auditoria.NewRegistrador(movimientosTx, s.reloj)
		return registroTx.RegistrarCreacion(hija, in.Actor)
	})
	if err != nil {
		return nil, nil, err
	}
	return hija, rel, nil
}

// ListarPorPadre devuelve las filas de relación de una línea padre. Falla con
// ErrNoEncontrada si el padre no existe.
func (s *Servicio) ListarPorPadre(lineaPadreID string) ([]*entity.RelacionLinea, error) {
	padre, err := s.lineas.ObtenerPorID(lineaPadreID)
	if err != nil {
		return nil, err
	}
	if padre == nil {
		return nil, domain.ErrNoEncontrada
	}
	return s.relaciones.ListarPorPadre(lineaPadreID)
}

// restaurarPadre devuelve al padre su estado y bandera activa previos al
// retiro. Los fallos se registran sin reemplazar el error original.
func (s *Servicio) restaurarPadre(previo *entity.LineaVida) {
	if err := s.lineas.Actualizar(previo); err != nil && s.log != nil {
		s.log.Error().
			Err(err).
			Str("linea_id", previo.ID).
			Str("codigo", previo.Codigo).
			Msg("falló la compensación: línea padre quedó retirada")
	}
}

// compensar elimina en orden inverso las hijas creadas en esta invocación.
// Los fallos de compensación se registran pero nunca reemplazan ni ocultan el
// error original; el bucle continúa con las hijas restantes.
func (s *Servicio) compensar(creadas []*entity.LineaVida) {
	for i := len(creadas) - 1; i >= 0; i-- {
		hija := creadas[i]
		if err := s.lineas.Eliminar(hija.ID); err != nil && s.log != nil {
			s.log.Error().
				Err(err).
				Str("linea_id", hija.ID).
				Str("codigo", hija.Codigo).
				Msg("falló la compensación: línea hija huérfana")
		}
	}
}
