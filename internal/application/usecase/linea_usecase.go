package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dsuarez/lineasvida-api/internal/application/auditoria"
	"github.com/dsuarez/lineasvida-api/internal/application/autorizacion"
	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
	"github.com/dsuarez/lineasvida-api/internal/domain/vigencia"
	"github.com/dsuarez/lineasvida-api/pkg/logger"
)

// LineaUseCase casos de uso CRUD para líneas de vida. Toda mutación pasa por
// el registrador de auditoría; el borrado está protegido por el flujo de
// códigos de autorización.
type LineaUseCase struct {
	repo     repository.LineaRepository
	registro *auditoria.Registrador
	auth     *autorizacion.Servicio
	clasif   vigencia.Opciones
	reloj    func() time.Time
	log      *logger.Logger
}

// NewLineaUseCase construye el caso de uso. reloj nil usa time.Now.
func NewLineaUseCase(
	repo repository.LineaRepository,
	registro *auditoria.Registrador,
	auth *autorizacion.Servicio,
	clasif vigencia.Opciones,
	reloj func() time.Time,
	log *logger.Logger,
) *LineaUseCase {
	if reloj == nil {
		reloj = time.Now
	}
	return &LineaUseCase{repo: repo, registro: registro, auth: auth, clasif: clasif, reloj: reloj, log: log}
}

// Crear registra una línea nueva con el estado derivado de su vencimiento.
func (uc *LineaUseCase) Crear(in dto.CrearLineaRequest, actor auditoria.Actor) (*dto.LineaResponse, error) {
	if in.Codigo == "" {
		return nil, fmt.Errorf("%w: código requerido", domain.ErrEntradaInvalida)
	}
	existente, err := uc.repo.ObtenerPorCodigo(in.Codigo)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return nil, domain.ErrCodigoDuplicado
	}

	ahora := uc.reloj()
	c := vigencia.Clasificar(in.FechaVencimiento, ahora, uc.clasif)
	linea := &entity.LineaVida{
		ID:               uuid.New().String(),
		Codigo:           in.Codigo,
		Cliente:          in.Cliente,
		Ubicacion:        in.Ubicacion,
		FechaInstalacion: in.FechaInstalacion,
		FechaVencimiento: in.FechaVencimiento,
		Estado:           c.Estado,
		Longitud:         in.Longitud,
		Observaciones:    in.Observaciones,
		Activa:           true,
		CreatedAt:        ahora,
		UpdatedAt:        ahora,
	}
	if err := uc.repo.Crear(linea); err != nil {
		return nil, err
	}
	if err := uc.registro.RegistrarCreacion(linea, actor); err != nil {
		return nil, err
	}
	return toLineaResponse(linea), nil
}

// ObtenerPorID obtiene una línea por ID. nil si no existe.
func (uc *LineaUseCase) ObtenerPorID(id string) (*dto.LineaResponse, error) {
	linea, err := uc.repo.ObtenerPorID(id)
	if err != nil {
		return nil, err
	}
	if linea == nil {
		return nil, nil
	}
	return toLineaResponse(linea), nil
}

// Clasificar expone el clasificador de vigencia para una línea existente.
func (uc *LineaUseCase) Clasificar(id string) (*dto.ClasificacionResponse, error) {
	linea, err := uc.repo.ObtenerPorID(id)
	if err != nil {
		return nil, err
	}
	if linea == nil {
		return nil, nil
	}
	c := vigencia.Clasificar(linea.FechaVencimiento, uc.reloj(), uc.clasif)
	return &dto.ClasificacionResponse{
		Estado:        c.Estado,
		DiasRestantes: c.DiasRestantes,
		Mensaje:       c.Mensaje,
		Prioridad:     c.Prioridad,
	}, nil
}

// Listar lista líneas con paginación.
func (uc *LineaUseCase) Listar(limit, offset int) (*dto.LineaListResponse, error) {
	list, err := uc.repo.Listar(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LineaResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLineaResponse(l))
	}
	return &dto.LineaListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Actualizar aplica cambios parciales y audita el diff. El estado no se acepta
// del cliente: se recalcula desde el vencimiento salvo estados terminales.
func (uc *LineaUseCase) Actualizar(id string, in dto.ActualizarLineaRequest, actor auditoria.Actor) (*dto.LineaResponse, error) {
	linea, err := uc.repo.ObtenerPorID(id)
	if err != nil {
		return nil, err
	}
	if linea == nil {
		return nil, nil
	}
	anterior := *linea

	if in.Cliente != nil {
		linea.Cliente = *in.Cliente
	}
	if in.Ubicacion != nil {
		linea.Ubicacion = *in.Ubicacion
	}
	if in.FechaVencimiento != nil {
		linea.FechaVencimiento = in.FechaVencimiento
	}
	if in.Longitud != nil {
		linea.Longitud = *in.Longitud
	}
	if in.Observaciones != nil {
		linea.Observaciones = *in.Observaciones
	}
	if !entity.EsEstadoTerminal(linea.Estado) {
		linea.Estado = vigencia.Clasificar(linea.FechaVencimiento, uc.reloj(), uc.clasif).Estado
	}
	linea.UpdatedAt = uc.reloj()

	if err := uc.repo.Actualizar(linea); err != nil {
		return nil, err
	}
	// Sin cambios rastreables no se escribe entrada alguna.
	if err := uc.registro.RegistrarActualizacion(&anterior, linea, actor); err != nil {
		return nil, err
	}
	// Ubicación y cliente dejan además su entrada dedicada en el historial.
	if anterior.Ubicacion != linea.Ubicacion {
		if err := uc.registro.RegistrarCambioUbicacion(linea.ID, anterior.Ubicacion, linea.Ubicacion, actor); err != nil {
			return nil, err
		}
	}
	if anterior.Cliente != linea.Cliente {
		if err := uc.registro.RegistrarCambioEmpresa(linea.ID, anterior.Cliente, linea.Cliente, actor); err != nil {
			return nil, err
		}
	}
	return toLineaResponse(linea), nil
}

// Eliminar da de baja una línea (baja lógica: INACTIVO + inactiva). Si la
// línea no admite borrado directo se exige un código de autorización válido.
func (uc *LineaUseCase) Eliminar(id, codigoAutorizacion string, actor auditoria.Actor) error {
	linea, err := uc.repo.ObtenerPorID(id)
	if err != nil {
		return err
	}
	if linea == nil {
		return domain.ErrNoEncontrada
	}

	requiere, err := uc.auth.RequiereAutorizacion(id, actor.ID)
	if err != nil {
		return err
	}
	if requiere {
		if codigoAutorizacion == "" {
			return domain.ErrAutorizacionRequerida
		}
		v, err := uc.auth.Validar(id, codigoAutorizacion, actor.ID)
		if err != nil {
			return err
		}
		if !v.Valido {
			return fmt.Errorf("%w: %s", domain.ErrAutorizacionRequerida, v.Motivo)
		}
	}

	linea.Estado = entity.EstadoInactivo
	linea.Activa = false
	linea.UpdatedAt = uc.reloj()
	if err := uc.repo.Actualizar(linea); err != nil {
		return err
	}
	return uc.registro.RegistrarEliminacion(linea, actor)
}

// Restaurar reactiva una línea dada de baja, recalculando su estado.
func (uc *LineaUseCase) Restaurar(id string, actor auditoria.Actor) (*dto.LineaResponse, error) {
	linea, err := uc.repo.ObtenerPorID(id)
	if err != nil {
		return nil, err
	}
	if linea == nil {
		return nil, nil
	}
	if linea.Estado != entity.EstadoInactivo {
		return nil, fmt.Errorf("%w: la línea no está dada de baja", domain.ErrEntradaInvalida)
	}

	linea.Estado = vigencia.Clasificar(linea.FechaVencimiento, uc.reloj(), uc.clasif).Estado
	linea.Activa = true
	linea.UpdatedAt = uc.reloj()
	if err := uc.repo.Actualizar(linea); err != nil {
		return nil, err
	}
	if err := uc.registro.RegistrarRestauracion(linea, actor); err != nil {
		return nil, err
	}
	return toLineaResponse(linea), nil
}

// RefrescarEstados reconcilia el estado denormalizado de toda línea no
// terminal con lo que el clasificador calcula hoy. Los cambios quedan
// auditados como STATUS_CHANGE con el actor Sistema.
func (uc *LineaUseCase) RefrescarEstados() (*dto.RefrescoEstadosResponse, error) {
	lineas, err := uc.repo.ListarNoTerminales()
	if err != nil {
		return nil, err
	}
	ahora := uc.reloj()
	res := &dto.RefrescoEstadosResponse{}
	for _, linea := range lineas {
		res.Revisadas++
		c := vigencia.Clasificar(linea.FechaVencimiento, ahora, uc.clasif)
		if c.Estado == linea.Estado {
			continue
		}
		if err := uc.repo.ActualizarEstado(linea.ID, c.Estado); err != nil {
			return res, fmt.Errorf("refrescar estado de %s: %w", linea.Codigo, err)
		}
		if err := uc.registro.RegistrarCambioEstado(linea.ID, linea.Estado, c.Estado, auditoria.Actor{}); err != nil {
			return res, err
		}
		res.Actualizadas++
	}
	if uc.log != nil {
		uc.log.Info().
			Int("revisadas", res.Revisadas).
			Int("actualizadas", res.Actualizadas).
			Msg("refresco de estados completado")
	}
	return res, nil
}

func toLineaResponse(l *entity.LineaVida) *dto.LineaResponse {
	if l == nil {
		return nil
	}
	return &dto.LineaResponse{
		ID:               l.ID,
		Codigo:           l.Codigo,
		Cliente:          l.Cliente,
		Ubicacion:        l.Ubicacion,
		FechaInstalacion: l.FechaInstalacion,
		FechaVencimiento: l.FechaVencimiento,
		Estado:           l.Estado,
		Longitud:         l.Longitud,
		Observaciones:    l.Observaciones,
		Activa:           l.Activa,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}
