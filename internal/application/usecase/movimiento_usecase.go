package usecase

import (
	"github.com/dsuarez/lineasvida-api/internal/application/auditoria"
	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

// MovimientoUseCase superficie de consulta del historial y registro de eventos
// sueltos (imágenes, mantenimientos) que no pasan por el CRUD.
type MovimientoUseCase struct {
	lineas   repository.LineaRepository
	registro *auditoria.Registrador
}

// NewMovimientoUseCase construye el caso de uso.
func NewMovimientoUseCase(lineas repository.LineaRepository, registro *auditoria.Registrador) *MovimientoUseCase {
	return &MovimientoUseCase{lineas: lineas, registro: registro}
}

// Historial devuelve el historial de auditoría de una línea.
func (uc *MovimientoUseCase) Historial(lineaID string, limit, offset int) (*dto.MovimientoListResponse, error) {
	linea, err := uc.lineas.ObtenerPorID(lineaID)
	if err != nil {
		return nil, err
	}
	if linea == nil {
		return nil, domain.ErrNoEncontrada
	}
	list, err := uc.registro.Historial(lineaID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovimientoResponse(m))
	}
	return &dto.MovimientoListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// RegistrarEventoImagen audita un evento de imagen sobre la línea.
func (uc *MovimientoUseCase) RegistrarEventoImagen(lineaID string, in dto.EventoImagenRequest, actor auditoria.Actor) error {
	if err := uc.existeLinea(lineaID); err != nil {
		return err
	}
	return uc.registro.RegistrarEventoImagen(lineaID, in.Accion, in.Descripcion, actor)
}

// RegistrarMantenimiento audita un mantenimiento sobre la línea.
func (uc *MovimientoUseCase) RegistrarMantenimiento(lineaID string, in dto.MantenimientoRequest, actor auditoria.Actor) error {
	if err := uc.existeLinea(lineaID); err != nil {
		return err
	}
	return uc.registro.RegistrarMantenimiento(lineaID, in.Descripcion, actor)
}

func (uc *MovimientoUseCase) existeLinea(id string) error {
	linea, err := uc.lineas.ObtenerPorID(id)
	if err != nil {
		return err
	}
	if linea == nil {
		return domain.ErrNoEncontrada
	}
	return nil
}

func toMovimientoResponse(m *entity.Movimiento) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:                m.ID,
		LineaID:           m.LineaID,
		Accion:            m.Accion,
		Descripcion:       m.Descripcion,
		UsuarioID:         m.UsuarioID,
		UsuarioNombre:     m.UsuarioNombre,
		ValoresAnteriores: m.ValoresAnteriores,
		ValoresNuevos:     m.ValoresNuevos,
		CamposModificados: m.CamposModificados,
		IP:                m.IP,
		UserAgent:         m.UserAgent,
		CreatedAt:         m.CreatedAt,
	}
}
