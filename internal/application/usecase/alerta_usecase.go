package usecase

import (
	"time"

	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

// AlertaUseCase superficie de lectura y marcado de alertas. La generación vive
// en el paquete alertas.
type AlertaUseCase struct {
	repo  repository.AlertaRepository
	reloj func() time.Time
}

// NewAlertaUseCase construye el caso de uso. reloj nil usa time.Now.
func NewAlertaUseCase(repo repository.AlertaRepository, reloj func() time.Time) *AlertaUseCase {
	if reloj == nil {
		reloj = time.Now
	}
	return &AlertaUseCase{repo: repo, reloj: reloj}
}

// Listar lista alertas, opcionalmente solo las no leídas.
func (uc *AlertaUseCase) Listar(soloNoLeidas bool, limit, offset int) (*dto.AlertaListResponse, error) {
	list, err := uc.repo.Listar(soloNoLeidas, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AlertaResponse, 0, len(list))
	for _, a := range list {
		items = append(items, toAlertaResponse(a))
	}
	return &dto.AlertaListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// MarcarLeida marca una alerta como leída. Idempotente.
func (uc *AlertaUseCase) MarcarLeida(id string) error {
	return uc.repo.MarcarLeida(id, uc.reloj())
}

// MarcarTodasLeidas marca como leídas todas las alertas pendientes.
func (uc *AlertaUseCase) MarcarTodasLeidas() error {
	return uc.repo.MarcarTodasLeidas(uc.reloj())
}

func toAlertaResponse(a *entity.Alerta) dto.AlertaResponse {
	return dto.AlertaResponse{
		ID:         a.ID,
		Tipo:       a.Tipo,
		LineaID:    a.LineaID,
		Mensaje:    a.Mensaje,
		Prioridad:  a.Prioridad,
		Leida:      a.Leida,
		FechaLeida: a.FechaLeida,
		Metadatos:  a.Metadatos,
		CreatedAt:  a.CreatedAt,
	}
}
