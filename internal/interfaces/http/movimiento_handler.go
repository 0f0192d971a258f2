package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/application/usecase"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// MovimientoHandler maneja las peticiones HTTP del historial de auditoría.
type MovimientoHandler struct {
	uc *usecase.MovimientoUseCase
}

// NewMovimientoHandler construye el handler.
func NewMovimientoHandler(uc *usecase.MovimientoUseCase) *MovimientoHandler {
	return &MovimientoHandler{uc: uc}
}

// History godoc
// @Summary      Historial de una línea
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la línea"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.MovimientoListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/movimientos [get]
func (h *MovimientoHandler) History(c *fiber.Ctx) error {
	id := c.Params("id")
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.Historial(id, page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, domain.ErrNoEncontrada) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ImageEvent godoc
// @Summary      Auditar evento de imagen
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.EventoImagenRequest  true  "Evento"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/imagenes [post]
func (h *MovimientoHandler) ImageEvent(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.EventoImagenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	switch in.Accion {
	case entity.AccionImagenSubida, entity.AccionImagenReemplazo, entity.AccionImagenBorrado:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "accion de imagen desconocida"})
	}
	if err := h.uc.RegistrarEventoImagen(id, in, ActorDesdeContexto(c)); err != nil {
		if errors.Is(err, domain.ErrNoEncontrada) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
		}
		if errors.Is(err, domain.ErrEntradaInvalida) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Maintenance godoc
// @Summary      Auditar mantenimiento
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.MantenimientoRequest  true  "Descripción del mantenimiento"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/mantenimientos [post]
func (h *MovimientoHandler) Maintenance(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.MantenimientoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Descripcion == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "descripcion es requerida"})
	}
	if err := h.uc.RegistrarMantenimiento(id, in, ActorDesdeContexto(c)); err != nil {
		if errors.Is(err, domain.ErrNoEncontrada) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
