package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dsuarez/lineasvida-api/internal/application/autorizacion"
	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

// AutorizacionHandler maneja el flujo de códigos de autorización de borrado.
type AutorizacionHandler struct {
	svc    *autorizacion.Servicio
	lineas repository.LineaRepository
}

// NewAutorizacionHandler construye el handler.
func NewAutorizacionHandler(svc *autorizacion.Servicio, lineas repository.LineaRepository) *AutorizacionHandler {
	return &AutorizacionHandler{svc: svc, lineas: lineas}
}

// Check godoc
// @Summary      Consultar si el borrado requiere código
// @Tags         autorizaciones
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la línea"
// @Success      200  {object}  dto.RequiereAutorizacionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/autorizacion [get]
func (h *AutorizacionHandler) Check(c *fiber.Ctx) error {
	linea, err := h.lineas.ObtenerPorID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if linea == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
	}
	requiere, err := h.svc.RequiereAutorizacion(linea.ID, GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.RequiereAutorizacionResponse{Requiere: requiere})
}

// Request godoc
// @Summary      Solicitar autorización de borrado
// @Tags         autorizaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.SolicitarAutorizacionRequest  true  "Justificación"
// @Success      201   {object}  dto.AutorizacionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/autorizacion/solicitar [post]
func (h *AutorizacionHandler) Request(c *fiber.Ctx) error {
	linea, err := h.lineas.ObtenerPorID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if linea == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
	}
	var in dto.SolicitarAutorizacionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	solicitud, err := h.svc.Solicitar(linea, GetUserID(c), in.Justificacion, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAutorizacionNoRequerida):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "NOT_REQUIRED", Message: "la línea admite borrado directo"})
		case errors.Is(err, domain.ErrSolicitudDuplicada):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PENDING_EXISTS", Message: "ya hay una solicitud pendiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toAutorizacionResponse(solicitud, false))
}

// Generate godoc
// @Summary      Generar el código de una solicitud pendiente
// @Description  Solo para aprobadores. El código se devuelve una única vez en esta respuesta.
// @Tags         autorizaciones
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.AutorizacionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/autorizaciones/{id}/generar [post]
func (h *AutorizacionHandler) Generate(c *fiber.Ctx) error {
	solicitud, err := h.svc.GenerarCodigo(c.Params("id"), GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoEncontrada):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "solicitud no encontrada"})
		case errors.Is(err, domain.ErrSolicitudInvalida):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "la solicitud no está pendiente o ya expiró"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toAutorizacionResponse(solicitud, true))
}

// Validate godoc
// @Summary      Validar un código contra una línea
// @Description  Un código válido queda consumido (un solo uso). Entrada no confiable: inválido nunca es error.
// @Tags         autorizaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.ValidarCodigoRequest  true  "Código"
// @Success      200   {object}  dto.ValidacionResponse
// @Router       /api/lineas/{id}/autorizacion/validar [post]
func (h *AutorizacionHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidarCodigoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	v, err := h.svc.Validar(c.Params("id"), in.Codigo, GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ValidacionResponse{Valido: v.Valido, SolicitudID: v.SolicitudID, Motivo: v.Motivo})
}

// Cleanup godoc
// @Summary      Expirar solicitudes vencidas
// @Tags         autorizaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LimpiezaResponse
// @Router       /api/autorizaciones/limpiar [post]
func (h *AutorizacionHandler) Cleanup(c *fiber.Ctx) error {
	n, err := h.svc.LimpiarExpirados()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.LimpiezaResponse{Expirados: n})
}

// toAutorizacionResponse mapea la solicitud; el código real solo se incluye en
// la respuesta de generación (conCodigo true).
func toAutorizacionResponse(s *entity.CodigoAutorizacion, conCodigo bool) dto.AutorizacionResponse {
	out := dto.AutorizacionResponse{
		ID:            s.ID,
		Accion:        s.Accion,
		LineaID:       s.LineaID,
		CodigoLinea:   s.CodigoLinea,
		SolicitanteID: s.SolicitanteID,
		AprobadorID:   s.AprobadorID,
		Estado:        s.Estado,
		Justificacion: s.Justificacion,
		CreatedAt:     s.CreatedAt,
		ExpiraEn:      s.ExpiraEn,
		UsadoEn:       s.UsadoEn,
	}
	if conCodigo {
		out.Codigo = s.Codigo
	}
	return out
}
