package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/application/usecase"
	"github.com/dsuarez/lineasvida-api/internal/domain"
)

// LineaHandler maneja las peticiones HTTP para líneas de vida (protegido).
type LineaHandler struct {
	uc *usecase.LineaUseCase
}

// NewLineaHandler construye el handler.
func NewLineaHandler(uc *usecase.LineaUseCase) *LineaHandler {
	return &LineaHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar línea de vida
// @Tags         lineas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearLineaRequest  true  "Datos de la línea"
// @Success      201   {object}  dto.LineaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lineas [post]
func (h *LineaHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearLineaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Codigo == "" || in.FechaInstalacion.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "codigo y fecha_instalacion son requeridos"})
	}
	out, err := h.uc.Crear(in, ActorDesdeContexto(c))
	if err != nil {
		if errors.Is(err, domain.ErrCodigoDuplicado) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el código ya existe"})
		}
		if errors.Is(err, domain.ErrEntradaInvalida) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener línea por ID
// @Tags         lineas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la línea"
// @Success      200  {object}  dto.LineaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lineas/{id} [get]
func (h *LineaHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.ObtenerPorID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
	}
	return c.JSON(out)
}

// Clasificar godoc
// @Summary      Clasificar vigencia de una línea
// @Tags         lineas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la línea"
// @Success      200  {object}  dto.ClasificacionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/clasificacion [get]
func (h *LineaHandler) Clasificar(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.Clasificar(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar líneas de vida
// @Tags         lineas
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.LineaListResponse
// @Router       /api/lineas [get]
func (h *LineaHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.Listar(page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar línea de vida
// @Tags         lineas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.ActualizarLineaRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.LineaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lineas/{id} [put]
func (h *LineaHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ActualizarLineaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Actualizar(id, in, ActorDesdeContexto(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Dar de baja una línea de vida
// @Description  Baja lógica. Las líneas antiguas o creadas por otro usuario exigen un código de autorización vigente.
// @Tags         lineas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la línea"
// @Param        body  body  dto.EliminarLineaRequest  false  "Código de autorización (si aplica)"
// @Success      204
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lineas/{id} [delete]
func (h *LineaHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.EliminarLineaRequest
	// El cuerpo es opcional: sin código se intenta el borrado directo.
	_ = c.BodyParser(&in)

	err := h.uc.Eliminar(id, in.CodigoAutorizacion, ActorDesdeContexto(c))
	if err != nil {
		if errors.Is(err, domain.ErrNoEncontrada) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
		}
		if errors.Is(err, domain.ErrAutorizacionRequerida) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "AUTH_CODE_REQUIRED", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RefreshStates godoc
// @Summary      Refrescar estados denormalizados
// @Description  Reconcilia el estado de toda línea no terminal con el clasificador. El scheduler lo ejecuta a diario; este endpoint permite forzarlo.
// @Tags         lineas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RefrescoEstadosResponse
// @Router       /api/lineas/refrescar-estados [post]
func (h *LineaHandler) RefreshStates(c *fiber.Ctx) error {
	out, err := h.uc.RefrescarEstados()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar una línea dada de baja
// @Tags         lineas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la línea"
// @Success      200  {object}  dto.LineaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/restaurar [post]
func (h *LineaHandler) Restore(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.Restaurar(id, ActorDesdeContexto(c))
	if err != nil {
		if errors.Is(err, domain.ErrEntradaInvalida) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
	}
	return c.JSON(out)
}
