package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dsuarez/lineasvida-api/internal/application/alertas"
	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/application/usecase"
)

// AlertaHandler maneja las peticiones HTTP para alertas (protegido).
type AlertaHandler struct {
	uc        *usecase.AlertaUseCase
	generador *alertas.Generador
}

// NewAlertaHandler construye el handler.
func NewAlertaHandler(uc *usecase.AlertaUseCase, generador *alertas.Generador) *AlertaHandler {
	return &AlertaHandler{uc: uc, generador: generador}
}

// List godoc
// @Summary      Listar alertas
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Param        no_leidas  query  bool  false  "Solo alertas no leídas"
// @Param        limit      query  int   false  "Límite"   default(20)
// @Param        offset     query  int   false  "Offset"   default(0)
// @Success      200        {object}  dto.AlertaListResponse
// @Router       /api/alertas [get]
func (h *AlertaHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.Listar(c.QueryBool("no_leidas", false), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// MarkRead godoc
// @Summary      Marcar alerta como leída
// @Tags         alertas
// @Security     Bearer
// @Param        id   path  string  true  "ID de la alerta"
// @Success      204
// @Router       /api/alertas/{id}/leida [post]
func (h *AlertaHandler) MarkRead(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.MarcarLeida(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead godoc
// @Summary      Marcar todas las alertas como leídas
// @Tags         alertas
// @Security     Bearer
// @Success      204
// @Router       /api/alertas/leidas [post]
func (h *AlertaHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.uc.MarcarTodasLeidas(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Scan godoc
// @Summary      Disparar escaneo manual de alertas
// @Description  Recorre todas las líneas con vencimiento y genera alertas sin aplicar la ventana de throttle.
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.EscaneoResponse
// @Router       /api/alertas/escanear [post]
func (h *AlertaHandler) Scan(c *fiber.Ctx) error {
	res, err := h.generador.EscaneoManual()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SCAN_FAILED", Message: err.Error()})
	}
	return c.JSON(dto.EscaneoResponse{Evaluadas: res.Evaluadas, Generadas: res.Generadas})
}
