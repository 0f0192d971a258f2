package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/application/relaciones"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// RelacionHandler maneja el retiro de líneas padre en líneas hijas.
type RelacionHandler struct {
	svc *relaciones.Servicio
}

// NewRelacionHandler construye el handler.
func NewRelacionHandler(svc *relaciones.Servicio) *RelacionHandler {
	return &RelacionHandler{svc: svc}
}

// Create godoc
// @Summary      Retirar una línea creando sus hijas
// @Description  Crea las líneas hijas, las vincula al padre y retira al padre con el estado terminal del tipo (REPLACEMENT, DIVISION o UPGRADE). Operación de un solo disparo por línea.
// @Tags         relaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la línea padre"
// @Param        body  body  dto.CrearRelacionRequest  true  "Tipo, hijas y notas"
// @Success      201   {object}  dto.CrearRelacionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/relaciones [post]
func (h *RelacionHandler) Create(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.CrearRelacionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	hijas := make([]relaciones.DefinicionHija, 0, len(in.Hijas))
	for _, hr := range in.Hijas {
		hijas = append(hijas, relaciones.DefinicionHija{
			Codigo:           hr.Codigo,
			Cliente:          hr.Cliente,
			Ubicacion:        hr.Ubicacion,
			FechaInstalacion: hr.FechaInstalacion,
			FechaVencimiento: hr.FechaVencimiento,
			Longitud:         hr.Longitud,
			Observaciones:    hr.Observaciones,
		})
	}

	res, err := h.svc.Crear(c.Context(), relaciones.Entrada{
		LineaPadreID: id,
		Tipo:         in.Tipo,
		Hijas:        hijas,
		Notas:        in.Notas,
		Actor:        ActorDesdeContexto(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoEncontrada):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea padre no encontrada"})
		case errors.Is(err, domain.ErrRelacionExistente):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RELATION_EXISTS", Message: err.Error()})
		case errors.Is(err, domain.ErrLineaDerivada):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_DERIVED", Message: err.Error()})
		case errors.Is(err, domain.ErrCodigoDuplicado):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
		case errors.Is(err, domain.ErrEntradaInvalida):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toCrearRelacionResponse(res))
}

// List godoc
// @Summary      Listar relaciones de una línea padre
// @Tags         relaciones
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la línea padre"
// @Success      200  {array}   dto.RelacionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lineas/{id}/relaciones [get]
func (h *RelacionHandler) List(c *fiber.Ctx) error {
	id := c.Params("id")
	list, err := h.svc.ListarPorPadre(id)
	if err != nil {
		if errors.Is(err, domain.ErrNoEncontrada) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "línea no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.RelacionResponse, 0, len(list))
	for _, rel := range list {
		out = append(out, toRelacionResponse(rel))
	}
	return c.JSON(out)
}

func toCrearRelacionResponse(res *relaciones.Resultado) dto.CrearRelacionResponse {
	out := dto.CrearRelacionResponse{Padre: toLineaResponseHTTP(res.Padre)}
	for _, hija := range res.Hijas {
		out.Hijas = append(out.Hijas, toLineaResponseHTTP(hija))
	}
	for _, rel := range res.Relaciones {
		out.Relaciones = append(out.Relaciones, toRelacionResponse(rel))
	}
	return out
}

func toRelacionResponse(rel *entity.RelacionLinea) dto.RelacionResponse {
	return dto.RelacionResponse{
		ID:           rel.ID,
		LineaPadreID: rel.LineaPadreID,
		LineaHijaID:  rel.LineaHijaID,
		Tipo:         rel.Tipo,
		Notas:        rel.Notas,
		CreadaPor:    rel.CreadaPor,
		CreatedAt:    rel.CreatedAt,
	}
}

func toLineaResponseHTTP(l *entity.LineaVida) dto.LineaResponse {
	return dto.LineaResponse{
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
