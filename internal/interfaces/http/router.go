package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dsuarez/lineasvida-api/internal/application/alertas"
	"github.com/dsuarez/lineasvida-api/internal/application/autorizacion"
	"github.com/dsuarez/lineasvida-api/internal/application/relaciones"
	"github.com/dsuarez/lineasvida-api/internal/application/usecase"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LineaUC      *usecase.LineaUseCase
	AlertaUC     *usecase.AlertaUseCase
	MovimientoUC *usecase.MovimientoUseCase
	Generador    *alertas.Generador
	Relaciones   *relaciones.Servicio
	Autorizacion *autorizacion.Servicio
	LineaRepo    repository.LineaRepository
	JWTSecret    string
}

// Router registra las rutas de la API. Todo el dominio va protegido con
// Bearer Token; la generación de códigos exige además rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Líneas de vida
	lineas := protected.Group("/lineas")
	lineaHandler := NewLineaHandler(deps.LineaUC)
	lineas.Post("/", lineaHandler.Create)
	lineas.Get("/", lineaHandler.List)
	lineas.Get("/:id", lineaHandler.GetByID)
	lineas.Put("/:id", lineaHandler.Update)
	lineas.Delete("/:id", lineaHandler.Delete)
	lineas.Get("/:id/clasificacion", lineaHandler.Clasificar)
	lineas.Post("/:id/restaurar", lineaHandler.Restore)
	lineas.Post("/refrescar-estados", RequireRole("admin"), lineaHandler.RefreshStates)

	// Historial de auditoría
	movimientoHandler := NewMovimientoHandler(deps.MovimientoUC)
	lineas.Get("/:id/movimientos", movimientoHandler.History)
	lineas.Post("/:id/imagenes", movimientoHandler.ImageEvent)
	lineas.Post("/:id/mantenimientos", movimientoHandler.Maintenance)

	// Relaciones padre→hija
	relacionHandler := NewRelacionHandler(deps.Relaciones)
	lineas.Post("/:id/relaciones", relacionHandler.Create)
	lineas.Get("/:id/relaciones", relacionHandler.List)

	// Autorización de borrado
	autorizacionHandler := NewAutorizacionHandler(deps.Autorizacion, deps.LineaRepo)
	lineas.Get("/:id/autorizacion", autorizacionHandler.Check)
	lineas.Post("/:id/autorizacion/solicitar", autorizacionHandler.Request)
	lineas.Post("/:id/autorizacion/validar", autorizacionHandler.Validate)

	autorizaciones := protected.Group("/autorizaciones")
	autorizaciones.Post("/:id/generar", RequireRole("admin"), autorizacionHandler.Generate)
	autorizaciones.Post("/limpiar", RequireRole("admin"), autorizacionHandler.Cleanup)

	// Alertas
	alertasGroup := protected.Group("/alertas")
	alertaHandler := NewAlertaHandler(deps.AlertaUC, deps.Generador)
	alertasGroup.Get("/", alertaHandler.List)
	alertasGroup.Post("/escanear", alertaHandler.Scan)
	alertasGroup.Post("/leidas", alertaHandler.MarkAllRead)
	alertasGroup.Post("/:id/leida", alertaHandler.MarkRead)
}
