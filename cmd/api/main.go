package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dsuarez/lineasvida-api/internal/application/alertas"
	"github.com/dsuarez/lineasvida-api/internal/application/auditoria"
	"github.com/dsuarez/lineasvida-api/internal/application/autorizacion"
	"github.com/dsuarez/lineasvida-api/internal/application/relaciones"
	"github.com/dsuarez/lineasvida-api/internal/application/usecase"
	"github.com/dsuarez/lineasvida-api/internal/domain/vigencia"
	"github.com/dsuarez/lineasvida-api/internal/infrastructure/postgres"
	httpRouter "github.com/dsuarez/lineasvida-api/internal/interfaces/http"
	"github.com/dsuarez/lineasvida-api/internal/scheduler"
	"github.com/dsuarez/lineasvida-api/pkg/config"
	"github.com/dsuarez/lineasvida-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	lineaRepo := postgres.NewLineaRepository(pool)
	alertaRepo := postgres.NewAlertaRepository(pool)
	movimientoRepo := postgres.NewMovimientoRepository(pool)
	relacionRepo := postgres.NewRelacionRepository(pool)
	codigoRepo := postgres.NewCodigoRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	clasif := vigencia.Opciones{
		UmbralPorVencer: cfg.Alertas.UmbralPorVencer,
		UmbralCritico:   cfg.Alertas.UmbralCritico,
	}
	registro := auditoria.NewRegistrador(movimientoRepo, nil)
	authSvc := autorizacion.NewServicio(codigoRepo, registro, autorizacion.Config{
		TTL:                    cfg.Autorizacion.TTL,
		DiasEliminacionDirecta: cfg.Autorizacion.DiasEliminacionDirecta,
	}, nil, nil)
	generador := alertas.NewGenerador(lineaRepo, alertaRepo, alertas.Config{
		Clasificador:     clasif,
		VentanaPorVencer: cfg.Alertas.VentanaPorVencer,
		VentanaVencido:   cfg.Alertas.VentanaVencido,
		VentanaCritico:   cfg.Alertas.VentanaCritico,
	}, nil, log.Componente("alertas"))
	relacionSvc := relaciones.NewServicio(lineaRepo, relacionRepo, registro, txRunner, clasif, nil, log.Componente("relaciones"))

	lineaUC := usecase.NewLineaUseCase(lineaRepo, registro, authSvc, clasif, nil, log)
	alertaUC := usecase.NewAlertaUseCase(alertaRepo, nil)
	movimientoUC := usecase.NewMovimientoUseCase(lineaRepo, registro)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Líneas de Vida API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LineaUC:      lineaUC,
		AlertaUC:     alertaUC,
		MovimientoUC: movimientoUC,
		Generador:    generador,
		Relaciones:   relacionSvc,
		Autorizacion: authSvc,
		LineaRepo:    lineaRepo,
		JWTSecret:    cfg.JWT.Secret,
	})

	sched := scheduler.New(generador, lineaUC, authSvc, cfg.Scheduler, log.Componente("scheduler"))
	sched.Start(ctx)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	stop()
	sched.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
