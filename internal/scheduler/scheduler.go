// Package scheduler dispara las tareas periódicas del sistema: el escaneo de
// alertas, el refresco nocturno de estados y la expiración de códigos de
// autorización. Cada tarea corre en su propia goroutine y se detiene con el
// contexto del proceso.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dsuarez/lineasvida-api/internal/application/alertas"
	"github.com/dsuarez/lineasvida-api/internal/application/autorizacion"
	"github.com/dsuarez/lineasvida-api/internal/application/usecase"
	"github.com/dsuarez/lineasvida-api/pkg/config"
	"github.com/dsuarez/lineasvida-api/pkg/logger"
)

// Scheduler agrupa las tareas programadas.
type Scheduler struct {
	generador *alertas.Generador
	lineaUC   *usecase.LineaUseCase
	auth      *autorizacion.Servicio
	cfg       config.SchedulerConfig
	log       *logger.Logger
	wg        sync.WaitGroup
}

// New construye el scheduler.
func New(
	generador *alertas.Generador,
	lineaUC *usecase.LineaUseCase,
	auth *autorizacion.Servicio,
	cfg config.SchedulerConfig,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{generador: generador, lineaUC: lineaUC, auth: auth, cfg: cfg, log: log}
}

// Start lanza las tres tareas. Cada una ejecuta su primera pasada al primer
// tick, no al arrancar: el arranque del proceso no debe disparar escaneos.
func (s *Scheduler) Start(ctx context.Context) {
	s.lanzar(ctx, "escaneo de alertas", s.cfg.IntervaloEscaneo, s.escanear)
	s.lanzar(ctx, "refresco de estados", s.cfg.IntervaloRefresco, s.refrescar)
	s.lanzar(ctx, "limpieza de códigos", s.cfg.IntervaloLimpieza, s.limpiar)
}

// Wait bloquea hasta que todas las tareas terminen tras cancelar el contexto.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) lanzar(ctx context.Context, nombre string, intervalo time.Duration, fn func()) {
	if intervalo <= 0 {
		s.log.Warn().Str("tarea", nombre).Msg("intervalo no configurado, tarea deshabilitada")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(intervalo)
		defer ticker.Stop()
		s.log.Info().Str("tarea", nombre).Dur("intervalo", intervalo).Msg("tarea programada iniciada")
		for {
			select {
			case <-ctx.Done():
				s.log.Info().Str("tarea", nombre).Msg("tarea programada detenida")
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (s *Scheduler) escanear() {
	res, err := s.generador.EscaneoProgramado()
	if err != nil {
		s.log.Error().Err(err).Msg("escaneo programado de alertas")
		return
	}
	s.log.Info().
		Int("evaluadas", res.Evaluadas).
		Int("generadas", res.Generadas).
		Msg("escaneo programado de alertas completado")
}

func (s *Scheduler) refrescar() {
	res, err := s.lineaUC.RefrescarEstados()
	if err != nil {
		s.log.Error().Err(err).Msg("refresco programado de estados")
		return
	}
	s.log.Info().
		Int("revisadas", res.Revisadas).
		Int("actualizadas", res.Actualizadas).
		Msg("refresco programado de estados completado")
}

func (s *Scheduler) limpiar() {
	n, err := s.auth.LimpiarExpirados()
	if err != nil {
		s.log.Error().Err(err).Msg("limpieza de códigos expirados")
		return
	}
	if n > 0 {
		s.log.Info().Int("expirados", n).Msg("códigos de autorización expirados")
	}
}
