// Package alertas implementa el generador de alertas de vencimiento: un
// proceso por lotes que clasifica cada línea con vencimiento y crea
// notificaciones con de-duplicación por ventana de frecuencia.
package alertas

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
	"github.com/dsuarez/lineasvida-api/internal/domain/vigencia"
	"github.com/dsuarez/lineasvida-api/pkg/logger"
)

// Ventanas de frecuencia por tipo de alerta (mínimo entre dos alertas del
// mismo tipo para la misma línea).
const (
	VentanaPorVencerDefault = 7 * 24 * time.Hour
	VentanaVencidoDefault   = 3 * 24 * time.Hour
	VentanaCriticoDefault   = 24 * time.Hour
)

// Config parámetros del generador, con valores por defecto documentados.
type Config struct {
	Clasificador     vigencia.Opciones
	VentanaPorVencer time.Duration
	VentanaVencido   time.Duration
	VentanaCritico   time.Duration
}

// ConfigDefault devuelve la configuración por defecto.
func ConfigDefault() Config {
	return Config{
		Clasificador:     vigencia.OpcionesDefault(),
		VentanaPorVencer: VentanaPorVencerDefault,
		VentanaVencido:   VentanaVencidoDefault,
		VentanaCritico:   VentanaCriticoDefault,
	}
}

// Resultado contadores de un escaneo.
type Resultado struct {
	Evaluadas int `json:"evaluadas"`
	Generadas int `json:"generadas"`
}

// metadatos snapshot opaco guardado con cada alerta.
type metadatos struct {
	Codigo           string `json:"codigo"`
	Cliente          string `json:"cliente,omitempty"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	DiasRestantes    int    `json:"dias_restantes"`
	EstadoAnterior   string `json:"estado_anterior"`
}

// Generador recorre las líneas con vencimiento y crea alertas según la
// clasificación de vigencia.
//
// El escaneo completo corre dentro de una sola frontera de fallo: el error de
// una línea aborta el resto del lote y se devuelve al llamador (decisión
// documentada en DESIGN.md, no aislamiento por línea).
type Generador struct {
	lineas  repository.LineaRepository
	alertas repository.AlertaRepository
	cfg     Config
	reloj   func() time.Time
	log     *logger.Logger
	vuelo   singleflight.Group
}

// NewGenerador construye el generador. reloj nil usa time.Now.
func NewGenerador(lineas repository.LineaRepository, alertas repository.AlertaRepository, cfg Config, reloj func() time.Time, log *logger.Logger) *Generador {
	if reloj == nil {
		reloj = time.Now
	}
	if cfg.VentanaPorVencer <= 0 {
		cfg.VentanaPorVencer = VentanaPorVencerDefault
	}
	if cfg.VentanaVencido <= 0 {
		cfg.VentanaVencido = VentanaVencidoDefault
	}
	if cfg.VentanaCritico <= 0 {
		cfg.VentanaCritico = VentanaCriticoDefault
	}
	return &Generador{lineas: lineas, alertas: alertas, cfg: cfg, reloj: reloj, log: log}
}

// EscaneoProgramado ejecuta el escaneo con throttle por ventana de frecuencia.
// Ejecuciones concurrentes del job programado colapsan en una sola (single
// flight): dos timers solapados comparten el mismo resultado en vez de
// duplicar alertas por la carrera check-then-act.
func (g *Generador) EscaneoProgramado() (Resultado, error) {
	v, err, _ := g.vuelo.Do("escaneo-programado", func() (any, error) {
		return g.escanear(true)
	})
	if err != nil {
		return Resultado{}, err
	}
	return v.(Resultado), nil
}

// EscaneoManual ejecuta el escaneo sin throttle: crea una alerta por cada
// línea que califique, exista o no una alerta reciente del mismo tipo.
func (g *Generador) EscaneoManual() (Resultado, error) {
	return g.escanear(false)
}

func (g *Generador) escanear(conThrottle bool) (Resultado, error) {
	ahora := g.reloj()
	lineas, err := g.lineas.ListarConVencimiento()
	if err != nil {
		return Resultado{}, fmt.Errorf("listar líneas con vencimiento: %w", err)
	}

	res := Resultado{}
	for _, linea := range lineas {
		res.Evaluadas++

		c := vigencia.Clasificar(linea.FechaVencimiento, ahora, g.cfg.Clasificador)
		if c.Prioridad == entity.PrioridadBaja {
			continue
		}

		tipo := tipoAlerta(c)
		alerta, err := g.construirAlerta(linea, c, tipo, ahora)
		if err != nil {
			return res, err
		}

		if conThrottle {
			insertada, err := g.alertas.CrearSiNoReciente(alerta, g.ventana(tipo))
			if err != nil {
				return res, fmt.Errorf("crear alerta para línea %s: %w", linea.Codigo, err)
			}
			if insertada {
				res.Generadas++
			}
			continue
		}

		if err := g.alertas.Crear(alerta); err != nil {
			return res, fmt.Errorf("crear alerta para línea %s: %w", linea.Codigo, err)
		}
		res.Generadas++
	}

	if g.log != nil {
		g.log.Info().
			Int("evaluadas", res.Evaluadas).
			Int("generadas", res.Generadas).
			Bool("throttle", conThrottle).
			Msg("escaneo de alertas completado")
	}
	return res, nil
}

// tipoAlerta mapea prioridad y estado al tipo de alerta:
// critical → CRITICO; VENCIDO → VENCIDO; POR_VENCER → POR_VENCER.
func tipoAlerta(c vigencia.Clasificacion) string {
	if c.Prioridad == entity.PrioridadCritica {
		return entity.AlertaCritico
	}
	if c.Estado == entity.EstadoVencido {
		return entity.AlertaVencido
	}
	return entity.AlertaPorVencer
}

func (g *Generador) ventana(tipo string) time.Duration {
	switch tipo {
	case entity.AlertaCritico:
		return g.cfg.VentanaCritico
	case entity.AlertaVencido:
		return g.cfg.VentanaVencido
	}
	return g.cfg.VentanaPorVencer
}

func (g *Generador) construirAlerta(linea *entity.LineaVida, c vigencia.Clasificacion, tipo string, ahora time.Time) (*entity.Alerta, error) {
	meta, err := json.Marshal(metadatos{
		Codigo:           linea.Codigo,
		Cliente:          linea.Cliente,
		FechaVencimiento: linea.FechaVencimiento.Format("2006-01-02"),
		DiasRestantes:    c.DiasRestantes,
		EstadoAnterior:   linea.Estado,
	})
	if err != nil {
		return nil, fmt.Errorf("serializar metadatos: %w", err)
	}
	return &entity.Alerta{
		ID:        uuid.New().String(),
		Tipo:      tipo,
		LineaID:   linea.ID,
		Mensaje:   mensajeAlerta(linea, c),
		Prioridad: c.Prioridad,
		Metadatos: meta,
		CreatedAt: ahora,
	}, nil
}

// mensajeAlerta arma el texto de la notificación según la prioridad, con el
// código de la línea, el cliente (si existe) y la magnitud de días con signo.
func mensajeAlerta(linea *entity.LineaVida, c vigencia.Clasificacion) string {
	sujeto := fmt.Sprintf("línea de vida %s", linea.Codigo)
	if linea.Cliente != "" {
		sujeto = fmt.Sprintf("%s (%s)", sujeto, linea.Cliente)
	}
	switch c.Prioridad {
	case entity.PrioridadCritica:
		return fmt.Sprintf("CRÍTICO: %s lleva %d días vencida, retirar de servicio", sujeto, -c.DiasRestantes)
	case entity.PrioridadAlta:
		if c.Estado == entity.EstadoVencido {
			return fmt.Sprintf("URGENTE: %s venció hace %d días", sujeto, -c.DiasRestantes)
		}
		if c.DiasRestantes == 0 {
			return fmt.Sprintf("URGENTE: %s vence hoy", sujeto)
		}
		return fmt.Sprintf("URGENTE: %s vence en %d días", sujeto, c.DiasRestantes)
	}
	return fmt.Sprintf("AVISO: %s vence en %d días", sujeto, c.DiasRestantes)
}
