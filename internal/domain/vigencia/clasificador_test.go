package vigencia_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/vigencia"
)

// ahora fijo para que los tests sean deterministas (mediodía, para verificar
// que el truncado a medianoche no corre los días).
var ahora = time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC)

func enDias(n int) *time.Time {
	t := ahora.AddDate(0, 0, n)
	return &t
}

func clasificar(venc *time.Time) vigencia.Clasificacion {
	return vigencia.Clasificar(venc, ahora, vigencia.OpcionesDefault())
}

func TestClasificar_ActivoLejosDelVencimiento(t *testing.T) {
	c := clasificar(enDias(40))
	assert.Equal(t, entity.EstadoActivo, c.Estado)
	assert.Equal(t, entity.PrioridadBaja, c.Prioridad)
	assert.Equal(t, 40, c.DiasRestantes)
}

func TestClasificar_PorVencer(t *testing.T) {
	// A 5 días: urgente (high); a 10 días: medium.
	c5 := clasificar(enDias(5))
	assert.Equal(t, entity.EstadoPorVencer, c5.Estado)
	assert.Equal(t, entity.PrioridadAlta, c5.Prioridad)
	assert.Equal(t, 5, c5.DiasRestantes)

	c10 := clasificar(enDias(10))
	assert.Equal(t, entity.EstadoPorVencer, c10.Estado)
	assert.Equal(t, entity.PrioridadMedia, c10.Prioridad)
}

func TestClasificar_VenceHoy(t *testing.T) {
	c := clasificar(enDias(0))
	assert.Equal(t, entity.EstadoPorVencer, c.Estado)
	assert.Equal(t, entity.PrioridadAlta, c.Prioridad)
	assert.Equal(t, 0, c.DiasRestantes)
	assert.Equal(t, "la línea vence hoy", c.Mensaje)
}

func TestClasificar_VencidoReciente(t *testing.T) {
	c := clasificar(enDias(-1))
	assert.Equal(t, entity.EstadoVencido, c.Estado)
	assert.Equal(t, entity.PrioridadAlta, c.Prioridad)
	assert.Equal(t, -1, c.DiasRestantes)
}

func TestClasificar_VencidoCritico(t *testing.T) {
	// Más de 60 días vencida ⇒ critical.
	c := clasificar(enDias(-90))
	assert.Equal(t, entity.EstadoVencido, c.Estado)
	assert.Equal(t, entity.PrioridadCritica, c.Prioridad)
	assert.Equal(t, -90, c.DiasRestantes)
}

func TestClasificar_JustoEnUmbralCritico(t *testing.T) {
	// Exactamente 60 días vencida: todavía high (el umbral es estrictamente mayor).
	c := clasificar(enDias(-60))
	assert.Equal(t, entity.PrioridadAlta, c.Prioridad)
}

func TestClasificar_SinVencimiento(t *testing.T) {
	c := clasificar(nil)
	assert.Equal(t, entity.EstadoActivo, c.Estado)
	assert.Equal(t, entity.PrioridadBaja, c.Prioridad)
	assert.Equal(t, vigencia.DiasSinVencimiento, c.DiasRestantes)
}

func TestClasificar_TruncaAMedianoche(t *testing.T) {
	// Vence mañana a las 00:01; aunque falten menos de 12 horas de reloj,
	// en días calendario es 1.
	v := time.Date(2025, 3, 16, 0, 1, 0, 0, time.UTC)
	c := clasificar(&v)
	assert.Equal(t, 1, c.DiasRestantes)
}

func TestClasificar_UmbralesPersonalizados(t *testing.T) {
	opts := vigencia.Opciones{UmbralPorVencer: 10, UmbralCritico: 5}
	c := vigencia.Clasificar(enDias(15), ahora, opts)
	assert.Equal(t, entity.EstadoActivo, c.Estado)

	c = vigencia.Clasificar(enDias(-6), ahora, opts)
	assert.Equal(t, entity.PrioridadCritica, c.Prioridad)
}

func TestClasificar_Determinista(t *testing.T) {
	v := enDias(20)
	assert.Equal(t, clasificar(v), clasificar(v))
}
