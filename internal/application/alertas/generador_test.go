package alertas_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsuarez/lineasvida-api/internal/application/alertas"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type lineaRepoFake struct {
	conVencimiento []*entity.LineaVida
	errListar      error
}

func (f *lineaRepoFake) Crear(*entity.LineaVida) error                      { return nil }
func (f *lineaRepoFake) ObtenerPorID(string) (*entity.LineaVida, error)     { return nil, nil }
func (f *lineaRepoFake) ObtenerPorCodigo(string) (*entity.LineaVida, error) { return nil, nil }
func (f *lineaRepoFake) Actualizar(*entity.LineaVida) error                 { return nil }
func (f *lineaRepoFake) ActualizarEstado(string, string) error              { return nil }
func (f *lineaRepoFake) Retirar(string, string) error                       { return nil }
func (f *lineaRepoFake) Listar(int, int) ([]*entity.LineaVida, error)       { return nil, nil }
func (f *lineaRepoFake) ListarNoTerminales() ([]*entity.LineaVida, error)   { return nil, nil }
func (f *lineaRepoFake) Eliminar(string) error                              { return nil }
func (f *lineaRepoFake) ListarConVencimiento() ([]*entity.LineaVida, error) {
	return f.conVencimiento, f.errListar
}

type alertaRepoFake struct {
	alertas  []*entity.Alerta
	errCrear error
}

func (f *alertaRepoFake) Crear(a *entity.Alerta) error {
	if f.errCrear != nil {
		return f.errCrear
	}
	f.alertas = append(f.alertas, a)
	return nil
}

// CrearSiNoReciente emula el insert condicional atómico del repositorio real.
func (f *alertaRepoFake) CrearSiNoReciente(a *entity.Alerta, ventana time.Duration) (bool, error) {
	if f.errCrear != nil {
		return false, f.errCrear
	}
	for _, ex := range f.alertas {
		if ex.LineaID == a.LineaID && ex.Tipo == a.Tipo && a.CreatedAt.Sub(ex.CreatedAt) < ventana {
			return false, nil
		}
	}
	f.alertas = append(f.alertas, a)
	return true, nil
}

func (f *alertaRepoFake) Listar(bool, int, int) ([]*entity.Alerta, error) { return f.alertas, nil }
func (f *alertaRepoFake) MarcarLeida(string, time.Time) error             { return nil }
func (f *alertaRepoFake) MarcarTodasLeidas(time.Time) error               { return nil }

// ──────────────────────────────────────────────────────────────────────────────

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func lineaVence(id string, dias int) *entity.LineaVida {
	v := base.AddDate(0, 0, dias)
	return &entity.LineaVida{
		ID:               id,
		Codigo:           "LV-" + id,
		Cliente:          "Cliente " + id,
		FechaVencimiento: &v,
		Estado:           entity.EstadoActivo,
		Activa:           true,
	}
}

func nuevoGenerador(lineas *lineaRepoFake, alertasRepo *alertaRepoFake, ahora time.Time) *alertas.Generador {
	return alertas.NewGenerador(lineas, alertasRepo, alertas.ConfigDefault(), func() time.Time { return ahora }, nil)
}

func TestEscaneo_OmiteLineasLejosDelVencimiento(t *testing.T) {
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{lineaVence("a", 200)}}
	repo := &alertaRepoFake{}
	g := nuevoGenerador(lineas, repo, base)

	res, err := g.EscaneoProgramado()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Evaluadas)
	assert.Equal(t, 0, res.Generadas)
	assert.Empty(t, repo.alertas)
}

func TestEscaneo_TiposPorClasificacion(t *testing.T) {
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{
		lineaVence("critica", -90), // critical → CRITICO
		lineaVence("vencida", -5),  // high + VENCIDO → VENCIDO
		lineaVence("proxima", 10),  // medium + POR_VENCER → POR_VENCER
	}}
	repo := &alertaRepoFake{}
	g := nuevoGenerador(lineas, repo, base)

	res, err := g.EscaneoProgramado()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Evaluadas)
	assert.Equal(t, 3, res.Generadas)

	porLinea := map[string]*entity.Alerta{}
	for _, a := range repo.alertas {
		porLinea[a.LineaID] = a
	}
	assert.Equal(t, entity.AlertaCritico, porLinea["critica"].Tipo)
	assert.Equal(t, entity.PrioridadCritica, porLinea["critica"].Prioridad)
	assert.Equal(t, entity.AlertaVencido, porLinea["vencida"].Tipo)
	assert.Equal(t, entity.AlertaPorVencer, porLinea["proxima"].Tipo)
}

func TestEscaneoProgramado_ThrottleRetieneSegundaAlerta(t *testing.T) {
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{lineaVence("v", -5)}}
	repo := &alertaRepoFake{}

	// Dos escaneos programados el mismo día: la ventana de VENCIDO (3 días)
	// retiene la segunda alerta.
	g1 := nuevoGenerador(lineas, repo, base)
	res1, err := g1.EscaneoProgramado()
	require.NoError(t, err)
	assert.Equal(t, 1, res1.Generadas)

	g2 := nuevoGenerador(lineas, repo, base.Add(4*time.Hour))
	res2, err := g2.EscaneoProgramado()
	require.NoError(t, err)
	assert.Equal(t, 0, res2.Generadas)
	assert.Len(t, repo.alertas, 1)
}

func TestEscaneoProgramado_FueraDeVentanaGeneraOtra(t *testing.T) {
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{lineaVence("v", -5)}}
	repo := &alertaRepoFake{}

	_, err := nuevoGenerador(lineas, repo, base).EscaneoProgramado()
	require.NoError(t, err)

	// 4 días después (> ventana de 3 días para VENCIDO) vuelve a alertar.
	res, err := nuevoGenerador(lineas, repo, base.AddDate(0, 0, 4)).EscaneoProgramado()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Generadas)
	assert.Len(t, repo.alertas, 2)
}

func TestEscaneoManual_SinThrottle(t *testing.T) {
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{lineaVence("v", -5)}}
	repo := &alertaRepoFake{}
	g := nuevoGenerador(lineas, repo, base)

	res1, err := g.EscaneoManual()
	require.NoError(t, err)
	res2, err := g.EscaneoManual()
	require.NoError(t, err)

	assert.Equal(t, 1, res1.Generadas)
	assert.Equal(t, 1, res2.Generadas)
	assert.Len(t, repo.alertas, 2, "el escaneo manual siempre crea la alerta")
}

func TestEscaneo_MensajeIncluyeCodigoClienteYDias(t *testing.T) {
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{lineaVence("v", -90)}}
	repo := &alertaRepoFake{}
	g := nuevoGenerador(lineas, repo, base)

	_, err := g.EscaneoProgramado()
	require.NoError(t, err)
	require.Len(t, repo.alertas, 1)

	msg := repo.alertas[0].Mensaje
	assert.Contains(t, msg, "LV-v")
	assert.Contains(t, msg, "Cliente v")
	assert.Contains(t, msg, "90")
}

func TestEscaneo_MetadatosSnapshot(t *testing.T) {
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{lineaVence("v", 3)}}
	repo := &alertaRepoFake{}
	g := nuevoGenerador(lineas, repo, base)

	_, err := g.EscaneoProgramado()
	require.NoError(t, err)
	require.Len(t, repo.alertas, 1)

	meta := string(repo.alertas[0].Metadatos)
	assert.Contains(t, meta, `"codigo":"LV-v"`)
	assert.Contains(t, meta, `"dias_restantes":3`)
	assert.Contains(t, meta, `"estado_anterior":"ACTIVO"`)
}

func TestEscaneo_ErrorAbortaElLote(t *testing.T) {
	// Frontera de fallo única: el error al crear una alerta detiene el resto.
	lineas := &lineaRepoFake{conVencimiento: []*entity.LineaVida{
		lineaVence("a", -5),
		lineaVence("b", -5),
	}}
	repo := &alertaRepoFake{errCrear: errors.New("bd caída")}
	g := nuevoGenerador(lineas, repo, base)

	res, err := g.EscaneoProgramado()
	require.Error(t, err)
	assert.Equal(t, 1, res.Evaluadas, "aborta en la primera línea que falla")
	assert.Empty(t, repo.alertas)
}
