package relaciones_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsuarez/lineasvida-api/internal/application/auditoria"
	"github.com/dsuarez/lineasvida-api/internal/application/relaciones"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/repository"
	"github.com/dsuarez/lineasvida-api/internal/domain/vigencia"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type lineaRepoFake struct {
	lineas      map[string]*entity.LineaVida
	errCrearEn  string // código de hija cuyo Crear falla (fallo tardío)
	errEliminar bool   // hace fallar la compensación
}

func nuevaLineaRepoFake() *lineaRepoFake {
	return &lineaRepoFake{lineas: map[string]*entity.LineaVida{}}
}

func (f *lineaRepoFake) Crear(l *entity.LineaVida) error {
	if f.errCrearEn != "" && l.Codigo == f.errCrearEn {
		return errors.New("fallo de almacenamiento")
	}
	cp := *l
	f.lineas[l.ID] = &cp
	return nil
}

func (f *lineaRepoFake) ObtenerPorID(id string) (*entity.LineaVida, error) {
	l, ok := f.lineas[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *lineaRepoFake) ObtenerPorCodigo(codigo string) (*entity.LineaVida, error) {
	for _, l := range f.lineas {
		if l.Codigo == codigo {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *lineaRepoFake) Actualizar(l *entity.LineaVida) error {
	cp := *l
	f.lineas[l.ID] = &cp
	return nil
}

func (f *lineaRepoFake) ActualizarEstado(id, estado string) error {
	l, ok := f.lineas[id]
	if !ok {
		return domain.ErrNoEncontrada
	}
	l.Estado = estado
	return nil
}

func (f *lineaRepoFake) Retirar(id, estado string) error {
	l, ok := f.lineas[id]
	if !ok {
		return domain.ErrNoEncontrada
	}
	l.Estado = estado
	l.Activa = false
	return nil
}

func (f *lineaRepoFake) Listar(int, int) ([]*entity.LineaVida, error)       { return nil, nil }
func (f *lineaRepoFake) ListarConVencimiento() ([]*entity.LineaVida, error) { return nil, nil }
func (f *lineaRepoFake) ListarNoTerminales() ([]*entity.LineaVida, error)   { return nil, nil }

func (f *lineaRepoFake) Eliminar(id string) error {
	if f.errEliminar {
		return errors.New("no se pudo eliminar")
	}
	delete(f.lineas, id)
	return nil
}

type relacionRepoFake struct {
	filas []*entity.RelacionLinea
}

func (f *relacionRepoFake) Crear(r *entity.RelacionLinea) error {
	f.filas = append(f.filas, r)
	return nil
}

func (f *relacionRepoFake) ListarPorPadre(padreID string) ([]*entity.RelacionLinea, error) {
	var out []*entity.RelacionLinea
	for _, r := range f.filas {
		if r.LineaPadreID == padreID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *relacionRepoFake) ExisteComoPadre(id string) (bool, error) {
	for _, r := range f.filas {
		if r.LineaPadreID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *relacionRepoFake) ExisteComoHija(id string) (bool, error) {
	for _, r := range f.filas {
		if r.LineaHijaID == id {
			return true, nil
		}
	}
	return false, nil
}

type movRepoFake struct {
	entradas  []*entity.Movimiento
	errAccion string // acción cuyo Agregar falla
}

func (f *movRepoFake) Agregar(m *entity.Movimiento) error {
	if f.errAccion != "" && m.Accion == f.errAccion {
		return errors.New("fallo de auditoría")
	}
	f.entradas = append(f.entradas, m)
	return nil
}
func (f *movRepoFake) ListarPorLinea(string, int, int) ([]*entity.Movimiento, error) {
	return f.entradas, nil
}
func (f *movRepoFake) PrimeraAccion(string, string) (*entity.Movimiento, error) { return nil, nil }

// txRunnerFake entrega los mismos fakes como repos "atados a la tx".
type txRunnerFake struct {
	lineas     *lineaRepoFake
	relaciones *relacionRepoFake
	movs       *movRepoFake
}

func (f *txRunnerFake) Run(_ context.Context, fn func(
	repository.LineaRepository, repository.RelacionRepository, repository.MovimientoRepository,
) error) error {
	return fn(f.lineas, f.relaciones, f.movs)
}

// ──────────────────────────────────────────────────────────────────────────────

type entorno struct {
	lineas     *lineaRepoFake
	relaciones *relacionRepoFake
	movs       *movRepoFake
	svc        *relaciones.Servicio
}

func nuevoEntorno() *entorno {
	lineas := nuevaLineaRepoFake()
	rels := &relacionRepoFake{}
	movs := &movRepoFake{}
	reloj := func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }
	registro := auditoria.NewRegistrador(movs, reloj)
	svc := relaciones.NewServicio(
		lineas, rels, registro,
		&txRunnerFake{lineas: lineas, relaciones: rels, movs: movs},
		vigencia.OpcionesDefault(), reloj, nil,
	)
	return &entorno{lineas: lineas, relaciones: rels, movs: movs, svc: svc}
}

func (e *entorno) conPadre(codigo string) *entity.LineaVida {
	p := &entity.LineaVida{
		ID:     "padre-" + codigo,
		Codigo: codigo,
		Estado: entity.EstadoVencido,
		Activa: true,
	}
	e.lineas.lineas[p.ID] = p
	return p
}

func hija(codigo string) relaciones.DefinicionHija {
	venc := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return relaciones.DefinicionHija{
		Codigo:           codigo,
		Cliente:          "Acme SAS",
		Ubicacion:        "Cubierta",
		FechaInstalacion: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		FechaVencimiento: &venc,
		Longitud:         decimal.NewFromInt(30),
	}
}

func actor() auditoria.Actor { return auditoria.Actor{ID: "u1", Nombre: "Ana"} }

func TestCrear_DivisionRetiraAlPadreYCreaHijas(t *testing.T) {
	e := nuevoEntorno()
	p := e.conPadre("LV-P")

	res, err := e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p.ID,
		Tipo:         entity.RelacionDivision,
		Hijas:        []relaciones.DefinicionHija{hija("LV-A"), hija("LV-B")},
		Notas:        "división por tramo",
		Actor:        actor(),
	})
	require.NoError(t, err)

	// Padre retirado con estado terminal y fuera del universo de alertas.
	assert.Equal(t, entity.EstadoDividida, res.Padre.Estado)
	assert.Equal(t, entity.EstadoDividida, e.lineas.lineas[p.ID].Estado)
	assert.False(t, e.lineas.lineas[p.ID].Activa)

	// Dos hijas activas independientes.
	require.Len(t, res.Hijas, 2)
	assert.Equal(t, entity.EstadoActivo, res.Hijas[0].Estado)
	assert.True(t, res.Hijas[0].Activa)

	// Una fila de relación por hija, mismo tipo.
	require.Len(t, res.Relaciones, 2)
	for _, r := range res.Relaciones {
		assert.Equal(t, p.ID, r.LineaPadreID)
		assert.Equal(t, entity.RelacionDivision, r.Tipo)
	}

	// Tres entradas de auditoría: A creada, B creada, padre retirado.
	require.Len(t, e.movs.entradas, 3)
	assert.Equal(t, entity.AccionCreacion, e.movs.entradas[0].Accion)
	assert.Equal(t, entity.AccionCreacion, e.movs.entradas[1].Accion)
	assert.Equal(t, entity.AccionCambioEstado, e.movs.entradas[2].Accion)
}

func TestCrear_EstadoTerminalSegunTipo(t *testing.T) {
	casos := map[string]string{
		entity.RelacionReemplazo:     entity.EstadoReemplazada,
		entity.RelacionDivision:      entity.EstadoDividida,
		entity.RelacionActualizacion: entity.EstadoActualizada,
	}
	for tipo, esperado := range casos {
		e := nuevoEntorno()
		p := e.conPadre("LV-P")
		res, err := e.svc.Crear(context.Background(), relaciones.Entrada{
			LineaPadreID: p.ID,
			Tipo:         tipo,
			Hijas:        []relaciones.DefinicionHija{hija("LV-H")},
			Actor:        actor(),
		})
		require.NoError(t, err, tipo)
		assert.Equal(t, esperado, res.Padre.Estado, tipo)
	}
}

func TestCrear_SegundaRelacionDelMismoPadreFalla(t *testing.T) {
	e := nuevoEntorno()
	p := e.conPadre("LV-P")

	_, err := e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p.ID,
		Tipo:         entity.RelacionDivision,
		Hijas:        []relaciones.DefinicionHija{hija("LV-A")},
		Actor:        actor(),
	})
	require.NoError(t, err)

	antes := len(e.lineas.lineas)
	_, err = e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p.ID,
		Tipo:         entity.RelacionReemplazo,
		Hijas:        []relaciones.DefinicionHija{hija("LV-C")},
		Actor:        actor(),
	})
	assert.ErrorIs(t, err, domain.ErrRelacionExistente)
	assert.Len(t, e.lineas.lineas, antes, "un conflicto no debe crear nada")
}

func TestCrear_PreCondiciones(t *testing.T) {
	e := nuevoEntorno()
	p := e.conPadre("LV-P")

	casos := []struct {
		nombre string
		in     relaciones.Entrada
		esperr error
	}{
		{"padre inexistente", relaciones.Entrada{LineaPadreID: "nope", Tipo: entity.RelacionDivision, Hijas: []relaciones.DefinicionHija{hija("LV-X")}}, domain.ErrNoEncontrada},
		{"sin hijas", relaciones.Entrada{LineaPadreID: p.ID, Tipo: entity.RelacionDivision}, domain.ErrEntradaInvalida},
		{"tipo inválido", relaciones.Entrada{LineaPadreID: p.ID, Tipo: "FUSION", Hijas: []relaciones.DefinicionHija{hija("LV-X")}}, domain.ErrEntradaInvalida},
		{"autorreferencia", relaciones.Entrada{LineaPadreID: p.ID, Tipo: entity.RelacionDivision, Hijas: []relaciones.DefinicionHija{hija("LV-P")}}, domain.ErrEntradaInvalida},
		{"duplicado en lote", relaciones.Entrada{LineaPadreID: p.ID, Tipo: entity.RelacionDivision, Hijas: []relaciones.DefinicionHija{hija("LV-X"), hija("LV-X")}}, domain.ErrEntradaInvalida},
	}
	for _, c := range casos {
		_, err := e.svc.Crear(context.Background(), c.in)
		assert.ErrorIs(t, err, c.esperr, c.nombre)
		assert.Empty(t, e.relaciones.filas, c.nombre)
	}
}

func TestCrear_HijaYaDerivadaRechazadaEagerly(t *testing.T) {
	e := nuevoEntorno()
	p1 := e.conPadre("LV-P1")

	res, err := e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p1.ID,
		Tipo:         entity.RelacionReemplazo,
		Hijas:        []relaciones.DefinicionHija{hija("LV-H1")},
		Actor:        actor(),
	})
	require.NoError(t, err)
	require.Len(t, res.Hijas, 1)

	// LV-H1 ya es hija: no puede reutilizarse como hija de otra relación.
	p2 := e.conPadre("LV-P2")
	_, err = e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p2.ID,
		Tipo:         entity.RelacionReemplazo,
		Hijas:        []relaciones.DefinicionHija{hija("LV-H1")},
		Actor:        actor(),
	})
	assert.ErrorIs(t, err, domain.ErrLineaDerivada)

	// Y tampoco puede volverse padre de una nueva relación.
	_, err = e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: res.Hijas[0].ID,
		Tipo:         entity.RelacionDivision,
		Hijas:        []relaciones.DefinicionHija{hija("LV-N")},
		Actor:        actor(),
	})
	assert.ErrorIs(t, err, domain.ErrLineaDerivada)
}

func TestCrear_CodigoOcupadoCompensaHijasCreadas(t *testing.T) {
	e := nuevoEntorno()
	p := e.conPadre("LV-P")
	// LV-B ya pertenece a una línea ajena (sin relación): colisión tardía.
	e.lineas.lineas["ajena"] = &entity.LineaVida{ID: "ajena", Codigo: "LV-B", Estado: entity.EstadoActivo}

	_, err := e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p.ID,
		Tipo:         entity.RelacionDivision,
		Hijas:        []relaciones.DefinicionHija{hija("LV-A"), hija("LV-B")},
		Actor:        actor(),
	})
	require.ErrorIs(t, err, domain.ErrCodigoDuplicado)

	// LV-A fue creada y luego compensada: no queda huérfana.
	huerfana, _ := e.lineas.ObtenerPorCodigo("LV-A")
	assert.Nil(t, huerfana)
	// El padre nunca fue retirado.
	assert.Equal(t, entity.EstadoVencido, e.lineas.lineas[p.ID].Estado)
}

func TestCrear_FalloDeAuditoriaRestauraAlPadre(t *testing.T) {
	e := nuevoEntorno()
	p := e.conPadre("LV-P")
	// Solo falla la entrada de auditoría del retiro del padre, después de que
	// el retiro mismo ya se aplicó.
	e.movs.errAccion = entity.AccionCambioEstado

	_, err := e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p.ID,
		Tipo:         entity.RelacionDivision,
		Hijas:        []relaciones.DefinicionHija{hija("LV-A")},
		Actor:        actor(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallo de auditoría")

	// El retiro se deshace: el padre recupera su estado previo y sigue activo
	// en vez de quedar terminal sin hijas.
	padre := e.lineas.lineas[p.ID]
	assert.Equal(t, entity.EstadoVencido, padre.Estado)
	assert.True(t, padre.Activa)

	// Y la hija creada fue compensada.
	huerfana, _ := e.lineas.ObtenerPorCodigo("LV-A")
	assert.Nil(t, huerfana)
}

func TestCrear_FalloTardioPropagaErrorOriginal(t *testing.T) {
	e := nuevoEntorno()
	p := e.conPadre("LV-P")
	e.lineas.errCrearEn = "LV-B"
	e.lineas.errEliminar = true // la compensación también falla

	_, err := e.svc.Crear(context.Background(), relaciones.Entrada{
		LineaPadreID: p.ID,
		Tipo:         entity.RelacionDivision,
		Hijas:        []relaciones.DefinicionHija{hija("LV-A"), hija("LV-B")},
		Actor:        actor(),
	})
	// El error original de almacenamiento se propaga, no el de compensación.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallo de almacenamiento")
}
