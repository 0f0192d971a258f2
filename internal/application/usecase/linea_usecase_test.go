package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsuarez/lineasvida-api/internal/application/auditoria"
	"github.com/dsuarez/lineasvida-api/internal/application/autorizacion"
	"github.com/dsuarez/lineasvida-api/internal/application/dto"
	"github.com/dsuarez/lineasvida-api/internal/application/usecase"
	"github.com/dsuarez/lineasvida-api/internal/domain"
	"github.com/dsuarez/lineasvida-api/internal/domain/entity"
	"github.com/dsuarez/lineasvida-api/internal/domain/vigencia"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type lineaRepoFake struct {
	lineas map[string]*entity.LineaVida
}

func nuevaLineaRepoFake() *lineaRepoFake {
	return &lineaRepoFake{lineas: map[string]*entity.LineaVida{}}
}

func (f *lineaRepoFake) Crear(l *entity.LineaVida) error {
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
	f.lineas[id].Estado = estado
	return nil
}

func (f *lineaRepoFake) Retirar(id, estado string) error {
	f.lineas[id].Estado = estado
	f.lineas[id].Activa = false
	return nil
}

func (f *lineaRepoFake) Listar(int, int) ([]*entity.LineaVida, error) {
	var out []*entity.LineaVida
	for _, l := range f.lineas {
		out = append(out, l)
	}
	return out, nil
}

func (f *lineaRepoFake) ListarConVencimiento() ([]*entity.LineaVida, error) { return nil, nil }

func (f *lineaRepoFake) ListarNoTerminales() ([]*entity.LineaVida, error) {
	var out []*entity.LineaVida
	for _, l := range f.lineas {
		if !entity.EsEstadoTerminal(l.Estado) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *lineaRepoFake) Eliminar(id string) error { delete(f.lineas, id); return nil }

type movRepoFake struct {
	entradas []*entity.Movimiento
}

func (f *movRepoFake) Agregar(m *entity.Movimiento) error {
	f.entradas = append(f.entradas, m)
	return nil
}
func (f *movRepoFake) ListarPorLinea(string, int, int) ([]*entity.Movimiento, error) {
	return f.entradas, nil
}
func (f *movRepoFake) PrimeraAccion(lineaID, accion string) (*entity.Movimiento, error) {
	var primera *entity.Movimiento
	for _, m := range f.entradas {
		if m.LineaID != nil && *m.LineaID == lineaID && m.Accion == accion {
			if primera == nil || m.CreatedAt.Before(primera.CreatedAt) {
				primera = m
			}
		}
	}
	return primera, nil
}

type codigoRepoFake struct {
	filas map[string]*entity.CodigoAutorizacion
}

func (f *codigoRepoFake) Crear(c *entity.CodigoAutorizacion) error { f.filas[c.ID] = c; return nil }
func (f *codigoRepoFake) ObtenerPorID(id string) (*entity.CodigoAutorizacion, error) {
	return f.filas[id], nil
}
func (f *codigoRepoFake) BuscarPendiente(lineaID, sol string, ahora time.Time) (*entity.CodigoAutorizacion, error) {
	for _, c := range f.filas {
		if c.LineaID == lineaID && c.SolicitanteID == sol && c.Estado == entity.CodigoPendiente && !c.Expirado(ahora) {
			return c, nil
		}
	}
	return nil, nil
}
func (f *codigoRepoFake) BuscarPorCodigo(cod, lineaID, sol string) (*entity.CodigoAutorizacion, error) {
	for _, c := range f.filas {
		if c.Codigo == cod && c.LineaID == lineaID && c.SolicitanteID == sol && c.Estado == entity.CodigoPendiente {
			return c, nil
		}
	}
	return nil, nil
}
func (f *codigoRepoFake) AsignarCodigo(id, cod, apr string, exp time.Time) (bool, error) {
	c := f.filas[id]
	if c == nil || c.Estado != entity.CodigoPendiente {
		return false, nil
	}
	c.Codigo, c.AprobadorID, c.ExpiraEn = cod, &apr, exp
	return true, nil
}
func (f *codigoRepoFake) MarcarUsado(id string, usadoEn time.Time) (bool, error) {
	c := f.filas[id]
	if c == nil || c.Estado != entity.CodigoPendiente {
		return false, nil
	}
	c.Estado, c.UsadoEn = entity.CodigoUsado, &usadoEn
	return true, nil
}
func (f *codigoRepoFake) MarcarExpirado(id string) (bool, error) {
	c := f.filas[id]
	if c == nil || c.Estado != entity.CodigoPendiente {
		return false, nil
	}
	c.Estado = entity.CodigoExpirado
	return true, nil
}
func (f *codigoRepoFake) ExpirarVencidos(time.Time) (int, error) { return 0, nil }

// ──────────────────────────────────────────────────────────────────────────────

var ahora = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type entorno struct {
	lineas *lineaRepoFake
	movs   *movRepoFake
	auth   *autorizacion.Servicio
	uc     *usecase.LineaUseCase
}

func nuevoEntorno() *entorno {
	lineas := nuevaLineaRepoFake()
	movs := &movRepoFake{}
	codigos := &codigoRepoFake{filas: map[string]*entity.CodigoAutorizacion{}}
	reloj := func() time.Time { return ahora }
	registro := auditoria.NewRegistrador(movs, reloj)
	auth := autorizacion.NewServicio(codigos, registro, autorizacion.ConfigDefault(), reloj,
		func(int) (string, error) { return "ABCD1234", nil })
	uc := usecase.NewLineaUseCase(lineas, registro, auth, vigencia.Opciones{}, reloj, nil)
	return &entorno{lineas: lineas, movs: movs, auth: auth, uc: uc}
}

func actor(id string) auditoria.Actor { return auditoria.Actor{ID: id, Nombre: "Ana"} }

func TestCrear_DerivaEstadoYAudita(t *testing.T) {
	e := nuevoEntorno()
	venc := ahora.AddDate(0, 0, 10)

	out, err := e.uc.Crear(dto.CrearLineaRequest{
		Codigo:           "LV-001",
		Cliente:          "Acme SAS",
		FechaInstalacion: ahora,
		FechaVencimiento: &venc,
	}, actor("u1"))
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoPorVencer, out.Estado)
	assert.True(t, out.Activa)

	require.Len(t, e.movs.entradas, 1)
	assert.Equal(t, entity.AccionCreacion, e.movs.entradas[0].Accion)
}

func TestCrear_CodigoDuplicado(t *testing.T) {
	e := nuevoEntorno()
	_, err := e.uc.Crear(dto.CrearLineaRequest{Codigo: "LV-001", FechaInstalacion: ahora}, actor("u1"))
	require.NoError(t, err)

	_, err = e.uc.Crear(dto.CrearLineaRequest{Codigo: "LV-001", FechaInstalacion: ahora}, actor("u1"))
	assert.ErrorIs(t, err, domain.ErrCodigoDuplicado)
}

func TestEliminar_DirectoParaLineaRecienteDelMismoUsuario(t *testing.T) {
	e := nuevoEntorno()
	out, err := e.uc.Crear(dto.CrearLineaRequest{Codigo: "LV-001", FechaInstalacion: ahora}, actor("u1"))
	require.NoError(t, err)

	// Creada hoy por u1: borrado directo sin código.
	require.NoError(t, e.uc.Eliminar(out.ID, "", actor("u1")))
	l := e.lineas.lineas[out.ID]
	assert.Equal(t, entity.EstadoInactivo, l.Estado)
	assert.False(t, l.Activa)
}

func TestEliminar_ExigeCodigoParaLineaAjena(t *testing.T) {
	e := nuevoEntorno()
	out, err := e.uc.Crear(dto.CrearLineaRequest{Codigo: "LV-001", FechaInstalacion: ahora}, actor("u1"))
	require.NoError(t, err)

	// u2 no es el creador: requiere autorización.
	err = e.uc.Eliminar(out.ID, "", actor("u2"))
	assert.ErrorIs(t, err, domain.ErrAutorizacionRequerida)

	// Con el ciclo completo de autorización sí procede.
	l, _ := e.lineas.ObtenerPorID(out.ID)
	sol, err := e.auth.Solicitar(l, "u2", "baja definitiva", "")
	require.NoError(t, err)
	_, err = e.auth.GenerarCodigo(sol.ID, "aprobador")
	require.NoError(t, err)

	require.NoError(t, e.uc.Eliminar(out.ID, "ABCD1234", actor("u2")))
	assert.Equal(t, entity.EstadoInactivo, e.lineas.lineas[out.ID].Estado)
}

func TestActualizar_SinCambiosNoAudita(t *testing.T) {
	e := nuevoEntorno()
	out, err := e.uc.Crear(dto.CrearLineaRequest{Codigo: "LV-001", FechaInstalacion: ahora}, actor("u1"))
	require.NoError(t, err)
	antes := len(e.movs.entradas)

	_, err = e.uc.Actualizar(out.ID, dto.ActualizarLineaRequest{}, actor("u1"))
	require.NoError(t, err)
	assert.Len(t, e.movs.entradas, antes, "sin cambios no debe haber nueva entrada")
}

func TestActualizar_UbicacionYClienteDejanEntradaDedicada(t *testing.T) {
	e := nuevoEntorno()
	out, err := e.uc.Crear(dto.CrearLineaRequest{
		Codigo:           "LV-001",
		Cliente:          "Acme SAS",
		Ubicacion:        "Bodega norte",
		FechaInstalacion: ahora,
	}, actor("u1"))
	require.NoError(t, err)
	antes := len(e.movs.entradas)

	ubi, cli := "Bodega sur", "Umbrella SA"
	_, err = e.uc.Actualizar(out.ID, dto.ActualizarLineaRequest{Ubicacion: &ubi, Cliente: &cli}, actor("u1"))
	require.NoError(t, err)

	// UPDATE con el diff completo, más una entrada dedicada por cada campo.
	require.Len(t, e.movs.entradas, antes+3)
	assert.Equal(t, entity.AccionActualizacion, e.movs.entradas[antes].Accion)
	assert.Equal(t, entity.AccionCambioUbicacion, e.movs.entradas[antes+1].Accion)
	assert.Equal(t, "Bodega norte", e.movs.entradas[antes+1].ValoresAnteriores["ubicacion"])
	assert.Equal(t, entity.AccionCambioEmpresa, e.movs.entradas[antes+2].Accion)
	assert.Equal(t, "Umbrella SA", e.movs.entradas[antes+2].ValoresNuevos["cliente"])
}

func TestRefrescarEstados_SoloNoTerminales(t *testing.T) {
	e := nuevoEntorno()
	vencida := ahora.AddDate(0, 0, -10)
	e.lineas.lineas["desactualizada"] = &entity.LineaVida{
		ID: "desactualizada", Codigo: "LV-A", Estado: entity.EstadoActivo, FechaVencimiento: &vencida,
	}
	e.lineas.lineas["retirada"] = &entity.LineaVida{
		ID: "retirada", Codigo: "LV-B", Estado: entity.EstadoDividida, FechaVencimiento: &vencida,
	}

	res, err := e.uc.RefrescarEstados()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Revisadas)
	assert.Equal(t, 1, res.Actualizadas)
	assert.Equal(t, entity.EstadoVencido, e.lineas.lineas["desactualizada"].Estado)
	// El estado terminal es autoritativo: nunca se recalcula.
	assert.Equal(t, entity.EstadoDividida, e.lineas.lineas["retirada"].Estado)

	// La transición quedó auditada como Sistema.
	ultima := e.movs.entradas[len(e.movs.entradas)-1]
	assert.Equal(t, entity.AccionCambioEstado, ultima.Accion)
	assert.Equal(t, entity.UsuarioSistema, ultima.UsuarioNombre)
}
