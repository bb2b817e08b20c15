package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
)

func (e *entorno) reportes() *reporteService {
	s := NewReporteService(e.store, e.store).(*reporteService)
	s.now = e.reloj.now
	return s
}

// conVentas records four sales over 2026-03-08 and 2026-03-10, one of them
// cancelled, and leaves the clock on 2026-03-10.
func conVentas(t *testing.T) *entorno {
	t.Helper()
	e := nuevoEntorno(t)
	dije := e.producto(t, model.Producto{Nombre: "Dije", Precio: dec("100"), Stock: 20, Categoria: "Dijes"})
	e.producto(t, anillo("Anillo A", 10))
	ana := e.cliente(t, model.Cliente{Nombre: "Ana"})
	beto := e.cliente(t, model.Cliente{Nombre: "Beto"})
	svc := e.ventas()
	ctx := context.Background()
	hoy := e.reloj.t

	e.reloj.t = hoy.AddDate(0, 0, -2)
	_, err := svc.CrearVenta(ctx, dto.CrearVentaRequest{ClienteID: &ana.ID, Items: []dto.ItemVentaRequest{itemProducto(dije.ID, 1, "100")}})
	require.NoError(t, err)

	e.reloj.t = hoy
	_, err = svc.CrearVenta(ctx, dto.CrearVentaRequest{ClienteID: &ana.ID, Items: []dto.ItemVentaRequest{itemProducto(dije.ID, 2, "100")}, MetodoPago: "Tarjeta"})
	require.NoError(t, err)
	anulada, err := svc.CrearVenta(ctx, dto.CrearVentaRequest{Items: []dto.ItemVentaRequest{itemProducto(dije.ID, 3, "100")}})
	require.NoError(t, err)
	_, err = svc.AnularVenta(ctx, anulada.ID, "prueba")
	require.NoError(t, err)
	_, err = svc.CrearVenta(ctx, dto.CrearVentaRequest{ClienteID: &beto.ID, Items: []dto.ItemVentaRequest{itemCategoria("Anillos", 1, "50")}})
	require.NoError(t, err)
	return e
}

func TestResumen(t *testing.T) {
	e := conVentas(t)
	r, err := e.reportes().Resumen(context.Background(), dto.ReporteFilter{Desde: "2026-03-08", Hasta: "2026-03-10"})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-08", r.Desde)
	assert.Equal(t, "2026-03-10", r.Hasta)
	assert.Equal(t, 3, r.CantidadVentas)
	assert.Equal(t, 1, r.Anuladas)
	assert.Equal(t, 4, r.Unidades)
	assert.Equal(t, "350.00", r.Total.StringFixed(2))
	assert.Equal(t, "116.67", r.TicketPromedio.StringFixed(2))
	assert.Equal(t, "150.00", r.PorMetodo[model.MetodoEfectivo].StringFixed(2))
	assert.Equal(t, "200.00", r.PorMetodo[model.MetodoTarjeta].StringFixed(2))
	assert.True(t, r.PorMetodo[model.MetodoTransferencia].IsZero())

	soloHoy, err := e.reportes().Resumen(context.Background(), dto.ReporteFilter{Desde: "2026-03-10"})
	require.NoError(t, err)
	assert.Equal(t, 2, soloHoy.CantidadVentas)
}

func TestResumen_RangoPorDefecto(t *testing.T) {
	e := conVentas(t)
	svc := e.reportes()

	r, err := svc.Resumen(context.Background(), dto.ReporteFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, r.CantidadVentas)
	assert.Equal(t, "2026-02-09", r.Desde)

	e.reloj.avanzar(40 * 24 * time.Hour)
	r, err = svc.Resumen(context.Background(), dto.ReporteFilter{})
	require.NoError(t, err)
	assert.Zero(t, r.CantidadVentas)
	assert.True(t, r.TicketPromedio.IsZero())

	_, err = svc.Resumen(context.Background(), dto.ReporteFilter{Desde: "ayer"})
	requireKind(t, err, apierror.KindValidation)
}

func TestTopProductosYClientes(t *testing.T) {
	e := conVentas(t)
	svc := e.reportes()
	ctx := context.Background()

	top, err := svc.TopProductos(ctx, dto.ReporteFilter{Limite: 10})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Dije", top[0].Nombre)
	assert.Equal(t, 3, top[0].Unidades)
	assert.Equal(t, "300.00", top[0].Total.StringFixed(2))
	assert.Nil(t, top[1].ProductoID)
	assert.Equal(t, "Anillos", top[1].Categoria)

	uno, err := svc.TopProductos(ctx, dto.ReporteFilter{Limite: 1})
	require.NoError(t, err)
	assert.Len(t, uno, 1)

	clientes, err := svc.TopClientes(ctx, dto.ReporteFilter{Limite: 10})
	require.NoError(t, err)
	require.Len(t, clientes, 2)
	assert.Equal(t, "Ana", clientes[0].Nombre)
	assert.Equal(t, 2, clientes[0].CantidadVentas)
	assert.Equal(t, "300.00", clientes[0].Total.StringFixed(2))
	assert.Equal(t, "Beto", clientes[1].Nombre)
}

func TestSerie(t *testing.T) {
	e := conVentas(t)
	svc := e.reportes()

	dias, err := svc.Serie(context.Background(), dto.ReporteFilter{Desde: "2026-03-08", Hasta: "2026-03-10", Periodo: "dia"})
	require.NoError(t, err)
	require.Len(t, dias, 3)
	assert.Equal(t, "2026-03-08", dias[0].Periodo)
	assert.Equal(t, "100.00", dias[0].Total.StringFixed(2))
	assert.Zero(t, dias[1].CantidadVentas)
	assert.True(t, dias[1].Total.IsZero())
	assert.Equal(t, 2, dias[2].CantidadVentas)

	meses, err := svc.Serie(context.Background(), dto.ReporteFilter{Desde: "2026-02-15", Hasta: "2026-03-10", Periodo: "mes"})
	require.NoError(t, err)
	require.Len(t, meses, 2)
	assert.Equal(t, "2026-02", meses[0].Periodo)
	assert.Equal(t, "2026-03", meses[1].Periodo)
	assert.Equal(t, "350.00", meses[1].Total.StringFixed(2))
}

func TestExportarCSV(t *testing.T) {
	e := conVentas(t)
	var buf bytes.Buffer

	require.NoError(t, e.reportes().ExportarCSV(context.Background(), dto.ReporteFilter{}, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, []string{"1", "Ana", "Efectivo", "Completada", "1", "100.00"}, []string{rows[1][0], rows[1][2], rows[1][3], rows[1][4], rows[1][5], rows[1][9]})
	assert.Equal(t, model.VentaCancelada, rows[3][4])
	assert.Equal(t, "", rows[3][2])
}
