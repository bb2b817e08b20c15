package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"joyeriapos/internal/model"
)

func TestCalcularEstadoCaja(t *testing.T) {
	ventas := []model.Venta{
		{Total: dec("1160"), MetodoPago: "efectivo", Estado: model.VentaCompletada},
		{Total: dec("300.50"), MetodoPago: "TARJETA", Estado: model.VentaCompletada},
		{Total: dec("99.99"), MetodoPago: "Transferencia", Estado: model.VentaCompletada},
		{Total: dec("45"), MetodoPago: "cheque", Estado: model.VentaCompletada},
		{Total: dec("5000"), MetodoPago: "Efectivo", Estado: model.VentaCancelada},
	}
	movs := []model.MovimientoCaja{
		{Tipo: model.MovimientoIngreso, Monto: dec("50")},
		{Tipo: model.MovimientoRetiro, Monto: dec("200")},
		{Tipo: model.MovimientoDevolucion, Monto: dec("10.25")},
	}

	e := CalcularEstadoCaja(dec("1000"), ventas, movs, nil)

	assert.Equal(t, 4, e.CantidadVentas)
	assert.Equal(t, "1605.49", e.VentasTotales.StringFixed(2))
	assert.Equal(t, "1205.00", e.EfectivoVentas.StringFixed(2))
	assert.Equal(t, "300.50", e.TarjetaVentas.StringFixed(2))
	assert.Equal(t, "99.99", e.TransferenciaVentas.StringFixed(2))
	assert.Equal(t, "50.00", e.IngresosNoVenta.StringFixed(2))
	assert.Equal(t, "200.00", e.Retiros.StringFixed(2))
	assert.Equal(t, "10.25", e.DevolucionesEfectivo.StringFixed(2))
	// 1000 + 1205 + 50 − 200 − 10.25
	assert.Equal(t, "2044.75", e.EfectivoEsperado.StringFixed(2))
	assert.True(t, e.Diferencia.IsZero())
}

func TestCalcularEstadoCaja_EfectivoEnMinusculas(t *testing.T) {
	ventas := []model.Venta{{Total: dec("1160"), MetodoPago: "efectivo", Estado: model.VentaCompletada}}
	contado := dec("2150")

	e := CalcularEstadoCaja(dec("1000"), ventas, nil, &contado)

	assert.Equal(t, "2160.00", e.EfectivoEsperado.StringFixed(2))
	assert.Equal(t, "-10.00", e.Diferencia.StringFixed(2))
}

func TestCalcularEstadoCaja_Vacio(t *testing.T) {
	e := CalcularEstadoCaja(decimal.Zero, nil, nil, nil)
	assert.True(t, e.EfectivoEsperado.IsZero())
	assert.Zero(t, e.CantidadVentas)
}

func TestClasificarDesvio(t *testing.T) {
	tests := []struct {
		pct  string
		want string
	}{
		{"0", "normal"},
		{"1", "normal"},
		{"-1", "normal"},
		{"1.01", "advertencia"},
		{"-5", "advertencia"},
		{"5.01", "critico"},
		{"-40", "critico"},
	}
	for _, tt := range tests {
		t.Run(tt.pct, func(t *testing.T) {
			assert.Equal(t, tt.want, clasificarDesvio(dec(tt.pct)))
		})
	}
}

func TestDesvioPct(t *testing.T) {
	assert.Equal(t, "-0.50", desvioPct(model.EstadoCaja{EfectivoEsperado: dec("2000"), Diferencia: dec("-10")}).StringFixed(2))
	assert.True(t, desvioPct(model.EstadoCaja{}).IsZero())
	assert.Equal(t, "100.00", desvioPct(model.EstadoCaja{Diferencia: dec("20")}).StringFixed(2))
}
