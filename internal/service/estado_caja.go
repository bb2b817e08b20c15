package service

import (
	"github.com/shopspring/decimal"

	"joyeriapos/internal/model"
	"joyeriapos/internal/money"
)

// CalcularEstadoCaja reconciles a session from its sales and manual
// movements. Callers pass only the records inside the session window.
// Cancelled sales are ignored. Diferencia is contado − esperado, or zero
// when no count is given.
//
//	efectivo_esperado = saldo_inicial + efectivo_ventas + ingresos − retiros − devoluciones
func CalcularEstadoCaja(saldoInicial decimal.Decimal, ventas []model.Venta, movimientos []model.MovimientoCaja, contado *decimal.Decimal) model.EstadoCaja {
	e := model.EstadoCaja{SaldoInicial: money.Round2(saldoInicial)}

	for _, v := range ventas {
		if v.Estado == model.VentaCancelada {
			continue
		}
		e.CantidadVentas++
		e.VentasTotales = money.Round2(e.VentasTotales.Add(v.Total))
		switch normalizarMetodoPago(v.MetodoPago) {
		case model.MetodoTarjeta:
			e.TarjetaVentas = money.Round2(e.TarjetaVentas.Add(v.Total))
		case model.MetodoTransferencia:
			e.TransferenciaVentas = money.Round2(e.TransferenciaVentas.Add(v.Total))
		default:
			e.EfectivoVentas = money.Round2(e.EfectivoVentas.Add(v.Total))
		}
	}

	for _, m := range movimientos {
		switch m.Tipo {
		case model.MovimientoIngreso:
			e.IngresosNoVenta = money.Round2(e.IngresosNoVenta.Add(m.Monto))
		case model.MovimientoRetiro:
			e.Retiros = money.Round2(e.Retiros.Add(m.Monto))
		case model.MovimientoDevolucion:
			e.DevolucionesEfectivo = money.Round2(e.DevolucionesEfectivo.Add(m.Monto))
		}
	}

	e.EfectivoEsperado = money.Round2(
		e.SaldoInicial.
			Add(e.EfectivoVentas).
			Add(e.IngresosNoVenta).
			Sub(e.Retiros).
			Sub(e.DevolucionesEfectivo),
	)
	if contado != nil {
		e.Diferencia = money.Round2(contado.Sub(e.EfectivoEsperado))
	}
	return e
}

// clasificarDesvio returns "normal" | "advertencia" | "critico"
// normal: |desvio| <= 1%, advertencia: <= 5%, critico: > 5%
func clasificarDesvio(pct decimal.Decimal) string {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return "normal"
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return "advertencia"
	default:
		return "critico"
	}
}

// desvioPct is diferencia as a percentage of the expected cash. With nothing
// expected, any counted cash is a full deviation.
func desvioPct(e model.EstadoCaja) decimal.Decimal {
	if e.EfectivoEsperado.IsZero() {
		if e.Diferencia.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(100)
	}
	return money.Pct(e.Diferencia, e.EfectivoEsperado.Abs())
}
