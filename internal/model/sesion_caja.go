package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CajaAbierta = "Abierta"
	CajaCerrada = "Cerrada"
)

// SesionCaja represents the lifecycle of a cash register session.
// Once Cerrada, the frozen Cierre is never recomputed.
type SesionCaja struct {
	ID            int64            `json:"id"`
	SaldoInicial  decimal.Decimal  `json:"saldo_inicial"`
	Estado        string           `json:"estado"`
	AbiertaEn     time.Time        `json:"abierta_en"`
	CerradaEn     *time.Time       `json:"cerrada_en,omitempty"`
	MontoFinal    *decimal.Decimal `json:"monto_final,omitempty"`
	MontoEsperado *decimal.Decimal `json:"monto_esperado,omitempty"`
	Diferencia    *decimal.Decimal `json:"diferencia,omitempty"`
	// Clasificacion: "normal" | "advertencia" | "critico"
	Clasificacion *string     `json:"clasificacion,omitempty"`
	Observaciones *string     `json:"observaciones,omitempty"`
	Cierre        *EstadoCaja `json:"cierre,omitempty"`
}

const (
	MovimientoIngreso    = "ingreso"
	MovimientoRetiro     = "retiro"
	MovimientoDevolucion = "devolucion"
)

// MovimientoCaja is an immutable manual entry in the cash register ledger.
// Movements are NEVER modified or deleted.
type MovimientoCaja struct {
	ID       int64           `json:"id"`
	SesionID int64           `json:"sesion_id"`
	Tipo     string          `json:"tipo"`
	Monto    decimal.Decimal `json:"monto"`
	Motivo   *string         `json:"motivo,omitempty"`
	Fecha    time.Time       `json:"fecha"`
}

// EstadoCaja is the reconciliation of a session. It is derived from sales and
// movements and only stored when the session is closed.
type EstadoCaja struct {
	VentasTotales        decimal.Decimal `json:"ventas_totales"`
	EfectivoVentas       decimal.Decimal `json:"efectivo_ventas"`
	TarjetaVentas        decimal.Decimal `json:"tarjeta_ventas"`
	TransferenciaVentas  decimal.Decimal `json:"transferencia_ventas"`
	SaldoInicial         decimal.Decimal `json:"saldo_inicial"`
	IngresosNoVenta      decimal.Decimal `json:"ingresos_no_venta"`
	Retiros              decimal.Decimal `json:"retiros"`
	DevolucionesEfectivo decimal.Decimal `json:"devoluciones_efectivo"`
	EfectivoEsperado     decimal.Decimal `json:"efectivo_esperado"`
	Diferencia           decimal.Decimal `json:"diferencia"`
	CantidadVentas       int             `json:"cantidad_ventas"`
}
