package dto

import (
	"github.com/shopspring/decimal"

	"joyeriapos/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	SaldoInicial decimal.Decimal `json:"saldo_inicial"`
}

// MovimientoCajaRequest is shared by ingreso, retiro and devolucion.
type MovimientoCajaRequest struct {
	Monto  decimal.Decimal `json:"monto"`
	Motivo *string         `json:"motivo" validate:"omitempty,max=300"`
}

type CerrarCajaRequest struct {
	Observaciones   *string          `json:"observaciones"    validate:"omitempty,max=1000"`
	EfectivoContado *decimal.Decimal `json:"efectivo_contado"`
}

// EstadoCajaQuery is bound from the query string of GET /v1/caja/:id/estado.
type EstadoCajaQuery struct {
	EfectivoContado string `form:"efectivo_contado"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// EstadoCajaResponse pairs a session with its reconciliation.
type EstadoCajaResponse struct {
	Sesion      model.SesionCaja       `json:"sesion"`
	Estado      model.EstadoCaja       `json:"estado"`
	Movimientos []model.MovimientoCaja `json:"movimientos"`
}

// CierreCajaResponse is returned by POST /v1/caja/:id/cerrar.
type CierreCajaResponse struct {
	Sesion        model.SesionCaja `json:"sesion"`
	Estado        model.EstadoCaja `json:"estado"`
	DesvioPct     decimal.Decimal  `json:"desvio_pct"`
	Clasificacion string           `json:"clasificacion"` // normal | advertencia | critico
	YaCerrada     bool             `json:"ya_cerrada"`
}
