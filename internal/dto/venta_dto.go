package dto

import (
	"github.com/shopspring/decimal"

	"joyeriapos/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest is one order line. Either ProductoID, or a category
// (CategoriaID or CategoriaNombre), identifies where the stock comes from.
// Cantidad is floored to an integer.
type ItemVentaRequest struct {
	ProductoID      *int64          `json:"producto_id"`
	CategoriaID     string          `json:"categoria_id"`
	CategoriaNombre string          `json:"categoria_nombre"`
	Nombre          string          `json:"nombre"           validate:"max=160"`
	Cantidad        decimal.Decimal `json:"cantidad"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
}

type CrearVentaRequest struct {
	ClienteID  *int64             `json:"cliente_id"`
	Items      []ItemVentaRequest `json:"items"      validate:"dive"`
	Descuento  decimal.Decimal    `json:"descuento"`
	Impuesto   decimal.Decimal    `json:"impuesto"`
	MetodoPago string             `json:"metodo_pago"`
	// Applied loyalty discount, informational only.
	NivelDescuento      *string          `json:"nivel_descuento"`
	PorcentajeDescuento *decimal.Decimal `json:"porcentaje_descuento"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=300"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Desde  string `form:"desde"`  // YYYY-MM-DD, inclusive
	Hasta  string `form:"hasta"`  // YYYY-MM-DD, inclusive
	Estado string `form:"estado" validate:"omitempty,oneof=Completada Cancelada Pendiente"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type VentaListResponse struct {
	Data  []model.Venta `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type EliminarVentasResponse struct {
	Eliminadas int `json:"eliminadas"`
}
