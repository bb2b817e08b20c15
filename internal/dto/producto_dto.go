package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ProductoRequest struct {
	SKU         string          `json:"sku"          validate:"max=64"`
	Nombre      string          `json:"nombre"       validate:"required,min=2,max=160"`
	Precio      decimal.Decimal `json:"precio"       validate:"required"`
	Stock       int             `json:"stock"        validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
	Categoria   string          `json:"categoria"    validate:"required,max=80"`
	Estado      string          `json:"estado"       validate:"omitempty,oneof=activo inactivo"`
}

// ─── Filter ─────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre      string `form:"nombre"`
	Categoria   string `form:"categoria"`
	SoloActivos bool   `form:"activos"`
}
