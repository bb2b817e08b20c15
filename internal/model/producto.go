package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado: "activo" | "inactivo"
const (
	ProductoActivo   = "activo"
	ProductoInactivo = "inactivo"
)

// Producto is a sellable piece tracked by unit stock.
// CategoriaID is always NormalizarCategoria(Categoria).
type Producto struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Nombre      string          `json:"nombre"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	CategoriaID string          `json:"categoria_id"`
	Categoria   string          `json:"categoria"`
	Estado      string          `json:"estado"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Activo reports whether the product can be sold.
func (p *Producto) Activo() bool { return p.Estado != ProductoInactivo }
