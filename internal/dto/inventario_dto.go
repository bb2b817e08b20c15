package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AjusteInventarioRequest: entrada/salida move Cantidad units, ajuste sets the
// absolute stock to Cantidad.
type AjusteInventarioRequest struct {
	ProductoID int64   `json:"producto_id" validate:"required,min=1"`
	Tipo       string  `json:"tipo"        validate:"required,oneof=entrada salida ajuste"`
	Cantidad   int     `json:"cantidad"    validate:"min=0"`
	Notas      *string `json:"notas"       validate:"omitempty,max=300"`
}

type MovimientoInventarioFilter struct {
	ProductoID *int64 `form:"producto_id"`
	Categoria  string `form:"categoria"`
	Tipo       string `form:"tipo"  validate:"omitempty,oneof=entrada salida ajuste"`
	Desde      string `form:"desde"`
	Hasta      string `form:"hasta"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AlertaStockResponse struct {
	ProductoID  int64  `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Categoria   string `json:"categoria"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
	Faltante    int    `json:"faltante"`
}
