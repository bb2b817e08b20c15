package dto

import "github.com/shopspring/decimal"

type ReporteFilter struct {
	Desde   string `form:"desde"`
	Hasta   string `form:"hasta"`
	Periodo string `form:"periodo,default=dia" validate:"oneof=dia mes"`
	Limite  int    `form:"limite,default=10"   validate:"min=1,max=100"`
}

type ResumenResponse struct {
	Desde          string                     `json:"desde"`
	Hasta          string                     `json:"hasta"`
	CantidadVentas int                        `json:"cantidad_ventas"`
	Unidades       int                        `json:"unidades"`
	Subtotal       decimal.Decimal            `json:"subtotal"`
	Descuentos     decimal.Decimal            `json:"descuentos"`
	Impuestos      decimal.Decimal            `json:"impuestos"`
	Total          decimal.Decimal            `json:"total"`
	TicketPromedio decimal.Decimal            `json:"ticket_promedio"`
	PorMetodo      map[string]decimal.Decimal `json:"por_metodo"`
	Anuladas       int                        `json:"anuladas"`
}

type TopProductoResponse struct {
	ProductoID *int64          `json:"producto_id,omitempty"`
	Nombre     string          `json:"nombre"`
	Categoria  string          `json:"categoria"`
	Unidades   int             `json:"unidades"`
	Total      decimal.Decimal `json:"total"`
}

type TopClienteResponse struct {
	ClienteID      int64           `json:"cliente_id"`
	Nombre         string          `json:"nombre"`
	CantidadVentas int             `json:"cantidad_ventas"`
	Total          decimal.Decimal `json:"total"`
}

type SeriePunto struct {
	Periodo        string          `json:"periodo"` // 2006-01-02 or 2006-01
	CantidadVentas int             `json:"cantidad_ventas"`
	Total          decimal.Decimal `json:"total"`
}
