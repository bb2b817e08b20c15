package model

import "time"

const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
	MovimientoAjuste  = "ajuste"
)

// MovimientoInventario is an audit entry for a stock change. Sales record one
// salida per product actually decremented.
type MovimientoInventario struct {
	ID              int64     `json:"id"`
	VentaID         *int64    `json:"venta_id,omitempty"`
	ProductoID      *int64    `json:"producto_id,omitempty"`
	CategoriaID     string    `json:"categoria_id"`
	CategoriaNombre string    `json:"categoria_nombre"`
	Cantidad        int       `json:"cantidad"`
	Tipo            string    `json:"tipo"`
	CreatedAt       time.Time `json:"created_at"`
	Notas           *string   `json:"notas,omitempty"`
}
