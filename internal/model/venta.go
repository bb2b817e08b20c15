package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MetodoEfectivo      = "Efectivo"
	MetodoTarjeta       = "Tarjeta"
	MetodoTransferencia = "Transferencia"
)

const (
	VentaCompletada = "Completada"
	VentaCancelada  = "Cancelada"
	VentaPendiente  = "Pendiente"
)

const (
	ItemProducto = "producto"
	ItemManual   = "manual"
)

// Venta is a persisted sale. ID, items and totals are immutable once created;
// only Estado changes (anulación).
type Venta struct {
	ID                    int64                  `json:"id"`
	ClienteID             *int64                 `json:"cliente_id,omitempty"`
	Subtotal              decimal.Decimal        `json:"subtotal"`
	Descuento             decimal.Decimal        `json:"descuento"`
	Impuesto              decimal.Decimal        `json:"impuesto"`
	Total                 decimal.Decimal        `json:"total"`
	MetodoPago            string                 `json:"metodo_pago"`
	Estado                string                 `json:"estado"`
	CreatedAt             time.Time              `json:"created_at"`
	Items                 []VentaItem            `json:"items"`
	MovimientosInventario []MovimientoInventario `json:"movimientos_inventario"`
	NivelDescuento        *string                `json:"nivel_descuento,omitempty"`
	PorcentajeDescuento   *decimal.Decimal       `json:"porcentaje_descuento,omitempty"`
}

// VentaItem is one sale line. ProductoID is nil for category-level lines,
// whose stock may have been drawn from several products.
//
// PrecioUnitario is rounded to cents but Subtotal is rounded once from the
// price as entered, so 3 x 10.005 stores 10.01 and 30.02. When the two prices
// differ the entered one is kept in PrecioBruto, and
// Subtotal = round2((PrecioBruto or PrecioUnitario) x Cantidad) always holds.
type VentaItem struct {
	ID              int64            `json:"id"`
	VentaID         int64            `json:"venta_id"`
	ProductoID      *int64           `json:"producto_id,omitempty"`
	CategoriaID     string           `json:"categoria_id"`
	CategoriaNombre string           `json:"categoria_nombre"`
	Nombre          string           `json:"nombre"`
	Cantidad        int              `json:"cantidad"`
	PrecioUnitario  decimal.Decimal  `json:"precio_unitario"`
	PrecioBruto     *decimal.Decimal `json:"precio_bruto,omitempty"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Tipo            string           `json:"tipo"`
}
