package repository

import "context"

// Collection names. Each one is persisted as a single JSON array, written
// wholesale on every mutation.
const (
	ColeccionProductos             = "productos"
	ColeccionVentas                = "ventas"
	ColeccionMovimientosInventario = "movimientos_inventario"
	ColeccionSesionesCaja          = "sesiones_caja"
	ColeccionMovimientosCaja       = "movimientos_caja"
	ColeccionClientes              = "clientes"
)

// Colecciones lists every collection in load order.
var Colecciones = []string{
	ColeccionProductos,
	ColeccionVentas,
	ColeccionMovimientosInventario,
	ColeccionSesionesCaja,
	ColeccionMovimientosCaja,
	ColeccionClientes,
}

// DocumentStore is the durable backend: one JSON document per collection.
// Load returns nil, nil for a collection that was never saved. SaveAll must
// write all documents or none.
type DocumentStore interface {
	Load(ctx context.Context, coleccion string) ([]byte, error)
	SaveAll(ctx context.Context, docs map[string][]byte) error
	Ping(ctx context.Context) error
}
