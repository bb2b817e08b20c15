package repository

import (
	"sort"
	"strings"
	"time"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/model"
)

// Tx is a unit of work over a private copy of the state. Collections are
// copied on first write, so a Tx that only reads never allocates. Nothing a
// Tx does is visible outside it until Store.Transaction commits.
type Tx struct {
	st             estado
	now            time.Time
	copied         map[string]bool
	dirty          map[string]bool
	catalogoCambio bool
}

func newTx(base *estado, now time.Time) *Tx {
	return &Tx{
		st:     *base,
		now:    now,
		copied: make(map[string]bool),
		dirty:  make(map[string]bool),
	}
}

// Now is the timestamp every record written by this Tx carries.
func (tx *Tx) Now() time.Time { return tx.now }

// write copies col on first use and marks it for persistence.
func (tx *Tx) write(col string) {
	tx.dirty[col] = true
	if tx.copied[col] {
		return
	}
	tx.copied[col] = true
	switch col {
	case ColeccionProductos:
		tx.st.productos = append([]model.Producto(nil), tx.st.productos...)
	case ColeccionVentas:
		ventas := make([]model.Venta, len(tx.st.ventas))
		for i := range tx.st.ventas {
			ventas[i] = cloneVenta(tx.st.ventas[i])
		}
		tx.st.ventas = ventas
	case ColeccionMovimientosInventario:
		tx.st.movInv = append([]model.MovimientoInventario(nil), tx.st.movInv...)
	case ColeccionSesionesCaja:
		tx.st.sesiones = append([]model.SesionCaja(nil), tx.st.sesiones...)
	case ColeccionMovimientosCaja:
		tx.st.movCaja = append([]model.MovimientoCaja(nil), tx.st.movCaja...)
	case ColeccionClientes:
		tx.st.clientes = append([]model.Cliente(nil), tx.st.clientes...)
	}
}

func (tx *Tx) dirtyList() []string {
	out := make([]string, 0, len(tx.dirty))
	for col := range tx.dirty {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}

func (tx *Tx) encode() (map[string][]byte, error) {
	payload := make(map[string][]byte, len(tx.dirty))
	for col := range tx.dirty {
		var v any
		switch col {
		case ColeccionProductos:
			v = nonNil(tx.st.productos)
		case ColeccionVentas:
			v = nonNil(tx.st.ventas)
		case ColeccionMovimientosInventario:
			v = nonNil(tx.st.movInv)
		case ColeccionSesionesCaja:
			v = nonNil(tx.st.sesiones)
		case ColeccionMovimientosCaja:
			v = nonNil(tx.st.movCaja)
		case ColeccionClientes:
			v = nonNil(tx.st.clientes)
		}
		data, err := encodeColeccion(col, v)
		if err != nil {
			return nil, err
		}
		payload[col] = data
	}
	return payload, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ── Productos ────────────────────────────────────────────────────────────────

func (tx *Tx) productoIndex(id int64) int {
	for i := range tx.st.productos {
		if tx.st.productos[i].ID == id {
			return i
		}
	}
	return -1
}

// FindProducto returns a copy of the product, or nil.
func (tx *Tx) FindProducto(id int64) *model.Producto {
	i := tx.productoIndex(id)
	if i < 0 {
		return nil
	}
	p := tx.st.productos[i]
	return &p
}

// FindProductoPorSKU matches case-insensitively. Returns nil for a blank sku.
func (tx *Tx) FindProductoPorSKU(sku string) *model.Producto {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil
	}
	for _, p := range tx.st.productos {
		if strings.EqualFold(p.SKU, sku) {
			return &p
		}
	}
	return nil
}

// ProductosPorCategoria returns copies of the products whose normalized
// category equals categoriaID, in catalog order.
func (tx *Tx) ProductosPorCategoria(categoriaID string) []model.Producto {
	cat := model.NormalizarCategoria(categoriaID)
	if cat == "" {
		return nil
	}
	var out []model.Producto
	for _, p := range tx.st.productos {
		if p.CategoriaID == cat {
			out = append(out, p)
		}
	}
	return out
}

// CategoriaNombre returns the canonical display name for a category id.
func (tx *Tx) CategoriaNombre(categoriaID string) string {
	return tx.st.categorias.Nombre(model.NormalizarCategoria(categoriaID))
}

// DescontarStock decrements stock by qty. qty larger than the stock fails
// with InsufficientStock naming the product and changes nothing.
func (tx *Tx) DescontarStock(id int64, qty int) error {
	i := tx.productoIndex(id)
	if i < 0 {
		return apierror.NotFound("producto", id)
	}
	p := tx.st.productos[i]
	if qty > p.Stock {
		return apierror.InsufficientStock(p.Nombre, qty, p.Stock)
	}
	tx.write(ColeccionProductos)
	tx.st.productos[i].Stock -= qty
	tx.st.productos[i].UpdatedAt = tx.now
	return nil
}

// IncrementarStock adds qty units to a product.
func (tx *Tx) IncrementarStock(id int64, qty int) error {
	i := tx.productoIndex(id)
	if i < 0 {
		return apierror.NotFound("producto", id)
	}
	tx.write(ColeccionProductos)
	tx.st.productos[i].Stock += qty
	tx.st.productos[i].UpdatedAt = tx.now
	return nil
}

// FijarStock sets an absolute stock level.
func (tx *Tx) FijarStock(id int64, stock int) error {
	i := tx.productoIndex(id)
	if i < 0 {
		return apierror.NotFound("producto", id)
	}
	tx.write(ColeccionProductos)
	tx.st.productos[i].Stock = stock
	tx.st.productos[i].UpdatedAt = tx.now
	return nil
}

// CrearProducto assigns the next id, normalizes the category and stamps the
// timestamps. The stored product is returned.
func (tx *Tx) CrearProducto(p model.Producto) model.Producto {
	var max int64
	for _, q := range tx.st.productos {
		if q.ID > max {
			max = q.ID
		}
	}
	p.ID = max + 1
	p.Categoria = strings.Join(strings.Fields(p.Categoria), " ")
	p.CategoriaID = model.NormalizarCategoria(p.Categoria)
	if p.Estado == "" {
		p.Estado = model.ProductoActivo
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now

	tx.write(ColeccionProductos)
	tx.st.productos = append(tx.st.productos, p)
	tx.catalogoCambio = true
	return p
}

// ActualizarProducto replaces the stored product with the same id. CreatedAt
// is preserved.
func (tx *Tx) ActualizarProducto(p model.Producto) (model.Producto, error) {
	i := tx.productoIndex(p.ID)
	if i < 0 {
		return model.Producto{}, apierror.NotFound("producto", p.ID)
	}
	p.Categoria = strings.Join(strings.Fields(p.Categoria), " ")
	p.CategoriaID = model.NormalizarCategoria(p.Categoria)
	p.CreatedAt = tx.st.productos[i].CreatedAt
	p.UpdatedAt = tx.now

	tx.write(ColeccionProductos)
	tx.st.productos[i] = p
	tx.catalogoCambio = true
	return p, nil
}

// EliminarProducto removes a product. Sales and movements that reference it
// keep their copy of the name and category.
func (tx *Tx) EliminarProducto(id int64) error {
	i := tx.productoIndex(id)
	if i < 0 {
		return apierror.NotFound("producto", id)
	}
	tx.write(ColeccionProductos)
	tx.st.productos = append(tx.st.productos[:i], tx.st.productos[i+1:]...)
	tx.catalogoCambio = true
	return nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

func (tx *Tx) ventaIndex(id int64) int {
	for i := range tx.st.ventas {
		if tx.st.ventas[i].ID == id {
			return i
		}
	}
	return -1
}

// NextVentaID returns max(existing ids)+1, or 1 for an empty collection.
func (tx *Tx) NextVentaID() int64 {
	var max int64
	for _, v := range tx.st.ventas {
		if v.ID > max {
			max = v.ID
		}
	}
	return max + 1
}

// FindVenta returns a copy of the sale, or nil.
func (tx *Tx) FindVenta(id int64) *model.Venta {
	i := tx.ventaIndex(id)
	if i < 0 {
		return nil
	}
	v := cloneVenta(tx.st.ventas[i])
	return &v
}

// Ventas returns copies of every sale.
func (tx *Tx) Ventas() []model.Venta {
	out := make([]model.Venta, len(tx.st.ventas))
	for i := range tx.st.ventas {
		out[i] = cloneVenta(tx.st.ventas[i])
	}
	return out
}

// VentasEntre returns sales created in [desde, hasta], oldest first.
func (tx *Tx) VentasEntre(desde, hasta time.Time) []model.Venta {
	return ventasEntre(tx.st.ventas, desde, hasta)
}

func (tx *Tx) AgregarVenta(v model.Venta) {
	tx.write(ColeccionVentas)
	tx.st.ventas = append(tx.st.ventas, cloneVenta(v))
}

// ActualizarVenta replaces the stored sale with the same id.
func (tx *Tx) ActualizarVenta(v model.Venta) error {
	i := tx.ventaIndex(v.ID)
	if i < 0 {
		return apierror.NotFound("venta", v.ID)
	}
	tx.write(ColeccionVentas)
	tx.st.ventas[i] = cloneVenta(v)
	return nil
}

// EliminarVenta removes the sale and returns it.
func (tx *Tx) EliminarVenta(id int64) (*model.Venta, error) {
	i := tx.ventaIndex(id)
	if i < 0 {
		return nil, apierror.NotFound("venta", id)
	}
	tx.write(ColeccionVentas)
	v := tx.st.ventas[i]
	tx.st.ventas = append(tx.st.ventas[:i], tx.st.ventas[i+1:]...)
	return &v, nil
}

// EliminarVentas removes every sale and returns them.
func (tx *Tx) EliminarVentas() []model.Venta {
	if len(tx.st.ventas) == 0 {
		return nil
	}
	tx.write(ColeccionVentas)
	out := tx.st.ventas
	tx.st.ventas = nil
	return out
}

// ── Movimientos de inventario ────────────────────────────────────────────────

// AgregarMovimientosInventario appends movements to the audit collection,
// assigning ids and, when unset, the Tx timestamp. The stored copies are
// returned in input order.
func (tx *Tx) AgregarMovimientosInventario(movs ...model.MovimientoInventario) []model.MovimientoInventario {
	if len(movs) == 0 {
		return nil
	}
	var max int64
	for _, m := range tx.st.movInv {
		if m.ID > max {
			max = m.ID
		}
	}
	tx.write(ColeccionMovimientosInventario)
	out := make([]model.MovimientoInventario, len(movs))
	for i, m := range movs {
		max++
		m.ID = max
		if m.CreatedAt.IsZero() {
			m.CreatedAt = tx.now
		}
		out[i] = m
	}
	tx.st.movInv = append(tx.st.movInv, out...)
	return out
}

// ── Caja ─────────────────────────────────────────────────────────────────────

// SesionAbierta returns a copy of the open session, or nil.
func (tx *Tx) SesionAbierta() *model.SesionCaja {
	return sesionAbierta(tx.st.sesiones)
}

func (tx *Tx) FindSesion(id int64) *model.SesionCaja {
	for _, ses := range tx.st.sesiones {
		if ses.ID == id {
			return &ses
		}
	}
	return nil
}

// AgregarSesion assigns the next id and appends the session.
func (tx *Tx) AgregarSesion(ses model.SesionCaja) model.SesionCaja {
	var max int64
	for _, s := range tx.st.sesiones {
		if s.ID > max {
			max = s.ID
		}
	}
	ses.ID = max + 1
	tx.write(ColeccionSesionesCaja)
	tx.st.sesiones = append(tx.st.sesiones, ses)
	return ses
}

// ActualizarSesion replaces the stored session with the same id.
func (tx *Tx) ActualizarSesion(ses model.SesionCaja) error {
	for i := range tx.st.sesiones {
		if tx.st.sesiones[i].ID == ses.ID {
			tx.write(ColeccionSesionesCaja)
			tx.st.sesiones[i] = ses
			return nil
		}
	}
	return apierror.NotFound("sesion de caja", ses.ID)
}

// MovimientosCaja returns the movements of one session in insertion order.
func (tx *Tx) MovimientosCaja(sesionID int64) []model.MovimientoCaja {
	return movimientosCaja(tx.st.movCaja, sesionID)
}

// AgregarMovimientoCaja appends a ledger entry. Entries are never updated.
func (tx *Tx) AgregarMovimientoCaja(m model.MovimientoCaja) model.MovimientoCaja {
	var max int64
	for _, x := range tx.st.movCaja {
		if x.ID > max {
			max = x.ID
		}
	}
	m.ID = max + 1
	if m.Fecha.IsZero() {
		m.Fecha = tx.now
	}
	tx.write(ColeccionMovimientosCaja)
	tx.st.movCaja = append(tx.st.movCaja, m)
	return m
}

// ── Clientes ─────────────────────────────────────────────────────────────────

func (tx *Tx) FindCliente(id int64) *model.Cliente {
	for _, c := range tx.st.clientes {
		if c.ID == id {
			return &c
		}
	}
	return nil
}

// GuardarCliente inserts c, or replaces the customer with the same id. A zero
// id gets the next one.
func (tx *Tx) GuardarCliente(c model.Cliente) model.Cliente {
	tx.write(ColeccionClientes)
	var max int64
	for i := range tx.st.clientes {
		if c.ID != 0 && tx.st.clientes[i].ID == c.ID {
			tx.st.clientes[i] = c
			return c
		}
		if tx.st.clientes[i].ID > max {
			max = tx.st.clientes[i].ID
		}
	}
	if c.ID == 0 {
		c.ID = max + 1
	}
	tx.st.clientes = append(tx.st.clientes, c)
	return c
}
