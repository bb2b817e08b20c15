package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/model"
)

// ProductoRepository is the read side of the catalog.
type ProductoRepository interface {
	ListProductos(ctx context.Context) ([]model.Producto, error)
	FindProducto(ctx context.Context, id int64) (*model.Producto, error)
	ProductosPorCategoria(ctx context.Context, categoriaID string) ([]model.Producto, error)
	Categorias(ctx context.Context) ([]model.Categoria, error)
}

// VentaRepository is the read side of sales.
type VentaRepository interface {
	ListVentas(ctx context.Context) ([]model.Venta, error)
	FindVenta(ctx context.Context, id int64) (*model.Venta, error)
	VentasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
}

// CajaRepository is the read side of the cash register ledger.
type CajaRepository interface {
	ListSesiones(ctx context.Context) ([]model.SesionCaja, error)
	FindSesion(ctx context.Context, id int64) (*model.SesionCaja, error)
	SesionAbierta(ctx context.Context) (*model.SesionCaja, error)
	MovimientosCaja(ctx context.Context, sesionID int64) ([]model.MovimientoCaja, error)
}

// InventarioRepository is the read side of the stock audit trail.
type InventarioRepository interface {
	MovimientosInventario(ctx context.Context, f FiltroMovimientos) ([]model.MovimientoInventario, error)
}

// ClienteRepository is the read side of customers.
type ClienteRepository interface {
	ListClientes(ctx context.Context) ([]model.Cliente, error)
	FindCliente(ctx context.Context, id int64) (*model.Cliente, error)
}

// TxRunner runs fn as one atomic, serialized unit of work.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *Tx) error) error
}

// FiltroMovimientos narrows MovimientosInventario. Zero values match all.
type FiltroMovimientos struct {
	ProductoID  *int64
	CategoriaID string
	Tipo        string
	Desde       *time.Time
	Hasta       *time.Time
}

// estado is an immutable snapshot of every collection. Transactions work on a
// copy and publish a new snapshot on success.
type estado struct {
	productos  []model.Producto
	ventas     []model.Venta
	movInv     []model.MovimientoInventario
	sesiones   []model.SesionCaja
	movCaja    []model.MovimientoCaja
	clientes   []model.Cliente
	categorias model.CategoriaIndex
}

// Store holds the live state in memory and writes through a DocumentStore.
// Transaction is the only writer; readers see the last committed snapshot.
type Store struct {
	docs    DocumentStore
	timeout time.Duration
	now     func() time.Time

	mu  sync.Mutex
	cur atomic.Pointer[estado]
}

var (
	_ ProductoRepository   = (*Store)(nil)
	_ VentaRepository      = (*Store)(nil)
	_ CajaRepository       = (*Store)(nil)
	_ InventarioRepository = (*Store)(nil)
	_ ClienteRepository    = (*Store)(nil)
	_ TxRunner             = (*Store)(nil)
)

// StoreOption customizes NewStore.
type StoreOption func(*Store)

// WithClock overrides time.Now. Used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore loads every collection from docs. A missing collection starts
// empty; a malformed one is an error.
func NewStore(ctx context.Context, docs DocumentStore, timeout time.Duration, opts ...StoreOption) (*Store, error) {
	s := &Store{docs: docs, timeout: timeout, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}

	st := &estado{}
	targets := map[string]any{
		ColeccionProductos:             &st.productos,
		ColeccionVentas:                &st.ventas,
		ColeccionMovimientosInventario: &st.movInv,
		ColeccionSesionesCaja:          &st.sesiones,
		ColeccionMovimientosCaja:       &st.movCaja,
		ColeccionClientes:              &st.clientes,
	}
	for _, col := range Colecciones {
		loadCtx, cancel := context.WithTimeout(ctx, s.timeout)
		data, err := docs.Load(loadCtx, col)
		cancel()
		if err != nil {
			return nil, apierror.Persistence("cargar "+col, err)
		}
		if len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, targets[col]); err != nil {
			return nil, apierror.Persistence("decodificar "+col, err)
		}
	}

	// Older documents may carry products without a normalized category id.
	for i := range st.productos {
		st.productos[i].CategoriaID = model.NormalizarCategoria(st.productos[i].Categoria)
	}
	st.categorias = model.NewCategoriaIndex(st.productos)
	s.cur.Store(st)

	log.Info().
		Int("productos", len(st.productos)).
		Int("ventas", len(st.ventas)).
		Int("sesiones", len(st.sesiones)).
		Msg("Store cargado")
	return s, nil
}

func (s *Store) snapshot() *estado { return s.cur.Load() }

// Ping checks the backing document store.
func (s *Store) Ping(ctx context.Context) error { return s.docs.Ping(ctx) }

// Transaction runs fn against a private copy of the state. If fn succeeds and
// changed anything, the changed collections are persisted under the store
// timeout and the copy becomes the live state. Any error leaves the live state
// untouched. Transactions are serialized.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return apierror.Persistence("iniciar transaccion", err)
	}

	tx := newTx(s.snapshot(), s.now())
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.dirty) == 0 {
		return nil
	}

	payload, err := tx.encode()
	if err != nil {
		return apierror.Persistence("serializar", err)
	}

	saveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.docs.SaveAll(saveCtx, payload); err != nil {
		log.Error().Err(err).Strs("colecciones", tx.dirtyList()).Msg("Error al persistir transaccion")
		return apierror.Persistence("guardar", err)
	}

	next := tx.st
	if tx.catalogoCambio {
		next.categorias = model.NewCategoriaIndex(next.productos)
	}
	s.cur.Store(&next)
	return nil
}

// ── Productos ────────────────────────────────────────────────────────────────

func (s *Store) ListProductos(_ context.Context) ([]model.Producto, error) {
	return append([]model.Producto(nil), s.snapshot().productos...), nil
}

func (s *Store) FindProducto(_ context.Context, id int64) (*model.Producto, error) {
	for _, p := range s.snapshot().productos {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apierror.NotFound("producto", id)
}

func (s *Store) ProductosPorCategoria(_ context.Context, categoriaID string) ([]model.Producto, error) {
	cat := model.NormalizarCategoria(categoriaID)
	var out []model.Producto
	for _, p := range s.snapshot().productos {
		if p.CategoriaID == cat {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) Categorias(_ context.Context) ([]model.Categoria, error) {
	return s.snapshot().categorias.List(), nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

func (s *Store) ListVentas(_ context.Context) ([]model.Venta, error) {
	ventas := s.snapshot().ventas
	out := make([]model.Venta, len(ventas))
	for i := range ventas {
		out[i] = cloneVenta(ventas[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) FindVenta(_ context.Context, id int64) (*model.Venta, error) {
	for _, v := range s.snapshot().ventas {
		if v.ID == id {
			c := cloneVenta(v)
			return &c, nil
		}
	}
	return nil, apierror.NotFound("venta", id)
}

// VentasEntre returns sales with desde <= created_at <= hasta, oldest first.
func (s *Store) VentasEntre(_ context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	return ventasEntre(s.snapshot().ventas, desde, hasta), nil
}

func ventasEntre(ventas []model.Venta, desde, hasta time.Time) []model.Venta {
	var out []model.Venta
	for _, v := range ventas {
		if v.CreatedAt.Before(desde) || v.CreatedAt.After(hasta) {
			continue
		}
		out = append(out, cloneVenta(v))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ── Caja ─────────────────────────────────────────────────────────────────────

// ListSesiones returns all sessions, newest first.
func (s *Store) ListSesiones(_ context.Context) ([]model.SesionCaja, error) {
	out := append([]model.SesionCaja(nil), s.snapshot().sesiones...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) FindSesion(_ context.Context, id int64) (*model.SesionCaja, error) {
	for _, ses := range s.snapshot().sesiones {
		if ses.ID == id {
			return &ses, nil
		}
	}
	return nil, apierror.NotFound("sesion de caja", id)
}

// SesionAbierta returns the open session or nil.
func (s *Store) SesionAbierta(_ context.Context) (*model.SesionCaja, error) {
	return sesionAbierta(s.snapshot().sesiones), nil
}

func sesionAbierta(sesiones []model.SesionCaja) *model.SesionCaja {
	for i := len(sesiones) - 1; i >= 0; i-- {
		if sesiones[i].Estado == model.CajaAbierta {
			ses := sesiones[i]
			return &ses
		}
	}
	return nil
}

func (s *Store) MovimientosCaja(_ context.Context, sesionID int64) ([]model.MovimientoCaja, error) {
	return movimientosCaja(s.snapshot().movCaja, sesionID), nil
}

func movimientosCaja(movs []model.MovimientoCaja, sesionID int64) []model.MovimientoCaja {
	var out []model.MovimientoCaja
	for _, m := range movs {
		if m.SesionID == sesionID {
			out = append(out, m)
		}
	}
	return out
}

// ── Inventario ───────────────────────────────────────────────────────────────

// MovimientosInventario returns matching movements, newest first.
func (s *Store) MovimientosInventario(_ context.Context, f FiltroMovimientos) ([]model.MovimientoInventario, error) {
	cat := model.NormalizarCategoria(f.CategoriaID)
	var out []model.MovimientoInventario
	for _, m := range s.snapshot().movInv {
		if f.ProductoID != nil && (m.ProductoID == nil || *m.ProductoID != *f.ProductoID) {
			continue
		}
		if cat != "" && m.CategoriaID != cat {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		if f.Desde != nil && m.CreatedAt.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && m.CreatedAt.After(*f.Hasta) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ── Clientes ─────────────────────────────────────────────────────────────────

func (s *Store) ListClientes(_ context.Context) ([]model.Cliente, error) {
	return append([]model.Cliente(nil), s.snapshot().clientes...), nil
}

func (s *Store) FindCliente(_ context.Context, id int64) (*model.Cliente, error) {
	for _, c := range s.snapshot().clientes {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apierror.NotFound("cliente", id)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func cloneVenta(v model.Venta) model.Venta {
	v.Items = append([]model.VentaItem(nil), v.Items...)
	v.MovimientosInventario = append([]model.MovimientoInventario(nil), v.MovimientosInventario...)
	return v
}

func encodeColeccion(col string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return data, nil
}
