package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/model"
	"joyeriapos/internal/repository"
)

// ── Clock ─────────────────────────────────────────────────────────────────────

type reloj struct{ t time.Time }

func (r *reloj) now() time.Time          { return r.t }
func (r *reloj) avanzar(d time.Duration) { r.t = r.t.Add(d) }

func nuevoReloj() *reloj {
	return &reloj{t: time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)}
}

// ── Store ─────────────────────────────────────────────────────────────────────

type entorno struct {
	docs  *repository.MemoryDocumentStore
	store *repository.Store
	reloj *reloj
	jobs  *stubEncolador
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	return entornoCon(t, repository.NewMemoryDocumentStore())
}

// entornoCon opens a store over docs, which may carry pre-seeded documents.
func entornoCon(t *testing.T, docs *repository.MemoryDocumentStore) *entorno {
	t.Helper()
	clk := nuevoReloj()
	s, err := repository.NewStore(context.Background(), docs, time.Second, repository.WithClock(clk.now))
	require.NoError(t, err)
	return &entorno{docs: docs, store: s, reloj: clk, jobs: &stubEncolador{}}
}

func (e *entorno) ventas() *ventaService {
	return NewVentaService(e.store, e.store, e.jobs).(*ventaService)
}

func (e *entorno) caja() *cajaService {
	s := NewCajaService(e.store, e.store, e.store, e.jobs).(*cajaService)
	s.now = e.reloj.now
	return s
}

func (e *entorno) producto(t *testing.T, p model.Producto) model.Producto {
	t.Helper()
	var out model.Producto
	require.NoError(t, e.store.Transaction(context.Background(), func(tx *repository.Tx) error {
		out = tx.CrearProducto(p)
		return nil
	}))
	return out
}

func (e *entorno) cliente(t *testing.T, c model.Cliente) model.Cliente {
	t.Helper()
	var out model.Cliente
	require.NoError(t, e.store.Transaction(context.Background(), func(tx *repository.Tx) error {
		out = tx.GuardarCliente(c)
		return nil
	}))
	return out
}

func (e *entorno) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := e.store.FindProducto(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func anillo(nombre string, stock int) model.Producto {
	return model.Producto{
		Nombre:    nombre,
		Precio:    decimal.NewFromInt(100),
		Stock:     stock,
		Categoria: "Anillos",
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireKind(t *testing.T, err error, kind apierror.Kind) *apierror.Error {
	t.Helper()
	require.Error(t, err)
	var e *apierror.Error
	require.True(t, errors.As(err, &e), "expected *apierror.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, e.Error())
	return e
}

// ── Encolador stub ────────────────────────────────────────────────────────────

type stubEncolador struct {
	mu      sync.Mutex
	tickets []int64
	cierres []int64
	err     error
}

var _ Encolador = (*stubEncolador)(nil)

func (s *stubEncolador) EncolarTicket(_ context.Context, ventaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tickets = append(s.tickets, ventaID)
	return nil
}

func (s *stubEncolador) EncolarCierre(_ context.Context, sesionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.cierres = append(s.cierres, sesionID)
	return nil
}
