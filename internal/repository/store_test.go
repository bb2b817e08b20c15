package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/config"
	"joyeriapos/internal/model"
)

// ── helpers ──────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, docs DocumentStore) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), docs, time.Second, WithClock(func() time.Time { return t0 }))
	require.NoError(t, err)
	return s
}

func seedProductos(t *testing.T, s *Store, productos ...model.Producto) []model.Producto {
	t.Helper()
	var out []model.Producto
	err := s.Transaction(context.Background(), func(tx *Tx) error {
		for _, p := range productos {
			out = append(out, tx.CrearProducto(p))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

// slowDocs blocks SaveAll until the context is done.
type slowDocs struct{ *MemoryDocumentStore }

func (s slowDocs) SaveAll(ctx context.Context, _ map[string][]byte) error {
	<-ctx.Done()
	return ctx.Err()
}

var _ DocumentStore = slowDocs{}

// ── tests ────────────────────────────────────────────────────────────────────

func TestNewStore_EmptyBackend(t *testing.T) {
	s := newTestStore(t, NewMemoryDocumentStore())
	ctx := context.Background()

	productos, err := s.ListProductos(ctx)
	require.NoError(t, err)
	assert.Empty(t, productos)

	ses, err := s.SesionAbierta(ctx)
	require.NoError(t, err)
	assert.Nil(t, ses)
}

func TestNewStore_NormalizesLegacyCategories(t *testing.T) {
	docs := NewMemoryDocumentStore()
	docs.Put(ColeccionProductos, []byte(`[{"id":1,"nombre":"Anillo","precio":"100","stock":2,"categoria":"  ANILLOS  de Oro"}]`))

	s := newTestStore(t, docs)
	p, err := s.FindProducto(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "anillos de oro", p.CategoriaID)

	cats, err := s.Categorias(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Categoria{{ID: "anillos de oro", Nombre: "ANILLOS de Oro"}}, cats)
}

func TestNewStore_MalformedDocument(t *testing.T) {
	docs := NewMemoryDocumentStore()
	docs.Put(ColeccionVentas, []byte(`{not json`))

	_, err := NewStore(context.Background(), docs, time.Second)
	require.Error(t, err)
	assert.Equal(t, apierror.KindPersistenceFailure, apierror.KindOf(err))
}

func TestTransaction_PersistsOnlyDirtyCollections(t *testing.T) {
	docs := NewMemoryDocumentStore()
	s := newTestStore(t, docs)
	seedProductos(t, s, model.Producto{Nombre: "Anillo", Precio: decimal.NewFromInt(100), Stock: 3, Categoria: "Anillos"})

	raw, err := docs.Load(context.Background(), ColeccionProductos)
	require.NoError(t, err)
	var stored []model.Producto
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, int64(1), stored[0].ID)
	assert.Equal(t, "anillos", stored[0].CategoriaID)
	assert.True(t, t0.Equal(stored[0].CreatedAt))

	raw, err = docs.Load(context.Background(), ColeccionVentas)
	require.NoError(t, err)
	assert.Nil(t, raw, "ventas was not touched and must not be written")
}

func TestTransaction_ReadOnlyDoesNotSave(t *testing.T) {
	docs := NewMemoryDocumentStore()
	s := newTestStore(t, docs)

	err := s.Transaction(context.Background(), func(tx *Tx) error {
		assert.Nil(t, tx.FindProducto(1))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, docs.Saves)
}

func TestTransaction_ErrorDiscardsChanges(t *testing.T) {
	s := newTestStore(t, NewMemoryDocumentStore())
	ps := seedProductos(t, s, model.Producto{Nombre: "Anillo", Precio: decimal.NewFromInt(100), Stock: 3, Categoria: "Anillos"})

	boom := errors.New("boom")
	err := s.Transaction(context.Background(), func(tx *Tx) error {
		require.NoError(t, tx.DescontarStock(ps[0].ID, 2))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.FindProducto(context.Background(), ps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestTransaction_PersistenceFailureKeepsLiveState(t *testing.T) {
	docs := NewMemoryDocumentStore()
	s := newTestStore(t, docs)
	ps := seedProductos(t, s, model.Producto{Nombre: "Anillo", Precio: decimal.NewFromInt(100), Stock: 3, Categoria: "Anillos"})

	docs.Err = errors.New("disk full")
	err := s.Transaction(context.Background(), func(tx *Tx) error {
		return tx.DescontarStock(ps[0].ID, 1)
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindPersistenceFailure, apierror.KindOf(err))

	p, _ := s.FindProducto(context.Background(), ps[0].ID)
	assert.Equal(t, 3, p.Stock)
}

func TestTransaction_PersistenceTimeout(t *testing.T) {
	mem := NewMemoryDocumentStore()
	s, err := NewStore(context.Background(), slowDocs{mem}, 20*time.Millisecond)
	require.NoError(t, err)

	err = s.Transaction(context.Background(), func(tx *Tx) error {
		tx.CrearProducto(model.Producto{Nombre: "Dije", Precio: decimal.NewFromInt(10), Categoria: "Dijes"})
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindPersistenceTimeout, apierror.KindOf(err))

	productos, _ := s.ListProductos(context.Background())
	assert.Empty(t, productos)
}

func TestTx_DescontarStockInsufficient(t *testing.T) {
	s := newTestStore(t, NewMemoryDocumentStore())
	ps := seedProductos(t, s, model.Producto{Nombre: "Cadena", Precio: decimal.NewFromInt(50), Stock: 1, Categoria: "Cadenas"})

	err := s.Transaction(context.Background(), func(tx *Tx) error {
		return tx.DescontarStock(ps[0].ID, 2)
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
	assert.Contains(t, err.Error(), "Cadena")
}

func TestTx_CategoriaIndexRebuiltAfterProductChange(t *testing.T) {
	s := newTestStore(t, NewMemoryDocumentStore())
	ps := seedProductos(t, s, model.Producto{Nombre: "Aro", Precio: decimal.NewFromInt(20), Categoria: "aros"})

	err := s.Transaction(context.Background(), func(tx *Tx) error {
		p := *tx.FindProducto(ps[0].ID)
		p.Categoria = "Aros  Finos"
		_, err := tx.ActualizarProducto(p)
		return err
	})
	require.NoError(t, err)

	cats, _ := s.Categorias(context.Background())
	assert.Equal(t, []model.Categoria{{ID: "aros finos", Nombre: "Aros Finos"}}, cats)
}

func TestTx_IDsAreMaxPlusOne(t *testing.T) {
	s := newTestStore(t, NewMemoryDocumentStore())
	err := s.Transaction(context.Background(), func(tx *Tx) error {
		assert.Equal(t, int64(1), tx.NextVentaID())
		tx.AgregarVenta(model.Venta{ID: 7})
		assert.Equal(t, int64(8), tx.NextVentaID())

		movs := tx.AgregarMovimientosInventario(
			model.MovimientoInventario{Tipo: model.MovimientoSalida, Cantidad: 1},
			model.MovimientoInventario{Tipo: model.MovimientoSalida, Cantidad: 2},
		)
		assert.Equal(t, int64(1), movs[0].ID)
		assert.Equal(t, int64(2), movs[1].ID)
		assert.True(t, t0.Equal(movs[1].CreatedAt))
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ReadsAreCopies(t *testing.T) {
	s := newTestStore(t, NewMemoryDocumentStore())
	err := s.Transaction(context.Background(), func(tx *Tx) error {
		tx.AgregarVenta(model.Venta{ID: 1, Items: []model.VentaItem{{Nombre: "Anillo", Cantidad: 1}}})
		return nil
	})
	require.NoError(t, err)

	v, err := s.FindVenta(context.Background(), 1)
	require.NoError(t, err)
	v.Items[0].Cantidad = 99

	again, _ := s.FindVenta(context.Background(), 1)
	assert.Equal(t, 1, again.Items[0].Cantidad)
}

func TestStore_ReloadSeesCommittedState(t *testing.T) {
	docs := NewMemoryDocumentStore()
	s := newTestStore(t, docs)
	seedProductos(t, s, model.Producto{Nombre: "Anillo", Precio: decimal.RequireFromString("1250.50"), Stock: 4, Categoria: "Anillos"})

	reloaded := newTestStore(t, docs)
	p, err := reloaded.FindProducto(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, p.Precio.Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, 4, p.Stock)
}

func TestStore_MovimientosInventarioFilter(t *testing.T) {
	s := newTestStore(t, NewMemoryDocumentStore())
	pid := int64(3)
	err := s.Transaction(context.Background(), func(tx *Tx) error {
		tx.AgregarMovimientosInventario(
			model.MovimientoInventario{ProductoID: &pid, CategoriaID: "anillos", Tipo: model.MovimientoSalida, Cantidad: 1},
			model.MovimientoInventario{CategoriaID: "aros", Tipo: model.MovimientoEntrada, Cantidad: 2},
		)
		return nil
	})
	require.NoError(t, err)

	movs, err := s.MovimientosInventario(context.Background(), FiltroMovimientos{CategoriaID: "ANILLOS"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, pid, *movs[0].ProductoID)

	movs, _ = s.MovimientosInventario(context.Background(), FiltroMovimientos{Tipo: model.MovimientoEntrada})
	require.Len(t, movs, 1)
	assert.Equal(t, 2, movs[0].Cantidad)
}

func demoProducto() model.Producto {
	return model.Producto{
		SKU:       "AN-001",
		Nombre:    "Anillo solitario",
		Precio:    decimal.RequireFromString("1500.00"),
		Stock:     2,
		Categoria: "Anillos",
	}
}

func TestOpenDocumentStore(t *testing.T) {
	docs, err := OpenDocumentStore(&config.Config{StoreDriver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryDocumentStore{}, docs)

	docs, err = OpenDocumentStore(&config.Config{StoreDriver: "file", DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileDocumentStore{}, docs)

	_, err = OpenDocumentStore(&config.Config{StoreDriver: "redis"}, nil)
	assert.Error(t, err)
	_, err = OpenDocumentStore(&config.Config{StoreDriver: "sqlite"}, nil)
	assert.Error(t, err)
}
