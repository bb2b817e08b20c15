package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
	"joyeriapos/internal/money"
	"joyeriapos/internal/repository"
)

// Encolador queues background jobs. A nil Encolador disables them.
type Encolador interface {
	EncolarTicket(ctx context.Context, ventaID int64) error
	EncolarCierre(ctx context.Context, sesionID int64) error
}

type VentaService interface {
	CrearVenta(ctx context.Context, req dto.CrearVentaRequest) (*model.Venta, error)
	EliminarVenta(ctx context.Context, id int64) error
	EliminarTodas(ctx context.Context) (int, error)
	AnularVenta(ctx context.Context, id int64, motivo string) (*model.Venta, error)
	ObtenerVenta(ctx context.Context, id int64) (*model.Venta, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	store  repository.TxRunner
	ventas repository.VentaRepository
	jobs   Encolador
}

func NewVentaService(store repository.TxRunner, ventas repository.VentaRepository, jobs Encolador) VentaService {
	return &ventaService{store: store, ventas: ventas, jobs: jobs}
}

// lineaVenta is a validated order line.
type lineaVenta struct {
	productoID      *int64
	categoriaID     string
	categoriaNombre string
	nombre          string
	cantidad        int
	precio          decimal.Decimal
	precioBruto     *decimal.Decimal
	subtotal        decimal.Decimal
}

// validarItems checks the shape of every line before any stock is touched.
// Quantities are floored; the stored unit price is rounded to cents while the
// line subtotal is rounded once from the raw price.
func validarItems(items []dto.ItemVentaRequest) ([]lineaVenta, error) {
	lineas := make([]lineaVenta, 0, len(items))
	for i, it := range items {
		cantidad := it.Cantidad.Floor()
		if !cantidad.IsPositive() || !cantidad.IsInteger() || cantidad.GreaterThan(decimal.NewFromInt(1_000_000)) {
			return nil, apierror.InvalidItem(i, "cantidad", "la cantidad debe ser un entero positivo")
		}
		precio := money.Round2(it.PrecioUnitario)
		if !precio.IsPositive() {
			return nil, apierror.InvalidItem(i, "precio_unitario", "el precio unitario debe ser mayor a cero")
		}

		l := lineaVenta{
			productoID: it.ProductoID,
			nombre:     strings.TrimSpace(it.Nombre),
			cantidad:   int(cantidad.IntPart()),
			precio:     precio,
			subtotal:   money.Round2(it.PrecioUnitario.Mul(cantidad)),
		}
		if !it.PrecioUnitario.Equal(precio) {
			l.precioBruto = ptr(it.PrecioUnitario)
		}
		if l.productoID == nil {
			nombreCat := strings.Join(strings.Fields(it.CategoriaNombre), " ")
			cat := model.NormalizarCategoria(it.CategoriaID)
			if cat == "" {
				cat = model.NormalizarCategoria(nombreCat)
			}
			if cat == "" {
				return nil, apierror.InvalidItem(i, "categoria_id", "el item debe indicar un producto o una categoria")
			}
			l.categoriaID = cat
			l.categoriaNombre = nombreCat
		}
		lineas = append(lineas, l)
	}
	return lineas, nil
}

// ── CrearVenta ────────────────────────────────────────────────────────────────
//  1. Validate every line (no store access)
//  2. Inside one store transaction: allocate stock line by line on the private
//     copy, build items and salida movements, compute totals, append the sale
//  3. Commit persists productos + ventas + movimientos together
//  4. (async) queue the ticket job

func (s *ventaService) CrearVenta(ctx context.Context, req dto.CrearVentaRequest) (*model.Venta, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validation("items", "la venta debe tener al menos un item")
	}
	lineas, err := validarItems(req.Items)
	if err != nil {
		return nil, err
	}
	metodo := normalizarMetodoPago(req.MetodoPago)

	var venta model.Venta
	err = s.store.Transaction(ctx, func(tx *repository.Tx) error {
		if req.ClienteID != nil && tx.FindCliente(*req.ClienteID) == nil {
			return apierror.Validation("cliente_id", "cliente inexistente")
		}

		id := tx.NextVentaID()
		items := make([]model.VentaItem, 0, len(lineas))
		var movs []model.MovimientoInventario
		subtotales := make([]decimal.Decimal, 0, len(lineas))

		for i, l := range lineas {
			item := model.VentaItem{
				ID:             int64(i + 1),
				VentaID:        id,
				ProductoID:     l.productoID,
				Nombre:         l.nombre,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.precio,
				PrecioBruto:    l.precioBruto,
				Subtotal:       l.subtotal,
			}

			if l.productoID != nil {
				p := tx.FindProducto(*l.productoID)
				if p == nil {
					return apierror.InvalidItem(i, "producto_id", "producto inexistente")
				}
				if err := tx.DescontarStock(p.ID, l.cantidad); err != nil {
					return err
				}
				item.Tipo = model.ItemProducto
				item.CategoriaID = p.CategoriaID
				item.CategoriaNombre = p.Categoria
				if item.Nombre == "" {
					item.Nombre = p.Nombre
				}
				movs = append(movs, salida(id, p.ID, p.CategoriaID, p.Categoria, l.cantidad, tx.Now()))
			} else {
				nombreCat := tx.CategoriaNombre(l.categoriaID)
				if nombreCat == "" {
					nombreCat = l.categoriaNombre
				}
				drawn, err := asignarPorCategoria(tx, l.categoriaID, nombreCat, l.cantidad)
				if err != nil {
					return err
				}
				item.Tipo = model.ItemManual
				item.CategoriaID = l.categoriaID
				item.CategoriaNombre = nombreCat
				if item.Nombre == "" {
					item.Nombre = nombreCat
				}
				for _, d := range drawn {
					movs = append(movs, salida(id, d.productoID, l.categoriaID, nombreCat, d.cantidad, tx.Now()))
				}
			}
			items = append(items, item)
			subtotales = append(subtotales, item.Subtotal)
		}

		subtotal := money.Sum(subtotales...)
		descuento := money.Clamp(money.Round2(req.Descuento), decimal.Zero, subtotal)
		impuesto := decimal.Max(decimal.Zero, money.Round2(req.Impuesto))
		total := money.Round2(subtotal.Sub(descuento).Add(impuesto))

		venta = model.Venta{
			ID:                    id,
			ClienteID:             req.ClienteID,
			Subtotal:              subtotal,
			Descuento:             descuento,
			Impuesto:              impuesto,
			Total:                 total,
			MetodoPago:            metodo,
			Estado:                model.VentaCompletada,
			CreatedAt:             tx.Now(),
			Items:                 items,
			MovimientosInventario: tx.AgregarMovimientosInventario(movs...),
			NivelDescuento:        req.NivelDescuento,
			PorcentajeDescuento:   req.PorcentajeDescuento,
		}
		tx.AgregarVenta(venta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("venta_id", venta.ID).
		Str("total", venta.Total.StringFixed(2)).
		Str("metodo_pago", venta.MetodoPago).
		Int("items", len(venta.Items)).
		Msg("Venta registrada")

	s.encolarTicket(ctx, venta.ID)
	return &venta, nil
}

func (s *ventaService) encolarTicket(ctx context.Context, ventaID int64) {
	if s.jobs == nil {
		return
	}
	// fire & forget: a missing ticket never fails the sale
	if err := s.jobs.EncolarTicket(ctx, ventaID); err != nil {
		log.Warn().Err(err).Int64("venta_id", ventaID).Msg("No se pudo encolar el ticket")
	}
}

func salida(ventaID, productoID int64, categoriaID, categoriaNombre string, cantidad int, at time.Time) model.MovimientoInventario {
	return model.MovimientoInventario{
		VentaID:         ptr(ventaID),
		ProductoID:      ptr(productoID),
		CategoriaID:     categoriaID,
		CategoriaNombre: categoriaNombre,
		Cantidad:        cantidad,
		Tipo:            model.MovimientoSalida,
		CreatedAt:       at,
	}
}

type asignacion struct {
	productoID int64
	cantidad   int
}

// asignarPorCategoria draws qty units from the products of a category,
// largest stock first (ties by id). Fails without touching stock when the
// category as a whole cannot cover qty.
func asignarPorCategoria(tx *repository.Tx, categoriaID, nombre string, qty int) ([]asignacion, error) {
	candidatos := tx.ProductosPorCategoria(categoriaID)
	disponible := 0
	for _, p := range candidatos {
		disponible += p.Stock
	}
	if nombre == "" {
		nombre = categoriaID
	}
	if disponible < qty {
		return nil, apierror.InsufficientStock(nombre, qty, disponible)
	}

	sort.SliceStable(candidatos, func(i, j int) bool {
		if candidatos[i].Stock == candidatos[j].Stock {
			return candidatos[i].ID < candidatos[j].ID
		}
		return candidatos[i].Stock > candidatos[j].Stock
	})

	var out []asignacion
	restante := qty
	for _, p := range candidatos {
		if restante == 0 {
			break
		}
		toma := min(p.Stock, restante)
		if toma == 0 {
			continue
		}
		if err := tx.DescontarStock(p.ID, toma); err != nil {
			return nil, err
		}
		out = append(out, asignacion{productoID: p.ID, cantidad: toma})
		restante -= toma
	}
	return out, nil
}

// ── Stock restoration ─────────────────────────────────────────────────────────

// restaurarStock gives back the stock a sale took and records one entrada per
// product credited. Sales recorded with movements are reversed exactly; older
// sales without movements credit the first product matching each item, which
// is only an approximation of the original draw.
func restaurarStock(tx *repository.Tx, v *model.Venta, motivo string) error {
	var entradas []model.MovimientoInventario
	nota := ptr(motivo)

	var salidas []model.MovimientoInventario
	for _, m := range v.MovimientosInventario {
		if m.Tipo == model.MovimientoSalida && m.ProductoID != nil {
			salidas = append(salidas, m)
		}
	}

	if len(salidas) > 0 {
		for _, m := range salidas {
			if err := tx.IncrementarStock(*m.ProductoID, m.Cantidad); err != nil {
				if apierror.Is(err, apierror.KindNotFound) {
					continue // product deleted since the sale
				}
				return err
			}
			entradas = append(entradas, model.MovimientoInventario{
				VentaID:         ptr(v.ID),
				ProductoID:      m.ProductoID,
				CategoriaID:     m.CategoriaID,
				CategoriaNombre: m.CategoriaNombre,
				Cantidad:        m.Cantidad,
				Tipo:            model.MovimientoEntrada,
				Notas:           nota,
			})
		}
		tx.AgregarMovimientosInventario(entradas...)
		return nil
	}

	for _, item := range v.Items {
		p := primerProducto(tx, item)
		if p == nil {
			log.Warn().Int64("venta_id", v.ID).Str("categoria", item.CategoriaID).
				Msg("Venta sin movimientos: no hay producto donde restaurar el stock")
			continue
		}
		if err := tx.IncrementarStock(p.ID, item.Cantidad); err != nil {
			return err
		}
		log.Warn().Int64("venta_id", v.ID).Int64("producto_id", p.ID).Int("cantidad", item.Cantidad).
			Msg("Venta sin movimientos: restauracion de stock aproximada")
		entradas = append(entradas, model.MovimientoInventario{
			VentaID:         ptr(v.ID),
			ProductoID:      ptr(p.ID),
			CategoriaID:     p.CategoriaID,
			CategoriaNombre: p.Categoria,
			Cantidad:        item.Cantidad,
			Tipo:            model.MovimientoEntrada,
			Notas:           ptr(motivo + " (aproximada)"),
		})
	}
	tx.AgregarMovimientosInventario(entradas...)
	return nil
}

func primerProducto(tx *repository.Tx, item model.VentaItem) *model.Producto {
	if item.ProductoID != nil {
		if p := tx.FindProducto(*item.ProductoID); p != nil {
			return p
		}
	}
	cat := item.CategoriaID
	if cat == "" {
		cat = item.CategoriaNombre
	}
	if candidatos := tx.ProductosPorCategoria(cat); len(candidatos) > 0 {
		return &candidatos[0]
	}
	return nil
}

// ── EliminarVenta / EliminarTodas ─────────────────────────────────────────────
// A cancelled sale already gave its stock back, so deleting it only drops the
// record.

func (s *ventaService) EliminarVenta(ctx context.Context, id int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Tx) error {
		v, err := tx.EliminarVenta(id)
		if err != nil {
			return err
		}
		if v.Estado == model.VentaCancelada {
			return nil
		}
		return restaurarStock(tx, v, "eliminacion de venta")
	})
}

func (s *ventaService) EliminarTodas(ctx context.Context) (int, error) {
	var n int
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		ventas := tx.EliminarVentas()
		n = len(ventas)
		for i := range ventas {
			if ventas[i].Estado == model.VentaCancelada {
				continue
			}
			if err := restaurarStock(tx, &ventas[i], "eliminacion de ventas"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Warn().Int("eliminadas", n).Msg("Historial de ventas eliminado")
	return n, nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────

func (s *ventaService) AnularVenta(ctx context.Context, id int64, motivo string) (*model.Venta, error) {
	var venta model.Venta
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		v := tx.FindVenta(id)
		if v == nil {
			return apierror.NotFound("venta", id)
		}
		if v.Estado == model.VentaCancelada {
			return apierror.Conflict("la venta ya esta anulada")
		}
		if err := restaurarStock(tx, v, "anulacion: "+motivo); err != nil {
			return err
		}
		v.Estado = model.VentaCancelada
		venta = *v
		return tx.ActualizarVenta(*v)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("venta_id", id).Str("motivo", motivo).Msg("Venta anulada")
	return &venta, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, id int64) (*model.Venta, error) {
	return s.ventas.FindVenta(ctx, id)
}

// ListarVentas returns sales newest first, optionally filtered by date range
// and estado, paginated.
func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	var (
		ventas []model.Venta
		err    error
	)
	if filter.Desde != "" || filter.Hasta != "" {
		desde, hasta, perr := parseRango(filter.Desde, filter.Hasta, time.Local, time.Time{}, time.Now().AddDate(100, 0, 0))
		if perr != nil {
			return nil, perr
		}
		ventas, err = s.ventas.VentasEntre(ctx, desde, hasta)
		sort.SliceStable(ventas, func(i, j int) bool { return ventas[i].ID > ventas[j].ID })
	} else {
		ventas, err = s.ventas.ListVentas(ctx)
	}
	if err != nil {
		return nil, err
	}

	if filter.Estado != "" {
		filtradas := ventas[:0]
		for _, v := range ventas {
			if v.Estado == filter.Estado {
				filtradas = append(filtradas, v)
			}
		}
		ventas = filtradas
	}

	total := len(ventas)
	ini := min((filter.Page-1)*filter.Limit, total)
	fin := min(ini+filter.Limit, total)
	page := ventas[ini:fin]
	if page == nil {
		page = []model.Venta{}
	}

	return &dto.VentaListResponse{
		Data:  page,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
