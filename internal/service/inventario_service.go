package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
	"joyeriapos/internal/repository"
)

// InventarioService handles stock changes outside of sales. They go through
// the same store transaction as sales so the two never lose each other's
// updates.
type InventarioService interface {
	Ajustar(ctx context.Context, req dto.AjusteInventarioRequest) (*model.MovimientoInventario, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoInventarioFilter) ([]model.MovimientoInventario, error)
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type inventarioService struct {
	store       repository.TxRunner
	productos   repository.ProductoRepository
	movimientos repository.InventarioRepository
}

func NewInventarioService(store repository.TxRunner, productos repository.ProductoRepository, movs repository.InventarioRepository) InventarioService {
	return &inventarioService{store: store, productos: productos, movimientos: movs}
}

// Ajustar applies an entrada (+n), salida (−n) or ajuste (stock = n) and
// records the movement. For ajuste the movement quantity is the absolute
// change; an ajuste that changes nothing records nothing.
func (s *inventarioService) Ajustar(ctx context.Context, req dto.AjusteInventarioRequest) (*model.MovimientoInventario, error) {
	if req.Tipo != model.MovimientoAjuste && req.Cantidad <= 0 {
		return nil, apierror.Validation("cantidad", "la cantidad debe ser mayor a cero")
	}
	if req.Cantidad < 0 {
		return nil, apierror.Validation("cantidad", "el stock no puede ser negativo")
	}

	var mov *model.MovimientoInventario
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		p := tx.FindProducto(req.ProductoID)
		if p == nil {
			return apierror.NotFound("producto", req.ProductoID)
		}

		cantidad := req.Cantidad
		switch req.Tipo {
		case model.MovimientoEntrada:
			if err := tx.IncrementarStock(p.ID, cantidad); err != nil {
				return err
			}
		case model.MovimientoSalida:
			if err := tx.DescontarStock(p.ID, cantidad); err != nil {
				return err
			}
		case model.MovimientoAjuste:
			cantidad = req.Cantidad - p.Stock
			if cantidad < 0 {
				cantidad = -cantidad
			}
			if cantidad == 0 {
				return nil
			}
			if err := tx.FijarStock(p.ID, req.Cantidad); err != nil {
				return err
			}
		default:
			return apierror.Validation("tipo", "tipo de movimiento invalido")
		}

		stored := tx.AgregarMovimientosInventario(model.MovimientoInventario{
			ProductoID:      ptr(p.ID),
			CategoriaID:     p.CategoriaID,
			CategoriaNombre: p.Categoria,
			Cantidad:        cantidad,
			Tipo:            req.Tipo,
			Notas:           req.Notas,
		})
		mov = &stored[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if mov != nil {
		log.Info().Int64("producto_id", req.ProductoID).Str("tipo", req.Tipo).Int("cantidad", mov.Cantidad).Msg("Ajuste de inventario")
	}
	return mov, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoInventarioFilter) ([]model.MovimientoInventario, error) {
	f := repository.FiltroMovimientos{
		ProductoID:  filter.ProductoID,
		CategoriaID: filter.Categoria,
		Tipo:        filter.Tipo,
	}
	if filter.Desde != "" || filter.Hasta != "" {
		desde, hasta, err := parseRango(filter.Desde, filter.Hasta, time.Local, time.Time{}, time.Now().AddDate(100, 0, 0))
		if err != nil {
			return nil, err
		}
		f.Desde, f.Hasta = &desde, &hasta
	}
	movs, err := s.movimientos.MovimientosInventario(ctx, f)
	if err != nil {
		return nil, err
	}
	if movs == nil {
		movs = []model.MovimientoInventario{}
	}
	return movs, nil
}

// Alertas lists active products at or below their minimum stock, most
// urgent first.
func (s *inventarioService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productos.ListProductos(ctx)
	if err != nil {
		return nil, err
	}
	alertas := []dto.AlertaStockResponse{}
	for _, p := range productos {
		if !p.Activo() || p.StockMinimo <= 0 || p.Stock > p.StockMinimo {
			continue
		}
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID,
			Nombre:      p.Nombre,
			Categoria:   p.Categoria,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
			Faltante:    p.StockMinimo - p.Stock,
		})
	}
	sort.SliceStable(alertas, func(i, j int) bool { return alertas[i].Faltante > alertas[j].Faltante })
	return alertas, nil
}
