package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
	"joyeriapos/internal/money"
	"joyeriapos/internal/repository"
)

// ReporteService aggregates sales for the reports screen. Read-only.
// Cancelled sales are counted apart and never add to totals.
type ReporteService interface {
	Resumen(ctx context.Context, filter dto.ReporteFilter) (*dto.ResumenResponse, error)
	TopProductos(ctx context.Context, filter dto.ReporteFilter) ([]dto.TopProductoResponse, error)
	TopClientes(ctx context.Context, filter dto.ReporteFilter) ([]dto.TopClienteResponse, error)
	Serie(ctx context.Context, filter dto.ReporteFilter) ([]dto.SeriePunto, error)
	ExportarCSV(ctx context.Context, filter dto.ReporteFilter, w io.Writer) error
}

type reporteService struct {
	ventas   repository.VentaRepository
	clientes repository.ClienteRepository
	now      func() time.Time
}

func NewReporteService(ventas repository.VentaRepository, clientes repository.ClienteRepository) ReporteService {
	return &reporteService{ventas: ventas, clientes: clientes, now: time.Now}
}

// rango defaults to the last 30 days, today included.
func (s *reporteService) rango(filter dto.ReporteFilter) (time.Time, time.Time, error) {
	now := s.now()
	hoy := inicioDelDia(now)
	return parseRango(filter.Desde, filter.Hasta, now.Location(), hoy.AddDate(0, 0, -29), hoy.AddDate(0, 0, 1).Add(-time.Nanosecond))
}

// ventasDelRango splits the sales in range into valid and cancelled.
func (s *reporteService) ventasDelRango(ctx context.Context, filter dto.ReporteFilter) (validas []model.Venta, anuladas int, desde, hasta time.Time, err error) {
	desde, hasta, err = s.rango(filter)
	if err != nil {
		return nil, 0, desde, hasta, err
	}
	todas, err := s.ventas.VentasEntre(ctx, desde, hasta)
	if err != nil {
		return nil, 0, desde, hasta, err
	}
	for _, v := range todas {
		if v.Estado == model.VentaCancelada {
			anuladas++
			continue
		}
		validas = append(validas, v)
	}
	return validas, anuladas, desde, hasta, nil
}

func (s *reporteService) Resumen(ctx context.Context, filter dto.ReporteFilter) (*dto.ResumenResponse, error) {
	ventas, anuladas, desde, hasta, err := s.ventasDelRango(ctx, filter)
	if err != nil {
		return nil, err
	}

	r := &dto.ResumenResponse{
		Desde:    desde.Format(layoutFecha),
		Hasta:    hasta.Format(layoutFecha),
		Anuladas: anuladas,
		PorMetodo: map[string]decimal.Decimal{
			model.MetodoEfectivo:      decimal.Zero,
			model.MetodoTarjeta:       decimal.Zero,
			model.MetodoTransferencia: decimal.Zero,
		},
	}
	for _, v := range ventas {
		r.CantidadVentas++
		r.Subtotal = money.Round2(r.Subtotal.Add(v.Subtotal))
		r.Descuentos = money.Round2(r.Descuentos.Add(v.Descuento))
		r.Impuestos = money.Round2(r.Impuestos.Add(v.Impuesto))
		r.Total = money.Round2(r.Total.Add(v.Total))
		metodo := normalizarMetodoPago(v.MetodoPago)
		r.PorMetodo[metodo] = money.Round2(r.PorMetodo[metodo].Add(v.Total))
		for _, it := range v.Items {
			r.Unidades += it.Cantidad
		}
	}
	if r.CantidadVentas > 0 {
		r.TicketPromedio = r.Total.DivRound(decimal.NewFromInt(int64(r.CantidadVentas)), 2)
	}
	return r, nil
}

// TopProductos ranks sold lines by units. Lines sold by category are grouped
// under the category.
func (s *reporteService) TopProductos(ctx context.Context, filter dto.ReporteFilter) ([]dto.TopProductoResponse, error) {
	ventas, _, _, _, err := s.ventasDelRango(ctx, filter)
	if err != nil {
		return nil, err
	}

	grupos := map[string]*dto.TopProductoResponse{}
	var orden []string
	for _, v := range ventas {
		for _, it := range v.Items {
			key := "c:" + it.CategoriaID
			if it.ProductoID != nil {
				key = "p:" + strconv.FormatInt(*it.ProductoID, 10)
			}
			g, ok := grupos[key]
			if !ok {
				g = &dto.TopProductoResponse{ProductoID: it.ProductoID, Nombre: it.Nombre, Categoria: it.CategoriaNombre}
				grupos[key] = g
				orden = append(orden, key)
			}
			g.Unidades += it.Cantidad
			g.Total = money.Round2(g.Total.Add(it.Subtotal))
		}
	}

	out := make([]dto.TopProductoResponse, 0, len(orden))
	for _, k := range orden {
		out = append(out, *grupos[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Unidades == out[j].Unidades {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Unidades > out[j].Unidades
	})
	return limitar(out, filter.Limite), nil
}

func (s *reporteService) TopClientes(ctx context.Context, filter dto.ReporteFilter) ([]dto.TopClienteResponse, error) {
	ventas, _, _, _, err := s.ventasDelRango(ctx, filter)
	if err != nil {
		return nil, err
	}
	clientes, err := s.clientes.ListClientes(ctx)
	if err != nil {
		return nil, err
	}
	nombres := make(map[int64]string, len(clientes))
	for _, c := range clientes {
		nombres[c.ID] = c.Nombre
	}

	grupos := map[int64]*dto.TopClienteResponse{}
	var orden []int64
	for _, v := range ventas {
		if v.ClienteID == nil {
			continue
		}
		id := *v.ClienteID
		g, ok := grupos[id]
		if !ok {
			nombre := nombres[id]
			if nombre == "" {
				nombre = fmt.Sprintf("Cliente #%d", id)
			}
			g = &dto.TopClienteResponse{ClienteID: id, Nombre: nombre}
			grupos[id] = g
			orden = append(orden, id)
		}
		g.CantidadVentas++
		g.Total = money.Round2(g.Total.Add(v.Total))
	}

	out := make([]dto.TopClienteResponse, 0, len(orden))
	for _, id := range orden {
		out = append(out, *grupos[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return limitar(out, filter.Limite), nil
}

// Serie returns one point per day or month in the range, zero-filled.
func (s *reporteService) Serie(ctx context.Context, filter dto.ReporteFilter) ([]dto.SeriePunto, error) {
	ventas, _, desde, hasta, err := s.ventasDelRango(ctx, filter)
	if err != nil {
		return nil, err
	}

	layout, paso := layoutFecha, func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	inicio := inicioDelDia(desde)
	if filter.Periodo == "mes" {
		layout, paso = "2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
		inicio = time.Date(desde.Year(), desde.Month(), 1, 0, 0, 0, 0, desde.Location())
	}

	idx := map[string]int{}
	var out []dto.SeriePunto
	for t := inicio; !t.After(hasta); t = paso(t) {
		k := t.Format(layout)
		idx[k] = len(out)
		out = append(out, dto.SeriePunto{Periodo: k})
	}
	for _, v := range ventas {
		i, ok := idx[v.CreatedAt.In(desde.Location()).Format(layout)]
		if !ok {
			continue
		}
		out[i].CantidadVentas++
		out[i].Total = money.Round2(out[i].Total.Add(v.Total))
	}
	return out, nil
}

// ExportarCSV writes one row per sale in the range, cancelled ones included.
func (s *reporteService) ExportarCSV(ctx context.Context, filter dto.ReporteFilter, w io.Writer) error {
	desde, hasta, err := s.rango(filter)
	if err != nil {
		return err
	}
	ventas, err := s.ventas.VentasEntre(ctx, desde, hasta)
	if err != nil {
		return err
	}
	clientes, err := s.clientes.ListClientes(ctx)
	if err != nil {
		return err
	}
	nombres := make(map[int64]string, len(clientes))
	for _, c := range clientes {
		nombres[c.ID] = c.Nombre
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "fecha", "cliente", "metodo_pago", "estado", "unidades", "subtotal", "descuento", "impuesto", "total"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, v := range ventas {
		cliente := ""
		if v.ClienteID != nil {
			cliente = nombres[*v.ClienteID]
		}
		unidades := 0
		for _, it := range v.Items {
			unidades += it.Cantidad
		}
		row := []string{
			strconv.FormatInt(v.ID, 10),
			v.CreatedAt.Format(time.RFC3339),
			cliente,
			v.MetodoPago,
			v.Estado,
			strconv.Itoa(unidades),
			v.Subtotal.StringFixed(2),
			v.Descuento.StringFixed(2),
			v.Impuesto.StringFixed(2),
			v.Total.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func limitar[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
