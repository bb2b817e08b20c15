package service

import (
	"context"
	"sort"
	"strings"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
	"joyeriapos/internal/money"
	"joyeriapos/internal/repository"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.ProductoRequest) (*model.Producto, error)
	Actualizar(ctx context.Context, id int64, req dto.ProductoRequest) (*model.Producto, error)
	Eliminar(ctx context.Context, id int64) error
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error)
	ObtenerPorID(ctx context.Context, id int64) (*model.Producto, error)
	Categorias(ctx context.Context) ([]model.Categoria, error)
}

type productoService struct {
	store repository.TxRunner
	repo  repository.ProductoRepository
}

func NewProductoService(store repository.TxRunner, repo repository.ProductoRepository) ProductoService {
	return &productoService{store: store, repo: repo}
}

func validarProducto(req dto.ProductoRequest) error {
	if strings.TrimSpace(req.Nombre) == "" {
		return apierror.Validation("nombre", "el nombre es obligatorio")
	}
	if model.NormalizarCategoria(req.Categoria) == "" {
		return apierror.Validation("categoria", "la categoria es obligatoria")
	}
	if req.Precio.IsNegative() {
		return apierror.Validation("precio", "el precio no puede ser negativo")
	}
	if req.Stock < 0 {
		return apierror.Validation("stock", "el stock no puede ser negativo")
	}
	return nil
}

func (s *productoService) Crear(ctx context.Context, req dto.ProductoRequest) (*model.Producto, error) {
	if err := validarProducto(req); err != nil {
		return nil, err
	}
	var creado model.Producto
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		sku := strings.TrimSpace(req.SKU)
		if sku != "" && tx.FindProductoPorSKU(sku) != nil {
			return apierror.Conflict("ya existe un producto con ese SKU").With("sku", sku)
		}
		creado = tx.CrearProducto(model.Producto{
			SKU:         sku,
			Nombre:      strings.TrimSpace(req.Nombre),
			Precio:      money.Round2(req.Precio),
			Stock:       req.Stock,
			StockMinimo: req.StockMinimo,
			Categoria:   req.Categoria,
			Estado:      req.Estado,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &creado, nil
}

// Actualizar replaces every editable field, stock included. Stock edits here
// leave no movement; use InventarioService.Ajustar for audited changes.
func (s *productoService) Actualizar(ctx context.Context, id int64, req dto.ProductoRequest) (*model.Producto, error) {
	if err := validarProducto(req); err != nil {
		return nil, err
	}
	var actualizado model.Producto
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		actual := tx.FindProducto(id)
		if actual == nil {
			return apierror.NotFound("producto", id)
		}
		sku := strings.TrimSpace(req.SKU)
		if otro := tx.FindProductoPorSKU(sku); sku != "" && otro != nil && otro.ID != id {
			return apierror.Conflict("ya existe un producto con ese SKU").With("sku", sku)
		}
		estado := req.Estado
		if estado == "" {
			estado = actual.Estado
		}
		var err error
		actualizado, err = tx.ActualizarProducto(model.Producto{
			ID:          id,
			SKU:         sku,
			Nombre:      strings.TrimSpace(req.Nombre),
			Precio:      money.Round2(req.Precio),
			Stock:       req.Stock,
			StockMinimo: req.StockMinimo,
			Categoria:   req.Categoria,
			Estado:      estado,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &actualizado, nil
}

func (s *productoService) Eliminar(ctx context.Context, id int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Tx) error {
		return tx.EliminarProducto(id)
	})
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error) {
	var (
		productos []model.Producto
		err       error
	)
	if filter.Categoria != "" {
		productos, err = s.repo.ProductosPorCategoria(ctx, filter.Categoria)
	} else {
		productos, err = s.repo.ListProductos(ctx)
	}
	if err != nil {
		return nil, err
	}

	buscar := model.NormalizarCategoria(filter.Nombre)
	out := make([]model.Producto, 0, len(productos))
	for _, p := range productos {
		if filter.SoloActivos && !p.Activo() {
			continue
		}
		if buscar != "" &&
			!strings.Contains(model.NormalizarCategoria(p.Nombre), buscar) &&
			!strings.EqualFold(p.SKU, filter.Nombre) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id int64) (*model.Producto, error) {
	return s.repo.FindProducto(ctx, id)
}

func (s *productoService) Categorias(ctx context.Context) ([]model.Categoria, error) {
	return s.repo.Categorias(ctx)
}
