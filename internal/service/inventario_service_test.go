package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
)

func (e *entorno) inventario() InventarioService {
	return NewInventarioService(e.store, e.store, e.store)
}

func TestAjustar(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.producto(t, anillo("Dije", 5))
	svc := e.inventario()
	ctx := context.Background()

	mov, err := svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: p.ID, Tipo: model.MovimientoEntrada, Cantidad: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, mov.Cantidad)
	assert.Equal(t, "anillos", mov.CategoriaID)
	assert.Equal(t, 8, e.stock(t, p.ID))

	_, err = svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: p.ID, Tipo: model.MovimientoSalida, Cantidad: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, e.stock(t, p.ID))

	mov, err = svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: p.ID, Tipo: model.MovimientoAjuste, Cantidad: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, mov.Cantidad)
	assert.Equal(t, 1, e.stock(t, p.ID))

	// no change, no movement
	mov, err = svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: p.ID, Tipo: model.MovimientoAjuste, Cantidad: 1})
	require.NoError(t, err)
	assert.Nil(t, mov)

	movs, err := svc.ListarMovimientos(ctx, dto.MovimientoInventarioFilter{ProductoID: &p.ID})
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, model.MovimientoAjuste, movs[0].Tipo)

	salidas, err := svc.ListarMovimientos(ctx, dto.MovimientoInventarioFilter{Tipo: model.MovimientoSalida})
	require.NoError(t, err)
	assert.Len(t, salidas, 1)
}

func TestAjustar_Errores(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.producto(t, anillo("Dije", 2))
	svc := e.inventario()
	ctx := context.Background()

	_, err := svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: p.ID, Tipo: model.MovimientoSalida, Cantidad: 3})
	requireKind(t, err, apierror.KindInsufficientStock)

	_, err = svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: p.ID, Tipo: model.MovimientoEntrada, Cantidad: 0})
	requireKind(t, err, apierror.KindValidation)

	_, err = svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: p.ID, Tipo: model.MovimientoAjuste, Cantidad: -1})
	requireKind(t, err, apierror.KindValidation)

	_, err = svc.Ajustar(ctx, dto.AjusteInventarioRequest{ProductoID: 99, Tipo: model.MovimientoEntrada, Cantidad: 1})
	requireKind(t, err, apierror.KindNotFound)

	assert.Equal(t, 2, e.stock(t, p.ID))
}

func TestListarMovimientos_RangoInvalido(t *testing.T) {
	svc := nuevoEntorno(t).inventario()
	_, err := svc.ListarMovimientos(context.Background(), dto.MovimientoInventarioFilter{Desde: "2026-03-10", Hasta: "2026-03-01"})
	requireKind(t, err, apierror.KindValidation)

	movs, err := svc.ListarMovimientos(context.Background(), dto.MovimientoInventarioFilter{})
	require.NoError(t, err)
	assert.NotNil(t, movs)
}

func TestAlertas(t *testing.T) {
	e := nuevoEntorno(t)
	bajo := anillo("Bajo", 1)
	bajo.StockMinimo = 3
	justo := anillo("Justo", 2)
	justo.StockMinimo = 2
	sobra := anillo("Sobra", 9)
	sobra.StockMinimo = 2
	inactivo := anillo("Inactivo", 0)
	inactivo.StockMinimo = 5
	inactivo.Estado = model.ProductoInactivo
	for _, p := range []model.Producto{justo, bajo, sobra, inactivo} {
		e.producto(t, p)
	}

	alertas, err := e.inventario().Alertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 2)
	assert.Equal(t, "Bajo", alertas[0].Nombre)
	assert.Equal(t, 2, alertas[0].Faltante)
	assert.Equal(t, "Justo", alertas[1].Nombre)
	assert.Zero(t, alertas[1].Faltante)
}
