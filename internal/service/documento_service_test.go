package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
)

func TestDocumentos(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.producto(t, anillo("Dije", 5))
	email := "ana@example.com"
	ana := e.cliente(t, model.Cliente{Nombre: "Ana", Email: &email})
	dir := t.TempDir()
	docs := NewDocumentoService(e.store, e.store, e.store, dir, "Joyeria Test")
	ctx := context.Background()

	v, err := e.ventas().CrearVenta(ctx, dto.CrearVentaRequest{ClienteID: &ana.ID, Items: []dto.ItemVentaRequest{itemProducto(p.ID, 1, "100")}})
	require.NoError(t, err)

	path, cliente, err := docs.TicketPDF(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ticket_1.pdf"), path)
	require.NotNil(t, cliente)
	assert.Equal(t, email, *cliente.Email)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, _, err = docs.TicketPDF(ctx, 99)
	requireKind(t, err, apierror.KindNotFound)

	ses, err := e.caja().Abrir(ctx, dto.AbrirCajaRequest{SaldoInicial: dec("10")})
	require.NoError(t, err)
	_, err = docs.CierrePDF(ctx, ses.ID)
	requireKind(t, err, apierror.KindConflict)

	_, err = e.caja().Cerrar(ctx, ses.ID, dto.CerrarCajaRequest{})
	require.NoError(t, err)
	path, err = docs.CierrePDF(ctx, ses.ID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cierre_1.pdf"), path)
}
