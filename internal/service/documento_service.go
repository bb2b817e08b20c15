package service

import (
	"context"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/infra"
	"joyeriapos/internal/model"
	"joyeriapos/internal/repository"
)

// DocumentoService renders the printable documents: the sale ticket and the
// cash-close report. Files are regenerated on every call so a ticket always
// reflects the current estado of the sale.
type DocumentoService interface {
	// TicketPDF returns the ticket path and the sale's customer, if any.
	TicketPDF(ctx context.Context, ventaID int64) (string, *model.Cliente, error)
	CierrePDF(ctx context.Context, sesionID int64) (string, error)
}

type documentoService struct {
	ventas   repository.VentaRepository
	clientes repository.ClienteRepository
	caja     repository.CajaRepository
	dir      string
	negocio  string
}

func NewDocumentoService(ventas repository.VentaRepository, clientes repository.ClienteRepository, caja repository.CajaRepository, dir, negocio string) DocumentoService {
	return &documentoService{ventas: ventas, clientes: clientes, caja: caja, dir: dir, negocio: negocio}
}

func (s *documentoService) TicketPDF(ctx context.Context, ventaID int64) (string, *model.Cliente, error) {
	v, err := s.ventas.FindVenta(ctx, ventaID)
	if err != nil {
		return "", nil, err
	}
	var cliente *model.Cliente
	nombre := ""
	if v.ClienteID != nil {
		// a customer removed since the sale just leaves the ticket anonymous
		if c, err := s.clientes.FindCliente(ctx, *v.ClienteID); err == nil {
			cliente, nombre = c, c.Nombre
		}
	}
	path, err := infra.GenerarTicketPDF(v, nombre, s.negocio, s.dir)
	if err != nil {
		return "", nil, err
	}
	return path, cliente, nil
}

func (s *documentoService) CierrePDF(ctx context.Context, sesionID int64) (string, error) {
	ses, err := s.caja.FindSesion(ctx, sesionID)
	if err != nil {
		return "", err
	}
	if ses.Estado != model.CajaCerrada {
		return "", apierror.Conflict("la caja sigue abierta").With("sesion_id", sesionID)
	}
	return infra.GenerarCierrePDF(ses, s.negocio, s.dir)
}
