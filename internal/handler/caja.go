package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
	"joyeriapos/internal/service"
)

type CajaHandler struct {
	svc  service.CajaService
	docs service.DocumentoService
}

func NewCajaHandler(svc service.CajaService, docs service.DocumentoService) *CajaHandler {
	return &CajaHandler{svc: svc, docs: docs}
}

func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Movimientos manuales ──────────────────────────────────────────────────────

type registrarFunc func(context.Context, dto.MovimientoCajaRequest) (*model.MovimientoCaja, error)

func (h *CajaHandler) Ingreso(c *gin.Context)    { h.movimiento(c, h.svc.RegistrarIngreso) }
func (h *CajaHandler) Retiro(c *gin.Context)     { h.movimiento(c, h.svc.RegistrarRetiro) }
func (h *CajaHandler) Devolucion(c *gin.Context) { h.movimiento(c, h.svc.RegistrarDevolucion) }

func (h *CajaHandler) movimiento(c *gin.Context, registrar registrarFunc) {
	var req dto.MovimientoCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) ListarMovimientos(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		resp = []model.MovimientoCaja{}
	}
	c.JSON(http.StatusOK, resp)
}

// ── Cierre ────────────────────────────────────────────────────────────────────

func (h *CajaHandler) Cerrar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Estado recomputes the reconciliation. ?efectivo_contado=N fills diferencia.
func (h *CajaHandler) Estado(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var q dto.EstadoCajaQuery
	if !bindQuery(c, &q) {
		return
	}
	var contado *decimal.Decimal
	if q.EfectivoContado != "" {
		d, err := decimal.NewFromString(q.EfectivoContado)
		if err != nil {
			respondError(c, apierror.InvalidAmount("efectivo_contado", q.EfectivoContado))
			return
		}
		contado = &d
	}
	resp, err := h.svc.EstadoCaja(c.Request.Context(), id, contado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) Activa(c *gin.Context) {
	resp, err := h.svc.SesionActiva(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) Historial(c *gin.Context) {
	resp, err := h.svc.Historial(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		resp = []model.SesionCaja{}
	}
	c.JSON(http.StatusOK, resp)
}

// CierrePDF downloads the cash-close report of a closed session.
func (h *CajaHandler) CierrePDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	path, err := h.docs.CierrePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("cierre_%d.pdf", id))
}
