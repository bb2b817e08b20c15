package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeriapos/internal/dto"
	"joyeriapos/internal/service"
)

type VentasHandler struct {
	svc  service.VentaService
	docs service.DocumentoService
}

func NewVentasHandler(svc service.VentaService, docs service.DocumentoService) *VentasHandler {
	return &VentasHandler{svc: svc, docs: docs}
}

// Crear registers a sale: stock is decremented and the sale persisted in one
// step, or nothing changes.
func (h *VentasHandler) Crear(c *gin.Context) {
	var req dto.CrearVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearVenta(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Obtener(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular marks the sale Cancelada and gives its stock back. The record stays.
func (h *VentasHandler) Anular(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AnularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AnularVenta(c.Request.Context(), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarVenta(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VentasHandler) EliminarTodas(c *gin.Context) {
	n, err := h.svc.EliminarTodas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EliminarVentasResponse{Eliminadas: n})
}

func (h *VentasHandler) Ticket(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	path, _, err := h.docs.TicketPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("ticket_%d.pdf", id))
}
