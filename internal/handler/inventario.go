package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeriapos/internal/dto"
	"joyeriapos/internal/service"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Ajustar returns 201 with the movement, or 204 when an ajuste left the
// stock unchanged.
func (h *InventarioHandler) Ajustar(c *gin.Context) {
	var req dto.AjusteInventarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	mov, err := h.svc.Ajustar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if mov == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoInventarioFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
