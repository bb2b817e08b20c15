package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeriapos/internal/dto"
	"joyeriapos/internal/service"
)

type AccesoHandler struct{ svc service.AccesoService }

func NewAccesoHandler(svc service.AccesoService) *AccesoHandler { return &AccesoHandler{svc: svc} }

// Verificar exchanges the area password for a token scoped to that area.
func (h *AccesoHandler) Verificar(c *gin.Context) {
	var req dto.VerificarAccesoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Verificar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
