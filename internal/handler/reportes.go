package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"joyeriapos/internal/dto"
	"joyeriapos/internal/service"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

func (h *ReportesHandler) Resumen(c *gin.Context) {
	var f dto.ReporteFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) TopProductos(c *gin.Context) {
	var f dto.ReporteFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.TopProductos(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) TopClientes(c *gin.Context) {
	var f dto.ReporteFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.TopClientes(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) Serie(c *gin.Context) {
	var f dto.ReporteFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Serie(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarCSV sends the sales of the range as a CSV attachment.
func (h *ReportesHandler) ExportarCSV(c *gin.Context) {
	var f dto.ReporteFilter
	if !bindQuery(c, &f) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportarCSV(c.Request.Context(), f, &buf); err != nil {
		respondError(c, err)
		return
	}
	nombre := fmt.Sprintf("ventas_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, nombre))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
