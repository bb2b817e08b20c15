package infra

// pdf.go: ticket and cash-close documents rendered with go-pdf/fpdf.
// Tickets use an A7-like receipt page; cash-close reports use A4.

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"joyeriapos/internal/model"
)

func pesos(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func truncar(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func prepararDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pdf: create storage dir: %w", err)
	}
	return nil
}

// GenerarTicketPDF writes ticket_<id>.pdf for a sale into dir and returns its
// path. cliente may be empty.
func GenerarTicketPDF(venta *model.Venta, cliente, negocio, dir string) (string, error) {
	if err := prepararDir(dir); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("ticket_%d.pdf", venta.ID))

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 140},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Venta N° %d", venta.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if cliente != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+cliente), "", 1, "L", false, 0, "")
	}
	if venta.Estado == model.VentaCancelada {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "ANULADA", "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Pieza", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venta.Items {
		nombre := item.Nombre
		if nombre == "" {
			nombre = item.CategoriaNombre
		}
		pdf.CellFormat(col1, 5, tr(truncar(nombre, 22)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, pesos(item.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	fila := func(label, valor string) {
		pdf.CellFormat(col1+col2, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, valor, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	fila("Subtotal:", pesos(venta.Subtotal))
	if !venta.Descuento.IsZero() {
		fila("Descuento:", "-"+pesos(venta.Descuento))
	}
	if !venta.Impuesto.IsZero() {
		fila("Impuesto:", pesos(venta.Impuesto))
	}
	pdf.SetFont("Helvetica", "B", 9)
	fila("TOTAL:", pesos(venta.Total))
	pdf.SetFont("Helvetica", "", 7)
	fila(tr("Pago ("+venta.MetodoPago+")"), pesos(venta.Total))

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// GenerarCierrePDF writes cierre_<id>.pdf with the frozen reconciliation of a
// closed session.
func GenerarCierrePDF(sesion *model.SesionCaja, negocio, dir string) (string, error) {
	if sesion.Cierre == nil {
		return "", fmt.Errorf("pdf: sesion %d no tiene cierre", sesion.ID)
	}
	if err := prepararDir(dir); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("cierre_%d.pdf", sesion.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Cierre de caja N° %d", sesion.ID)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Apertura: "+sesion.AbiertaEn.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if sesion.CerradaEn != nil {
		pdf.CellFormat(0, 6, "Cierre:   "+sesion.CerradaEn.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	c := sesion.Cierre
	rows := []struct {
		label string
		valor decimal.Decimal
	}{
		{"Saldo inicial", c.SaldoInicial},
		{"Ventas en efectivo", c.EfectivoVentas},
		{"Ventas con tarjeta", c.TarjetaVentas},
		{"Ventas por transferencia", c.TransferenciaVentas},
		{"Ventas totales", c.VentasTotales},
		{"Ingresos no venta", c.IngresosNoVenta},
		{"Retiros", c.Retiros},
		{"Devoluciones en efectivo", c.DevolucionesEfectivo},
		{"Efectivo esperado", c.EfectivoEsperado},
		{"Diferencia", c.Diferencia},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(110, 7, tr(r.label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, pesos(r.valor), "B", 1, "R", false, 0, "")
	}
	pdf.CellFormat(110, 7, "Cantidad de ventas", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%d", c.CantidadVentas), "B", 1, "R", false, 0, "")

	pdf.Ln(4)
	if sesion.Clasificacion != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, tr("Clasificación: "+*sesion.Clasificacion), "", 1, "L", false, 0, "")
	}
	if sesion.Observaciones != nil && *sesion.Observaciones != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr("Observaciones: "+*sesion.Observaciones), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
