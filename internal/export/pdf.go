package export

import (
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/sadopc/timebill/internal/report"
)

// Relative column widths; the billing columns are appended when present.
var (
	pdfBaseWidths    = []float64{1, 1.2, 2, 0.8, 0.8, 0.8}
	pdfBillingWidths = []float64{0.8, 0.8}
)

const (
	pdfMargin     = 10.0
	pdfRowHeight  = 7.0
	pdfHeadHeight = 9.0
)

// ToPDF renders doc as an A4 document at path.
func ToPDF(doc *report.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf file: %w", err)
	}
	if err := WritePDF(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePDF renders doc to w.
func WritePDF(doc *report.Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("timebill", true)
	// Core fonts are cp1252; the translator maps € and accented names.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	usable := pageW - 2*pdfMargin

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(usable, 12, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(usable, 8, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	if doc.IsEmpty() {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(usable, 8, tr(doc.Empty), "", 1, "L", false, 0, "")
		return output(pdf, w)
	}

	widths := columnWidths(len(doc.Columns), usable)
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		pdf.SetDrawColor(0, 0, 0)
		for i, col := range doc.Columns {
			pdf.CellFormat(widths[i], pdfHeadHeight, tr(col), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetFillColor(245, 245, 220)
		pdf.SetTextColor(0, 0, 0)
	}

	header()
	for _, row := range doc.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-pdfMargin {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			text := fit(pdf, tr(cell), widths[i]-2)
			pdf.CellFormat(widths[i], pdfRowHeight, text, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.GetY()+30 > pageH-pdfMargin {
		pdf.AddPage()
	}
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(usable, 7, tr(doc.TotalTime), "", 1, "L", false, 0, "")
	if doc.TotalAmount != "" {
		pdf.CellFormat(usable, 7, tr(doc.TotalAmount), "", 1, "L", false, 0, "")
	}
	return output(pdf, w)
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func columnWidths(n int, usable float64) []float64 {
	rel := append([]float64{}, pdfBaseWidths...)
	if n > len(rel) {
		rel = append(rel, pdfBillingWidths...)
	}
	rel = rel[:n]

	var total float64
	for _, r := range rel {
		total += r
	}
	widths := make([]float64, n)
	for i, r := range rel {
		widths[i] = usable * r / total
	}
	return widths
}

// fit shortens s with a trailing ".." until it fits in width. s is already
// translated to the single-byte font encoding.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"..") > width {
		s = s[:len(s)-1]
	}
	return s + ".."
}
