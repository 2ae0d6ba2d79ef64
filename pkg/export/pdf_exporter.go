package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 277.0 // A4 landscape minus margins
	labelWidth  = 22.0
	headerH     = 8.0
	lineH       = 4.0
	minRowH     = 16.0
	cellPadding = 1.0
)

// PDFExporter renders timetable grids onto a landscape A4 page.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderGrid draws the grid with a title block, period headers and day rows.
func (e *PDFExporter) RenderGrid(grid Grid) ([]byte, error) {
	if len(grid.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if grid.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, tr(grid.Title), "", 1, "C", false, 0, "")
	}
	if grid.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(grid.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	colWidth := (pageWidth - labelWidth) / float64(len(grid.Columns))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(labelWidth, headerH, "", "1", 0, "C", true, 0, "")
	for _, column := range grid.Columns {
		pdf.CellFormat(colWidth, headerH, tr(column), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for r, label := range grid.Rows {
		rowH := minRowH
		for c := range grid.Columns {
			if h := float64(len(cell(grid, r, c)))*lineH + 2*cellPadding; h > rowH {
				rowH = h
			}
		}

		x, y := pdf.GetXY()
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(labelWidth, rowH, tr(label), "1", 0, "C", false, 0, "")
		pdf.SetFont("Arial", "", 7)

		for c := range grid.Columns {
			cx := x + labelWidth + float64(c)*colWidth
			style := "D"
			if grid.Shaded[c] {
				style = "FD"
			}
			pdf.Rect(cx, y, colWidth, rowH, style)
			for i, line := range cell(grid, r, c) {
				pdf.SetXY(cx, y+cellPadding+float64(i)*lineH)
				pdf.CellFormat(colWidth, lineH, tr(line), "", 0, "C", false, 0, "")
			}
		}
		pdf.SetXY(x, y+rowH)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
