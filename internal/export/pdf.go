// Package export renders packing results to PDF: a layout report with one
// drawing per box and a sheet of QR-coded rectangle labels.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/BoxPack/internal/model"
)

type rgb struct {
	R, G, B int
}

var rectColors = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	captionSize  = 8.0
	cellPadding  = 4.0
	drawAreaTop  = marginTop + headerHeight + 5.0

	gridCols     = 3
	gridRows     = 2
	boxesPerPage = gridCols * gridRows
)

// ExportPDF writes the layout report for res to path.
func ExportPDF(path string, inst model.Instance, res model.SolveResult) error {
	pdf, err := buildReport(inst, res)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WritePDF writes the layout report for res to w.
func WritePDF(w io.Writer, inst model.Instance, res model.SolveResult) error {
	pdf, err := buildReport(inst, res)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildReport(inst model.Instance, res model.SolveResult) (*fpdf.Fpdf, error) {
	if res.Solution == nil || res.Solution.NumBoxes() == 0 {
		return nil, fmt.Errorf("no boxes to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	boxes := res.Solution.Boxes()
	pages := (len(boxes) + boxesPerPage - 1) / boxesPerPage
	for i, b := range boxes {
		if i%boxesPerPage == 0 {
			pdf.AddPage()
			renderPageHeader(pdf, inst, res, i/boxesPerPage+1, pages)
		}
		slot := i % boxesPerPage
		renderBox(pdf, b, slot%gridCols, slot/gridCols)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, inst, res)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdf, nil
}

func renderPageHeader(pdf *fpdf.Fpdf, inst model.Instance, res model.SolveResult, page, pages int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Instance %s: %d boxes of %d x %d", inst.ID, res.Stats.NumBoxes, inst.L, inst.L)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, fmt.Sprintf("Page %d / %d", page, pages), "", 0, "R", false, 0, "")
}

// renderBox draws one box scaled into its grid cell.
func renderBox(pdf *fpdf.Fpdf, b *model.Box, col, row int) {
	cellW := (pageWidth - marginLeft - marginRight) / gridCols
	cellH := (pageHeight - drawAreaTop - marginBottom) / gridRows

	side := math.Min(cellW, cellH-captionSize) - 2*cellPadding
	scale := side / float64(b.L)
	offsetX := marginLeft + float64(col)*cellW + (cellW-side)/2
	offsetY := drawAreaTop + float64(row)*cellH

	// Caption
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(offsetX, offsetY)
	caption := fmt.Sprintf("Box %d | %d rectangles | fill %.1f%%", b.ID, len(b.Rectangles), 100*b.FillRatio())
	pdf.CellFormat(side, captionSize-2, caption, "", 0, "L", false, 0, "")
	offsetY += captionSize - 2

	// Box background
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(offsetX, offsetY, side, side, "FD")

	for _, r := range b.Rectangles {
		c := rectColors[r.ID%len(rectColors)]
		rw := float64(r.W()) * scale
		rh := float64(r.H()) * scale
		rx := offsetX + float64(r.X)*scale
		ry := offsetY + float64(r.Y)*scale

		pdf.SetFillColor(c.R, c.G, c.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(rx, ry, rw, rh, "FD")

		if rw > 6 && rh > 4 {
			pdf.SetFont("Helvetica", "", labelFontSize(rw, rh))
			label := fmt.Sprintf("%d", r.ID)
			lw := pdf.GetStringWidth(label)
			if lw < rw-1 {
				pdf.SetXY(rx+(rw-lw)/2, ry+rh/2-2)
				pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}
}

type summaryItem struct {
	label, value string
}

// renderSummaryPage lists the run statistics and a per-box breakdown that
// continues onto further pages when needed.
func renderSummaryPage(pdf *fpdf.Fpdf, inst model.Instance, res model.SolveResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	stats := res.Stats
	items := []summaryItem{
		{"Instance", inst.ID},
		{"Box Side Length", fmt.Sprintf("%d", inst.L)},
		{"Rectangles", fmt.Sprintf("%d", res.Solution.NumRectangles())},
		{"Boxes Used", fmt.Sprintf("%d", stats.NumBoxes)},
		{"Lower Bound", fmt.Sprintf("%d", stats.LowerBound)},
		{"Utilization", fmt.Sprintf("%.4f", stats.Utilization)},
		{"Score", fmt.Sprintf("%.4f", stats.Score)},
		{"Runtime", fmt.Sprintf("%d ms", stats.RuntimeMs)},
	}
	if stats.Iterations > 0 {
		items = append(items,
			summaryItem{"Iterations", fmt.Sprintf("%d", stats.Iterations)},
			summaryItem{"Boxes Saved", fmt.Sprintf("%d", stats.NumBoxesImproved)},
			summaryItem{"Utilization Gain", fmt.Sprintf("%+.4f", stats.ScoreImproved)},
		)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		y += 7
	}
	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Box Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{30, 40, 50, 50}
	headers := []string{"Box", "Rectangles", "Fill Area", "Fill Ratio"}
	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		x := marginLeft
		for i, h := range headers {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
			x += colWidths[i]
		}
		y += 6
	}
	drawHeader()

	for i, b := range res.Solution.Boxes() {
		if y+6 > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
			drawHeader()
		}
		row := []string{
			fmt.Sprintf("%d", b.ID),
			fmt.Sprintf("%d", len(b.Rectangles)),
			fmt.Sprintf("%d / %d", b.FillArea, b.Area()),
			fmt.Sprintf("%.1f%%", 100*b.FillRatio()),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetFont("Helvetica", "", 9)
		x := marginLeft
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			x += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by BoxPack", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns a font size that fits a rectangle of the given
// drawn size.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 20:
		return 8
	case minDim > 10:
		return 7
	default:
		return 5
	}
}
