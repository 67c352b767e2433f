// Package export renders packing results to PDF: a layout report with one
// drawing per box and a sheet of QR-coded rectangle labels.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/BoxPack/internal/model"
)

// LabelInfo holds the data encoded into each rectangle label's QR code.
type LabelInfo struct {
	Instance string `json:"instance"`
	RectID   int    `json:"rect"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxID    int    `json:"box"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Sideways bool   `json:"sideways"`
}

// Label layout for Avery 5160-compatible sheets: 3 columns x 10 rows of
// 66.7 x 25.4 mm on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportLabels writes a PDF with one QR-coded label per placed rectangle,
// ordered box by box.
func ExportLabels(path string, inst model.Instance, res model.SolveResult) error {
	labels := CollectLabelInfos(inst, res)
	if len(labels) == 0 {
		return fmt.Errorf("no placed rectangles to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for rectangle %d: %w", label.RectID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", info.RectID)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Rectangle %d", info.RectID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d x %d", info.Width, info.Height), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Box %d @ (%d, %d)", info.BoxID, info.X, info.Y), "", 1, "L", false, 0, "")

	if info.Sideways {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Sideways", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return pdf.Error()
}

// CollectLabelInfos lists the label data of every placed rectangle in box
// order.
func CollectLabelInfos(inst model.Instance, res model.SolveResult) []LabelInfo {
	if res.Solution == nil {
		return nil
	}
	var labels []LabelInfo
	for _, b := range res.Solution.Boxes() {
		for _, r := range b.Rectangles {
			labels = append(labels, LabelInfo{
				Instance: inst.ID,
				RectID:   r.ID,
				Width:    r.Width,
				Height:   r.Height,
				BoxID:    b.ID,
				X:        r.X,
				Y:        r.Y,
				Sideways: r.Sideways,
			})
		}
	}
	return labels
}
