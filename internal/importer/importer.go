// Package importer reads rectangle lists from CSV, Excel, DXF and JSON files.
// Spreadsheet imports detect the delimiter and map columns by header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/BoxPack/internal/model"
)

// ErrNoRectangles is returned when an import yields nothing to pack.
var ErrNoRectangles = errors.New("no rectangles imported")

// ImportResult holds the rectangles read from a file together with the
// problems found on the way.
type ImportResult struct {
	Rectangles []model.Rectangle
	Errors     []string
	Warnings   []string
}

// Instance turns the import into an instance with box side l.
func (r ImportResult) Instance(l int) (model.Instance, error) {
	if len(r.Errors) > 0 {
		return model.Instance{}, fmt.Errorf("import failed: %s", strings.Join(r.Errors, "; "))
	}
	if len(r.Rectangles) == 0 {
		return model.Instance{}, ErrNoRectangles
	}
	inst := model.NewInstance(l, r.Rectangles)
	if err := inst.CheckFeasible(); err != nil {
		return model.Instance{}, err
	}
	if err := inst.Validate(); err != nil {
		return model.Instance{}, err
	}
	return inst, nil
}

// ColumnMapping maps column roles to their indices. -1 means absent.
type ColumnMapping struct {
	Width    int
	Height   int
	Quantity int
}

var headerAliases = map[string][]string{
	"width":    {"width", "w", "length", "len", "x"},
	"height":   {"height", "h", "depth", "d", "y"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
}

// DetectCSVDelimiter returns the delimiter among comma, semicolon, tab and
// pipe that splits the data into the most consistent multi-column rows.
func DetectCSVDelimiter(data []byte) rune {
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range []rune{',', ';', '\t', '|'} {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		if weighted := score*10 + firstCols; weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns maps a header row case-insensitively. Without a recognizable
// header it returns the positional mapping width, height, quantity and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Width: -1, Height: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch {
				case role == "width" && mapping.Width == -1:
					mapping.Width = i
				case role == "height" && mapping.Height == -1:
					mapping.Height = i
				case role == "quantity" && mapping.Quantity == -1:
					mapping.Quantity = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Width: 0, Height: 1, Quantity: 2}, false
	}
	return mapping, true
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDimension reads a positive length. Fractional values are rounded up
// so the rectangle still covers the original part.
func parseDimension(s, name, rowLabel string) (int, string, string) {
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name), ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s), ""
	}
	if v <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, name), ""
	}
	rounded := math.Ceil(v)
	if rounded != v {
		return int(rounded), "", fmt.Sprintf("%s: %s %s rounded up to %d", rowLabel, name, s, int(rounded))
	}
	return int(v), "", ""
}

// parseRow returns width, height and quantity of a row. A missing quantity
// column counts as one.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (w, h, qty int, errMsg string, warnings []string) {
	w, errMsg, warn := parseDimension(getCell(row, mapping.Width), "width", rowLabel)
	if errMsg != "" {
		return 0, 0, 0, errMsg, nil
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}
	h, errMsg, warn = parseDimension(getCell(row, mapping.Height), "height", rowLabel)
	if errMsg != "" {
		return 0, 0, 0, errMsg, nil
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	qty = 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		q, err := strconv.Atoi(qtyStr)
		if err != nil {
			return 0, 0, 0, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), nil
		}
		if q <= 0 {
			return 0, 0, 0, fmt.Sprintf("%s: quantity must be positive", rowLabel), nil
		}
		qty = q
	}
	return w, h, qty, "", warnings
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports rectangles from a CSV file with auto-detected delimiter.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	result := ImportCSVFromReader(bytes.NewReader(data), delimiter)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportCSVFromReader imports rectangles from CSV data with a known
// delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}
	return importFromRows(records, "Line")
}

// ImportExcel imports rectangles from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	if len(rows) == 0 {
		return ImportResult{Errors: []string{"Sheet is empty"}}
	}
	return importFromRows(rows, "Row")
}

// importFromRows is shared by the CSV and Excel imports. Each row expands
// into quantity rectangles.
func importFromRows(rows [][]string, rowPrefix string) ImportResult {
	var result ImportResult

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := strconv.ParseFloat(getCell(rows[0], 0), 64); err != nil {
		// An unrecognized header: skip it and map by position.
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		w, h, qty, errMsg, warnings := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)

		if len(result.Rectangles)+qty > model.MaxRectangles {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: more than %d rectangles", rowLabel, model.MaxRectangles))
			return result
		}
		for range qty {
			result.Rectangles = append(result.Rectangles, model.NewRectangle(len(result.Rectangles), w, h))
		}
	}

	if len(result.Rectangles) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}

// Import reads a rectangle list, choosing the format by file extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(path))}}
	}
}

// Load reads an instance from path. JSON files hold a complete instance;
// other formats hold rectangles only and are packed into boxes of side l.
// A positive l also overrides the side stored in a JSON instance.
func Load(path string, l int) (model.Instance, []string, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		inst, err := LoadInstance(path)
		if err != nil {
			return model.Instance{}, nil, err
		}
		if l > 0 {
			inst.L = l
		}
		if err := inst.CheckFeasible(); err != nil {
			return model.Instance{}, nil, err
		}
		if err := inst.Validate(); err != nil {
			return model.Instance{}, nil, err
		}
		return inst, nil, nil
	}

	if l <= 0 {
		return model.Instance{}, nil, fmt.Errorf("box side length required to import %s", filepath.Base(path))
	}
	res := Import(path)
	inst, err := res.Instance(l)
	return inst, res.Warnings, err
}
