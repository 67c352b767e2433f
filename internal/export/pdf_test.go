package export

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/BoxPack/internal/engine"
	"github.com/piwi3910/BoxPack/internal/model"
)

// buildTestResult packs five rectangles into two 100x100 boxes by hand.
func buildTestResult(t *testing.T) (model.Instance, model.SolveResult) {
	t.Helper()
	sol := model.NewSolution(100)
	b0 := sol.AddNewBox()
	b1 := sol.AddNewBox()

	add := func(box, id, w, h, x, y int) model.Rectangle {
		r := model.NewRectangle(id, w, h)
		r.X, r.Y = x, y
		placed, err := sol.AddRectangle(r, box)
		if err != nil {
			t.Fatalf("AddRectangle: %v", err)
		}
		return placed
	}
	rects := []model.Rectangle{
		add(b0, 0, 60, 40, 0, 0),
		add(b0, 1, 40, 40, 60, 0),
		add(b0, 2, 30, 50, 0, 40),
		add(b1, 3, 80, 20, 0, 0),
		add(b1, 4, 10, 80, 0, 20),
	}
	if err := sol.Validate(true); err != nil {
		t.Fatalf("test solution invalid: %v", err)
	}

	inst := model.Instance{ID: "report", L: 100, Rectangles: rects}
	return inst, model.SolveResult{
		Solution: sol,
		Stats: model.SolutionStats{
			NumBoxes:    sol.NumBoxes(),
			LowerBound:  inst.LowerBound(),
			Utilization: model.Utilization(sol),
			Score:       model.Utilization(sol),
		},
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pdf")
	inst, res := buildTestResult(t)

	if err := ExportPDF(path, inst, res); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportPDF(path, model.Instance{L: 10}, model.SolveResult{}); err == nil {
		t.Fatal("expected error for nil solution, got nil")
	}
	if err := ExportPDF(path, model.Instance{L: 10}, model.SolveResult{Solution: model.NewSolution(10)}); err == nil {
		t.Fatal("expected error for solution without boxes, got nil")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty result")
	}
}

func TestWritePDF(t *testing.T) {
	inst, res := buildTestResult(t)

	var buf bytes.Buffer
	if err := WritePDF(&buf, inst, res); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestExportPDF_ManyBoxes(t *testing.T) {
	cfg := model.GeneratorConfig{L: 50, NumRect: 120, MinW: 10, MaxW: 40, MinH: 10, MaxH: 40}
	inst, err := model.GenerateInstance(cfg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("GenerateInstance: %v", err)
	}
	res, err := engine.New(model.DefaultSettings()).Solve(inst)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Stats.NumBoxes <= boxesPerPage {
		t.Fatalf("expected more than one page of boxes, got %d boxes", res.Stats.NumBoxes)
	}

	path := filepath.Join(t.TempDir(), "many.pdf")
	if err := ExportPDF(path, inst, res); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 30, 8},
		{15, 40, 7},
		{8, 8, 5},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%.0f, %.0f) = %.0f, want %.0f", tt.w, tt.h, got, tt.want)
		}
	}
}
