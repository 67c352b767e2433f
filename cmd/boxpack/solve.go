package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/piwi3910/BoxPack/internal/engine"
	"github.com/piwi3910/BoxPack/internal/export"
	"github.com/piwi3910/BoxPack/internal/importer"
	"github.com/piwi3910/BoxPack/internal/model"
	"github.com/piwi3910/BoxPack/internal/project"
)

// solverFlags registers the flags that override individual solver settings.
func solverFlags(fs *pflag.FlagSet) {
	d := model.DefaultSettings()
	fs.String("profile", "", "named solver profile (see boxpack profiles)")
	fs.String("profiles-file", project.DefaultProfilesPath(), "custom profiles file")
	fs.String("algorithm", string(d.Algorithm), "greedy, local-search or genetic")
	fs.String("selection", string(d.Selection), "longest-side-first, largest-area-first or original")
	fs.String("placement", string(d.Placement), "shelf-first-fit, shelf-best-area-fit, bottom-left or random-overlap (overlap search only)")
	fs.String("repack", "", "placement used by neighborhoods (default: --placement)")
	fs.String("neighborhood", string(d.Neighborhood), "geometry, permutation or overlap")
	fs.String("objective", string(d.Objective), "utilization or packing-penalty")
	fs.String("strategy", string(d.Strategy), "hill-climbing or simulated-annealing")
	fs.Int("num-neighbors", d.NumNeighbors, "candidates per local-search iteration")
	fs.Int("max-iterations", d.MaxIterations, "local-search iteration budget")
	fs.Int("max-stagnation", d.MaxStagnation, "iterations without improvement before stopping")
	fs.Int64("seed", d.Seed, "random seed")
}

// inputFlags registers the instance source flags.
func inputFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "instance file (json, csv, tsv, xlsx or dxf)")
	fs.IntP("box-length", "l", 0, "box side length (default from app config for non-JSON input)")
}

// resolveSettings layers the profile and explicitly set flags over the
// configured solver settings.
func resolveSettings(fs *pflag.FlagSet, base model.SolverSettings) (model.SolverSettings, error) {
	s := base
	if name, _ := fs.GetString("profile"); name != "" {
		path, _ := fs.GetString("profiles-file")
		custom, err := project.LoadCustomProfiles(path)
		if err != nil {
			return s, err
		}
		p, err := project.FindProfile(name, base, custom)
		if err != nil {
			return s, err
		}
		s = p.Settings
	}

	get := func(name string) (string, bool) {
		v, _ := fs.GetString(name)
		return v, fs.Changed(name)
	}
	if v, ok := get("algorithm"); ok {
		s.Algorithm = model.Algorithm(v)
	}
	if v, ok := get("selection"); ok {
		s.Selection = model.SelectionKind(v)
	}
	if v, ok := get("placement"); ok {
		s.Placement = model.PlacementKind(v)
	}
	if v, ok := get("repack"); ok {
		s.Repack = model.PlacementKind(v)
	}
	if v, ok := get("neighborhood"); ok {
		s.Neighborhood = model.NeighborhoodKind(v)
	}
	if v, ok := get("objective"); ok {
		s.Objective = model.ObjectiveKind(v)
	}
	if v, ok := get("strategy"); ok {
		s.Strategy = model.StrategyKind(v)
	}
	if fs.Changed("num-neighbors") {
		s.NumNeighbors, _ = fs.GetInt("num-neighbors")
	}
	if fs.Changed("max-iterations") {
		s.MaxIterations, _ = fs.GetInt("max-iterations")
	}
	if fs.Changed("max-stagnation") {
		s.MaxStagnation, _ = fs.GetInt("max-stagnation")
	}
	if fs.Changed("seed") {
		s.Seed, _ = fs.GetInt64("seed")
	}
	return s, s.Validate()
}

// loadInput reads the instance named by --input.
func loadInput(fs *pflag.FlagSet, e *env) (model.Instance, error) {
	path, _ := fs.GetString("input")
	if path == "" {
		return model.Instance{}, errors.New("--input is required")
	}
	l, _ := fs.GetInt("box-length")
	if !fs.Changed("box-length") && !strings.EqualFold(filepath.Ext(path), ".json") {
		l = e.app.DefaultBoxLength
	}
	inst, warnings, err := importer.Load(path, l)
	for _, w := range warnings {
		e.logger.Warn("import", "path", path, "warning", w)
	}
	if err != nil {
		return model.Instance{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	e.app.AddRecentInstance(path)
	if err := project.SaveAppConfig(e.appPath, e.app); err != nil {
		e.logger.Warn("failed to save app config", "path", e.appPath, "error", err)
	}
	return inst, nil
}

func runSolve(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("solve", pflag.ContinueOnError)
	globalFlags(fs)
	inputFlags(fs)
	solverFlags(fs)
	fs.StringP("output", "o", "", "write the solution JSON here instead of stdout")
	fs.String("pdf", "", "write a layout report PDF")
	fs.String("labels", "", "write a PDF sheet of QR labels")

	e, err := setup(fs, args, stderr, nil)
	if err != nil {
		return err
	}
	defer e.close()

	settings, err := resolveSettings(fs, e.cfg.Solver)
	if err != nil {
		return err
	}
	inst, err := loadInput(fs, e)
	if err != nil {
		return err
	}

	solver := engine.New(settings)
	solver.Logger = e.logger.Logger
	res, err := solver.Solve(inst)
	if err != nil {
		return err
	}
	if err := res.Solution.Validate(false); err != nil {
		return err
	}

	out, _ := fs.GetString("output")
	if err := writeJSON(out, stdout, res); err != nil {
		return err
	}
	if path, _ := fs.GetString("pdf"); path != "" {
		if err := export.ExportPDF(path, inst, res); err != nil {
			return err
		}
		e.logger.Info("wrote layout report", "path", path)
	}
	if path, _ := fs.GetString("labels"); path != "" {
		if err := export.ExportLabels(path, inst, res); err != nil {
			return err
		}
		e.logger.Info("wrote labels", "path", path)
	}
	return nil
}

// writeJSON writes v indented to path, or to w when path is empty.
func writeJSON(path string, w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
