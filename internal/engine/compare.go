package engine

import (
	"fmt"
	"log/slog"

	"github.com/piwi3910/BoxPack/internal/model"
	"github.com/sourcegraph/conc"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string               `json:"name"`
	Settings model.SolverSettings `json:"settings"`
}

// ComparisonResult holds the solve result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario     ComparisonScenario `json:"scenario"`
	Result       model.SolveResult  `json:"result"`
	BoxesUsed    int                `json:"boxesUsed"`
	WastePercent float64            `json:"wastePercent"`
	Err          error              `json:"-"`
}

// CompareScenarios solves the instance once per scenario and returns the
// results in scenario order. Scenarios run concurrently; each solve owns its
// solution and random source.
func CompareScenarios(scenarios []ComparisonScenario, inst model.Instance, logger *slog.Logger, rec Recorder) []ComparisonResult {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]ComparisonResult, len(scenarios))

	var wg conc.WaitGroup
	for i, scenario := range scenarios {
		wg.Go(func() {
			solver := New(scenario.Settings)
			solver.Logger = logger.With("scenario", scenario.Name)
			solver.Recorder = rec
			res, err := solver.Solve(inst)

			out := ComparisonResult{Scenario: scenario, Result: res, Err: err}
			if err == nil {
				out.BoxesUsed = res.Solution.NumBoxes()
				if out.BoxesUsed > 0 {
					used := float64(inst.TotalArea()) / float64(out.BoxesUsed*inst.L*inst.L)
					out.WastePercent = 100 * (1 - used)
				}
			}
			results[i] = out
		})
	}
	wg.Wait()
	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios around the
// base settings, varying the construction and the local search.
func BuildDefaultScenarios(base model.SolverSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base},
	}

	for _, pl := range []model.PlacementKind{
		model.PlacementShelfFirstFit,
		model.PlacementShelfBestAreaFit,
		model.PlacementBottomLeft,
	} {
		if pl == base.Placement && base.Algorithm == model.AlgorithmGreedy {
			continue
		}
		s := base
		s.Algorithm = model.AlgorithmGreedy
		s.Placement = pl
		s.Repack = ""
		scenarios = append(scenarios, ComparisonScenario{Name: fmt.Sprintf("Greedy %s", pl), Settings: s})
	}

	geometry := base
	geometry.Algorithm = model.AlgorithmLocalSearch
	geometry.Neighborhood = model.NeighborhoodGeometry
	geometry.Objective = model.ObjectiveUtilization
	geometry.Strategy = model.StrategyHillClimbing
	if geometry.Placement == model.PlacementRandomOverlap {
		geometry.Placement = model.PlacementBottomLeft
	}
	if !geometry.Placement.ShelfBased() {
		geometry.Repack = model.PlacementBottomLeft
	} else {
		geometry.Repack = model.PlacementShelfBestAreaFit
	}
	scenarios = append(scenarios, ComparisonScenario{Name: "Geometry Local Search", Settings: geometry})

	permutation := geometry
	permutation.Neighborhood = model.NeighborhoodPermutation
	permutation.Repack = ""
	scenarios = append(scenarios, ComparisonScenario{Name: "Permutation Local Search", Settings: permutation})

	overlap := base
	overlap.Algorithm = model.AlgorithmLocalSearch
	overlap.Neighborhood = model.NeighborhoodOverlap
	overlap.Objective = model.ObjectivePackingPenalty
	overlap.Strategy = model.StrategySimulatedAnnealing
	overlap.Repack = ""
	scenarios = append(scenarios, ComparisonScenario{Name: "Overlap Relaxation", Settings: overlap})

	genetic := base
	genetic.Algorithm = model.AlgorithmGenetic
	genetic.Placement = geometry.Placement
	genetic.Repack = ""
	scenarios = append(scenarios, ComparisonScenario{Name: "Genetic Algorithm", Settings: genetic})

	return scenarios
}
