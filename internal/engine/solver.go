// Package engine packs rectangles into boxes: greedy construction from a
// selection order and a placement policy, followed optionally by local search
// or a genetic search over insertion orders.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Recorder receives the outcome of every solve. The metrics package provides
// the prometheus implementation.
type Recorder interface {
	ObserveSolve(settings model.SolverSettings, stats model.SolutionStats, err error)
}

// Solver runs greedy construction and, when configured, local search.
type Solver struct {
	Settings model.SolverSettings
	Logger   *slog.Logger
	Recorder Recorder
}

func New(settings model.SolverSettings) *Solver {
	return &Solver{Settings: settings, Logger: slog.Default()}
}

// Solve packs the instance. Each call uses its own random source seeded
// from the settings, so equal inputs give equal results.
func (s *Solver) Solve(inst model.Instance) (model.SolveResult, error) {
	res, err := s.solve(inst)
	if s.Recorder != nil {
		s.Recorder.ObserveSolve(s.Settings, res.Stats, err)
	}
	return res, err
}

func (s *Solver) solve(inst model.Instance) (model.SolveResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("instance", inst.ID)
	if err := s.Settings.Validate(); err != nil {
		return model.SolveResult{}, err
	}

	rng := rand.New(rand.NewSource(s.Settings.Seed))
	start := time.Now()

	st, err := Construct(inst, s.Settings.Selection, s.Settings.Placement, rng)
	if err != nil {
		return model.SolveResult{}, fmt.Errorf("failed to construct solution: %w", err)
	}
	greedyBoxes := st.Solution.NumBoxes()
	greedyUtil := model.Utilization(st.Solution)
	logger.Info("greedy construction finished",
		"selection", s.Settings.Selection,
		"placement", s.Settings.Placement,
		"boxes", greedyBoxes,
		"duration", time.Since(start))

	stats := model.SolutionStats{
		LowerBound: inst.LowerBound(),
		Score:      greedyUtil,
	}
	switch s.Settings.Algorithm {
	case model.AlgorithmGenetic:
		best, generations, err := RunGenetic(inst, s.Settings, rng)
		if err != nil {
			return model.SolveResult{}, fmt.Errorf("genetic search failed: %w", err)
		}
		if model.Utilization(best.Solution) > greedyUtil {
			st = best
		}
		stats.Iterations = generations
		stats.Score = model.Utilization(st.Solution)
		stats.NumBoxesImproved = greedyBoxes - st.Solution.NumBoxes()
		stats.ScoreImproved = stats.Score - greedyUtil
		logger.Info("genetic search finished",
			"generations", generations,
			"population", s.Settings.Genetic.PopulationSize,
			"boxes", st.Solution.NumBoxes())
	case model.AlgorithmLocalSearch:
		final, lsStats, err := RunLocalSearch(st, s.Settings, rng, logger)
		if err != nil {
			return model.SolveResult{}, fmt.Errorf("local search failed: %w", err)
		}
		obj, _ := NewObjective(s.Settings.Objective, s.Settings.Penalty)
		st = final
		stats.Iterations = lsStats.Iteration
		stats.Score = obj.Score(st.Solution, lsStats)
		stats.NumBoxesImproved = greedyBoxes - st.Solution.NumBoxes()
		stats.ScoreImproved = model.Utilization(st.Solution) - greedyUtil
		logger.Info("local search finished",
			"neighborhood", s.Settings.Neighborhood,
			"strategy", s.Settings.Strategy,
			"iterations", lsStats.Iteration,
			"boxes", st.Solution.NumBoxes(),
			"boxes_improved", stats.NumBoxesImproved)
	}

	st.Solution.RunTime = time.Since(start)
	stats.RuntimeMs = st.Solution.RunTime.Milliseconds()
	stats.NumBoxes = st.Solution.NumBoxes()
	stats.Utilization = model.Utilization(st.Solution)
	return model.SolveResult{Solution: st.Solution, Stats: stats}, nil
}
