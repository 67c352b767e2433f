package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/piwi3910/BoxPack/internal/model"
)

// LocalSearchAlgo repeatedly asks a neighborhood for candidates and lets a
// strategy decide which one to move to, until the termination fires.
type LocalSearchAlgo struct {
	Neighborhood  Neighborhood
	Objective     Objective
	Strategy      Strategy
	Terminate     Termination
	MaxIterations int
	Logger        *slog.Logger
}

// Run searches from init and returns the final state. init itself is not
// modified.
func (ls *LocalSearchAlgo) Run(init *State) (*State, model.Stats, error) {
	logger := ls.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cur := init.Clone()
	stats := model.Stats{MaxIterations: ls.MaxIterations}
	stats.BestScore = ls.Objective.Score(cur.Solution, stats)

	for !ls.Terminate(stats) {
		batch, err := ls.Neighborhood.Candidates(cur, stats)
		if err != nil {
			return nil, stats, fmt.Errorf("%s neighborhood failed at iteration %d: %w", ls.Neighborhood.Kind(), stats.Iteration, err)
		}
		cand, score, accepted, err := ls.Strategy.Pick(batch, ls.Objective, cur, stats)
		if err != nil {
			return nil, stats, fmt.Errorf("%s strategy failed at iteration %d: %w", ls.Strategy.Kind(), stats.Iteration, err)
		}
		if accepted {
			if cand.Move != nil {
				if _, err := cand.Move.Apply(cur.Solution, true); err != nil {
					if !errors.Is(err, model.ErrInfeasibleMove) {
						return nil, stats, fmt.Errorf("failed to commit %s: %w", cand.Move, err)
					}
					accepted = false
				}
			} else {
				cur = cand.State
			}
		}
		ls.Strategy.Update(&stats, ls.Objective, accepted, score)
		if accepted {
			logger.Debug("candidate accepted",
				"iteration", stats.Iteration,
				"score", score,
				"boxes", cur.Solution.NumBoxes())
		}
	}

	if f, ok := ls.Neighborhood.(Finalizer); ok {
		if err := f.Finalize(cur); err != nil {
			return nil, stats, fmt.Errorf("failed to finalize %s search: %w", ls.Neighborhood.Kind(), err)
		}
	}
	return cur, stats, nil
}

// RunLocalSearch is the local-search entry point. It wires the neighborhood,
// objective, strategy and termination named by the settings around init.
func RunLocalSearch(init *State, s model.SolverSettings, rng *rand.Rand, logger *slog.Logger) (*State, model.Stats, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(s.Seed))
	}
	obj, err := NewObjective(s.Objective, s.Penalty)
	if err != nil {
		return nil, model.Stats{}, err
	}
	strat, err := NewStrategy(s.Strategy, s.Temperature, rng)
	if err != nil {
		return nil, model.Stats{}, err
	}
	nb, err := NewNeighborhood(s, init.Placement, rng)
	if err != nil {
		return nil, model.Stats{}, err
	}

	start := init
	if s.Neighborhood == model.NeighborhoodOverlap {
		// Relaxed solutions break shelf indexes; the search works on raw
		// geometry from here on.
		start = &State{Solution: init.Solution, Placement: NewBottomLeft(), Order: init.Order}
	}

	ls := &LocalSearchAlgo{
		Neighborhood:  nb,
		Objective:     obj,
		Strategy:      strat,
		Terminate:     TerminationFor(s),
		MaxIterations: s.MaxIterations,
		Logger:        logger,
	}
	return ls.Run(start)
}
