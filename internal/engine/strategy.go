package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Strategy picks the candidate to move to and keeps the search statistics.
type Strategy interface {
	Kind() model.StrategyKind
	// Pick returns the accepted candidate and its score, or false when no
	// candidate is accepted this iteration.
	Pick(batch Batch, obj Objective, cur *State, stats model.Stats) (Candidate, float64, bool, error)
	// Update advances the iteration counter and the stagnation bookkeeping.
	Update(stats *model.Stats, obj Objective, accepted bool, score float64)
}

func NewStrategy(kind model.StrategyKind, temperature float64, rng *rand.Rand) (Strategy, error) {
	switch kind {
	case model.StrategyHillClimbing:
		return HillClimbing{}, nil
	case model.StrategySimulatedAnnealing:
		return &SimulatedAnnealing{T0: temperature, rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", kind, model.ErrInvalidOption)
	}
}

// scoreCandidate scores a full-solution candidate directly and a move
// candidate by trial application against the current solution.
func scoreCandidate(c Candidate, obj Objective, cur *State, stats model.Stats) (float64, bool, error) {
	if c.Move != nil {
		return ScoreMove(c.Move, obj, cur.Solution, stats)
	}
	return obj.Score(c.State.Solution, stats), true, nil
}

// HillClimbing accepts only candidates strictly better than the current
// solution, rescored with this iteration's stats since penalty weights grow
// with progress.
type HillClimbing struct{}

func (HillClimbing) Kind() model.StrategyKind { return model.StrategyHillClimbing }

func (HillClimbing) Pick(batch Batch, obj Objective, cur *State, stats model.Stats) (Candidate, float64, bool, error) {
	var best Candidate
	bestScore, found := obj.Score(cur.Solution, stats), false
	for _, c := range batch.Candidates {
		score, ok, err := scoreCandidate(c, obj, cur, stats)
		if err != nil {
			return Candidate{}, 0, false, err
		}
		if !ok || !obj.Better(score, bestScore) {
			continue
		}
		best, bestScore, found = c, score, true
		if batch.FirstImprovement {
			break
		}
	}
	return best, bestScore, found, nil
}

func (HillClimbing) Update(stats *model.Stats, _ Objective, accepted bool, score float64) {
	stats.Iteration++
	if accepted {
		stats.BestScore = score
		stats.StagnationCounter = 0
		return
	}
	stats.StagnationCounter++
}

// SimulatedAnnealing scans the candidates in random order and takes the
// first improving one, or the best improving one when the batch asks for
// best improvement. Otherwise it accepts the least worsening one with the
// Metropolis probability under a logarithmic cooling schedule.
type SimulatedAnnealing struct {
	T0  float64
	rng *rand.Rand
}

func (sa *SimulatedAnnealing) Kind() model.StrategyKind { return model.StrategySimulatedAnnealing }

// Temperature is T0 / ln(min(iteration+1, maxIterations)), with the log
// argument kept at 2 or more.
func (sa *SimulatedAnnealing) Temperature(stats model.Stats) float64 {
	n := stats.Iteration + 1
	if stats.MaxIterations > 0 {
		n = min(n, stats.MaxIterations)
	}
	return sa.T0 / math.Log(float64(max(2, n)))
}

func (sa *SimulatedAnnealing) Pick(batch Batch, obj Objective, cur *State, stats model.Stats) (Candidate, float64, bool, error) {
	current := obj.Score(cur.Solution, stats)

	var improving, worse Candidate
	var improvingScore, worseScore float64
	haveImproving, haveWorse := false, false
	for _, i := range sa.rng.Perm(len(batch.Candidates)) {
		c := batch.Candidates[i]
		score, ok, err := scoreCandidate(c, obj, cur, stats)
		if err != nil {
			return Candidate{}, 0, false, err
		}
		if !ok {
			continue
		}
		if obj.Better(score, current) {
			if !batch.BestImprovement {
				return c, score, true, nil
			}
			if !haveImproving || obj.Better(score, improvingScore) {
				improving, improvingScore, haveImproving = c, score, true
			}
			continue
		}
		if !haveWorse || obj.Better(score, worseScore) {
			worse, worseScore, haveWorse = c, score, true
		}
	}
	if haveImproving {
		return improving, improvingScore, true, nil
	}
	if !haveWorse {
		return Candidate{}, 0, false, nil
	}

	delta := math.Abs(worseScore - current)
	scale := math.Max(math.Abs(current), 1)
	if sa.rng.Float64() < math.Exp(-delta/scale/sa.Temperature(stats)) {
		return worse, worseScore, true, nil
	}
	return Candidate{}, 0, false, nil
}

func (sa *SimulatedAnnealing) Update(stats *model.Stats, obj Objective, accepted bool, score float64) {
	stats.Iteration++
	if !accepted {
		stats.StagnationCounter++
		return
	}
	stats.StagnationCounter = 0
	if obj.Better(score, stats.BestScore) {
		stats.BestScore = score
	}
}
