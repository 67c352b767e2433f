package engine

import (
	"fmt"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Objective scores solutions. Better reports whether a is strictly better
// than b, which fixes the direction of optimization.
type Objective interface {
	Kind() model.ObjectiveKind
	Score(sol *model.Solution, stats model.Stats) float64
	Better(a, b float64) bool
}

// NewObjective returns the objective of the given kind.
func NewObjective(kind model.ObjectiveKind, weights model.PenaltyWeights) (Objective, error) {
	switch kind {
	case model.ObjectiveUtilization:
		return Utilization{}, nil
	case model.ObjectivePackingPenalty:
		return PackingPenalty{Weights: weights}, nil
	default:
		return nil, fmt.Errorf("unknown objective %q: %w", kind, model.ErrInvalidOption)
	}
}

// Utilization is Falkenauer's grouping fitness: the mean squared fill ratio
// over non-empty boxes. Higher is better.
type Utilization struct{}

func (Utilization) Kind() model.ObjectiveKind { return model.ObjectiveUtilization }

func (Utilization) Score(sol *model.Solution, _ model.Stats) float64 {
	return model.Utilization(sol)
}

func (Utilization) Better(a, b float64) bool { return a > b }

// PackingPenalty scores relaxed solutions that may contain overlaps. Lower
// is better.
type PackingPenalty struct {
	Weights model.PenaltyWeights
}

func (PackingPenalty) Kind() model.ObjectiveKind { return model.ObjectivePackingPenalty }

func (p PackingPenalty) Score(sol *model.Solution, stats model.Stats) float64 {
	g := 1 + p.Weights.Growth*stats.Progress()
	total, pairs, boxes := 0, 0, 0
	maxRate := 0.0
	for _, b := range sol.Boxes() {
		if b.Empty() {
			continue
		}
		boxes++
		s := b.OverlapSummary()
		total += s.TotalArea
		pairs += s.Pairs
		maxRate = max(maxRate, s.MaxRate)
	}
	area := float64(sol.L * sol.L)
	if area == 0 {
		area = 1
	}
	return p.Weights.TotalOverlap*g*g*float64(total)/area +
		p.Weights.MaxOverlap*g*g*maxRate +
		p.Weights.PairCount*g*float64(pairs) +
		p.Weights.BoxCount*float64(boxes)
}

func (PackingPenalty) Better(a, b float64) bool { return a < b }
