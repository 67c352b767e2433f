package engine

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Candidate is either a complete alternative state or a move to be applied
// to the current state.
type Candidate struct {
	State *State
	Move  Move
}

// Batch is the set of candidates produced in one iteration.
type Batch struct {
	Candidates []Candidate
	// FirstImprovement asks the strategy to stop at the first candidate that
	// improves instead of scanning the whole batch.
	FirstImprovement bool
	// BestImprovement asks a strategy that scans in random order to compare
	// every improving candidate instead of taking the first it meets.
	BestImprovement bool
}

// Neighborhood generates candidates around the current state.
type Neighborhood interface {
	Kind() model.NeighborhoodKind
	Candidates(cur *State, stats model.Stats) (Batch, error)
}

// Finalizer is implemented by neighborhoods that post-process the state
// returned by the search.
type Finalizer interface {
	Finalize(cur *State) error
}

// NewNeighborhood builds the neighborhood selected by the settings and checks
// that it can continue from the construction placement.
func NewNeighborhood(s model.SolverSettings, construction Placement, rng *rand.Rand) (Neighborhood, error) {
	switch s.Neighborhood {
	case model.NeighborhoodGeometry:
		if _, err := RepackPlacement(construction, s.RepackKind(), rng); err != nil {
			return nil, err
		}
		return &Geometry{
			Repack:       s.RepackKind(),
			NumNeighbors: s.NumNeighbors,
			RandomRate:   s.RandomRate,
			rng:          rng,
		}, nil
	case model.NeighborhoodPermutation:
		if _, err := NewPlacement(s.RepackKind(), rng); err != nil {
			return nil, err
		}
		return &Permutation{
			Placement:    s.RepackKind(),
			NumNeighbors: s.NumNeighbors,
			RandomRate:   s.RandomRate,
			rng:          rng,
		}, nil
	case model.NeighborhoodOverlap:
		return NewOverlap(s.Overlap, s.NumNeighbors, rng), nil
	default:
		return nil, fmt.Errorf("unknown neighborhood %q: %w", s.Neighborhood, model.ErrInvalidOption)
	}
}

// clearScore ranks how attractive a box is to empty: few, small rectangles
// in a lightly filled box score lowest.
func clearScore(b *model.Box, totalRects int) float64 {
	fr := b.FillRatio()
	return fr*fr - float64(len(b.Rectangles))/float64(max(totalRects, 1))
}

// rankBoxes orders the non-empty boxes by ascending clear score.
func rankBoxes(sol *model.Solution) []int {
	total := sol.NumRectangles()
	type ranked struct {
		id    int
		score float64
	}
	var rs []ranked
	for _, b := range sol.Boxes() {
		if !b.Empty() {
			rs = append(rs, ranked{b.ID, clearScore(b, total)})
		}
	}
	slices.SortStableFunc(rs, func(a, b ranked) int { return cmp.Compare(a.score, b.score) })
	ids := make([]int, len(rs))
	for i, r := range rs {
		ids[i] = r.id
	}
	return ids
}

// pickBoxes takes the first (1-randomRate)*n ranked boxes and draws the rest
// at random from the remainder of the ranking.
func pickBoxes(sol *model.Solution, n int, randomRate float64, rng *rand.Rand) []int {
	ranked := rankBoxes(sol)
	n = min(n, len(ranked))
	head := int(math.Floor((1 - randomRate) * float64(n)))
	picked := slices.Clone(ranked[:head])
	pool := slices.Clone(ranked[head:])
	for len(picked) < n && len(pool) > 0 {
		i := rng.Intn(len(pool))
		picked = append(picked, pool[i])
		pool = slices.Delete(pool, i, i+1)
	}
	return picked
}
