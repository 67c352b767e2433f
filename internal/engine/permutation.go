package engine

import (
	"math/rand"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Permutation moves the rectangles of a well-ranked box to the front of the
// selection order and rebuilds the whole solution greedily.
type Permutation struct {
	Placement    model.PlacementKind
	NumNeighbors int
	RandomRate   float64
	rng          *rand.Rand
}

func (p *Permutation) Kind() model.NeighborhoodKind { return model.NeighborhoodPermutation }

func (p *Permutation) Candidates(cur *State, stats model.Stats) (Batch, error) {
	var batch Batch
	for _, boxID := range pickBoxes(cur.Solution, p.NumNeighbors, p.RandomRate, p.rng) {
		b, _ := cur.Solution.Box(boxID)
		st, err := p.rebuild(cur, promote(cur.Order, b))
		if err != nil {
			return Batch{}, err
		}
		batch.Candidates = append(batch.Candidates, Candidate{State: st})
	}
	return batch, nil
}

func (p *Permutation) rebuild(cur *State, order []model.Rectangle) (*State, error) {
	sel, err := NewSelection(model.SelectionOriginal, order)
	if err != nil {
		return nil, err
	}
	pl, err := NewPlacement(p.Placement, p.rng)
	if err != nil {
		return nil, err
	}
	sol, err := (&GreedyAlgo{Selection: sel, Placement: pl}).Run(model.NewSolution(cur.Solution.L))
	if err != nil {
		return nil, err
	}
	return &State{Solution: sol, Placement: pl, Order: order}, nil
}

// promote returns order with the rectangles of b first. Both groups keep
// their relative order and every rectangle is reset.
func promote(order []model.Rectangle, b *model.Box) []model.Rectangle {
	inBox := make(map[int]bool, len(b.Rectangles))
	for _, r := range b.Rectangles {
		inBox[r.ID] = true
	}
	out := make([]model.Rectangle, 0, len(order))
	for _, r := range order {
		if inBox[r.ID] {
			out = append(out, r)
		}
	}
	for _, r := range order {
		if !inBox[r.ID] {
			out = append(out, r)
		}
	}
	for i := range out {
		out[i].Reset()
	}
	return out
}
