package engine

import (
	"cmp"
	"math/rand"
	"slices"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Geometry empties one well-ranked box per candidate and re-places its
// rectangles into the remaining boxes with the repack placement.
type Geometry struct {
	Repack       model.PlacementKind
	NumNeighbors int
	RandomRate   float64
	rng          *rand.Rand
}

func (g *Geometry) Kind() model.NeighborhoodKind { return model.NeighborhoodGeometry }

func (g *Geometry) Candidates(cur *State, stats model.Stats) (Batch, error) {
	var batch Batch
	for _, boxID := range pickBoxes(cur.Solution, g.NumNeighbors, g.RandomRate, g.rng) {
		st, err := g.repack(cur, boxID)
		if err != nil {
			return Batch{}, err
		}
		batch.Candidates = append(batch.Candidates, Candidate{State: st})
	}
	return batch, nil
}

// repack clones the state, removes the box and places its rectangles again,
// largest first.
func (g *Geometry) repack(cur *State, boxID int) (*State, error) {
	pl, err := RepackPlacement(cur.Placement, g.Repack, g.rng)
	if err != nil {
		return nil, err
	}
	sol := cur.Solution.Clone()
	rects, err := emptyBox(sol, pl, boxID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(rects, func(a, b model.Rectangle) int { return cmp.Compare(b.Area(), a.Area()) })
	for _, r := range rects {
		r.Reset()
		if _, err := pl.CheckThenAdd(r, sol); err != nil {
			return nil, err
		}
	}
	return &State{Solution: sol, Placement: pl, Order: cur.Order}, nil
}

// emptyBox takes every rectangle out of a box, deletes the box and returns
// the rectangles.
func emptyBox(sol *model.Solution, pl Placement, boxID int) ([]model.Rectangle, error) {
	b, ok := sol.Box(boxID)
	if !ok {
		return nil, nil
	}
	ids := make([]int, len(b.Rectangles))
	for i, r := range b.Rectangles {
		ids[i] = r.ID
	}
	rects := make([]model.Rectangle, 0, len(ids))
	for _, id := range ids {
		r, err := sol.RemoveRectangle(boxID, id)
		if err != nil {
			return nil, err
		}
		rects = append(rects, r)
	}
	pl.RemoveBox(boxID)
	if err := sol.RemoveBox(boxID); err != nil {
		return nil, err
	}
	return rects, nil
}
