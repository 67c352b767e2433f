package engine

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/piwi3910/BoxPack/internal/model"
)

// GreedyAlgo drains a selection into a placement.
type GreedyAlgo struct {
	Selection *Selection
	Placement Placement
}

// Run places every remaining rectangle into sol and returns it.
func (g *GreedyAlgo) Run(sol *model.Solution) (*model.Solution, error) {
	for r, ok := g.Selection.Next(); ok; r, ok = g.Selection.Next() {
		if _, err := g.Placement.CheckThenAdd(r, sol); err != nil {
			return nil, fmt.Errorf("greedy construction failed: %w", err)
		}
	}
	return sol, nil
}

// State is a solution together with the placement index that built it and
// the rectangle order it was built from. Local search moves from state to
// state.
type State struct {
	Solution  *model.Solution
	Placement Placement
	Order     []model.Rectangle
}

// Clone copies the solution (copy-on-write) and the placement index.
func (s *State) Clone() *State {
	return &State{
		Solution:  s.Solution.Clone(),
		Placement: s.Placement.Clone(),
		Order:     s.Order,
	}
}

// Construct builds a greedy solution for the instance. Rectangles are
// numbered in input order, as Instance.Normalize does.
func Construct(inst model.Instance, selKind model.SelectionKind, plKind model.PlacementKind, rng *rand.Rand) (*State, error) {
	if err := inst.CheckFeasible(); err != nil {
		return nil, err
	}
	rects := slices.Clone(inst.Rectangles)
	for i := range rects {
		rects[i].ID = i
		rects[i].Reset()
	}
	sel, err := NewSelection(selKind, rects)
	if err != nil {
		return nil, err
	}
	pl, err := NewPlacement(plKind, rng)
	if err != nil {
		return nil, err
	}
	order := sel.Order()
	sol, err := (&GreedyAlgo{Selection: sel, Placement: pl}).Run(model.NewSolution(inst.L))
	if err != nil {
		return nil, err
	}
	return &State{Solution: sol, Placement: pl, Order: order}, nil
}

// RunGreedy is the construction entry point.
func RunGreedy(selKind model.SelectionKind, plKind model.PlacementKind, inst model.Instance) (*model.Solution, error) {
	st, err := Construct(inst, selKind, plKind, nil)
	if err != nil {
		return nil, err
	}
	return st.Solution, nil
}
