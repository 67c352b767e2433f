package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Move is a reversible edit of a solution.
//
// Apply with permanent=false performs a trial edit and returns a token that
// Undo uses to restore the exact prior state. With permanent=true the edit is
// committed together with its bookkeeping (shelf compaction, deleting an
// emptied box) and no token is returned. A target that cannot be realized
// yields model.ErrInfeasibleMove and leaves the solution untouched.
type Move interface {
	Apply(sol *model.Solution, permanent bool) (*UndoToken, error)
	String() string
}

// UndoToken restores the boxes touched by a trial move.
type UndoToken struct {
	cp *model.Checkpoint
}

// Undo rolls back a trial move. A nil token is a no-op.
func Undo(sol *model.Solution, tok *UndoToken) {
	if tok != nil {
		sol.Restore(tok.cp)
	}
}

// ScoreMove trial-applies m, scores the result and undoes it. ok is false
// when the move is infeasible. sol is left exactly as it was.
func ScoreMove(m Move, obj Objective, sol *model.Solution, stats model.Stats) (score float64, ok bool, err error) {
	tok, err := m.Apply(sol, false)
	if errors.Is(err, model.ErrInfeasibleMove) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	score = obj.Score(sol, stats)
	Undo(sol, tok)
	return score, true, nil
}

func infeasible(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, model.ErrInfeasibleMove)...)
}

func commit(permanent bool, cp *model.Checkpoint) *UndoToken {
	if permanent {
		return nil
	}
	return &UndoToken{cp: cp}
}

// ShiftMove translates a rectangle inside its box.
type ShiftMove struct {
	BoxID, RectID int
	DX, DY        int
}

func (m ShiftMove) Apply(sol *model.Solution, permanent bool) (*UndoToken, error) {
	r, err := sol.Rectangle(m.BoxID, m.RectID)
	if err != nil {
		return nil, err
	}
	r.X += m.DX
	r.Y += m.DY
	if !r.FitsIn(sol.L) {
		return nil, infeasible("shift of rectangle %d by (%d,%d) leaves the box", m.RectID, m.DX, m.DY)
	}
	cp := sol.Checkpoint(m.BoxID)
	if err := sol.UpdateRectangle(m.BoxID, m.RectID, func(q *model.Rectangle) { q.X, q.Y = r.X, r.Y }); err != nil {
		return nil, err
	}
	return commit(permanent, cp), nil
}

func (m ShiftMove) String() string {
	return fmt.Sprintf("shift(%d/%d by %d,%d)", m.BoxID, m.RectID, m.DX, m.DY)
}

// RotateMove turns a rectangle by 90 degrees, pulling it back inside the box
// if the new footprint would stick out.
type RotateMove struct {
	BoxID, RectID int
}

// rotated returns r turned in place and clamped to the box.
func rotated(r model.Rectangle, l int) (model.Rectangle, bool) {
	r.Rotate()
	r.X = min(r.X, l-r.W())
	r.Y = min(r.Y, l-r.H())
	return r, r.X >= 0 && r.Y >= 0
}

func (m RotateMove) Apply(sol *model.Solution, permanent bool) (*UndoToken, error) {
	r, err := sol.Rectangle(m.BoxID, m.RectID)
	if err != nil {
		return nil, err
	}
	if r.Square() {
		return nil, infeasible("rotating square rectangle %d changes nothing", m.RectID)
	}
	r, ok := rotated(r, sol.L)
	if !ok {
		return nil, infeasible("rotated rectangle %d does not fit", m.RectID)
	}
	cp := sol.Checkpoint(m.BoxID)
	if err := sol.UpdateRectangle(m.BoxID, m.RectID, func(q *model.Rectangle) {
		q.X, q.Y, q.Sideways = r.X, r.Y, r.Sideways
	}); err != nil {
		return nil, err
	}
	return commit(permanent, cp), nil
}

func (m RotateMove) String() string {
	return fmt.Sprintf("rotate(%d/%d)", m.BoxID, m.RectID)
}

// SwapMove exchanges the anchors of two rectangles in the same box.
type SwapMove struct {
	BoxID int
	A, B  int
}

func swapped(a, b model.Rectangle, l int) (model.Rectangle, model.Rectangle, bool) {
	a.X, a.Y, b.X, b.Y = b.X, b.Y, a.X, a.Y
	return a, b, a.FitsIn(l) && b.FitsIn(l)
}

func (m SwapMove) Apply(sol *model.Solution, permanent bool) (*UndoToken, error) {
	if m.A == m.B {
		return nil, infeasible("swap of rectangle %d with itself", m.A)
	}
	a, err := sol.Rectangle(m.BoxID, m.A)
	if err != nil {
		return nil, err
	}
	b, err := sol.Rectangle(m.BoxID, m.B)
	if err != nil {
		return nil, err
	}
	a, b, ok := swapped(a, b, sol.L)
	if !ok {
		return nil, infeasible("swapped rectangles %d and %d leave the box", m.A, m.B)
	}
	cp := sol.Checkpoint(m.BoxID)
	for _, r := range []model.Rectangle{a, b} {
		if err := sol.UpdateRectangle(m.BoxID, r.ID, func(q *model.Rectangle) { q.X, q.Y = r.X, r.Y }); err != nil {
			sol.Restore(cp)
			return nil, err
		}
	}
	return commit(permanent, cp), nil
}

func (m SwapMove) String() string {
	return fmt.Sprintf("swap(%d/%d<->%d)", m.BoxID, m.A, m.B)
}

// RelocateMove moves a rectangle to another box, or to a new box when To is
// NewBox.
//
// With a Placement the target position is chosen by that policy and the
// permanent apply keeps its index in sync. Without one the rectangle goes to
// the given X, Y and orientation.
type RelocateMove struct {
	From, RectID int
	To           int
	X, Y         int
	Sideways     bool
	Placement    Placement
}

func (m RelocateMove) target(r model.Rectangle, sol *model.Solution) (Position, error) {
	if m.To == m.From {
		return Position{}, infeasible("relocation of rectangle %d into its own box", m.RectID)
	}
	if m.To != NewBox {
		tb, ok := sol.Box(m.To)
		if !ok {
			return Position{}, fmt.Errorf("relocation target box %d not found: %w", m.To, model.ErrInvariantViolation)
		}
		if tb.AreaLeft() < r.Area() {
			return Position{}, infeasible("box %d lacks room for rectangle %d", m.To, m.RectID)
		}
	}

	if m.Placement != nil {
		if m.To == NewBox {
			return m.Placement.FindPosition(r, model.NewSolution(sol.L)), nil
		}
		pos, ok := m.Placement.FindPositionIn(r, sol, m.To)
		if !ok {
			return Position{}, infeasible("no position for rectangle %d in box %d", m.RectID, m.To)
		}
		return pos, nil
	}

	q := r
	q.X, q.Y, q.Sideways = m.X, m.Y, m.Sideways
	if !q.FitsIn(sol.L) {
		return Position{}, infeasible("rectangle %d at (%d,%d) leaves box %d", m.RectID, m.X, m.Y, m.To)
	}
	return Position{BoxID: m.To, X: m.X, Y: m.Y, Sideways: m.Sideways, Shelf: NewShelf}, nil
}

func (m RelocateMove) Apply(sol *model.Solution, permanent bool) (*UndoToken, error) {
	r, err := sol.Rectangle(m.From, m.RectID)
	if err != nil {
		return nil, err
	}
	pos, err := m.target(r, sol)
	if err != nil {
		return nil, err
	}

	if !permanent || m.Placement == nil {
		cp := sol.Checkpoint(m.From, m.To)
		removed, err := sol.RemoveRectangle(m.From, m.RectID)
		if err == nil {
			_, err = placeFree(removed, sol, pos)
		}
		if err != nil {
			sol.Restore(cp)
			return nil, err
		}
		if permanent {
			return nil, removeIfEmpty(sol, nil, m.From)
		}
		return &UndoToken{cp: cp}, nil
	}

	removed, err := m.Placement.Remove(sol, m.From, m.RectID)
	if err != nil {
		return nil, err
	}
	if _, err := m.Placement.Place(removed, sol, pos); err != nil {
		return nil, err
	}
	return nil, removeIfEmpty(sol, m.Placement, m.From)
}

func (m RelocateMove) String() string {
	return fmt.Sprintf("relocate(%d/%d->%d)", m.From, m.RectID, m.To)
}

// removeIfEmpty deletes a box that no longer holds rectangles.
func removeIfEmpty(sol *model.Solution, pl Placement, boxID int) error {
	b, ok := sol.Box(boxID)
	if !ok || !b.Empty() {
		return nil
	}
	if pl != nil {
		pl.RemoveBox(boxID)
	}
	return sol.RemoveBox(boxID)
}
