package engine

import (
	"github.com/piwi3910/BoxPack/internal/model"
)

// BottomLeft places each rectangle at the lowest, then leftmost, position a
// candidate anchor slides to. It keeps no index of its own and reads the
// geometry straight from the solution.
type BottomLeft struct{}

func NewBottomLeft() *BottomLeft {
	return &BottomLeft{}
}

func (bl *BottomLeft) Kind() model.PlacementKind {
	return model.PlacementBottomLeft
}

func (bl *BottomLeft) FindPositionIn(r model.Rectangle, sol *model.Solution, boxID int) (Position, bool) {
	b, ok := sol.Box(boxID)
	if !ok || b.AreaLeft() < r.Area() {
		return Position{}, false
	}
	best, found := Position{}, false
	for _, sideways := range orientations(r) {
		w, h := r.Dims(sideways)
		x, y, ok := bottomLeftAnchor(b.Rectangles, sol.L, w, h)
		if !ok {
			continue
		}
		if !found || y < best.Y || (y == best.Y && x < best.X) {
			best = Position{BoxID: boxID, X: x, Y: y, Sideways: sideways}
			found = true
		}
	}
	return best, found
}

func (bl *BottomLeft) FindPosition(r model.Rectangle, sol *model.Solution) Position {
	for _, id := range sol.BoxIDs() {
		if pos, ok := bl.FindPositionIn(r, sol, id); ok {
			return pos
		}
	}
	return Position{BoxID: NewBox, X: 0, Y: 0, Sideways: r.Sideways}
}

func (bl *BottomLeft) Place(r model.Rectangle, sol *model.Solution, pos Position) (model.Rectangle, error) {
	return placeFree(r, sol, pos)
}

func (bl *BottomLeft) CheckThenAdd(r model.Rectangle, sol *model.Solution) (model.Rectangle, error) {
	return bl.Place(r, sol, bl.FindPosition(r, sol))
}

func (bl *BottomLeft) Remove(sol *model.Solution, boxID, rectID int) (model.Rectangle, error) {
	return sol.RemoveRectangle(boxID, rectID)
}

func (bl *BottomLeft) RemoveBox(int) {}

func (bl *BottomLeft) Clone() Placement {
	return &BottomLeft{}
}

func (bl *BottomLeft) Reset() {}

// bottomLeftAnchor tries every anchor generated by the placed rectangles,
// plus the far corner and the origin, slides each down and left until it
// stops, and keeps the lowest then leftmost result.
func bottomLeftAnchor(placed []model.Rectangle, l, w, h int) (int, int, bool) {
	if w > l || h > l {
		return 0, 0, false
	}
	type anchor struct{ x, y int }
	anchors := make([]anchor, 0, 4*len(placed)+2)
	anchors = append(anchors, anchor{l - w, l - h}, anchor{0, 0})
	for _, q := range placed {
		anchors = append(anchors,
			anchor{q.Right(), q.Y},
			anchor{q.X, q.Bottom()},
			anchor{q.Right(), 0},
			anchor{0, q.Bottom()},
		)
	}

	bestX, bestY, found := 0, 0, false
	for _, a := range anchors {
		if !freeAt(placed, l, a.x, a.y, w, h) {
			continue
		}
		x, y := slide(placed, a.x, a.y, w, h)
		if !found || y < bestY || (y == bestY && x < bestX) {
			bestX, bestY, found = x, y, true
		}
	}
	return bestX, bestY, found
}

// slide alternates dropping down and pushing left until neither moves. Both
// steps keep a free position free, and each step strictly decreases a
// coordinate, so the loop ends.
func slide(placed []model.Rectangle, x, y, w, h int) (int, int) {
	for range 2*len(placed) + 2 {
		ny := dropDown(placed, x, y, w)
		nx := pushLeft(placed, x, ny, h)
		if nx == x && ny == y {
			break
		}
		x, y = nx, ny
	}
	return x, y
}

func dropDown(placed []model.Rectangle, x, y, w int) int {
	floor := 0
	for _, q := range placed {
		if q.X < x+w && x < q.Right() && q.Bottom() <= y {
			floor = max(floor, q.Bottom())
		}
	}
	return floor
}

func pushLeft(placed []model.Rectangle, x, y, h int) int {
	wall := 0
	for _, q := range placed {
		if q.Y < y+h && y < q.Bottom() && q.Right() <= x {
			wall = max(wall, q.Right())
		}
	}
	return wall
}

func freeAt(placed []model.Rectangle, l, x, y, w, h int) bool {
	if x < 0 || y < 0 || x+w > l || y+h > l {
		return false
	}
	for _, q := range placed {
		if x < q.Right() && q.X < x+w && y < q.Bottom() && q.Y < y+h {
			return false
		}
	}
	return true
}
