package engine

import (
	"math/rand"

	"github.com/piwi3910/BoxPack/internal/model"
)

// RandomOverlap drops rectangles at a random position of a random box and
// ignores overlaps. The overlap neighborhood uses it to seed relaxed
// solutions that are repaired afterwards.
type RandomOverlap struct {
	rng *rand.Rand
}

func NewRandomOverlap(rng *rand.Rand) *RandomOverlap {
	return &RandomOverlap{rng: rng}
}

func (ro *RandomOverlap) Kind() model.PlacementKind {
	return model.PlacementRandomOverlap
}

func (ro *RandomOverlap) FindPositionIn(r model.Rectangle, sol *model.Solution, boxID int) (Position, bool) {
	if _, ok := sol.Box(boxID); !ok {
		return Position{}, false
	}
	sideways := r.Sideways
	if !r.Square() && ro.rng.Intn(2) == 0 {
		sideways = !sideways
	}
	w, h := r.Dims(sideways)
	if w > sol.L || h > sol.L {
		return Position{}, false
	}
	return Position{
		BoxID:    boxID,
		X:        ro.rng.Intn(sol.L - w + 1),
		Y:        ro.rng.Intn(sol.L - h + 1),
		Sideways: sideways,
	}, true
}

func (ro *RandomOverlap) FindPosition(r model.Rectangle, sol *model.Solution) Position {
	if ids := sol.BoxIDs(); len(ids) > 0 {
		if pos, ok := ro.FindPositionIn(r, sol, ids[ro.rng.Intn(len(ids))]); ok {
			return pos
		}
	}
	return Position{BoxID: NewBox, X: 0, Y: 0, Sideways: r.Sideways}
}

func (ro *RandomOverlap) Place(r model.Rectangle, sol *model.Solution, pos Position) (model.Rectangle, error) {
	return placeFree(r, sol, pos)
}

func (ro *RandomOverlap) CheckThenAdd(r model.Rectangle, sol *model.Solution) (model.Rectangle, error) {
	return ro.Place(r, sol, ro.FindPosition(r, sol))
}

func (ro *RandomOverlap) Remove(sol *model.Solution, boxID, rectID int) (model.Rectangle, error) {
	return sol.RemoveRectangle(boxID, rectID)
}

func (ro *RandomOverlap) RemoveBox(int) {}

// Clone shares the random source; placements are never used concurrently.
func (ro *RandomOverlap) Clone() Placement {
	return &RandomOverlap{rng: ro.rng}
}

func (ro *RandomOverlap) Reset() {}
