package engine

import (
	"fmt"
	"math/rand"

	"github.com/piwi3910/BoxPack/internal/model"
)

// NewBox and NewShelf mark positions that open a box or a shelf.
const (
	NewBox   = -1
	NewShelf = -1
)

// Position is a placement decision for one rectangle.
type Position struct {
	BoxID    int
	X, Y     int
	Sideways bool
	// Shelf is the shelf index inside the box for shelf policies, NewShelf to
	// open one. Other policies ignore it.
	Shelf int
}

// Placement decides where rectangles go and keeps whatever index it needs in
// sync with the solution it mutates.
type Placement interface {
	Kind() model.PlacementKind
	// FindPosition never fails: when no existing box accepts r the position
	// opens a new box.
	FindPosition(r model.Rectangle, sol *model.Solution) Position
	// FindPositionIn looks for a position inside one box only.
	FindPositionIn(r model.Rectangle, sol *model.Solution, boxID int) (Position, bool)
	// Place commits r at pos and returns the placed rectangle.
	Place(r model.Rectangle, sol *model.Solution, pos Position) (model.Rectangle, error)
	// CheckThenAdd is FindPosition followed by Place.
	CheckThenAdd(r model.Rectangle, sol *model.Solution) (model.Rectangle, error)
	// Remove pulls a rectangle out of its box and compacts the policy index.
	// An emptied box is left in the solution.
	Remove(sol *model.Solution, boxID, rectID int) (model.Rectangle, error)
	// RemoveBox forgets the index entry of a deleted box.
	RemoveBox(boxID int)
	Clone() Placement
	Reset()
}

// NewPlacement returns a fresh policy of the given kind. rng is only used by
// the random overlap policy.
func NewPlacement(kind model.PlacementKind, rng *rand.Rand) (Placement, error) {
	switch kind {
	case model.PlacementShelfFirstFit, model.PlacementShelfBestAreaFit:
		return NewShelfPlacement(kind), nil
	case model.PlacementBottomLeft:
		return NewBottomLeft(), nil
	case model.PlacementRandomOverlap:
		if rng == nil {
			rng = rand.New(rand.NewSource(42))
		}
		return NewRandomOverlap(rng), nil
	default:
		return nil, fmt.Errorf("unknown placement %q: %w", kind, model.ErrInvalidOption)
	}
}

// RepackPlacement derives the policy a neighborhood uses to re-place
// rectangles in a solution built by construction.
//
// Shelf policies need the shelf index of every existing box, so they can only
// continue from a shelf-based construction; the index is cloned and switched
// to the requested kind. Bottom-left reads geometry straight from the solution
// and is always compatible.
func RepackPlacement(construction Placement, kind model.PlacementKind, rng *rand.Rand) (Placement, error) {
	if !kind.ShelfBased() {
		return NewPlacement(kind, rng)
	}
	sp, ok := construction.(*ShelfPlacement)
	if !ok {
		return nil, fmt.Errorf("%s cannot continue from %s construction: %w",
			kind, construction.Kind(), model.ErrIncompatiblePlacement)
	}
	c := sp.cloneShelves()
	c.kind = kind
	return c, nil
}

// placeFree commits a free-position placement shared by the policies that do
// not keep an index.
func placeFree(r model.Rectangle, sol *model.Solution, pos Position) (model.Rectangle, error) {
	boxID := pos.BoxID
	if boxID == NewBox {
		boxID = sol.AddNewBox()
	}
	r.X, r.Y, r.Sideways = pos.X, pos.Y, pos.Sideways
	placed, err := sol.AddRectangle(r, boxID)
	if err != nil {
		return model.Rectangle{}, fmt.Errorf("failed to place rectangle %d: %w", r.ID, err)
	}
	return placed, nil
}

// orientations lists the orientations worth trying, current one first.
func orientations(r model.Rectangle) []bool {
	if r.Square() {
		return []bool{r.Sideways}
	}
	return []bool{r.Sideways, !r.Sideways}
}
