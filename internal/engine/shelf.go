package engine

import (
	"fmt"
	"math"
	"slices"

	"github.com/piwi3910/BoxPack/internal/model"
)

type shelfItem struct {
	id   int
	w, h int
}

// Shelf is a horizontal strip of a box packed left to right.
type Shelf struct {
	Y            int
	Height       int
	MaxWidth     int
	CurrentWidth int
	items        []shelfItem
}

// Util is the occupied fraction of the shelf strip.
func (s *Shelf) Util() float64 {
	if s.MaxWidth == 0 || s.Height == 0 {
		return 0
	}
	area := 0
	for _, it := range s.items {
		area += it.w * it.h
	}
	return float64(area) / float64(s.MaxWidth*s.Height)
}

// ItemIDs returns the rectangle ids on the shelf in placement order.
func (s *Shelf) ItemIDs() []int {
	ids := make([]int, len(s.items))
	for i, it := range s.items {
		ids[i] = it.id
	}
	return ids
}

// waste is the leftover width plus the leftover height for a w x h item. ok
// is false when the item does not fit.
func (s *Shelf) waste(w, h int) (int, bool) {
	dw := s.MaxWidth - s.CurrentWidth - w
	dh := s.Height - h
	if dw < 0 || dh < 0 {
		return 0, false
	}
	return dw + dh, true
}

func (s *Shelf) clone() *Shelf {
	c := *s
	c.items = slices.Clone(s.items)
	return &c
}

// ShelfPlacement implements Shelf First Fit and Shelf Best Area Fit on top of
// a box id -> shelves index.
type ShelfPlacement struct {
	kind    model.PlacementKind
	shelves map[int][]*Shelf
}

func NewShelfPlacement(kind model.PlacementKind) *ShelfPlacement {
	return &ShelfPlacement{kind: kind, shelves: make(map[int][]*Shelf)}
}

func (sp *ShelfPlacement) Kind() model.PlacementKind {
	return sp.kind
}

// Shelves returns copies of the shelves of a box.
func (sp *ShelfPlacement) Shelves(boxID int) []Shelf {
	out := make([]Shelf, len(sp.shelves[boxID]))
	for i, sh := range sp.shelves[boxID] {
		out[i] = *sh.clone()
	}
	return out
}

// top returns the y offset at which the next shelf of a box would start.
func (sp *ShelfPlacement) top(boxID int) int {
	shelves := sp.shelves[boxID]
	if len(shelves) == 0 {
		return 0
	}
	last := shelves[len(shelves)-1]
	return last.Y + last.Height
}

// newShelfPosition opens a shelf with the smaller side as height.
func (sp *ShelfPlacement) newShelfPosition(r model.Rectangle, l, boxID int) (Position, bool) {
	y := sp.top(boxID)
	w, h := r.Dims(true)
	if w > l || y+h > l {
		return Position{}, false
	}
	return Position{BoxID: boxID, X: 0, Y: y, Sideways: true, Shelf: NewShelf}, true
}

func shelfOrientations(r model.Rectangle) []bool {
	if r.Square() {
		return []bool{false}
	}
	return []bool{false, true}
}

// firstFit scans the shelves of a box in creation order.
func (sp *ShelfPlacement) firstFit(r model.Rectangle, boxID int) (Position, bool) {
	for i, sh := range sp.shelves[boxID] {
		for _, sideways := range shelfOrientations(r) {
			w, h := r.Dims(sideways)
			if _, ok := sh.waste(w, h); ok {
				return Position{BoxID: boxID, X: sh.CurrentWidth, Y: sh.Y, Sideways: sideways, Shelf: i}, true
			}
		}
	}
	return Position{}, false
}

// bestFit returns the least wasteful shelf slot of a box.
func (sp *ShelfPlacement) bestFit(r model.Rectangle, boxID int) (Position, int, bool) {
	best, bestWaste, found := Position{}, math.MaxInt, false
	for i, sh := range sp.shelves[boxID] {
		for _, sideways := range shelfOrientations(r) {
			w, h := r.Dims(sideways)
			if waste, ok := sh.waste(w, h); ok && waste < bestWaste {
				best = Position{BoxID: boxID, X: sh.CurrentWidth, Y: sh.Y, Sideways: sideways, Shelf: i}
				bestWaste, found = waste, true
			}
		}
	}
	return best, bestWaste, found
}

func (sp *ShelfPlacement) FindPositionIn(r model.Rectangle, sol *model.Solution, boxID int) (Position, bool) {
	b, ok := sol.Box(boxID)
	if !ok || b.AreaLeft() < r.Area() {
		return Position{}, false
	}
	if sp.kind == model.PlacementShelfBestAreaFit {
		if pos, _, ok := sp.bestFit(r, boxID); ok {
			return pos, true
		}
	} else if pos, ok := sp.firstFit(r, boxID); ok {
		return pos, true
	}
	return sp.newShelfPosition(r, sol.L, boxID)
}

func (sp *ShelfPlacement) FindPosition(r model.Rectangle, sol *model.Solution) Position {
	if sp.kind == model.PlacementShelfBestAreaFit {
		return sp.findBestAreaFit(r, sol)
	}
	for _, id := range sol.BoxIDs() {
		if pos, ok := sp.FindPositionIn(r, sol, id); ok {
			return pos
		}
	}
	return Position{BoxID: NewBox, Sideways: true, Shelf: NewShelf}
}

func (sp *ShelfPlacement) findBestAreaFit(r model.Rectangle, sol *model.Solution) Position {
	ids := sol.BoxIDs()
	best, bestWaste, found := Position{}, math.MaxInt, false
	for _, id := range ids {
		b, _ := sol.Box(id)
		if b.AreaLeft() < r.Area() {
			continue
		}
		if pos, waste, ok := sp.bestFit(r, id); ok && waste < bestWaste {
			best, bestWaste, found = pos, waste, true
		}
	}
	if found {
		return best
	}

	// No shelf fits: open a shelf where it wastes the least box height.
	bestHeight := math.MaxInt
	for _, id := range ids {
		b, _ := sol.Box(id)
		if b.AreaLeft() < r.Area() {
			continue
		}
		pos, ok := sp.newShelfPosition(r, sol.L, id)
		if !ok {
			continue
		}
		if left := sol.L - pos.Y - r.SmallerSide(); left < bestHeight {
			best, bestHeight, found = pos, left, true
		}
	}
	if found {
		return best
	}
	return Position{BoxID: NewBox, Sideways: true, Shelf: NewShelf}
}

func (sp *ShelfPlacement) Place(r model.Rectangle, sol *model.Solution, pos Position) (model.Rectangle, error) {
	boxID := pos.BoxID
	if boxID == NewBox {
		boxID = sol.AddNewBox()
	}
	w, h := r.Dims(pos.Sideways)

	var sh *Shelf
	if pos.Shelf == NewShelf {
		sh = &Shelf{Y: sp.top(boxID), Height: h, MaxWidth: sol.L}
		if sh.Y+h > sol.L || w > sol.L {
			return model.Rectangle{}, fmt.Errorf("new shelf for rectangle %d does not fit box %d: %w", r.ID, boxID, model.ErrInvariantViolation)
		}
	} else {
		shelves := sp.shelves[boxID]
		if pos.Shelf < 0 || pos.Shelf >= len(shelves) {
			return model.Rectangle{}, fmt.Errorf("shelf %d of box %d not found: %w", pos.Shelf, boxID, model.ErrInvariantViolation)
		}
		sh = shelves[pos.Shelf]
		if _, ok := sh.waste(w, h); !ok {
			return model.Rectangle{}, fmt.Errorf("rectangle %d does not fit shelf %d of box %d: %w", r.ID, pos.Shelf, boxID, model.ErrInvariantViolation)
		}
	}

	r.X, r.Y, r.Sideways = sh.CurrentWidth, sh.Y, pos.Sideways
	placed, err := sol.AddRectangle(r, boxID)
	if err != nil {
		return model.Rectangle{}, fmt.Errorf("failed to place rectangle %d: %w", r.ID, err)
	}
	if pos.Shelf == NewShelf {
		sp.shelves[boxID] = append(sp.shelves[boxID], sh)
	}
	sh.items = append(sh.items, shelfItem{id: r.ID, w: w, h: h})
	sh.CurrentWidth += w
	return placed, nil
}

func (sp *ShelfPlacement) CheckThenAdd(r model.Rectangle, sol *model.Solution) (model.Rectangle, error) {
	return sp.Place(r, sol, sp.FindPosition(r, sol))
}

func (sp *ShelfPlacement) locate(boxID, rectID int) (int, int, bool) {
	for si, sh := range sp.shelves[boxID] {
		for ii, it := range sh.items {
			if it.id == rectID {
				return si, ii, true
			}
		}
	}
	return 0, 0, false
}

// Remove takes the rectangle off its shelf, closes the gap it leaves and
// compacts the box.
func (sp *ShelfPlacement) Remove(sol *model.Solution, boxID, rectID int) (model.Rectangle, error) {
	si, ii, ok := sp.locate(boxID, rectID)
	if !ok {
		return model.Rectangle{}, fmt.Errorf("rectangle %d has no shelf in box %d: %w", rectID, boxID, model.ErrInvariantViolation)
	}
	r, err := sol.RemoveRectangle(boxID, rectID)
	if err != nil {
		return model.Rectangle{}, err
	}

	sh := sp.shelves[boxID][si]
	removed := sh.items[ii]
	sh.items = slices.Delete(sh.items, ii, ii+1)
	sh.CurrentWidth -= removed.w

	x := 0
	for i, it := range sh.items {
		if i >= ii {
			if err := sol.UpdateRectangle(boxID, it.id, func(r *model.Rectangle) { r.X = x }); err != nil {
				return model.Rectangle{}, err
			}
		}
		x += it.w
	}
	if removed.h == sh.Height && len(sh.items) > 0 {
		sh.Height = 0
		for _, it := range sh.items {
			sh.Height = max(sh.Height, it.h)
		}
	}

	if err := sp.CompactBox(sol, boxID); err != nil {
		return model.Rectangle{}, err
	}
	return r, nil
}

// CompactBox drops empty shelves and restacks the rest from y=0. A box left
// without shelves loses its index entry.
func (sp *ShelfPlacement) CompactBox(sol *model.Solution, boxID int) error {
	kept := sp.shelves[boxID][:0]
	y := 0
	for _, sh := range sp.shelves[boxID] {
		if len(sh.items) == 0 {
			continue
		}
		if sh.Y != y {
			for _, it := range sh.items {
				if err := sol.UpdateRectangle(boxID, it.id, func(r *model.Rectangle) { r.Y = y }); err != nil {
					return fmt.Errorf("failed to restack shelf in box %d: %w", boxID, err)
				}
			}
			sh.Y = y
		}
		y += sh.Height
		kept = append(kept, sh)
	}
	if len(kept) == 0 {
		delete(sp.shelves, boxID)
		return nil
	}
	sp.shelves[boxID] = kept
	return nil
}

func (sp *ShelfPlacement) RemoveBox(boxID int) {
	delete(sp.shelves, boxID)
}

func (sp *ShelfPlacement) cloneShelves() *ShelfPlacement {
	c := &ShelfPlacement{kind: sp.kind, shelves: make(map[int][]*Shelf, len(sp.shelves))}
	for id, shelves := range sp.shelves {
		cs := make([]*Shelf, len(shelves))
		for i, sh := range shelves {
			cs[i] = sh.clone()
		}
		c.shelves[id] = cs
	}
	return c
}

func (sp *ShelfPlacement) Clone() Placement {
	return sp.cloneShelves()
}

func (sp *ShelfPlacement) Reset() {
	clear(sp.shelves)
}

// Verify checks that the shelf index agrees with the rectangles of sol.
func (sp *ShelfPlacement) Verify(sol *model.Solution) error {
	for boxID, shelves := range sp.shelves {
		b, ok := sol.Box(boxID)
		if !ok {
			return fmt.Errorf("shelves indexed for missing box %d: %w", boxID, model.ErrInvariantViolation)
		}
		count := 0
		for si, sh := range shelves {
			x := 0
			for _, it := range sh.items {
				r, ok := b.Rectangle(it.id)
				if !ok || r.X != x || r.Y != sh.Y || r.W() != it.w || r.H() != it.h || it.h > sh.Height {
					return fmt.Errorf("shelf %d of box %d out of sync at rectangle %d: %w", si, boxID, it.id, model.ErrInvariantViolation)
				}
				x += it.w
				count++
			}
			if x != sh.CurrentWidth {
				return fmt.Errorf("shelf %d of box %d width %d, items sum to %d: %w", si, boxID, sh.CurrentWidth, x, model.ErrInvariantViolation)
			}
		}
		if count != len(b.Rectangles) {
			return fmt.Errorf("box %d holds %d rectangles, shelves index %d: %w", boxID, len(b.Rectangles), count, model.ErrInvariantViolation)
		}
	}
	for _, b := range sol.Boxes() {
		if _, ok := sp.shelves[b.ID]; !ok && !b.Empty() {
			return fmt.Errorf("box %d has no shelves: %w", b.ID, model.ErrInvariantViolation)
		}
	}
	return nil
}
