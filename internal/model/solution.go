package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Solution owns a set of boxes of side L keyed by id.
//
// Boxes are shared between a solution and its clones until one side mutates
// them: the first write through a solution copies the box (copy-on-write at
// box granularity). All mutation must therefore go through Solution methods.
type Solution struct {
	L       int
	RunTime time.Duration

	boxes  map[int]*Box
	owned  map[int]bool
	nextID int
}

func NewSolution(l int) *Solution {
	return &Solution{
		L:     l,
		boxes: make(map[int]*Box),
		owned: make(map[int]bool),
	}
}

// AddNewBox creates an empty box and returns its id.
func (s *Solution) AddNewBox() int {
	id := s.nextID
	s.nextID++
	s.boxes[id] = &Box{ID: id, L: s.L, Rectangles: []Rectangle{}}
	s.owned[id] = true
	return id
}

// RemoveBox deregisters an empty box.
func (s *Solution) RemoveBox(id int) error {
	b, ok := s.boxes[id]
	if !ok {
		return fmt.Errorf("remove box %d: not found: %w", id, ErrInvariantViolation)
	}
	if !b.Empty() {
		return fmt.Errorf("remove box %d: still holds %d rectangles: %w", id, len(b.Rectangles), ErrInvariantViolation)
	}
	delete(s.boxes, id)
	delete(s.owned, id)
	return nil
}

// Box returns the box with the given id. The result is read-only.
func (s *Solution) Box(id int) (*Box, bool) {
	b, ok := s.boxes[id]
	return b, ok
}

// BoxIDs returns the box ids in creation order.
func (s *Solution) BoxIDs() []int {
	ids := slices.Collect(maps.Keys(s.boxes))
	slices.Sort(ids)
	return ids
}

// Boxes returns the boxes in creation order. The boxes are read-only.
func (s *Solution) Boxes() []*Box {
	ids := s.BoxIDs()
	out := make([]*Box, len(ids))
	for i, id := range ids {
		out[i] = s.boxes[id]
	}
	return out
}

func (s *Solution) NumBoxes() int {
	return len(s.boxes)
}

// NumRectangles counts every placed rectangle.
func (s *Solution) NumRectangles() int {
	n := 0
	for _, b := range s.boxes {
		n += len(b.Rectangles)
	}
	return n
}

// Rectangles returns copies of every placed rectangle, box by box.
func (s *Solution) Rectangles() []Rectangle {
	var out []Rectangle
	for _, b := range s.Boxes() {
		out = append(out, b.Rectangles...)
	}
	return out
}

// Rectangle looks up a placed rectangle.
func (s *Solution) Rectangle(boxID, rectID int) (Rectangle, error) {
	b, ok := s.boxes[boxID]
	if !ok {
		return Rectangle{}, fmt.Errorf("box %d not found: %w", boxID, ErrInvariantViolation)
	}
	r, ok := b.Rectangle(rectID)
	if !ok {
		return Rectangle{}, fmt.Errorf("rectangle %d not in box %d: %w", rectID, boxID, ErrInvariantViolation)
	}
	return r, nil
}

// mutable returns a box this solution may write to, copying it first if it
// is still shared with another solution.
func (s *Solution) mutable(id int) (*Box, error) {
	b, ok := s.boxes[id]
	if !ok {
		return nil, fmt.Errorf("box %d not found: %w", id, ErrInvariantViolation)
	}
	if !s.owned[id] {
		b = b.clone()
		s.boxes[id] = b
		s.owned[id] = true
	}
	return b, nil
}

// AddRectangle puts r into the box and sets its BoxID. The position and
// orientation of r are kept as given.
func (s *Solution) AddRectangle(r Rectangle, boxID int) (Rectangle, error) {
	b, err := s.mutable(boxID)
	if err != nil {
		return Rectangle{}, fmt.Errorf("add rectangle %d: %w", r.ID, err)
	}
	if b.IndexOf(r.ID) >= 0 {
		return Rectangle{}, fmt.Errorf("add rectangle %d: already in box %d: %w", r.ID, boxID, ErrInvariantViolation)
	}
	r.BoxID = boxID
	b.Rectangles = append(b.Rectangles, r)
	b.FillArea += r.Area()
	return r, nil
}

// RemoveRectangle takes the rectangle out of its box and returns it with
// BoxID cleared. Position and orientation are left untouched.
func (s *Solution) RemoveRectangle(boxID, rectID int) (Rectangle, error) {
	b, err := s.mutable(boxID)
	if err != nil {
		return Rectangle{}, fmt.Errorf("remove rectangle %d: %w", rectID, err)
	}
	i := b.IndexOf(rectID)
	if i < 0 {
		return Rectangle{}, fmt.Errorf("remove rectangle %d: not in box %d: %w", rectID, boxID, ErrInvariantViolation)
	}
	r := b.Rectangles[i]
	b.Rectangles = slices.Delete(b.Rectangles, i, i+1)
	b.FillArea -= r.Area()
	r.BoxID = Unplaced
	return r, nil
}

// UpdateRectangle changes the position or orientation of a placed rectangle.
// Identity, dimensions and ownership cannot be changed through fn.
func (s *Solution) UpdateRectangle(boxID, rectID int, fn func(r *Rectangle)) error {
	b, err := s.mutable(boxID)
	if err != nil {
		return fmt.Errorf("update rectangle %d: %w", rectID, err)
	}
	i := b.IndexOf(rectID)
	if i < 0 {
		return fmt.Errorf("update rectangle %d: not in box %d: %w", rectID, boxID, ErrInvariantViolation)
	}
	r := b.Rectangles[i]
	fn(&r)
	r.ID, r.Width, r.Height, r.BoxID = rectID, b.Rectangles[i].Width, b.Rectangles[i].Height, boxID
	b.Rectangles[i] = r
	return nil
}

// Clone returns a solution that shares every box with s. Both solutions give
// up write ownership, so the next write on either side copies the box.
func (s *Solution) Clone() *Solution {
	c := &Solution{
		L:       s.L,
		RunTime: s.RunTime,
		boxes:   maps.Clone(s.boxes),
		owned:   make(map[int]bool, len(s.boxes)),
		nextID:  s.nextID,
	}
	clear(s.owned)
	return c
}

// Checkpoint captures the given boxes so that Restore can roll them back.
// Boxes created after the checkpoint are dropped by Restore.
type Checkpoint struct {
	nextID int
	boxes  map[int]*Box
}

// Checkpoint records the current state of the listed boxes. Ids that do not
// exist are recorded as absent.
func (s *Solution) Checkpoint(ids ...int) *Checkpoint {
	cp := &Checkpoint{nextID: s.nextID, boxes: make(map[int]*Box, len(ids))}
	for _, id := range ids {
		if _, seen := cp.boxes[id]; seen {
			continue
		}
		if b, ok := s.boxes[id]; ok {
			cp.boxes[id] = b.clone()
		} else {
			cp.boxes[id] = nil
		}
	}
	return cp
}

// Restore rolls the solution back to the checkpoint.
func (s *Solution) Restore(cp *Checkpoint) {
	for id := range s.boxes {
		if id >= cp.nextID {
			delete(s.boxes, id)
			delete(s.owned, id)
		}
	}
	for id, b := range cp.boxes {
		if b == nil {
			delete(s.boxes, id)
			delete(s.owned, id)
			continue
		}
		s.boxes[id] = b.clone()
		s.owned[id] = true
	}
	s.nextID = cp.nextID
}

// Validate checks the bookkeeping invariants. With strict set it also checks
// that every rectangle lies inside its box and that no two overlap.
func (s *Solution) Validate(strict bool) error {
	seen := make(map[int]int)
	for _, id := range s.BoxIDs() {
		b := s.boxes[id]
		if b.ID != id {
			return fmt.Errorf("box key %d holds box %d: %w", id, b.ID, ErrInvariantViolation)
		}
		sum := 0
		for _, r := range b.Rectangles {
			if r.BoxID != id {
				return fmt.Errorf("rectangle %d in box %d claims box %d: %w", r.ID, id, r.BoxID, ErrInvariantViolation)
			}
			if prev, dup := seen[r.ID]; dup {
				return fmt.Errorf("rectangle %d in boxes %d and %d: %w", r.ID, prev, id, ErrInvariantViolation)
			}
			seen[r.ID] = id
			sum += r.Area()
			if strict && !r.FitsIn(s.L) {
				return fmt.Errorf("rectangle %d out of bounds in box %d: %w", r.ID, id, ErrInvariantViolation)
			}
		}
		if sum != b.FillArea {
			return fmt.Errorf("box %d fill area %d, rectangles sum to %d: %w", id, b.FillArea, sum, ErrInvariantViolation)
		}
		if strict {
			if pairs := b.OverlapPairs(); len(pairs) > 0 {
				return fmt.Errorf("box %d has %d overlapping pairs: %w", id, len(pairs), ErrInvariantViolation)
			}
		}
	}
	return nil
}

type solutionJSON struct {
	L         int    `json:"l"`
	NumBoxes  int    `json:"numBoxes"`
	RuntimeMs int64  `json:"runtimeMs"`
	Boxes     []*Box `json:"boxes"`
}

func (s *Solution) MarshalJSON() ([]byte, error) {
	return json.Marshal(solutionJSON{
		L:         s.L,
		NumBoxes:  s.NumBoxes(),
		RuntimeMs: s.RunTime.Milliseconds(),
		Boxes:     s.Boxes(),
	})
}

func (s *Solution) UnmarshalJSON(data []byte) error {
	var raw solutionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = *NewSolution(raw.L)
	s.RunTime = time.Duration(raw.RuntimeMs) * time.Millisecond
	for _, b := range raw.Boxes {
		b.L = raw.L
		if b.Rectangles == nil {
			b.Rectangles = []Rectangle{}
		}
		s.boxes[b.ID] = b
		s.owned[b.ID] = true
		s.nextID = max(s.nextID, b.ID+1)
	}
	return s.Validate(false)
}
