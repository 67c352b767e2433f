package engine

import (
	"cmp"
	"math"
	"math/rand"
	"slices"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Overlap searches over relaxed solutions in which rectangles may overlap and
// boxes may be filled beyond capacity, repairing them as the tolerances decay.
//
// Each iteration either relieves overloaded boxes, repairs overlapping pairs
// in boxes outside tolerance, or, when every box is within tolerance,
// dissolves the least filled boxes into the others.
type Overlap struct {
	Config       model.OverlapConfig
	NumNeighbors int

	rng     *rand.Rand
	bl      *BottomLeft
	scatter *RandomOverlap
}

func NewOverlap(cfg model.OverlapConfig, numNeighbors int, rng *rand.Rand) *Overlap {
	return &Overlap{
		Config:       cfg,
		NumNeighbors: numNeighbors,
		rng:          rng,
		bl:           NewBottomLeft(),
		scatter:      NewRandomOverlap(rng),
	}
}

func (o *Overlap) Kind() model.NeighborhoodKind { return model.NeighborhoodOverlap }

func (o *Overlap) tolerance(base, progress float64) float64 {
	return base * math.Pow(1-progress, o.Config.DecayExponent)
}

type boxPair struct {
	boxID int
	pair  model.OverlapPair
}

func (o *Overlap) Candidates(cur *State, stats model.Stats) (Batch, error) {
	sol := cur.Solution
	p := stats.Progress()
	first := p < o.Config.SwitchProgress
	batch := Batch{FirstImprovement: first, BestImprovement: !first}
	limit := 1 + int(math.Floor(float64(o.NumNeighbors)*(1-p)))
	step := max(1, int(math.Floor(float64(sol.L)*(1-p))))

	overloadTol := o.tolerance(o.Config.OverloadTolerance, p)
	for _, b := range sol.Boxes() {
		if len(batch.Candidates) >= limit {
			break
		}
		if b.Overload() > overloadTol {
			if m, ok := o.relieve(sol, b); ok {
				batch.Candidates = append(batch.Candidates, Candidate{Move: m})
			}
		}
	}
	if len(batch.Candidates) > 0 {
		return batch, nil
	}

	overlapTol := o.tolerance(o.Config.OverlapTolerance, p)
	var pairs []boxPair
	for _, b := range sol.Boxes() {
		bps := b.OverlapPairs()
		worst := 0.0
		for _, bp := range bps {
			worst = max(worst, bp.Rate)
		}
		if len(bps) == 0 || (overlapTol > 0 && worst <= overlapTol) {
			continue
		}
		for _, bp := range bps {
			pairs = append(pairs, boxPair{boxID: b.ID, pair: bp})
		}
	}
	slices.SortStableFunc(pairs, func(a, b boxPair) int { return cmp.Compare(b.pair.Area, a.pair.Area) })

	for _, bp := range pairs[:min(limit, len(pairs))] {
		a, err := sol.Rectangle(bp.boxID, bp.pair.A)
		if err != nil {
			return Batch{}, err
		}
		b, err := sol.Rectangle(bp.boxID, bp.pair.B)
		if err != nil {
			return Batch{}, err
		}
		if m, ok := o.repair(sol, a, b); ok {
			batch.Candidates = append(batch.Candidates, Candidate{Move: m})
		}
		if o.rng.Float64() < o.Config.RandomMoveProb*(1-p) {
			if m, ok := o.randomShift(sol.L, a, b, step); ok {
				batch.Candidates = append(batch.Candidates, Candidate{Move: m})
			}
		}
	}
	if len(batch.Candidates) > 0 {
		return batch, nil
	}

	if st, ok, err := o.relax(cur); err != nil {
		return Batch{}, err
	} else if ok {
		batch.Candidates = append(batch.Candidates, Candidate{State: st})
	}
	return batch, nil
}

// relieve moves the largest rectangle out of an overloaded box: to an empty
// box if there is one, else to the box with the most room, else to a new box.
func (o *Overlap) relieve(sol *model.Solution, b *model.Box) (Move, bool) {
	if b.Empty() {
		return nil, false
	}
	largest := slices.MaxFunc(b.Rectangles, func(x, y model.Rectangle) int { return cmp.Compare(x.Area(), y.Area()) })
	return o.evict(sol, b.ID, largest), true
}

// evict builds the relocation of r out of its box.
func (o *Overlap) evict(sol *model.Solution, from int, r model.Rectangle) Move {
	var roomiest *model.Box
	for _, t := range sol.Boxes() {
		if t.ID == from {
			continue
		}
		if t.Empty() {
			return RelocateMove{From: from, RectID: r.ID, To: t.ID, Sideways: r.Sideways}
		}
		if t.AreaLeft() >= r.Area() && (roomiest == nil || t.AreaLeft() > roomiest.AreaLeft()) {
			roomiest = t
		}
	}
	if roomiest != nil {
		probe := r
		probe.BoxID = model.Unplaced
		pos, ok := o.bl.FindPositionIn(probe, sol, roomiest.ID)
		if !ok {
			pos, _ = o.scatter.FindPositionIn(probe, sol, roomiest.ID)
		}
		return RelocateMove{From: from, RectID: r.ID, To: roomiest.ID, X: pos.X, Y: pos.Y, Sideways: pos.Sideways}
	}
	return RelocateMove{From: from, RectID: r.ID, To: NewBox, Sideways: r.Sideways}
}

// repair returns the least disruptive move that reduces the overlap of a
// and b: a shift along the axis of least overlap, a rotation, a swap, and
// finally evicting the smaller rectangle from the box.
func (o *Overlap) repair(sol *model.Solution, a, b model.Rectangle) (Move, bool) {
	l := sol.L
	before := model.OverlapArea(a, b)
	if before == 0 {
		return nil, false
	}

	if m, ok := separate(l, a, b); ok {
		return m, true
	}

	for _, pair := range [][2]model.Rectangle{{a, b}, {b, a}} {
		r, other := pair[0], pair[1]
		if r.Square() {
			continue
		}
		if rot, ok := rotated(r, l); ok && model.OverlapArea(rot, other) < before {
			return RotateMove{BoxID: r.BoxID, RectID: r.ID}, true
		}
	}

	if sa, sb, ok := swapped(a, b, l); ok && model.OverlapArea(sa, sb) < before {
		return SwapMove{BoxID: a.BoxID, A: a.ID, B: b.ID}, true
	}

	smaller := a
	if b.Area() < a.Area() {
		smaller = b
	}
	return o.evict(sol, smaller.BoxID, smaller), true
}

// separate shifts one of the two rectangles just far enough to clear the
// other, trying the axis with the smaller overlap first.
func separate(l int, a, b model.Rectangle) (Move, bool) {
	ox := min(a.Right(), b.Right()) - max(a.X, b.X)
	oy := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	axes := []bool{true, false}
	if oy < ox {
		axes = []bool{false, true}
	}
	for _, alongX := range axes {
		for _, m := range pushApart(a, b, alongX) {
			r := a
			if m.RectID == b.ID {
				r = b
			}
			r.X += m.DX
			r.Y += m.DY
			if r.FitsIn(l) {
				return m, true
			}
		}
	}
	return nil, false
}

// pushApart lists the shifts that clear a and b along one axis: each
// rectangle moved away from the other, then towards the far side.
func pushApart(a, b model.Rectangle, alongX bool) []ShiftMove {
	shift := func(r model.Rectangle, d int) ShiftMove {
		if alongX {
			return ShiftMove{BoxID: r.BoxID, RectID: r.ID, DX: d}
		}
		return ShiftMove{BoxID: r.BoxID, RectID: r.ID, DY: d}
	}
	var aLo, aHi, bLo, bHi int
	if alongX {
		aLo, aHi, bLo, bHi = a.X, a.Right(), b.X, b.Right()
	} else {
		aLo, aHi, bLo, bHi = a.Y, a.Bottom(), b.Y, b.Bottom()
	}
	// a before b when its center is not past b's
	if aLo+aHi <= bLo+bHi {
		return []ShiftMove{
			shift(a, bLo-aHi),
			shift(b, aHi-bLo),
			shift(a, bHi-aLo),
			shift(b, aLo-bHi),
		}
	}
	return []ShiftMove{
		shift(a, bHi-aLo),
		shift(b, aLo-bHi),
		shift(a, bLo-aHi),
		shift(b, aHi-bLo),
	}
}

// randomShift moves one of the rectangles by up to step in each direction,
// clamped to the box.
func (o *Overlap) randomShift(l int, a, b model.Rectangle, step int) (Move, bool) {
	r := a
	if o.rng.Intn(2) == 0 {
		r = b
	}
	x := min(max(r.X+o.rng.Intn(2*step+1)-step, 0), l-r.W())
	y := min(max(r.Y+o.rng.Intn(2*step+1)-step, 0), l-r.H())
	if x == r.X && y == r.Y {
		return nil, false
	}
	return ShiftMove{BoxID: r.BoxID, RectID: r.ID, DX: x - r.X, DY: y - r.Y}, true
}

// relax dissolves the least filled boxes, scattering their rectangles at
// random positions of the remaining boxes.
func (o *Overlap) relax(cur *State) (*State, bool, error) {
	boxes := slices.DeleteFunc(cur.Solution.Boxes(), (*model.Box).Empty)
	n := min(o.Config.RelaxBoxes, len(boxes)-1)
	if n <= 0 {
		return nil, false, nil
	}
	slices.SortStableFunc(boxes, func(a, b *model.Box) int { return cmp.Compare(a.FillRatio(), b.FillRatio()) })

	sol := cur.Solution.Clone()
	var rects []model.Rectangle
	for _, b := range boxes[:n] {
		rs, err := emptyBox(sol, o.bl, b.ID)
		if err != nil {
			return nil, false, err
		}
		rects = append(rects, rs...)
	}
	for _, r := range rects {
		if _, err := o.scatter.CheckThenAdd(r, sol); err != nil {
			return nil, false, err
		}
	}
	return &State{Solution: sol, Placement: NewBottomLeft(), Order: cur.Order}, true, nil
}

// Finalize turns the relaxed state into a valid packing: rectangles that
// still overlap are pulled out, every box is compacted bottom-left, and the
// pulled rectangles are placed bottom-left into the boxes or new ones.
func (o *Overlap) Finalize(cur *State) error {
	sol := cur.Solution
	var pending []model.Rectangle
	for _, id := range sol.BoxIDs() {
		pulled, err := pullOverlapping(sol, id)
		if err != nil {
			return err
		}
		pending = append(pending, pulled...)
	}
	for _, id := range sol.BoxIDs() {
		if err := compactBottomLeft(sol, o.bl, id); err != nil {
			return err
		}
	}

	slices.SortStableFunc(pending, func(a, b model.Rectangle) int { return cmp.Compare(b.Area(), a.Area()) })
	for _, r := range pending {
		r.Reset()
		if _, err := o.bl.CheckThenAdd(r, sol); err != nil {
			return err
		}
	}
	for _, id := range sol.BoxIDs() {
		if err := removeIfEmpty(sol, nil, id); err != nil {
			return err
		}
	}
	cur.Placement = o.bl
	return nil
}

// pullOverlapping removes rectangles from a box until no two overlap,
// taking the one involved in the most pairs first and the smaller one on
// ties.
func pullOverlapping(sol *model.Solution, boxID int) ([]model.Rectangle, error) {
	var pulled []model.Rectangle
	for {
		b, _ := sol.Box(boxID)
		pairs := b.OverlapPairs()
		if len(pairs) == 0 {
			return pulled, nil
		}
		count := make(map[int]int)
		for _, p := range pairs {
			count[p.A]++
			count[p.B]++
		}
		victim, best := -1, model.Rectangle{}
		for _, r := range b.Rectangles {
			c := count[r.ID]
			if c == 0 {
				continue
			}
			if victim < 0 || c > count[victim] || (c == count[victim] && r.Area() < best.Area()) {
				victim, best = r.ID, r
			}
		}
		r, err := sol.RemoveRectangle(boxID, victim)
		if err != nil {
			return nil, err
		}
		pulled = append(pulled, r)
	}
}

// compactBottomLeft re-places the rectangles of an overlap-free box with the
// bottom-left rule, largest first. The box is left unchanged when the rule
// cannot fit all of them.
func compactBottomLeft(sol *model.Solution, bl *BottomLeft, boxID int) error {
	b, ok := sol.Box(boxID)
	if !ok || b.Empty() {
		return nil
	}
	rects := slices.Clone(b.Rectangles)
	slices.SortStableFunc(rects, func(a, c model.Rectangle) int { return cmp.Compare(c.Area(), a.Area()) })

	scratch := model.NewSolution(sol.L)
	sid := scratch.AddNewBox()
	for _, r := range rects {
		r.BoxID = model.Unplaced
		pos, ok := bl.FindPositionIn(r, scratch, sid)
		if !ok {
			return nil
		}
		if _, err := placeFree(r, scratch, pos); err != nil {
			return err
		}
	}
	packed, _ := scratch.Box(sid)
	for _, r := range packed.Rectangles {
		if err := sol.UpdateRectangle(boxID, r.ID, func(q *model.Rectangle) {
			q.X, q.Y, q.Sideways = r.X, r.Y, r.Sideways
		}); err != nil {
			return err
		}
	}
	return nil
}
