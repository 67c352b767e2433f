package model

import (
	"cmp"
	"slices"

	"github.com/dhconnelly/rtreego"
)

// Boxes with fewer rectangles than this are checked pairwise; larger ones go
// through an R-tree broad phase first.
const rtreeThreshold = 16

// OverlapPair is one pair of intersecting rectangles inside a box.
type OverlapPair struct {
	A    int     `json:"a"`
	B    int     `json:"b"`
	Area int     `json:"area"`
	Rate float64 `json:"rate"`
}

// OverlapArea returns the intersection area of two placed rectangles.
func OverlapArea(a, b Rectangle) int {
	w := min(a.Right(), b.Right()) - max(a.X, b.X)
	h := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// OverlapRate is the overlap area relative to the larger of the two areas.
func OverlapRate(a, b Rectangle) float64 {
	area := OverlapArea(a, b)
	if area == 0 {
		return 0
	}
	return float64(area) / float64(max(a.Area(), b.Area()))
}

// Overlaps reports whether two placed rectangles share any area.
func Overlaps(a, b Rectangle) bool {
	return OverlapArea(a, b) > 0
}

type spatialRect struct {
	idx  int
	rect Rectangle
}

func (s spatialRect) Bounds() rtreego.Rect {
	r, _ := rtreego.NewRect(
		rtreego.Point{float64(s.rect.X), float64(s.rect.Y)},
		[]float64{float64(s.rect.W()), float64(s.rect.H())},
	)
	return r
}

// OverlapPairs returns every pair of rectangles in the box that intersect.
// Pairs are ordered by the position of A then B in the box.
func (b *Box) OverlapPairs() []OverlapPair {
	rects := b.Rectangles
	if len(rects) < 2 {
		return nil
	}
	var pairs []OverlapPair
	add := func(i, j int) {
		if area := OverlapArea(rects[i], rects[j]); area > 0 {
			pairs = append(pairs, OverlapPair{
				A:    rects[i].ID,
				B:    rects[j].ID,
				Area: area,
				Rate: float64(area) / float64(max(rects[i].Area(), rects[j].Area())),
			})
		}
	}

	if len(rects) < rtreeThreshold {
		for i := range rects {
			for j := i + 1; j < len(rects); j++ {
				add(i, j)
			}
		}
		return pairs
	}

	objs := make([]rtreego.Spatial, len(rects))
	for i, r := range rects {
		objs[i] = spatialRect{idx: i, rect: r}
	}
	tree := rtreego.NewTree(2, 4, 16, objs...)
	for i, r := range rects {
		// Touching edges count as intersecting in the tree; OverlapArea
		// filters them out.
		for _, hit := range tree.SearchIntersect(spatialRect{rect: r}.Bounds()) {
			if j := hit.(spatialRect).idx; j > i {
				add(i, j)
			}
		}
	}
	sortPairs(pairs, rects)
	return pairs
}

// OverlapSummary aggregates the overlap of a box.
type OverlapSummary struct {
	TotalArea int
	MaxRate   float64
	Pairs     int
}

func (b *Box) OverlapSummary() OverlapSummary {
	var s OverlapSummary
	for _, p := range b.OverlapPairs() {
		s.TotalArea += p.Area
		s.MaxRate = max(s.MaxRate, p.Rate)
		s.Pairs++
	}
	return s
}

func sortPairs(pairs []OverlapPair, rects []Rectangle) {
	pos := make(map[int]int, len(rects))
	for i, r := range rects {
		pos[r.ID] = i
	}
	slices.SortFunc(pairs, func(a, b OverlapPair) int {
		if c := cmp.Compare(pos[a.A], pos[b.A]); c != 0 {
			return c
		}
		return cmp.Compare(pos[a.B], pos[b.B])
	})
}
