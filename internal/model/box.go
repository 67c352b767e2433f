package model

import "slices"

// Box is a square container of side L. FillArea is kept in sync with the sum
// of the contained rectangle areas by the Solution mutators.
//
// Boxes obtained from a Solution may be shared with clones of that solution
// and must be treated as read-only; mutate them through the Solution.
type Box struct {
	ID         int         `json:"id"`
	L          int         `json:"l"`
	FillArea   int         `json:"fillArea"`
	Rectangles []Rectangle `json:"rectangles"`
}

func (b *Box) Area() int {
	return b.L * b.L
}

func (b *Box) AreaLeft() int {
	return b.Area() - b.FillArea
}

func (b *Box) FillRatio() float64 {
	if b.L == 0 {
		return 0
	}
	return float64(b.FillArea) / float64(b.Area())
}

// Overload returns how far FillArea exceeds the box area, as a fraction of
// the box area. Zero for boxes within capacity.
func (b *Box) Overload() float64 {
	if b.FillArea <= b.Area() {
		return 0
	}
	return float64(b.FillArea-b.Area()) / float64(b.Area())
}

func (b *Box) Empty() bool {
	return len(b.Rectangles) == 0
}

// IndexOf returns the position of the rectangle with the given id, or -1.
func (b *Box) IndexOf(rectID int) int {
	return slices.IndexFunc(b.Rectangles, func(r Rectangle) bool { return r.ID == rectID })
}

// Rectangle looks up a contained rectangle by id.
func (b *Box) Rectangle(rectID int) (Rectangle, bool) {
	i := b.IndexOf(rectID)
	if i < 0 {
		return Rectangle{}, false
	}
	return b.Rectangles[i], true
}

func (b *Box) clone() *Box {
	c := *b
	c.Rectangles = slices.Clone(b.Rectangles)
	return &c
}
