// Package model holds the packing data model: rectangles, boxes, solutions,
// instances and the solver settings.
package model

// Unplaced is the sentinel used for X, Y and BoxID of a rectangle that is not
// inside any box.
const Unplaced = -1

// Rectangle is an axis-aligned item to be packed. Width and Height are fixed;
// Sideways, X, Y and BoxID describe its current placement.
//
// When Sideways is true the rectangle occupies LargerSide x SmallerSide,
// otherwise SmallerSide x LargerSide.
type Rectangle struct {
	ID       int  `json:"id"`
	Width    int  `json:"width" validate:"min=1"`
	Height   int  `json:"height" validate:"min=1"`
	Sideways bool `json:"sideways"`
	X        int  `json:"x"`
	Y        int  `json:"y"`
	BoxID    int  `json:"boxId"`
}

// NewRectangle returns an unplaced rectangle in its default orientation.
func NewRectangle(id, width, height int) Rectangle {
	r := Rectangle{ID: id, Width: width, Height: height}
	r.Reset()
	return r
}

func (r Rectangle) Area() int {
	return r.Width * r.Height
}

func (r Rectangle) SmallerSide() int {
	return min(r.Width, r.Height)
}

func (r Rectangle) LargerSide() int {
	return max(r.Width, r.Height)
}

// W returns the effective width for the current orientation.
func (r Rectangle) W() int {
	if r.Sideways {
		return r.LargerSide()
	}
	return r.SmallerSide()
}

// H returns the effective height for the current orientation.
func (r Rectangle) H() int {
	if r.Sideways {
		return r.SmallerSide()
	}
	return r.LargerSide()
}

// Dims returns the effective width and height the rectangle would have with
// the given orientation.
func (r Rectangle) Dims(sideways bool) (w, h int) {
	if sideways {
		return r.LargerSide(), r.SmallerSide()
	}
	return r.SmallerSide(), r.LargerSide()
}

// Right and Bottom return the exclusive far edges of the placed rectangle.
func (r Rectangle) Right() int  { return r.X + r.W() }
func (r Rectangle) Bottom() int { return r.Y + r.H() }

// Placed reports whether the rectangle belongs to a box.
func (r Rectangle) Placed() bool {
	return r.BoxID != Unplaced
}

// Reset restores the default orientation and clears position and ownership.
func (r *Rectangle) Reset() {
	r.Sideways = r.Width >= r.Height
	r.X = Unplaced
	r.Y = Unplaced
	r.BoxID = Unplaced
}

// Rotate flips the orientation in place, keeping the top-left anchor.
func (r *Rectangle) Rotate() {
	r.Sideways = !r.Sideways
}

// Square reports whether both orientations have the same footprint.
func (r Rectangle) Square() bool {
	return r.Width == r.Height
}

// FitsIn reports whether the rectangle lies fully inside [0,l]x[0,l].
func (r Rectangle) FitsIn(l int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= l && r.Bottom() <= l
}
