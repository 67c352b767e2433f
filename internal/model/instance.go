package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Limits accepted for an instance.
const (
	MaxBoxLength  = 10000
	MaxRectangles = 10000
)

var validate = validator.New()

// Instance is a packing problem: a box side length and the rectangles to pack.
type Instance struct {
	ID         string      `json:"id"`
	L          int         `json:"l" validate:"min=1,max=10000"`
	Rectangles []Rectangle `json:"rectangles" validate:"max=10000,dive"`
}

// NewInstance builds an instance with a fresh id. Rectangles are renumbered
// in input order and reset to their default, unplaced state.
func NewInstance(l int, rects []Rectangle) Instance {
	inst := Instance{ID: uuid.New().String()[:8], L: l, Rectangles: rects}
	inst.Normalize()
	return inst
}

// Normalize assigns sequential ids, resets placement state and fills in a
// missing id.
func (inst *Instance) Normalize() {
	if inst.ID == "" {
		inst.ID = uuid.New().String()[:8]
	}
	for i := range inst.Rectangles {
		inst.Rectangles[i].ID = i
		inst.Rectangles[i].Reset()
	}
}

// Validate checks the instance against the accepted limits.
func (inst Instance) Validate() error {
	if err := validate.Struct(inst); err != nil {
		return fmt.Errorf("invalid instance: %w", err)
	}
	for _, r := range inst.Rectangles {
		if r.Width > inst.L || r.Height > inst.L {
			return fmt.Errorf("invalid instance: rectangle %d (%dx%d) exceeds box side %d", r.ID, r.Width, r.Height, inst.L)
		}
	}
	return nil
}

// CheckFeasible reports ErrInfeasibleInput when some rectangle can never fit
// into an empty box.
func (inst Instance) CheckFeasible() error {
	for _, r := range inst.Rectangles {
		if r.SmallerSide() > inst.L || r.LargerSide() > inst.L {
			return fmt.Errorf("rectangle %d (%dx%d) does not fit a %dx%d box: %w",
				r.ID, r.Width, r.Height, inst.L, inst.L, ErrInfeasibleInput)
		}
	}
	return nil
}

// TotalArea is the summed area of all rectangles.
func (inst Instance) TotalArea() int {
	total := 0
	for _, r := range inst.Rectangles {
		total += r.Area()
	}
	return total
}

// LowerBound is the trivial area bound on the number of boxes.
func (inst Instance) LowerBound() int {
	if inst.L == 0 {
		return 0
	}
	area := inst.L * inst.L
	return (inst.TotalArea() + area - 1) / area
}
