package engine

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Selection yields rectangles in a fixed, precomputed order.
type Selection struct {
	kind   model.SelectionKind
	order  []model.Rectangle
	cursor int
}

// NewSelection copies rects and orders them for the given kind. Sorting is
// stable so equal keys keep their input order.
func NewSelection(kind model.SelectionKind, rects []model.Rectangle) (*Selection, error) {
	order := slices.Clone(rects)
	switch kind {
	case model.SelectionLongestSideFirst:
		slices.SortStableFunc(order, func(a, b model.Rectangle) int {
			return cmp.Compare(b.LargerSide(), a.LargerSide())
		})
	case model.SelectionLargestAreaFirst:
		slices.SortStableFunc(order, func(a, b model.Rectangle) int {
			return cmp.Compare(b.Area(), a.Area())
		})
	case model.SelectionOriginal:
	default:
		return nil, fmt.Errorf("unknown selection %q: %w", kind, model.ErrInvalidOption)
	}
	return &Selection{kind: kind, order: order}, nil
}

func (s *Selection) Kind() model.SelectionKind {
	return s.kind
}

// Next returns the next rectangle, or false once the order is exhausted.
func (s *Selection) Next() (model.Rectangle, bool) {
	if s.cursor >= len(s.order) {
		return model.Rectangle{}, false
	}
	r := s.order[s.cursor]
	s.cursor++
	return r, true
}

// Remaining counts the rectangles not yet returned by Next.
func (s *Selection) Remaining() int {
	return len(s.order) - s.cursor
}

// Order returns a copy of the full ordering.
func (s *Selection) Order() []model.Rectangle {
	return slices.Clone(s.order)
}
