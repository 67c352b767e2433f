package engine

import (
	"testing"

	"github.com/piwi3910/BoxPack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(rects []model.Rectangle) []int {
	out := make([]int, len(rects))
	for i, r := range rects {
		out[i] = r.ID
	}
	return out
}

func TestSelection_Orders(t *testing.T) {
	inst := instanceOf(20, [2]int{2, 9}, [2]int{5, 5}, [2]int{9, 1}, [2]int{4, 8})

	tests := []struct {
		kind model.SelectionKind
		want []int
	}{
		{model.SelectionLongestSideFirst, []int{0, 2, 3, 1}},
		{model.SelectionLargestAreaFirst, []int{3, 1, 0, 2}},
		{model.SelectionOriginal, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			sel, err := NewSelection(tt.kind, inst.Rectangles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(sel.Order()))
		})
	}
}

func TestSelection_NextDrainsOrder(t *testing.T) {
	inst := instanceOf(10, [2]int{1, 1}, [2]int{2, 2})
	sel, err := NewSelection(model.SelectionLargestAreaFirst, inst.Rectangles)
	require.NoError(t, err)

	assert.Equal(t, 2, sel.Remaining())
	r, ok := sel.Next()
	require.True(t, ok)
	assert.Equal(t, 1, r.ID)
	_, ok = sel.Next()
	require.True(t, ok)
	_, ok = sel.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, sel.Remaining())
}

func TestSelection_UnknownKind(t *testing.T) {
	_, err := NewSelection("shortest", nil)
	assert.ErrorIs(t, err, model.ErrInvalidOption)
}
