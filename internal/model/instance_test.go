package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstance_NormalizesRectangles(t *testing.T) {
	rects := []Rectangle{
		{ID: 9, Width: 3, Height: 5, X: 4, Y: 4, BoxID: 2},
		{ID: 4, Width: 6, Height: 2},
	}
	inst := NewInstance(10, rects)

	assert.Len(t, inst.ID, 8)
	for i, r := range inst.Rectangles {
		assert.Equal(t, i, r.ID)
		assert.False(t, r.Placed())
		assert.Equal(t, Unplaced, r.X)
	}
	assert.False(t, inst.Rectangles[0].Sideways)
	assert.True(t, inst.Rectangles[1].Sideways)
}

func TestInstance_Validate(t *testing.T) {
	inst := NewInstance(10, []Rectangle{NewRectangle(0, 3, 4)})
	require.NoError(t, inst.Validate())

	bad := NewInstance(0, []Rectangle{NewRectangle(0, 3, 4)})
	assert.Error(t, bad.Validate())

	zero := NewInstance(10, []Rectangle{NewRectangle(0, 0, 4)})
	assert.Error(t, zero.Validate())

	tooLong := NewInstance(10, []Rectangle{NewRectangle(0, 3, 11)})
	assert.Error(t, tooLong.Validate())
}

func TestInstance_CheckFeasible(t *testing.T) {
	ok := NewInstance(10, []Rectangle{NewRectangle(0, 10, 10), NewRectangle(1, 1, 10)})
	assert.NoError(t, ok.CheckFeasible())

	bad := NewInstance(10, []Rectangle{NewRectangle(0, 5, 5), NewRectangle(1, 11, 11)})
	assert.ErrorIs(t, bad.CheckFeasible(), ErrInfeasibleInput)
}

func TestInstance_LowerBound(t *testing.T) {
	inst := NewInstance(10, []Rectangle{
		NewRectangle(0, 10, 10),
		NewRectangle(1, 5, 5),
	})
	assert.Equal(t, 125, inst.TotalArea())
	assert.Equal(t, 2, inst.LowerBound())
	assert.Equal(t, 0, NewInstance(10, nil).LowerBound())
}

func TestRectangle_Orientation(t *testing.T) {
	r := NewRectangle(0, 3, 7)
	assert.False(t, r.Sideways)
	assert.Equal(t, 3, r.W())
	assert.Equal(t, 7, r.H())

	r.Rotate()
	assert.Equal(t, 7, r.W())
	assert.Equal(t, 3, r.H())

	r.X, r.Y = 3, 0
	assert.True(t, r.FitsIn(10))
	r.X = 4
	assert.False(t, r.FitsIn(10))
}

func TestGenerateInstance(t *testing.T) {
	cfg := GeneratorConfig{L: 50, NumRect: 200, MinW: 2, MaxW: 20, MinH: 3, MaxH: 30}
	inst, err := GenerateInstance(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 50, inst.L)
	require.Len(t, inst.Rectangles, 200)
	for _, r := range inst.Rectangles {
		assert.GreaterOrEqual(t, r.Width, 2)
		assert.LessOrEqual(t, r.Width, 20)
		assert.GreaterOrEqual(t, r.Height, 3)
		assert.LessOrEqual(t, r.Height, 30)
	}
	require.NoError(t, inst.Validate())
	require.NoError(t, inst.CheckFeasible())
}

func TestGenerateInstance_Deterministic(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	a, err := GenerateInstance(cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := GenerateInstance(cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, a.Rectangles, b.Rectangles)
}

func TestGenerateInstance_RejectsBadRanges(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.MinW, cfg.MaxW = 30, 10
	_, err := GenerateInstance(cfg, rand.New(rand.NewSource(1)))
	assert.Error(t, err)

	cfg = DefaultGeneratorConfig()
	cfg.MaxH = cfg.L + 1
	_, err = GenerateInstance(cfg, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
