package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings_Valid(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
}

func TestSettings_ValidateRejectsUnknownKinds(t *testing.T) {
	s := DefaultSettings()
	s.Placement = "spiral"
	assert.ErrorIs(t, s.Validate(), ErrInvalidOption)

	s = DefaultSettings()
	s.Repack = PlacementRandomOverlap
	assert.ErrorIs(t, s.Validate(), ErrInvalidOption)

	s = DefaultSettings()
	s.NumNeighbors = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidOption)
}

func TestSettings_RandomOverlapOnlySeedsOverlapSearch(t *testing.T) {
	s := DefaultSettings()
	s.Placement = PlacementRandomOverlap
	assert.ErrorIs(t, s.Validate(), ErrInvalidOption, "greedy")

	s.Algorithm = AlgorithmGenetic
	assert.ErrorIs(t, s.Validate(), ErrInvalidOption, "genetic")

	s.Algorithm = AlgorithmLocalSearch
	for _, nb := range []NeighborhoodKind{NeighborhoodGeometry, NeighborhoodPermutation} {
		s.Neighborhood = nb
		s.Repack = PlacementBottomLeft
		assert.ErrorIs(t, s.Validate(), ErrInvalidOption, string(nb))
	}

	s.Neighborhood = NeighborhoodOverlap
	s.Objective = ObjectivePackingPenalty
	s.Repack = ""
	assert.NoError(t, s.Validate())
}

func TestSettings_OverlapNeedsPenaltyObjective(t *testing.T) {
	s := DefaultSettings()
	s.Algorithm = AlgorithmLocalSearch
	s.Neighborhood = NeighborhoodOverlap
	assert.ErrorIs(t, s.Validate(), ErrInvalidOption)

	s.Objective = ObjectivePackingPenalty
	assert.NoError(t, s.Validate())

	s.Neighborhood = NeighborhoodGeometry
	assert.ErrorIs(t, s.Validate(), ErrInvalidOption)
}

func TestSettings_CombinationsIgnoredForGreedy(t *testing.T) {
	s := DefaultSettings()
	s.Neighborhood = NeighborhoodOverlap
	assert.NoError(t, s.Validate())
}

func TestSettings_RepackKind(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, s.Placement, s.RepackKind())
	s.Repack = PlacementBottomLeft
	assert.Equal(t, PlacementBottomLeft, s.RepackKind())
}

func TestStats_Progress(t *testing.T) {
	assert.Equal(t, 1.0, Stats{}.Progress())
	assert.InDelta(t, 0.25, Stats{Iteration: 5, MaxIterations: 20}.Progress(), 1e-9)
	assert.Equal(t, 1.0, Stats{Iteration: 30, MaxIterations: 20}.Progress())
}
