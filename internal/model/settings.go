package model

import "fmt"

// Algorithm selects between greedy construction alone and construction
// followed by local search.
type Algorithm string

const (
	AlgorithmGreedy      Algorithm = "greedy"       // Selection + placement only (fast)
	AlgorithmLocalSearch Algorithm = "local-search" // Greedy start improved by local search
	AlgorithmGenetic     Algorithm = "genetic"      // Evolves the greedy insertion order
)

// SelectionKind orders the rectangles fed to a placement policy.
type SelectionKind string

const (
	SelectionLongestSideFirst SelectionKind = "longest-side-first"
	SelectionLargestAreaFirst SelectionKind = "largest-area-first"
	SelectionOriginal         SelectionKind = "original"
)

// PlacementKind chooses where the next rectangle goes.
type PlacementKind string

const (
	PlacementShelfFirstFit    PlacementKind = "shelf-first-fit"
	PlacementShelfBestAreaFit PlacementKind = "shelf-best-area-fit"
	PlacementBottomLeft       PlacementKind = "bottom-left"
	PlacementRandomOverlap    PlacementKind = "random-overlap"
)

// ShelfBased reports whether the policy keeps a shelf index.
func (k PlacementKind) ShelfBased() bool {
	return k == PlacementShelfFirstFit || k == PlacementShelfBestAreaFit
}

// NeighborhoodKind selects the local-search neighborhood.
type NeighborhoodKind string

const (
	NeighborhoodGeometry    NeighborhoodKind = "geometry"
	NeighborhoodPermutation NeighborhoodKind = "permutation"
	NeighborhoodOverlap     NeighborhoodKind = "overlap"
)

// ObjectiveKind selects how solutions are scored.
type ObjectiveKind string

const (
	ObjectiveUtilization    ObjectiveKind = "utilization"     // maximize
	ObjectivePackingPenalty ObjectiveKind = "packing-penalty" // minimize
)

// StrategyKind selects the acceptance strategy.
type StrategyKind string

const (
	StrategyHillClimbing       StrategyKind = "hill-climbing"
	StrategySimulatedAnnealing StrategyKind = "simulated-annealing"
)

// OverlapConfig tunes the overlap relaxation neighborhood. The tolerances
// decay as tol0 * (1-progress)^DecayExponent.
type OverlapConfig struct {
	OverlapTolerance  float64 `json:"overlapTolerance" mapstructure:"overlap_tolerance" validate:"gte=0,lte=1"`
	OverloadTolerance float64 `json:"overloadTolerance" mapstructure:"overload_tolerance" validate:"gte=0"`
	DecayExponent     float64 `json:"decayExponent" mapstructure:"decay_exponent" validate:"gt=0"`
	// Below this progress the neighborhood asks for first improvement.
	SwitchProgress float64 `json:"switchProgress" mapstructure:"switch_progress" validate:"gte=0,lte=1"`
	// Probability per overlapping pair of adding a random shift, scaled by
	// the remaining progress.
	RandomMoveProb float64 `json:"randomMoveProb" mapstructure:"random_move_prob" validate:"gte=0,lte=1"`
	// Number of least-filled boxes dissolved into the others when every box
	// is within tolerance.
	RelaxBoxes int `json:"relaxBoxes" mapstructure:"relax_boxes" validate:"gte=0"`
}

func DefaultOverlapConfig() OverlapConfig {
	return OverlapConfig{
		OverlapTolerance:  0.2,
		OverloadTolerance: 0.1,
		DecayExponent:     2,
		SwitchProgress:    0.5,
		RandomMoveProb:    0.2,
		RelaxBoxes:        1,
	}
}

// PenaltyWeights weight the terms of the packing penalty objective. The
// overlap terms grow with (1+Growth*progress)^2 and the pair count term
// linearly, while the box count term stays fixed, so overlap turns into a
// hard constraint as the search runs out of budget.
type PenaltyWeights struct {
	TotalOverlap float64 `json:"totalOverlap" mapstructure:"total_overlap" validate:"gte=0"`
	MaxOverlap   float64 `json:"maxOverlap" mapstructure:"max_overlap" validate:"gte=0"`
	PairCount    float64 `json:"pairCount" mapstructure:"pair_count" validate:"gte=0"`
	BoxCount     float64 `json:"boxCount" mapstructure:"box_count" validate:"gte=0"`
	Growth       float64 `json:"growth" mapstructure:"growth" validate:"gte=0"`
}

func DefaultPenaltyWeights() PenaltyWeights {
	return PenaltyWeights{
		TotalOverlap: 4,
		MaxOverlap:   1,
		PairCount:    0.1,
		BoxCount:     1,
		Growth:       9,
	}
}

// GeneticConfig holds parameters for the genetic algorithm.
type GeneticConfig struct {
	PopulationSize int     `json:"populationSize" mapstructure:"population_size" validate:"min=1"`
	Generations    int     `json:"generations" mapstructure:"generations" validate:"min=0"`
	MutationRate   float64 `json:"mutationRate" mapstructure:"mutation_rate" validate:"gte=0,lte=1"`
	TournamentSize int     `json:"tournamentSize" mapstructure:"tournament_size" validate:"min=1"`
	EliteCount     int     `json:"eliteCount" mapstructure:"elite_count" validate:"min=0"`
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 30,
		Generations:    40,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// SolverSettings holds every knob of a solve.
type SolverSettings struct {
	Algorithm    Algorithm        `json:"algorithm" mapstructure:"algorithm" validate:"oneof=greedy local-search genetic"`
	Selection    SelectionKind    `json:"selection" mapstructure:"selection" validate:"oneof=longest-side-first largest-area-first original"`
	Placement    PlacementKind    `json:"placement" mapstructure:"placement" validate:"oneof=shelf-first-fit shelf-best-area-fit bottom-left random-overlap"`
	Repack       PlacementKind    `json:"repack,omitempty" mapstructure:"repack" validate:"omitempty,oneof=shelf-first-fit shelf-best-area-fit bottom-left"`
	Neighborhood NeighborhoodKind `json:"neighborhood" mapstructure:"neighborhood" validate:"oneof=geometry permutation overlap"`
	Objective    ObjectiveKind    `json:"objective" mapstructure:"objective" validate:"oneof=utilization packing-penalty"`
	Strategy     StrategyKind     `json:"strategy" mapstructure:"strategy" validate:"oneof=hill-climbing simulated-annealing"`

	NumNeighbors    int     `json:"numNeighbors" mapstructure:"num_neighbors" validate:"min=1"`
	MaxIterations   int     `json:"maxIterations" mapstructure:"max_iterations" validate:"min=0"`
	MaxStagnation   int     `json:"maxStagnation" mapstructure:"max_stagnation" validate:"min=0"`
	StagnationRatio float64 `json:"stagnationRatio" mapstructure:"stagnation_ratio" validate:"gte=0,lte=1"`
	RandomRate      float64 `json:"randomRate" mapstructure:"random_rate" validate:"gte=0,lte=1"`
	Temperature     float64 `json:"temperature" mapstructure:"temperature" validate:"gt=0"`
	Seed            int64   `json:"seed" mapstructure:"seed"`

	Overlap OverlapConfig  `json:"overlap" mapstructure:"overlap"`
	Penalty PenaltyWeights `json:"penalty" mapstructure:"penalty"`
	Genetic GeneticConfig  `json:"genetic" mapstructure:"genetic"`
}

// DefaultSettings returns a fast greedy configuration with local-search
// parameters that work for geometry search.
func DefaultSettings() SolverSettings {
	return SolverSettings{
		Algorithm:       AlgorithmGreedy,
		Selection:       SelectionLargestAreaFirst,
		Placement:       PlacementShelfBestAreaFit,
		Neighborhood:    NeighborhoodGeometry,
		Objective:       ObjectiveUtilization,
		Strategy:        StrategyHillClimbing,
		NumNeighbors:    10,
		MaxIterations:   200,
		MaxStagnation:   50,
		StagnationRatio: 0,
		RandomRate:      0.2,
		Temperature:     1,
		Seed:            42,
		Overlap:         DefaultOverlapConfig(),
		Penalty:         DefaultPenaltyWeights(),
		Genetic:         DefaultGeneticConfig(),
	}
}

// Validate checks field ranges and the combinations the engine can run.
func (s SolverSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	if s.Placement == PlacementRandomOverlap && (s.Algorithm != AlgorithmLocalSearch || s.Neighborhood != NeighborhoodOverlap) {
		return fmt.Errorf("%w: %s placement only seeds the %s neighborhood", ErrInvalidOption, PlacementRandomOverlap, NeighborhoodOverlap)
	}
	if s.Algorithm != AlgorithmLocalSearch {
		return nil
	}
	if s.Neighborhood == NeighborhoodOverlap && s.Objective != ObjectivePackingPenalty {
		return fmt.Errorf("%w: overlap neighborhood needs the %s objective", ErrInvalidOption, ObjectivePackingPenalty)
	}
	if s.Neighborhood != NeighborhoodOverlap && s.Objective == ObjectivePackingPenalty {
		return fmt.Errorf("%w: %s objective is only meaningful with the overlap neighborhood", ErrInvalidOption, ObjectivePackingPenalty)
	}
	return nil
}

// RepackKind returns the placement used by neighborhoods, defaulting to the
// construction placement.
func (s SolverSettings) RepackKind() PlacementKind {
	if s.Repack != "" {
		return s.Repack
	}
	return s.Placement
}
