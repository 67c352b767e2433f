package engine

import "github.com/piwi3910/BoxPack/internal/model"

// Termination reports whether a local search should stop.
type Termination func(stats model.Stats) bool

// MaxIterations stops after n iterations.
func MaxIterations(n int) Termination {
	return func(s model.Stats) bool {
		return s.Iteration >= n
	}
}

// Stagnation stops after n iterations or after maxStagnation consecutive
// iterations without an accepted candidate.
func Stagnation(n, maxStagnation int) Termination {
	return func(s model.Stats) bool {
		return s.Iteration >= n || s.StagnationCounter >= maxStagnation
	}
}

// StagnationRatio stops after n iterations or once the current stagnation
// streak exceeds ratio of the iteration budget.
func StagnationRatio(n int, ratio float64) Termination {
	return func(s model.Stats) bool {
		if s.Iteration >= n {
			return true
		}
		return n > 0 && float64(s.StagnationCounter)/float64(n) > ratio
	}
}

// Any stops as soon as one of the given terminations does.
func Any(ts ...Termination) Termination {
	return func(s model.Stats) bool {
		for _, t := range ts {
			if t(s) {
				return true
			}
		}
		return false
	}
}

// TerminationFor picks the termination matching the settings: a ratio when
// one is set, a stagnation cap when one is set, otherwise the plain
// iteration cap.
func TerminationFor(s model.SolverSettings) Termination {
	switch {
	case s.StagnationRatio > 0:
		return StagnationRatio(s.MaxIterations, s.StagnationRatio)
	case s.MaxStagnation > 0:
		return Stagnation(s.MaxIterations, s.MaxStagnation)
	default:
		return MaxIterations(s.MaxIterations)
	}
}
