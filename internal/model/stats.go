package model

// Stats tracks the progress of a local search.
type Stats struct {
	Iteration         int     `json:"iteration"`
	BestScore         float64 `json:"bestScore"`
	StagnationCounter int     `json:"stagnationCounter"`
	MaxIterations     int     `json:"maxIterations"`
}

// Progress is the elapsed fraction of the iteration budget in [0,1].
func (s Stats) Progress() float64 {
	if s.MaxIterations <= 0 {
		return 1
	}
	return min(1, float64(s.Iteration)/float64(s.MaxIterations))
}

// SolutionStats summarizes a finished solve for rendering.
type SolutionStats struct {
	RuntimeMs   int64   `json:"runtimeMs"`
	NumBoxes    int     `json:"numBoxes"`
	LowerBound  int     `json:"lowerBound"`
	Score       float64 `json:"score"`
	Utilization float64 `json:"utilization"`
	Iterations  int     `json:"iterations,omitempty"`

	// Set when local search ran: the change relative to the greedy start.
	// Positive values mean fewer boxes and a better score.
	NumBoxesImproved int     `json:"numBoxesImproved,omitempty"`
	ScoreImproved    float64 `json:"scoreImproved,omitempty"`
}

// Utilization returns the mean squared fill ratio over non-empty boxes.
func Utilization(sol *Solution) float64 {
	sum, n := 0.0, 0
	for _, b := range sol.Boxes() {
		if b.Empty() {
			continue
		}
		fr := b.FillRatio()
		sum += fr * fr
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SolveResult is a finished solution with its statistics.
type SolveResult struct {
	Solution *Solution     `json:"solution"`
	Stats    SolutionStats `json:"stats"`
}
