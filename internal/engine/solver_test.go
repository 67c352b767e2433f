package engine

import (
	"sync"
	"testing"

	"github.com/piwi3910/BoxPack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRecorder struct {
	mu    sync.Mutex
	calls int
	errs  int
}

func (r *recordingRecorder) ObserveSolve(_ model.SolverSettings, _ model.SolutionStats, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if err != nil {
		r.errs++
	}
}

func newTestSolver(s model.SolverSettings) *Solver {
	solver := New(s)
	solver.Logger = quietLogger()
	return solver
}

func TestSolve_Greedy(t *testing.T) {
	inst := instanceOf(10, [2]int{5, 5}, [2]int{5, 5}, [2]int{5, 5}, [2]int{5, 5})
	res, err := newTestSolver(model.DefaultSettings()).Solve(inst)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.NumBoxes)
	assert.Equal(t, 1, res.Stats.LowerBound)
	assert.InDelta(t, 1.0, res.Stats.Utilization, 1e-9)
	assert.Zero(t, res.Stats.Iterations)
	requireComplete(t, inst, res.Solution)
}

func TestSolve_LocalSearchReportsImprovement(t *testing.T) {
	inst := generated(t, 41, model.DefaultGeneratorConfig())
	s := localSearchSettings(model.NeighborhoodGeometry)
	s.Placement = model.PlacementShelfFirstFit
	s.Repack = model.PlacementShelfBestAreaFit

	greedy, err := RunGreedy(s.Selection, s.Placement, inst)
	require.NoError(t, err)

	res, err := newTestSolver(s).Solve(inst)
	require.NoError(t, err)
	requireComplete(t, inst, res.Solution)
	assert.Greater(t, res.Stats.Iterations, 0)
	assert.GreaterOrEqual(t, res.Stats.ScoreImproved, 0.0)
	assert.Equal(t, greedy.NumBoxes()-res.Stats.NumBoxes, res.Stats.NumBoxesImproved)
	assert.GreaterOrEqual(t, res.Stats.NumBoxes, res.Stats.LowerBound)
}

func TestSolve_OverlapRelaxation(t *testing.T) {
	inst := generated(t, 42, smallConfig())
	res, err := newTestSolver(localSearchSettings(model.NeighborhoodOverlap)).Solve(inst)
	require.NoError(t, err)
	requireComplete(t, inst, res.Solution)
}

func TestSolve_Genetic(t *testing.T) {
	inst := generated(t, 43, smallConfig())
	res, err := newTestSolver(makeGeneticSettings()).Solve(inst)
	require.NoError(t, err)
	requireComplete(t, inst, res.Solution)
	assert.GreaterOrEqual(t, res.Stats.ScoreImproved, 0.0)
}

func TestSolve_Deterministic(t *testing.T) {
	inst := generated(t, 44, smallConfig())
	s := localSearchSettings(model.NeighborhoodOverlap)

	a, err := newTestSolver(s).Solve(inst)
	require.NoError(t, err)
	b, err := newTestSolver(s).Solve(inst)
	require.NoError(t, err)

	a.Solution.RunTime, b.Solution.RunTime = 0, 0
	assert.Equal(t, snapshot(t, a.Solution), snapshot(t, b.Solution))
}

func TestSolve_Errors(t *testing.T) {
	rec := &recordingRecorder{}

	solver := newTestSolver(model.DefaultSettings())
	solver.Recorder = rec
	_, err := solver.Solve(instanceOf(10, [2]int{11, 1}))
	assert.ErrorIs(t, err, model.ErrInfeasibleInput)

	bad := model.DefaultSettings()
	bad.Algorithm = model.AlgorithmLocalSearch
	bad.Neighborhood = model.NeighborhoodOverlap
	solver = newTestSolver(bad)
	solver.Recorder = rec
	_, err = solver.Solve(instanceOf(10, [2]int{1, 1}))
	assert.ErrorIs(t, err, model.ErrInvalidOption)

	incompatible := localSearchSettings(model.NeighborhoodGeometry)
	incompatible.Placement = model.PlacementBottomLeft
	incompatible.Repack = model.PlacementShelfBestAreaFit
	solver = newTestSolver(incompatible)
	solver.Recorder = rec
	_, err = solver.Solve(instanceOf(10, [2]int{1, 1}))
	assert.ErrorIs(t, err, model.ErrIncompatiblePlacement)

	assert.Equal(t, 3, rec.calls)
	assert.Equal(t, 3, rec.errs)
}

func TestCompareScenarios(t *testing.T) {
	base := model.DefaultSettings()
	base.MaxIterations = 15
	base.Genetic.PopulationSize = 8
	base.Genetic.Generations = 5
	scenarios := BuildDefaultScenarios(base)

	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
		require.NoError(t, sc.Settings.Validate(), sc.Name)
	}
	assert.Equal(t, []string{
		"Current Settings",
		"Greedy shelf-first-fit",
		"Greedy bottom-left",
		"Geometry Local Search",
		"Permutation Local Search",
		"Overlap Relaxation",
		"Genetic Algorithm",
	}, names)

	inst := generated(t, 45, smallConfig())
	rec := &recordingRecorder{}
	results := CompareScenarios(scenarios, inst, quietLogger(), rec)
	require.Len(t, results, len(scenarios))
	for i, r := range results {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, scenarios[i].Name, r.Scenario.Name)
		assert.GreaterOrEqual(t, r.BoxesUsed, inst.LowerBound())
		assert.GreaterOrEqual(t, r.WastePercent, 0.0)
		requireComplete(t, inst, r.Result.Solution)
	}
	assert.Equal(t, len(scenarios), rec.calls)
}

func TestBuildDefaultScenarios_RandomOverlapBase(t *testing.T) {
	base := model.DefaultSettings()
	base.Algorithm = model.AlgorithmLocalSearch
	base.Placement = model.PlacementRandomOverlap
	base.Neighborhood = model.NeighborhoodOverlap
	base.Objective = model.ObjectivePackingPenalty
	base.Strategy = model.StrategySimulatedAnnealing
	require.NoError(t, base.Validate())

	for _, sc := range BuildDefaultScenarios(base) {
		require.NoError(t, sc.Settings.Validate(), sc.Name)
		if sc.Settings.Neighborhood != model.NeighborhoodOverlap || sc.Settings.Algorithm != model.AlgorithmLocalSearch {
			assert.NotEqual(t, model.PlacementRandomOverlap, sc.Settings.Placement, sc.Name)
		}
	}
}

func TestCompareScenarios_KeepsErrorsPerScenario(t *testing.T) {
	good := model.DefaultSettings()
	bad := model.DefaultSettings()
	bad.Selection = "random"

	results := CompareScenarios([]ComparisonScenario{
		{Name: "good", Settings: good},
		{Name: "bad", Settings: bad},
	}, instanceOf(10, [2]int{5, 5}), quietLogger(), nil)

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].BoxesUsed)
	assert.ErrorIs(t, results[1].Err, model.ErrInvalidOption)
}
