package engine

import (
	"math/rand"
	"testing"

	"github.com/piwi3910/BoxPack/internal/model"
)

func makeGeneticSettings() model.SolverSettings {
	s := model.DefaultSettings()
	s.Algorithm = model.AlgorithmGenetic
	s.Genetic.PopulationSize = 12
	s.Genetic.Generations = 10
	return s
}

func TestGeneticOptimizerPlacesAllRectangles(t *testing.T) {
	inst := generated(t, 31, smallConfig())
	for _, kind := range constructionKinds {
		s := makeGeneticSettings()
		s.Placement = kind

		st, gens, err := RunGenetic(inst, s, rand.New(rand.NewSource(1)))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", kind, err)
		}
		if gens != s.Genetic.Generations {
			t.Errorf("%s: expected %d generations, got %d", kind, s.Genetic.Generations, gens)
		}
		requireComplete(t, inst, st.Solution)
	}
}

func TestGeneticOptimizerAtLeastAsGoodAsGreedy(t *testing.T) {
	inst := generated(t, 32, smallConfig())
	s := makeGeneticSettings()

	greedy, err := RunGreedy(model.SelectionLargestAreaFirst, s.Placement, inst)
	if err != nil {
		t.Fatal(err)
	}
	st, _, err := RunGenetic(inst, s, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}

	// The greedy order is seeded into the population and kept by elitism.
	if got, want := model.Utilization(st.Solution), model.Utilization(greedy); got < want-1e-9 {
		t.Errorf("genetic utilization %.4f below greedy %.4f", got, want)
	}
}

func TestGeneticOptimizerInstanceWithoutIDs(t *testing.T) {
	rects := make([]model.Rectangle, 6)
	for i := range rects {
		rects[i] = model.Rectangle{Width: 5, Height: 3 + i%2}
	}
	inst := model.Instance{L: 10, Rectangles: rects}

	st, _, err := RunGenetic(inst, makeGeneticSettings(), rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Solution.Validate(true); err != nil {
		t.Fatalf("invalid solution: %v", err)
	}
	seen := make(map[int]bool)
	for _, r := range st.Solution.Rectangles() {
		seen[r.ID] = true
	}
	if len(seen) != len(rects) {
		t.Errorf("expected %d distinct rectangle ids, got %d", len(rects), len(seen))
	}
}

func TestGeneticOptimizerEmptyInput(t *testing.T) {
	st, _, err := RunGenetic(model.NewInstance(10, nil), makeGeneticSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Solution.NumBoxes() != 0 {
		t.Errorf("expected no boxes for empty input, got %d", st.Solution.NumBoxes())
	}
}

func TestGeneticOptimizerRectangleTooLarge(t *testing.T) {
	inst := instanceOf(10, [2]int{3, 3}, [2]int{12, 2})
	_, _, err := RunGenetic(inst, makeGeneticSettings(), nil)
	if err == nil {
		t.Fatal("expected an infeasible input error")
	}
}

func TestOrderCrossoverPreservesAllGenes(t *testing.T) {
	inst := instanceOf(20, [2]int{1, 1}, [2]int{2, 2}, [2]int{3, 3}, [2]int{4, 4}, [2]int{5, 5})
	ga := newGeneticOptimizer(model.DefaultGeneticConfig(), model.PlacementBottomLeft, inst, rand.New(rand.NewSource(123)))

	parent1 := chromosome{genes: []gene{
		{rectIndex: 0}, {rectIndex: 1}, {rectIndex: 2}, {rectIndex: 3}, {rectIndex: 4},
	}}
	parent2 := chromosome{genes: []gene{
		{rectIndex: 4}, {rectIndex: 3}, {rectIndex: 2}, {rectIndex: 1}, {rectIndex: 0},
	}}

	for range 20 {
		child := ga.orderCrossover(parent1, parent2)
		if len(child.genes) != 5 {
			t.Fatalf("expected 5 genes, got %d", len(child.genes))
		}

		seen := make(map[int]bool)
		for _, g := range child.genes {
			if seen[g.rectIndex] {
				t.Errorf("duplicate rectangle index %d in child", g.rectIndex)
			}
			seen[g.rectIndex] = true
		}
		for i := 0; i < 5; i++ {
			if !seen[i] {
				t.Errorf("missing rectangle index %d in child", i)
			}
		}
	}
}

func TestMutateKeepsPermutation(t *testing.T) {
	inst := instanceOf(20, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5})
	cfg := model.DefaultGeneticConfig()
	cfg.MutationRate = 1
	ga := newGeneticOptimizer(cfg, model.PlacementBottomLeft, inst, rand.New(rand.NewSource(5)))

	c := ga.createGreedyChromosome()
	for range 50 {
		ga.mutate(&c)
	}
	seen := make(map[int]bool)
	for _, g := range c.genes {
		seen[g.rectIndex] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 distinct genes after mutation, got %d", len(seen))
	}
}
