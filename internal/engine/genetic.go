package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/piwi3910/BoxPack/internal/model"
)

// gene represents a single rectangle insertion decision in the chromosome.
type gene struct {
	rectIndex int  // Index into the instance rectangles
	rotated   bool // Whether the default orientation is flipped before insertion
}

// chromosome represents a candidate solution: an insertion order of
// rectangles with orientation flags.
type chromosome struct {
	genes   []gene
	fitness float64
}

// geneticOptimizer evolves insertion orders that a placement policy decodes
// into packings.
type geneticOptimizer struct {
	config    model.GeneticConfig
	placement model.PlacementKind
	rects     []model.Rectangle
	l         int
	rng       *rand.Rand
}

// newGeneticOptimizer creates a new genetic optimizer instance.
func newGeneticOptimizer(config model.GeneticConfig, placement model.PlacementKind, inst model.Instance, rng *rand.Rand) *geneticOptimizer {
	rects := make([]model.Rectangle, len(inst.Rectangles))
	copy(rects, inst.Rectangles)
	for i := range rects {
		rects[i].ID = i
		rects[i].Reset()
	}
	return &geneticOptimizer{
		config:    config,
		placement: placement,
		rects:     rects,
		l:         inst.L,
		rng:       rng,
	}
}

// optimize runs the genetic algorithm and returns the decoded best state.
func (g *geneticOptimizer) optimize() (*State, int, error) {
	population := g.initPopulation()

	for i := range population {
		f, err := g.evaluate(population[i])
		if err != nil {
			return nil, 0, err
		}
		population[i].fitness = f
	}

	gen := 0
	for ; gen < g.config.Generations; gen++ {
		// Sort by fitness descending (higher is better)
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		newPop := make([]chromosome, 0, g.config.PopulationSize)

		// Elitism: carry over the best individuals unchanged
		eliteCount := min(g.config.EliteCount, len(population))
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, g.copyChromosome(population[i]))
		}

		for len(newPop) < g.config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)

			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)

			f, err := g.evaluate(child)
			if err != nil {
				return nil, gen, err
			}
			child.fitness = f
			newPop = append(newPop, child)
		}

		population = newPop
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	st, err := g.decode(population[0])
	return st, gen, err
}

// initPopulation creates the initial random population.
func (g *geneticOptimizer) initPopulation() []chromosome {
	n := len(g.rects)
	population := make([]chromosome, g.config.PopulationSize)

	for i := range population {
		genes := make([]gene, n)
		perm := g.rng.Perm(n)
		for j := 0; j < n; j++ {
			genes[j] = gene{
				rectIndex: perm[j],
				rotated:   !g.rects[perm[j]].Square() && g.rng.Float64() < 0.5,
			}
		}
		population[i] = chromosome{genes: genes}
	}

	// Seed one chromosome with the largest-area-first order so the search
	// never ends below the greedy construction.
	if g.config.PopulationSize > 0 {
		population[0] = g.createGreedyChromosome()
	}

	return population
}

// createGreedyChromosome creates a chromosome sorted by area descending.
func (g *geneticOptimizer) createGreedyChromosome() chromosome {
	n := len(g.rects)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return g.rects[indices[i]].Area() > g.rects[indices[j]].Area()
	})

	genes := make([]gene, n)
	for i, idx := range indices {
		genes[i] = gene{rectIndex: idx}
	}
	return chromosome{genes: genes}
}

// evaluate computes the fitness of a chromosome by decoding it into a packing
// and measuring its utilization.
func (g *geneticOptimizer) evaluate(c chromosome) (float64, error) {
	st, err := g.decode(c)
	if err != nil {
		return 0, err
	}
	return model.Utilization(st.Solution), nil
}

// decode converts a chromosome into a packing with the configured placement.
func (g *geneticOptimizer) decode(c chromosome) (*State, error) {
	order := make([]model.Rectangle, len(c.genes))
	for i, gn := range c.genes {
		r := g.rects[gn.rectIndex]
		if gn.rotated {
			r.Rotate()
		}
		order[i] = r
	}

	sel, err := NewSelection(model.SelectionOriginal, order)
	if err != nil {
		return nil, err
	}
	pl, err := NewPlacement(g.placement, g.rng)
	if err != nil {
		return nil, err
	}
	sol, err := (&GreedyAlgo{Selection: sel, Placement: pl}).Run(model.NewSolution(g.l))
	if err != nil {
		return nil, fmt.Errorf("failed to decode chromosome: %w", err)
	}
	return &State{Solution: sol, Placement: pl, Order: order}, nil
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticOptimizer) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return g.copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1) for permutation chromosomes.
// It preserves the relative order of genes from both parents.
func (g *geneticOptimizer) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.genes)
	if n <= 2 {
		return g.copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{genes: make([]gene, n)}

	inSegment := make(map[int]bool)
	for i := point1; i <= point2; i++ {
		child.genes[i] = parent1.genes[i]
		inSegment[parent1.genes[i].rectIndex] = true
	}

	// Fill remaining positions with genes from parent2 in order
	childIdx := (point2 + 1) % n
	for _, pg := range parent2.genes {
		if !inSegment[pg.rectIndex] {
			child.genes[childIdx] = pg
			childIdx = (childIdx + 1) % n
		}
	}

	return child
}

// mutate applies random mutations to a chromosome.
func (g *geneticOptimizer) mutate(c *chromosome) {
	n := len(c.genes)
	if n < 2 {
		return
	}

	// Swap mutation
	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
	}

	// Rotation mutation
	if g.rng.Float64() < g.config.MutationRate {
		i := g.rng.Intn(n)
		if !g.rects[c.genes[i].rectIndex].Square() {
			c.genes[i].rotated = !c.genes[i].rotated
		}
	}

	// Inversion mutation: reverse a segment (less frequent)
	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
			i++
			j--
		}
	}
}

// copyChromosome creates a deep copy of a chromosome.
func (g *geneticOptimizer) copyChromosome(c chromosome) chromosome {
	genes := make([]gene, len(c.genes))
	copy(genes, c.genes)
	return chromosome{genes: genes, fitness: c.fitness}
}

// RunGenetic evolves insertion orders for the instance and returns the best
// packing found together with the number of generations run.
func RunGenetic(inst model.Instance, s model.SolverSettings, rng *rand.Rand) (*State, int, error) {
	if err := inst.CheckFeasible(); err != nil {
		return nil, 0, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(s.Seed))
	}
	config := s.Genetic

	// Scale generations for larger problems
	if len(inst.Rectangles) > 100 {
		config.Generations = max(config.Generations/2, 1)
	}

	ga := newGeneticOptimizer(config, s.Placement, inst, rng)
	return ga.optimize()
}
