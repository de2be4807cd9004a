package population

import (
	"sort"

	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
)

// GreedyPopulation keeps the MaxSize best individuals by TotalOrder,
// always in PhaseExploitation: the simplest population variant, useful
// as a baseline and for quick convergence on small problems.
type GreedyPopulation struct {
	MaxSize     int
	individuals []Individual
}

// NewGreedyPopulation returns an empty population bounded to maxSize.
func NewGreedyPopulation(maxSize int) *GreedyPopulation {
	return &GreedyPopulation{MaxSize: maxSize}
}

func (g *GreedyPopulation) Add(s *solution.SolutionContext, p *pipeline.Pipeline) bool {
	ind := Individual{Solution: s, Fitness: p.Fitness(s)}
	g.individuals = append(g.individuals, ind)
	sort.Slice(g.individuals, func(i, j int) bool {
		return pipeline.TotalOrder(g.individuals[i].Fitness, g.individuals[j].Fitness) == pipeline.Less
	})
	if g.MaxSize > 0 && len(g.individuals) > g.MaxSize {
		g.individuals = g.individuals[:g.MaxSize]
	}
	for _, kept := range g.individuals {
		if kept.Solution == s {
			return true
		}
	}
	return false
}

func (g *GreedyPopulation) AddAll(candidates []*solution.SolutionContext, p *pipeline.Pipeline) {
	for _, c := range candidates {
		g.Add(c, p)
	}
}

func (g *GreedyPopulation) Select() []Individual { return g.Ranked() }

func (g *GreedyPopulation) Ranked() []Individual {
	out := make([]Individual, len(g.individuals))
	copy(out, g.individuals)
	return out
}

func (g *GreedyPopulation) SelectionPhase() Phase { return PhaseExploitation }

func (g *GreedyPopulation) Size() int { return len(g.individuals) }
