package population_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/features"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/population"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// buildPipeline wires MinimiseUnassignedFeature as the sole objective so
// a SolutionContext's fitness is just its unassigned-job count, a simple
// scalar easy to reason about in tests.
func buildPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	f := features.NewMinimiseUnassignedFeature("unassigned")
	p, err := pipeline.Build([]pipeline.Feature{f}, [][]string{{"unassigned"}}, nil)
	require.NoError(t, err)
	return p
}

func solutionWithUnassigned(n int) *solution.SolutionContext {
	s := &solution.SolutionContext{Unassigned: make(map[int64]solution.UnassignedReason)}
	for i := 0; i < n; i++ {
		s.Unassigned[int64(i)] = solution.UnassignedReason{}
	}
	return s
}

func TestGreedyPopulationKeepsBestAndEvictsWorst(t *testing.T) {
	p := buildPipeline(t)
	pop := population.NewGreedyPopulation(2)

	pop.Add(solutionWithUnassigned(5), p)
	pop.Add(solutionWithUnassigned(1), p)
	pop.Add(solutionWithUnassigned(3), p)

	require.Equal(t, 2, pop.Size())
	ranked := pop.Ranked()
	require.Equal(t, []float64{1}, ranked[0].Fitness)
	require.Equal(t, []float64{3}, ranked[1].Fitness)
}

func TestGreedyPopulationSelectReturnsRanked(t *testing.T) {
	p := buildPipeline(t)
	pop := population.NewGreedyPopulation(5)
	pop.Add(solutionWithUnassigned(2), p)
	pop.Add(solutionWithUnassigned(0), p)
	selected := pop.Select()
	require.Len(t, selected, 2)
	require.Equal(t, []float64{0}, selected[0].Fitness)
}

func TestElitistPopulationTracksEliteFront(t *testing.T) {
	p := buildPipeline(t)
	pop := population.NewElitistPopulation(1, 1, 3)
	pop.Add(solutionWithUnassigned(4), p)
	pop.Add(solutionWithUnassigned(2), p)
	pop.Add(solutionWithUnassigned(6), p)

	ranked := pop.Ranked()
	require.NotEmpty(t, ranked)
	require.Equal(t, []float64{2}, ranked[0].Fitness)
}

func TestElitistPopulationTransitionsToExploitation(t *testing.T) {
	p := buildPipeline(t)
	pop := population.NewElitistPopulation(1, 1, 2)
	require.Equal(t, population.PhaseExploration, pop.SelectionPhase())

	// Repeated additions that never improve the elite front should
	// eventually flip the phase to exploitation.
	pop.Add(solutionWithUnassigned(1), p)
	for i := 0; i < 5; i++ {
		pop.Add(solutionWithUnassigned(10+i), p)
	}
	require.Equal(t, population.PhaseExploitation, pop.SelectionPhase())
}

func TestElitistPopulationAddAll(t *testing.T) {
	p := buildPipeline(t)
	pop := population.NewElitistPopulation(2, 2, 10)
	candidates := []*solution.SolutionContext{
		solutionWithUnassigned(3),
		solutionWithUnassigned(1),
		solutionWithUnassigned(2),
	}
	pop.AddAll(candidates, p)
	require.True(t, pop.Size() > 0)
}

var _ = vrpmodel.Job{} // keep vrpmodel import meaningful if fixtures expand
