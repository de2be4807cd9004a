package evolution

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/routeforge/vrpcore/hyperheuristic"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/population"
	"github.com/routeforge/vrpcore/recreate"
	"github.com/routeforge/vrpcore/ruin"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrprand"
)

// MutationTable is the fixed, indexed set of ruin operators and
// recreate/local-search engines a hyper-heuristic Move selects between
// (Move.RuinIndex into Ruins, Move.MutationIndex into Recreates).
type MutationTable struct {
	Ruins      []ruin.Operator
	Recreates  []*recreate.Engine
	RuinLimits ruin.RemovalLimits
}

// Mutate applies one hyper-heuristic Move to a clone of ic: ruins jobs out
// per Ruins[move.RuinIndex], then rebuilds via Recreates[move.MutationIndex].
func (t MutationTable) Mutate(ic *solution.InsertionContext, move hyperheuristic.Move) *solution.InsertionContext {
	child := ic.Clone()
	if len(t.Ruins) == 0 || len(t.Recreates) == 0 {
		return child
	}
	ruinOp := t.Ruins[move.RuinIndex%len(t.Ruins)]
	tracker := ruin.NewJobRemovalTracker(t.RuinLimits)
	ruinOp.Run(child, tracker)

	engine := t.Recreates[move.MutationIndex%len(t.Recreates)]
	engine.Run(child, tracker.Removed())
	return child
}

// GenerationHook observes progress after each generation, the seam
// telemetry plugs into.
type GenerationHook interface {
	OnGeneration(gen int, pop population.Population, term Termination, started time.Time)
}

// Loop drives the generational search: build/seed a Population, then
// repeatedly select parents, mutate each via a hyper-heuristic + mutation
// table, fold offspring back into the population, and check Termination.
//
// Grounded on spec.md §6's generational lifecycle; the per-generation
// parent-to-offspring fan-out uses golang.org/x/sync/errgroup the way
// this repo's ambient concurrency stack is expected to, mirroring how
// github.com/katalvlaran/lvlath's multi-start TSP solves independent
// restarts concurrently before reducing to a single best.
type Loop struct {
	Pipeline    *pipeline.Pipeline
	Population  population.Population
	Termination Termination
	Quota       Quota
	Table       MutationTable
	Selector    hyperheuristic.Selector
	Hooks       []GenerationHook
	Config      Config
}

// Run executes generations until Termination fires, returning the final
// population's best-ranked individual.
func (l *Loop) Run(ctx context.Context, seed *solution.InsertionContext) (*solution.SolutionContext, error) {
	started := time.Now()
	l.Population.Add(seed.Solution, l.Pipeline)

	master := vrprand.New(l.Config.RandomSeed)
	gen := 0
	for !l.Termination.ShouldStop(gen, started, l.Population) {
		select {
		case <-ctx.Done():
			return l.best(), ctx.Err()
		default:
		}

		parents := l.Population.Select()
		if len(parents) == 0 {
			break
		}
		n := l.Quota.Allowance(l.Config.ParentsPerGeneration)
		if n <= 0 || n > len(parents) {
			n = len(parents)
		}
		parents = parents[:n]

		offspring := make([]*solution.SolutionContext, len(parents))
		g, _ := errgroup.WithContext(ctx)
		for i, parent := range parents {
			i, parent := i, parent
			stream := master.Derive(uint64(gen)*1_000_003 + uint64(i))
			g.Go(func() error {
				ic := &solution.InsertionContext{Problem: seed.Problem, Solution: parent.Solution.Clone(), Random: stream}
				move := l.Selector.Select(ic, stream)
				beforeFitness := l.Pipeline.Fitness(ic.Solution)
				child := l.Table.Mutate(ic, move)
				afterFitness := l.Pipeline.Fitness(child.Solution)
				l.Selector.Observe(move, classify(beforeFitness, afterFitness, l.bestFitness()))
				offspring[i] = child.Solution
				return nil
			})
		}
		_ = g.Wait()

		l.Population.AddAll(offspring, l.Pipeline)
		gen++

		for _, h := range l.Hooks {
			h.OnGeneration(gen, l.Population, l.Termination, started)
		}
	}
	return l.best(), nil
}

func (l *Loop) best() *solution.SolutionContext {
	ranked := l.Population.Ranked()
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0].Solution
}

func (l *Loop) bestFitness() []float64 {
	ranked := l.Population.Ranked()
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0].Fitness
}

func classify(before, after, bestKnown []float64) hyperheuristic.Outcome {
	switch pipeline.TotalOrder(after, before) {
	case pipeline.Less:
		if bestKnown != nil && pipeline.TotalOrder(after, bestKnown) == pipeline.Less {
			return hyperheuristic.OutcomeNewBest
		}
		return hyperheuristic.OutcomeImproved
	case pipeline.Greater:
		return hyperheuristic.OutcomeDegraded
	default:
		return hyperheuristic.OutcomeNoChange
	}
}
