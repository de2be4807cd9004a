// Package population manages the set of candidate solutions an
// evolution loop iterates over: which ones survive, which are offered up
// as parents for the next generation's mutation, and when a population
// transitions between exploration and exploitation phases.
//
// Grounded on spec.md §6's population lifecycle and, for the underlying
// "keep a bounded ranked set, evict the worst" shape, on
// github.com/katalvlaran/lvlath's tsp/approx.go candidate-bookkeeping
// pattern generalized from one tour to many solutions.
package population

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
)

// Individual is one candidate solution plus its cached fitness vector
// (recomputed whenever the solution is added, never mutated in place).
type Individual struct {
	Solution *solution.SolutionContext
	Fitness  []float64
}

// Phase names a population's current selection regime; GreedyPopulation
// has exactly one, ElitistPopulation transitions between them.
type Phase int

const (
	// PhaseExploration favours diversity over raw fitness.
	PhaseExploration Phase = iota
	// PhaseExploitation favours the best-known individuals exclusively.
	PhaseExploitation
)

// Population holds candidate solutions for an evolution loop, selecting
// which ones survive and which are offered as parents for mutation.
type Population interface {
	// Add inserts one individual, evicting the worst if the population is
	// at capacity; returns whether it survived.
	Add(s *solution.SolutionContext, p *pipeline.Pipeline) bool
	// AddAll adds every candidate in order, as produced by one
	// generation's worth of mutation.
	AddAll(candidates []*solution.SolutionContext, p *pipeline.Pipeline)
	// Select returns the individuals offered as parents for the next
	// generation's mutation.
	Select() []Individual
	// Ranked returns every surviving individual best-first.
	Ranked() []Individual
	// SelectionPhase reports the population's current regime.
	SelectionPhase() Phase
	// Size returns the current individual count.
	Size() int
}
