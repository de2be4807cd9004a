// Package hyperheuristic selects which ruin operator and which recreate
// (or local-search) operator to apply on a given search step, either from
// a fixed weighted/predicated table (StaticSelective) or from a learned
// state-action value table (DynamicSelective).
package hyperheuristic

import "github.com/routeforge/vrpcore/solution"

// RandomSource is the randomness a selector needs.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// Move names one ruin operator paired with one recreate/local-search
// operator, the unit of selection a hyper-heuristic produces per step.
type Move struct {
	RuinIndex     int
	MutationIndex int
}

// Selector picks the next Move to try against ic.
type Selector interface {
	Select(ic *solution.InsertionContext, rand RandomSource) Move
	// Observe reports the outcome of the most recently selected Move so
	// learning selectors can update; static selectors may no-op.
	Observe(move Move, outcome Outcome)
}

// Outcome classifies what happened after a Move was applied, the reward
// signal a learning selector trains on.
type Outcome int

const (
	// OutcomeDegraded: worse than before applying the move.
	OutcomeDegraded Outcome = iota
	// OutcomeRuined: feasible but strictly worse than the best-known.
	OutcomeRuined
	// OutcomeNoChange: move applied but fitness unchanged.
	OutcomeNoChange
	// OutcomeImproved: better than immediately before the move, not a
	// new global best.
	OutcomeImproved
	// OutcomeNewBest: a new best-known solution.
	OutcomeNewBest
)

// Reward maps an Outcome to the scalar reward DynamicSelective trains on.
func Reward(o Outcome) float64 {
	switch o {
	case OutcomeNewBest:
		return 100
	case OutcomeImproved:
		return 1
	case OutcomeDegraded:
		return -10
	default:
		return 0
	}
}
