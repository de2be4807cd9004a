// Package insertion evaluates candidate insertion positions for a job
// against a Pipeline and picks the cheapest feasible one, producing the
// Success/Failure result the recreate operators commit or discard.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/approx.go (cheapest-
// insertion TSP heuristic: try every edge, keep the minimum-delta one),
// generalized from a single cycle to many routes, many candidate
// positions per route, and a hard/soft constraint split.
package insertion

import (
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// Placement is one sub-single's chosen (route, tour index) slot; a
// Single job has exactly one Placement, a Multi job has one per
// sub-single in permutation order.
type Placement struct {
	RouteIndex int
	TourIndex  int
	Single     *vrpmodel.Single
	// Location/Duration/Window are the specific Place and resolved
	// TimeSpan this placement chose (a Single may offer several
	// alternative places); callers must build the committed Activity
	// from these, not from Single.Places[0].
	Location vrpmodel.Location
	Duration vrpmodel.Duration
	Window   vrpmodel.TimeWindow
}

// Success is a fully feasible candidate insertion: every Placement
// passed every hard constraint, and Cost is the summed soft-objective
// estimate across all of them.
type Success struct {
	Job vrpmodel.Job
	// Route is the RouteContext the placements apply to: either a route
	// already present in SolutionContext.Routes, or a freshly-built one
	// (IsNew) the caller must append before committing the placements.
	Route      *solution.RouteContext
	IsNew      bool
	Placements []Placement
	Cost       float64
}

// Failure reports why no feasible placement existed for Job: the first
// violation code seen for each actor that was tried.
type Failure struct {
	Job           vrpmodel.Job
	Code          int
	PerActorCodes map[int64]int
}

// Result is exactly one of Success or Failure (Ok discriminates).
type Result struct {
	Ok      bool
	Success Success
	Failure Failure
}
