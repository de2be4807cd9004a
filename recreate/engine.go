// Package recreate rebuilds a partial solution (jobs previously removed
// by a ruin operator, or never inserted) by repeatedly selecting an
// unplaced job and committing its cheapest feasible placement, per the
// variant-specific JobSelector/ResultSelector pair each named operator
// configures.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/approx.go greedy
// insertion loop, generalized from "no job is ever removed" single-cycle
// construction to a solver that may also be re-run mid-search over a
// partially-ruined solution.
package recreate

import (
	"github.com/routeforge/vrpcore/insertion"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// JobSelector picks the next job to attempt from remaining and returns
// the chosen job plus the remaining slice with it removed (order may
// otherwise be preserved or not, per selector).
type JobSelector interface {
	Select(ic *solution.InsertionContext, remaining []vrpmodel.Job) (vrpmodel.Job, []vrpmodel.Job)
}

// Engine drives one recreate pass: repeatedly ask JobSelector for the
// next job, evaluate it, and commit or record it as unassigned.
type Engine struct {
	Evaluator      *insertion.Evaluator
	JobSelector    JobSelector
	ResultSelector insertion.ResultSelector
}

// New builds an Engine from its three collaborators.
func New(eval *insertion.Evaluator, js JobSelector, rs insertion.ResultSelector) *Engine {
	return &Engine{Evaluator: eval, JobSelector: js, ResultSelector: rs}
}

// Run attempts to place every job in jobs into ic.Solution, committing
// each success immediately (so later jobs in the same pass see earlier
// placements) and recording failures in ic.Solution.Unassigned.
func (e *Engine) Run(ic *solution.InsertionContext, jobs []vrpmodel.Job) {
	remaining := append([]vrpmodel.Job(nil), jobs...)
	for len(remaining) > 0 {
		var job vrpmodel.Job
		job, remaining = e.JobSelector.Select(ic, remaining)
		result := e.Evaluator.EvaluateJobWith(ic, job, e.ResultSelector)
		if !result.Ok {
			delete(ic.Solution.Unassigned, job.ID())
			ic.Solution.Unassigned[job.ID()] = solution.UnassignedReason{
				Code:          result.Failure.Code,
				PerActorCodes: result.Failure.PerActorCodes,
			}
			continue
		}
		Commit(ic, e.Evaluator.Pipeline, result.Success)
		delete(ic.Solution.Unassigned, job.ID())
	}
}

// Commit applies a Success onto ic.Solution: attaches a new route if
// needed, inserts every placement's activity at its recorded tour index
// (in order, since indices were computed against a growing tour), and
// runs the pipeline's State hooks.
func Commit(ic *solution.InsertionContext, p interface {
	AcceptInsertion(s *solution.SolutionContext, routeIdx int, job vrpmodel.Job)
	AcceptRouteState(route *solution.RouteContext)
}, success insertion.Success) {
	route := success.Route
	if success.IsNew {
		ic.Solution.Routes = append(ic.Solution.Routes, route)
		ic.Solution.Registry.Use(route.Actor)
	}
	routeIdx := -1
	for i, r := range ic.Solution.Routes {
		if r == route {
			routeIdx = i
			break
		}
	}
	for _, pl := range success.Placements {
		act := solution.Activity{Location: pl.Location, Duration: pl.Duration, Window: pl.Window, Job: pl.Single}
		_ = route.Tour.InsertAt(pl.TourIndex, act)
	}
	route.State.MarkStale()
	p.AcceptInsertion(ic.Solution, routeIdx, success.Job)
	p.AcceptRouteState(route)
}
