package insertion

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// Evaluator finds the cheapest feasible placement for a Job across every
// route (and, via NewRoute, a fresh route built from a free actor).
type Evaluator struct {
	Pipeline *pipeline.Pipeline
	// NewRoute builds a RouteContext for an as-yet-unused actor, or nil
	// if none remain; evaluated as one more candidate route alongside the
	// solution's existing ones.
	NewRoute func(s *solution.SolutionContext) *solution.RouteContext
}

// NewEvaluator wraps p (and an optional NewRoute hook) as an Evaluator.
func NewEvaluator(p *pipeline.Pipeline, newRoute func(*solution.SolutionContext) *solution.RouteContext) *Evaluator {
	return &Evaluator{Pipeline: p, NewRoute: newRoute}
}

// EvaluateJob dispatches on job's variant, breaking ties with the
// default BestResultSelector (always the lowest-cost feasible route).
func (e *Evaluator) EvaluateJob(ic *solution.InsertionContext, job vrpmodel.Job) Result {
	return e.EvaluateJobWith(ic, job, BestResultSelector{})
}

// EvaluateJobWith is EvaluateJob parameterized by the ResultSelector used
// to choose between two feasible candidate routes, letting recreate
// operators (farthest, blinks, perturbation, ...) reuse the same
// evaluation walk with a different tie-break rule.
func (e *Evaluator) EvaluateJobWith(ic *solution.InsertionContext, job vrpmodel.Job, selector ResultSelector) Result {
	switch job.Kind {
	case vrpmodel.KindSingle:
		return e.evaluateSingle(ic, job, job.Single, selector)
	default:
		return e.evaluateMulti(ic, job, job.Multi, selector)
	}
}

// candidateRoutes returns every existing route plus, if NewRoute is set
// and an actor remains free, one synthetic empty route (not yet attached
// to ic.Solution.Routes; the recreate operator attaches it on commit).
func (e *Evaluator) candidateRoutes(ic *solution.InsertionContext) []*solution.RouteContext {
	routes := make([]*solution.RouteContext, 0, len(ic.Solution.Routes)+1)
	routes = append(routes, ic.Solution.Routes...)
	if e.NewRoute != nil {
		if fresh := e.NewRoute(ic.Solution); fresh != nil {
			routes = append(routes, fresh)
		}
	}
	return routes
}

func (e *Evaluator) evaluateSingle(ic *solution.InsertionContext, job vrpmodel.Job, single *vrpmodel.Single, selector ResultSelector) Result {
	var best *Success
	perActor := make(map[int64]int)
	var firstCode int

	for _, route := range e.candidateRoutes(ic) {
		e.Pipeline.AcceptRouteState(route)
		if v := e.Pipeline.EvaluateHard(pipeline.RouteMoveContext{Solution: ic.Solution, Route: route, Job: job}, pipeline.ActivityMoveContext{Route: route}); v != nil {
			perActor[route.Actor.ID] = v.Code
			if firstCode == 0 {
				firstCode = v.Code
			}
			continue
		}
		placement, cost, code, ok := e.bestLegFor(ic, route, single)
		if !ok {
			perActor[route.Actor.ID] = code
			if firstCode == 0 {
				firstCode = code
			}
			continue
		}
		candidate := &Success{Job: job, Route: route, IsNew: routeIndexOf(ic.Solution, route) == -1, Placements: []Placement{placement}, Cost: cost}
		if best == nil {
			best = candidate
		} else {
			preferred := selector.Prefer(*best, *candidate)
			best = &preferred
		}
	}
	if best == nil {
		return Result{Ok: false, Failure: Failure{Job: job, Code: firstCode, PerActorCodes: perActor}}
	}
	return Result{Ok: true, Success: *best}
}

// bestLegFor tries every (leg, place, span) combination within route and
// returns the cheapest feasible one.
func (e *Evaluator) bestLegFor(ic *solution.InsertionContext, route *solution.RouteContext, single *vrpmodel.Single) (Placement, float64, int, bool) {
	legs := route.Tour.Legs()
	// An open-end vehicle (no Detail.End) may also append after its final
	// activity; that slot has no Next.
	if acts := route.Tour.Activities(); route.Actor.Detail.End == nil && len(acts) > 0 {
		last := len(acts) - 1
		legs = append(legs, solution.Leg{PrevIndex: last, NextIndex: last + 1, Prev: &acts[last]})
	}
	var bestCost float64
	var bestLeg int = -1
	var bestCandidate solution.Activity
	firstCode := 0
	found := false

	for _, leg := range legs {
		for _, place := range single.Places {
			if place.Location == nil {
				continue
			}
			for _, span := range place.Spans {
				window := span.Resolve(leg.Prev.Schedule.Departure)
				candidate := solution.Activity{
					Location: *place.Location,
					Duration: place.Duration,
					Window:   window,
					Job:      single,
				}
				actCtx := pipeline.ActivityContext{Index: leg.NextIndex, Prev: leg.Prev, Target: &candidate, Next: leg.Next}
				moveCtx := pipeline.ActivityMoveContext{Route: route, Activity: actCtx}
				jobVal := vrpmodel.AsJob(single)
				if v := e.Pipeline.EvaluateHard(pipeline.RouteMoveContext{Job: jobVal, Route: route}, moveCtx); v != nil {
					if firstCode == 0 {
						firstCode = v.Code
					}
					continue
				}
				cost := e.Pipeline.EstimateSoft(moveCtx)
				if !found || cost < bestCost {
					found = true
					bestCost = cost
					bestLeg = leg.NextIndex
					bestCandidate = candidate
				}
			}
		}
	}
	if !found {
		return Placement{}, 0, firstCode, false
	}
	return Placement{
		RouteIndex: -1,
		TourIndex:  bestLeg,
		Single:     single,
		Location:   bestCandidate.Location,
		Duration:   bestCandidate.Duration,
		Window:     bestCandidate.Window,
	}, bestCost, 0, true
}

// evaluateMulti tries every permutation the Multi's Permutator admits,
// inserting sub-singles into a cloned shadow route sequentially so each
// later sub-single sees the earlier ones already placed, and keeps the
// cheapest fully-feasible ordering. Atomic all-or-none: a partial failure
// abandons the whole ordering, never leaves a dangling sub-single.
//
// Grounded on spec.md §4.2's description of shadow-copy multi-job
// insertion and github.com/katalvlaran/lvlath's core/methods_clone.go
// clone-before-mutate discipline.
func (e *Evaluator) evaluateMulti(ic *solution.InsertionContext, job vrpmodel.Job, multi *vrpmodel.Multi, selector ResultSelector) Result {
	var best *Success
	var bestRoute *solution.RouteContext
	perActor := make(map[int64]int)
	var firstCode int

	for _, route := range e.candidateRoutes(ic) {
		for _, order := range multi.Permutator.Iter() {
			shadow := route.Clone()
			e.Pipeline.AcceptRouteState(shadow)
			placements := make([]Placement, 0, len(order))
			var total float64
			ok := true
			for _, idx := range order {
				sub := multi.Jobs[idx]
				jobVal := vrpmodel.AsJob(sub)
				if v := e.Pipeline.EvaluateHard(pipeline.RouteMoveContext{Solution: ic.Solution, Route: shadow, Job: jobVal}, pipeline.ActivityMoveContext{Route: shadow}); v != nil {
					ok = false
					if _, seen := perActor[route.Actor.ID]; !seen {
						perActor[route.Actor.ID] = v.Code
					}
					if firstCode == 0 {
						firstCode = v.Code
					}
					break
				}
				placement, cost, code, found := e.bestLegFor(ic, shadow, sub)
				if !found {
					ok = false
					if _, seen := perActor[route.Actor.ID]; !seen {
						perActor[route.Actor.ID] = code
					}
					if firstCode == 0 {
						firstCode = code
					}
					break
				}
				act := solution.Activity{Location: placement.Location, Duration: placement.Duration, Window: placement.Window, Job: sub}
				if err := shadow.Tour.InsertAt(placement.TourIndex, act); err != nil {
					ok = false
					break
				}
				shadow.State.MarkStale()
				e.Pipeline.AcceptRouteState(shadow)
				placements = append(placements, placement)
				total += cost
			}
			if !ok {
				continue
			}
			isNew := routeIndexOf(ic.Solution, route) == -1
			candidate := Success{Job: job, Route: route, IsNew: isNew, Placements: placements, Cost: total}
			if best == nil {
				best = &candidate
				bestRoute = route
			} else {
				preferred := selector.Prefer(*best, candidate)
				best = &preferred
				bestRoute = best.Route
			}
		}
		if best != nil && bestRoute == route {
			perActor[route.Actor.ID] = 0
		}
	}
	if best == nil {
		return Result{Ok: false, Failure: Failure{Job: job, Code: firstCode, PerActorCodes: perActor}}
	}
	return Result{Ok: true, Success: *best}
}

func routeIndexOf(s *solution.SolutionContext, route *solution.RouteContext) int {
	for i, r := range s.Routes {
		if r == route {
			return i
		}
	}
	return -1
}
