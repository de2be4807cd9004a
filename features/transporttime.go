package features

import (
	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

const (
	keyLatestArrival StateKeyTime = iota
	keyWaiting
)

// StateKeyTime namespaces this feature's state keys away from other
// features' (see CapacityFeature's analogous StateKeyCapacity).
type StateKeyTime int

func tk(k StateKeyTime) solution.StateKey { return solution.StateKey(2000 + int(k)) }

// TransportTimeFeature maintains latest-allowed arrival per activity
// (backward pass) and waiting time (forward pass); rejects moves that
// would violate any downstream time window; can advance or recede the
// whole tour's departure to reduce waiting while preserving feasibility.
//
// Grounded on github.com/katalvlaran/lvlath's dijkstra.go relaxation
// bookkeeping (forward distance accumulation) for the forward waiting
// pass, and dtw/dtw.go's monotone warping-path bookkeeping (a running
// frontier that can only move forward in time) for the backward
// latest-arrival pass and the advance/recede departure smoothing.
type TransportTimeFeature struct {
	Name  string
	TC    costmodel.TransportCost
	AC    costmodel.ActivityCost
}

// NewTransportTimeFeature returns a Feature wrapping TransportTimeFeature.
func NewTransportTimeFeature(name string, tc costmodel.TransportCost, ac costmodel.ActivityCost) pipeline.Feature {
	t := &TransportTimeFeature{Name: name, TC: tc, AC: ac}
	return pipeline.Feature{Name: name, Constraint: t, Objective: t, State: t}
}

func (t *TransportTimeFeature) EvaluateRoute(ctx pipeline.RouteMoveContext) *pipeline.Violation {
	return nil
}

func (t *TransportTimeFeature) EvaluateActivity(ctx pipeline.ActivityMoveContext) *pipeline.Violation {
	ac := ctx.Activity
	if ac.Target == nil {
		return nil
	}
	profile := ctx.Route.Actor.Vehicle.Profile

	// Forward: arrival at target from prev's departure.
	arrival := ac.Prev.Schedule.Departure + vrpmodel.Timestamp(t.TC.Duration(profile, ac.Prev.Location, ac.Target.Location, ac.Prev.Schedule.Departure))
	if !windowFeasible(ac.Target.Window, arrival) {
		return &pipeline.Violation{Code: int(CodeTimeWindow), Stopped: false}
	}
	departure := t.AC.Departure(ctx.Route.Actor, placeOf(ac.Target), ac.Target.Window, arrival)

	// Downstream check: either the cached latest-arrival at Next (if any)
	// or, when Next is nil (open-end vehicle / insertion at tour end),
	// the target activity's own window end clamped to the actor's
	// working window (spec.md §4.3 edge case).
	if ac.Next != nil {
		nextArrival := departure + vrpmodel.Timestamp(t.TC.Duration(profile, ac.Target.Location, ac.Next.Location, departure))
		var latestAllowed vrpmodel.Timestamp
		if v, ok := ctx.Route.State.ActivityValue(tk(keyLatestArrival), ac.Index+1); ok {
			latestAllowed = v.(vrpmodel.Timestamp)
		} else {
			latestAllowed = ac.Next.Window.End
		}
		if nextArrival > latestAllowed {
			return &pipeline.Violation{Code: int(CodeTimeWindow), Stopped: false}
		}
	} else {
		working := ctx.Route.Actor.Detail.Working
		latest := ac.Target.Window.End
		if latest > working.End {
			latest = working.End
		}
		if departure > latest {
			return &pipeline.Violation{Code: int(CodeTimeWindow), Stopped: false}
		}
	}
	return nil
}

func placeOf(a *solution.Activity) vrpmodel.Place {
	if a.Job == nil {
		return vrpmodel.Place{Duration: 0, Spans: []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: a.Window}}}
	}
	for _, p := range a.Job.Places {
		if p.Location != nil && *p.Location == a.Location {
			return p
		}
	}
	return vrpmodel.Place{Duration: a.Duration, Spans: []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: a.Window}}}
}

func windowFeasible(w vrpmodel.TimeWindow, arrival vrpmodel.Timestamp) bool {
	return arrival <= w.End
}

func (t *TransportTimeFeature) Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error) {
	return source, 0, nil
}

// Estimate returns the transport-cost delta this activity insertion would
// add, cost(prev,target)+cost(target,next)-cost(prev,next), or only
// cost(prev,target) when Next is nil, for insertion tie-breaking
// (spec.md §4.3's "straightforward delta" formula). Changes in waiting
// or service cost are not included.
func (t *TransportTimeFeature) Estimate(ctx pipeline.ActivityMoveContext) float64 {
	ac := ctx.Activity
	if ac.Target == nil {
		return 0
	}
	actor := ctx.Route.Actor
	cPT := t.TC.Cost(actor, ac.Prev.Location, ac.Target.Location, ac.Prev.Schedule.Departure)
	var cTN, cPN vrpmodel.Cost
	if ac.Next != nil {
		cTN = t.TC.Cost(actor, ac.Target.Location, ac.Next.Location, ac.Prev.Schedule.Departure)
		cPN = t.TC.Cost(actor, ac.Prev.Location, ac.Next.Location, ac.Prev.Schedule.Departure)
	}
	return float64(cPT + cTN - cPN)
}

func (t *TransportTimeFeature) Fitness(s *solution.SolutionContext) float64 {
	var total float64
	for _, r := range s.Routes {
		acts := r.Tour.Activities()
		for i := 0; i+1 < len(acts); i++ {
			total += float64(t.TC.Cost(r.Actor, acts[i].Location, acts[i+1].Location, acts[i].Schedule.Departure))
		}
		for _, a := range acts {
			total += float64(t.AC.Cost(r.Actor, a.Schedule.Arrival, a.Schedule.Departure, a.Duration))
		}
	}
	return total
}

func (t *TransportTimeFeature) AcceptInsertion(s *solution.SolutionContext, routeIdx int, job vrpmodel.Job) {
	s.Routes[routeIdx].State.MarkStale()
}

// AcceptRouteState recomputes forward schedules and the backward latest-
// arrival pass, then clamps to the actor's working window (Open Question
// decision in DESIGN.md: departure optimisation always clamps).
func (t *TransportTimeFeature) AcceptRouteState(route *solution.RouteContext) {
	acts := route.Tour.Activities()
	n := len(acts)
	if n == 0 {
		return
	}
	profile := route.Actor.Vehicle.Profile

	// Forward pass: recompute arrival/departure/waiting.
	for i := 0; i < n; i++ {
		a := acts[i]
		var arrival vrpmodel.Timestamp
		if i == 0 {
			// The start keeps a later arrival set by Advance/RecedeDeparture,
			// but never precedes the working window.
			arrival = route.Actor.Detail.Working.Start
			if a.Schedule.Arrival > arrival {
				arrival = a.Schedule.Arrival
			}
		} else {
			prev := acts[i-1]
			arrival = prev.Schedule.Departure + vrpmodel.Timestamp(t.TC.Duration(profile, prev.Location, a.Location, prev.Schedule.Departure))
		}
		departure := t.AC.Departure(route.Actor, placeOf(&a), a.Window, arrival)
		waiting := departure - arrival - vrpmodel.Timestamp(a.Duration)
		if waiting < 0 {
			waiting = 0
		}
		a.Schedule = solution.Schedule{Arrival: arrival, Departure: departure}
		acts[i] = a
		_ = route.Tour.SetAt(i, a)
		route.State.SetActivityValue(tk(keyWaiting), i, waiting)
	}

	// Backward pass: latest arrival consistent with downstream windows,
	// clamped to the actor's working-window end.
	working := route.Actor.Detail.Working
	latest := make([]vrpmodel.Timestamp, n)
	latest[n-1] = minTS(acts[n-1].Window.End, working.End)
	for i := n - 2; i >= 0; i-- {
		a, next := acts[i], acts[i+1]
		travel := vrpmodel.Timestamp(t.TC.Duration(profile, a.Location, next.Location, a.Schedule.Departure))
		latestDeparture := latest[i+1] - travel
		la := t.AC.LatestArrival(route.Actor, placeOf(&a), a.Window, latestDeparture)
		latest[i] = minTS(minTS(a.Window.End, la), working.End)
	}
	for i := 0; i < n; i++ {
		route.State.SetActivityValue(tk(keyLatestArrival), i, latest[i])
	}
}

func minTS(a, b vrpmodel.Timestamp) vrpmodel.Timestamp {
	if a < b {
		return a
	}
	return b
}

func (t *TransportTimeFeature) AcceptSolutionState(s *solution.SolutionContext) {}

// AdvanceDeparture shifts a route's start time later by delta, reducing
// waiting, as long as every activity's latest-arrival bound (already
// cached) still holds; it always clamps to the actor's working window.
func (t *TransportTimeFeature) AdvanceDeparture(route *solution.RouteContext, delta vrpmodel.Duration) {
	t.shiftDeparture(route, vrpmodel.Timestamp(delta))
}

// RecedeDeparture shifts a route's start time earlier by delta.
func (t *TransportTimeFeature) RecedeDeparture(route *solution.RouteContext, delta vrpmodel.Duration) {
	t.shiftDeparture(route, -vrpmodel.Timestamp(delta))
}

func (t *TransportTimeFeature) shiftDeparture(route *solution.RouteContext, delta vrpmodel.Timestamp) {
	acts := route.Tour.Activities()
	if len(acts) == 0 {
		return
	}
	working := route.Actor.Detail.Working
	start := acts[0]
	newArrival := start.Schedule.Arrival + delta
	if newArrival < working.Start {
		newArrival = working.Start
	}
	if v, ok := route.State.ActivityValue(tk(keyLatestArrival), 0); ok {
		latest := v.(vrpmodel.Timestamp)
		if newArrival > latest {
			newArrival = latest
		}
	}
	if newArrival > working.End {
		newArrival = working.End
	}
	start.Schedule.Arrival = newArrival
	_ = route.Tour.SetAt(0, start)
	route.State.MarkStale()
}
