package features

import (
	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

const (
	keyTotalDistance StateKeyLimit = iota
	keyTotalDuration
)

// StateKeyLimit namespaces this feature's state keys.
type StateKeyLimit int

func lk(k StateKeyLimit) solution.StateKey { return solution.StateKey(3000 + int(k)) }

// TravelLimits bounds a single actor's total distance and/or duration.
type TravelLimits struct {
	MaxDistance vrpmodel.Distance // 0 means unlimited
	MaxDuration vrpmodel.Duration // 0 means unlimited
}

// TravelLimitFeature enforces per-actor max total distance and/or max
// total duration, checked with delta formulas on insertion against
// cached route totals.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/two_opt.go delta-cost
// discipline (O(1) incremental checks against a running total rather
// than recomputing the whole tour).
type TravelLimitFeature struct {
	Name   string
	TC     costmodel.TransportCost
	Limits map[int64]TravelLimits // actor id -> limits
}

func NewTravelLimitFeature(name string, tc costmodel.TransportCost, limits map[int64]TravelLimits) pipeline.Feature {
	f := &TravelLimitFeature{Name: name, TC: tc, Limits: limits}
	return pipeline.Feature{Name: name, Constraint: f, State: f}
}

func (f *TravelLimitFeature) limitsFor(actorID int64) (TravelLimits, bool) {
	l, ok := f.Limits[actorID]
	return l, ok
}

func (f *TravelLimitFeature) EvaluateRoute(ctx pipeline.RouteMoveContext) *pipeline.Violation {
	return nil
}

func (f *TravelLimitFeature) EvaluateActivity(ctx pipeline.ActivityMoveContext) *pipeline.Violation {
	limits, ok := f.limitsFor(ctx.Route.Actor.ID)
	if !ok {
		return nil
	}
	ac := ctx.Activity
	if ac.Target == nil {
		return nil
	}
	profile := ctx.Route.Actor.Vehicle.Profile
	departure := ac.Prev.Schedule.Departure

	dPT := f.TC.Distance(profile, ac.Prev.Location, ac.Target.Location, departure)
	var dTN, dPN vrpmodel.Distance
	var tPT, tTN, tPN vrpmodel.Duration
	tPT = f.TC.Duration(profile, ac.Prev.Location, ac.Target.Location, departure)
	if ac.Next != nil {
		dTN = f.TC.Distance(profile, ac.Target.Location, ac.Next.Location, departure)
		dPN = f.TC.Distance(profile, ac.Prev.Location, ac.Next.Location, departure)
		tTN = f.TC.Duration(profile, ac.Target.Location, ac.Next.Location, departure)
		tPN = f.TC.Duration(profile, ac.Prev.Location, ac.Next.Location, departure)
	}
	deltaDist := dPT + dTN - dPN
	deltaDur := tPT + tTN - tPN

	var curDist vrpmodel.Distance
	var curDur vrpmodel.Duration
	if v, ok := ctx.Route.State.TourValue(lk(keyTotalDistance)); ok {
		curDist = v.(vrpmodel.Distance)
	}
	if v, ok := ctx.Route.State.TourValue(lk(keyTotalDuration)); ok {
		curDur = v.(vrpmodel.Duration)
	}

	if limits.MaxDistance > 0 && curDist+deltaDist > limits.MaxDistance {
		return &pipeline.Violation{Code: int(CodeTravelLimit), Stopped: false}
	}
	if limits.MaxDuration > 0 && curDur+deltaDur > limits.MaxDuration {
		return &pipeline.Violation{Code: int(CodeTravelLimit), Stopped: false}
	}
	return nil
}

func (f *TravelLimitFeature) Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error) {
	return source, 0, nil
}

func (f *TravelLimitFeature) AcceptInsertion(s *solution.SolutionContext, routeIdx int, job vrpmodel.Job) {
	s.Routes[routeIdx].State.MarkStale()
}

func (f *TravelLimitFeature) AcceptRouteState(route *solution.RouteContext) {
	acts := route.Tour.Activities()
	profile := route.Actor.Vehicle.Profile
	var dist vrpmodel.Distance
	var dur vrpmodel.Duration
	for i := 0; i+1 < len(acts); i++ {
		dist += f.TC.Distance(profile, acts[i].Location, acts[i+1].Location, acts[i].Schedule.Departure)
		dur += f.TC.Duration(profile, acts[i].Location, acts[i+1].Location, acts[i].Schedule.Departure)
	}
	route.State.SetTourValue(lk(keyTotalDistance), dist)
	route.State.SetTourValue(lk(keyTotalDuration), dur)
}

func (f *TravelLimitFeature) AcceptSolutionState(s *solution.SolutionContext) {}
