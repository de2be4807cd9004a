package features

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// Capacity-related state keys.
const (
	keyLoadAfter StateKeyCapacity = iota
	keyMaxFutureLoad
	keyMaxPastLoad
)

// StateKeyCapacity is a typed alias so the capacity feature's own keys
// never collide with another feature's solution.StateKey values; callers
// never see this type, only the opaque solution.StateKey it converts to.
type StateKeyCapacity int

func ck(k StateKeyCapacity) solution.StateKey { return solution.StateKey(1000 + int(k)) }

// demandOf returns the Dims.Demand of the Single an activity realises, or
// a zero vector for terminals.
func demandOf(a solution.Activity, dims int) vrpmodel.Capacity {
	if a.Job == nil {
		return make(vrpmodel.Capacity, dims)
	}
	return a.Job.Dims.Demand
}

func maxCap(a, b vrpmodel.Capacity) vrpmodel.Capacity {
	out := make(vrpmodel.Capacity, len(a))
	for i := range a {
		if a[i] > b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// CapacityFeature maintains, at every tour position, current/max-future/
// max-past load, and evaluates a candidate insertion in O(1) against
// these caches.
//
// Grounded on github.com/katalvlaran/lvlath's matrix/ops_elementwise.go
// (element-wise vector operations), generalized from matrix rows to
// per-activity load vectors.
type CapacityFeature struct {
	Name string
	Dims int // number of capacity dimensions
}

// NewCapacityFeature returns a Feature wrapping CapacityFeature.
func NewCapacityFeature(name string, dims int) pipeline.Feature {
	c := &CapacityFeature{Name: name, Dims: dims}
	return pipeline.Feature{Name: name, Constraint: c, State: c}
}

func (c *CapacityFeature) EvaluateRoute(ctx pipeline.RouteMoveContext) *pipeline.Violation {
	if ctx.Job.Dims().Demand == nil {
		return nil
	}
	if !ctx.Job.Dims().Demand.LessEqual(ctx.Route.Actor.Vehicle.Dims.Capacity) {
		return &pipeline.Violation{Code: int(CodeCapacity), Stopped: true}
	}
	return nil
}

func (c *CapacityFeature) EvaluateActivity(ctx pipeline.ActivityMoveContext) *pipeline.Violation {
	route := ctx.Route
	if route.State.Stale() {
		// Delta estimation requires the cache; caller must have run
		// AcceptRouteState before evaluating activities.
		return nil
	}
	demand := demandOf(solution.Activity{Job: activityJobFromCtx(ctx)}, c.Dims)
	prevIdx := ctx.Activity.Index - 1
	var suffixMax vrpmodel.Capacity
	if v, ok := route.State.ActivityValue(ck(keyMaxFutureLoad), prevIdx); ok {
		suffixMax = v.(vrpmodel.Capacity)
	} else {
		suffixMax = make(vrpmodel.Capacity, c.Dims)
	}
	projected := suffixMax.Add(demand)
	if !projected.LessEqual(route.Actor.Vehicle.Dims.Capacity) {
		return &pipeline.Violation{Code: int(CodeCapacity), Stopped: false}
	}
	return nil
}

// activityJobFromCtx pulls the Single about to be inserted out of the
// ActivityContext's Target, where insertion evaluator places the
// candidate job before evaluating (see insertion package).
func activityJobFromCtx(ctx pipeline.ActivityMoveContext) *vrpmodel.Single {
	if ctx.Activity.Target == nil {
		return nil
	}
	return ctx.Activity.Target.Job
}

func (c *CapacityFeature) Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error) {
	return source, 0, nil
}

func (c *CapacityFeature) AcceptInsertion(s *solution.SolutionContext, routeIdx int, job vrpmodel.Job) {
	s.Routes[routeIdx].State.MarkStale()
}

func (c *CapacityFeature) AcceptRouteState(route *solution.RouteContext) {
	acts := route.Tour.Activities()
	n := len(acts)
	loadAfter := make([]vrpmodel.Capacity, n)
	running := make(vrpmodel.Capacity, c.Dims)
	for i, a := range acts {
		running = running.Add(demandOf(a, c.Dims))
		loadAfter[i] = running.Clone()
		route.State.SetActivityValue(ck(keyLoadAfter), i, loadAfter[i])
	}
	maxFuture := make(vrpmodel.Capacity, c.Dims)
	for i := n - 1; i >= 0; i-- {
		maxFuture = maxCap(maxFuture, loadAfter[i])
		route.State.SetActivityValue(ck(keyMaxFutureLoad), i, maxFuture.Clone())
	}
	maxPast := make(vrpmodel.Capacity, c.Dims)
	for i := 0; i < n; i++ {
		maxPast = maxCap(maxPast, loadAfter[i])
		route.State.SetActivityValue(ck(keyMaxPastLoad), i, maxPast.Clone())
	}
}

func (c *CapacityFeature) AcceptSolutionState(s *solution.SolutionContext) {}
