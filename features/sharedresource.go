package features

import (
	"sync"

	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// SharedResourceFeature rejects an insertion if total per-resource demand
// over all routes would exceed that resource's capacity. Demand and
// capacity are expressed as plain int64 so the check reduces to a single
// residual-capacity comparison, not a full flow network, but the
// reasoning is the same one a max-flow feasibility test would make: a
// resource id is a sink of fixed capacity, every route drawing from it is
// a source arc, and exceeding capacity is an infeasible saturation.
//
// Grounded on github.com/katalvlaran/lvlath's flow/dinic.go residual-
// capacity bookkeeping (push along an arc only while residual capacity
// remains), generalized from a flow network's edges to named shared
// resources consumed by jobs.
type SharedResourceFeature struct {
	Name      string
	ResourceOf func(job vrpmodel.Job) (resource string, demand int64, ok bool)
	Capacity  map[string]int64

	mu      sync.Mutex
	used    map[string]int64 // resource -> total demand currently assigned
}

func NewSharedResourceFeature(name string, capacity map[string]int64, resourceOf func(vrpmodel.Job) (string, int64, bool)) pipeline.Feature {
	f := &SharedResourceFeature{Name: name, Capacity: capacity, ResourceOf: resourceOf, used: make(map[string]int64)}
	return pipeline.Feature{Name: name, Constraint: f, State: f}
}

func (f *SharedResourceFeature) EvaluateRoute(ctx pipeline.RouteMoveContext) *pipeline.Violation {
	resource, demand, ok := f.ResourceOf(ctx.Job)
	if !ok {
		return nil
	}
	cap, hasCap := f.Capacity[resource]
	if !hasCap {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.used[resource]+demand > cap {
		return &pipeline.Violation{Code: int(CodeSharedResource), Stopped: true}
	}
	return nil
}

func (f *SharedResourceFeature) EvaluateActivity(ctx pipeline.ActivityMoveContext) *pipeline.Violation {
	return nil
}

func (f *SharedResourceFeature) Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error) {
	return source, 0, nil
}

func (f *SharedResourceFeature) AcceptInsertion(s *solution.SolutionContext, routeIdx int, job vrpmodel.Job) {
	resource, demand, ok := f.ResourceOf(job)
	if !ok {
		return
	}
	f.mu.Lock()
	f.used[resource] += demand
	f.mu.Unlock()
}

func (f *SharedResourceFeature) AcceptRouteState(route *solution.RouteContext) {}

// AcceptSolutionState recomputes the aggregate usage from scratch
// whenever called at a pipeline boundary, since ruin operators remove
// jobs without calling AcceptInsertion's inverse.
func (f *SharedResourceFeature) AcceptSolutionState(s *solution.SolutionContext) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.used = make(map[string]int64)
	for _, r := range s.Routes {
		for _, a := range r.Tour.Activities() {
			if a.Job == nil {
				continue
			}
			job := vrpmodel.Job{Kind: vrpmodel.KindSingle, Single: a.Job}
			resource, demand, ok := f.ResourceOf(job)
			if !ok {
				continue
			}
			f.used[resource] += demand
		}
	}
}
