package features_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/features"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

func capacityActor(t *testing.T, capacity vrpmodel.Capacity) *vrpmodel.Actor {
	t.Helper()
	return &vrpmodel.Actor{
		ID:     1,
		Vehicle: &vrpmodel.Vehicle{ID: "v1", Profile: "car", Dims: vrpmodel.Dimensions{Capacity: capacity}},
		Driver:  &vrpmodel.Driver{ID: "d1"},
		Detail:  vrpmodel.VehicleDetail{Start: 0, Working: vrpmodel.TimeWindow{Start: 0, End: 100}},
	}
}

func singleWithDemand(t *testing.T, demand vrpmodel.Capacity) *vrpmodel.Single {
	t.Helper()
	arena := vrpmodel.NewJobArena()
	loc := vrpmodel.Location(1)
	single, err := arena.NewSingle(vrpmodel.Dimensions{Demand: demand}, []vrpmodel.Place{{
		Location: &loc,
		Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: vrpmodel.TimeWindow{Start: 0, End: 100}}},
	}})
	require.NoError(t, err)
	return single
}

// TestCapacityFeatureRouteLevelRejectsOverCapacityJob exercises the
// route-level check: a job whose demand alone already exceeds the
// vehicle's capacity is rejected before any activity placement is tried.
func TestCapacityFeatureRouteLevelRejectsOverCapacityJob(t *testing.T) {
	feat := features.NewCapacityFeature("capacity", 1)
	route := solution.NewRouteContext(capacityActor(t, vrpmodel.Capacity{5}))
	single := singleWithDemand(t, vrpmodel.Capacity{10})

	v := feat.Constraint.EvaluateRoute(pipeline.RouteMoveContext{Route: route, Job: vrpmodel.AsJob(single)})
	require.NotNil(t, v)
	require.Equal(t, int(features.CodeCapacity), v.Code)
	require.True(t, v.Stopped)
}

// TestCapacityFeatureRouteLevelIgnoresJobsWithNoDemand mirrors a job that
// never declared a capacity dimension (e.g. pure time-window job in a
// capacity-constrained fleet): it must not be rejected for a dimension it
// never opted into.
func TestCapacityFeatureRouteLevelIgnoresJobsWithNoDemand(t *testing.T) {
	feat := features.NewCapacityFeature("capacity", 1)
	route := solution.NewRouteContext(capacityActor(t, vrpmodel.Capacity{5}))
	single := singleWithDemand(t, nil)

	v := feat.Constraint.EvaluateRoute(pipeline.RouteMoveContext{Route: route, Job: vrpmodel.AsJob(single)})
	require.Nil(t, v)
}

// TestCapacityFeatureRouteLevelAcceptsWithinCapacity confirms the
// boundary case demand == capacity is feasible (LessEqual, not Less).
func TestCapacityFeatureRouteLevelAcceptsWithinCapacity(t *testing.T) {
	feat := features.NewCapacityFeature("capacity", 1)
	route := solution.NewRouteContext(capacityActor(t, vrpmodel.Capacity{5}))
	single := singleWithDemand(t, vrpmodel.Capacity{5})

	v := feat.Constraint.EvaluateRoute(pipeline.RouteMoveContext{Route: route, Job: vrpmodel.AsJob(single)})
	require.Nil(t, v)
}

// TestCapacityFeatureActivityLevelUsesCachedFutureLoad builds a tour with
// one already-placed job of demand 3, refreshes the route's state cache
// via the pipeline (exactly as the insertion evaluator does), then checks
// that inserting a second demand-3 job ahead of it is rejected because the
// cached max-future-load downstream of the insertion point would push the
// vehicle over capacity 5 — without re-walking the whole tour.
func TestCapacityFeatureActivityLevelUsesCachedFutureLoad(t *testing.T) {
	feature := features.NewCapacityFeature("capacity", 1)
	p, err := pipeline.Build([]pipeline.Feature{feature}, nil, nil)
	require.NoError(t, err)

	route := solution.NewRouteContext(capacityActor(t, vrpmodel.Capacity{5}))
	existing := singleWithDemand(t, vrpmodel.Capacity{3})
	require.NoError(t, route.Tour.InsertAt(1, solution.Activity{Location: 1, Job: existing}))
	p.AcceptRouteState(route)

	candidate := singleWithDemand(t, vrpmodel.Capacity{3})
	acts := route.Tour.Activities()
	moveCtx := pipeline.ActivityMoveContext{
		Route: route,
		Activity: pipeline.ActivityContext{
			Index:  1,
			Prev:   &acts[0],
			Target: &solution.Activity{Location: 1, Job: candidate},
			Next:   &acts[1],
		},
	}
	v := p.EvaluateHard(pipeline.RouteMoveContext{Route: route, Job: vrpmodel.AsJob(candidate)}, moveCtx)
	require.NotNil(t, v)
	require.Equal(t, int(features.CodeCapacity), v.Code)
	require.False(t, v.Stopped)
}

// TestCapacityFeatureActivityLevelAcceptsWhenRoomRemains is the same
// setup but with a capacity large enough for both jobs, confirming the
// cache-based check isn't simply always-reject.
func TestCapacityFeatureActivityLevelAcceptsWhenRoomRemains(t *testing.T) {
	feature := features.NewCapacityFeature("capacity", 1)
	p, err := pipeline.Build([]pipeline.Feature{feature}, nil, nil)
	require.NoError(t, err)

	route := solution.NewRouteContext(capacityActor(t, vrpmodel.Capacity{10}))
	existing := singleWithDemand(t, vrpmodel.Capacity{3})
	require.NoError(t, route.Tour.InsertAt(1, solution.Activity{Location: 1, Job: existing}))
	p.AcceptRouteState(route)

	candidate := singleWithDemand(t, vrpmodel.Capacity{3})
	acts := route.Tour.Activities()
	moveCtx := pipeline.ActivityMoveContext{
		Route: route,
		Activity: pipeline.ActivityContext{
			Index:  1,
			Prev:   &acts[0],
			Target: &solution.Activity{Location: 1, Job: candidate},
			Next:   &acts[1],
		},
	}
	v := p.EvaluateHard(pipeline.RouteMoveContext{Route: route, Job: vrpmodel.AsJob(candidate)}, moveCtx)
	require.Nil(t, v)
}
