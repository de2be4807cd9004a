package features_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/features"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// pairCost builds a ProfileMatrix where every off-diagonal pair (i, j)
// costs exactly cost(i, j); used as both distance and duration so one
// matrix stands in for the dense transport cost.
func pairCost(n int, cost func(i, j int) float64) *costmodel.ProfileMatrix {
	m := costmodel.NewProfileMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m.Set(i, j, cost(i, j))
			}
		}
	}
	return m
}

func singleAt(t *testing.T, loc vrpmodel.Location, window vrpmodel.TimeWindow) *vrpmodel.Single {
	t.Helper()
	arena := vrpmodel.NewJobArena()
	l := loc
	single, err := arena.NewSingle(vrpmodel.Dimensions{}, []vrpmodel.Place{{
		Location: &l,
		Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: window}},
	}})
	require.NoError(t, err)
	return single
}

// TestTransportTimeFeatureRejectsArrivalAfterWindowEnd is spec.md's S3:
// the candidate's own time window closes before the vehicle could arrive.
func TestTransportTimeFeatureRejectsArrivalAfterWindowEnd(t *testing.T) {
	dist := pairCost(11, func(i, j int) float64 {
		if i == 0 && j == 10 || i == 10 && j == 0 {
			return 8
		}
		return 1
	})
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
	)
	feature := features.NewTransportTimeFeature("transport_time", tc, costmodel.DefaultActivityCost{})

	actor := capacityActor(t, nil)
	route := solution.NewRouteContext(actor)
	prev := route.Tour.Activities()[0]

	target := solution.Activity{Location: 10, Window: vrpmodel.TimeWindow{Start: 0, End: 5}}
	moveCtx := pipeline.ActivityMoveContext{
		Route: route,
		Activity: pipeline.ActivityContext{Index: 1, Prev: &prev, Target: &target, Next: nil},
	}
	v := feature.Constraint.EvaluateActivity(moveCtx)
	require.NotNil(t, v)
	require.Equal(t, int(features.CodeTimeWindow), v.Code)
	require.False(t, v.Stopped)
}

// TestTransportTimeFeatureAcceptsArrivalWithinWindow is the S3 mirror: the
// same layout but with a window wide enough to absorb the travel time.
func TestTransportTimeFeatureAcceptsArrivalWithinWindow(t *testing.T) {
	dist := pairCost(2, func(i, j int) float64 { return 1 })
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
	)
	feature := features.NewTransportTimeFeature("transport_time", tc, costmodel.DefaultActivityCost{})

	actor := capacityActor(t, nil)
	route := solution.NewRouteContext(actor)
	prev := route.Tour.Activities()[0]

	target := solution.Activity{Location: 1, Window: vrpmodel.TimeWindow{Start: 0, End: 100}}
	moveCtx := pipeline.ActivityMoveContext{
		Route: route,
		Activity: pipeline.ActivityContext{Index: 1, Prev: &prev, Target: &target, Next: nil},
	}
	v := feature.Constraint.EvaluateActivity(moveCtx)
	require.Nil(t, v)
}

// TestTransportTimeFeatureRejectsDownstreamWindowMiss inserts a candidate
// ahead of an already-placed activity whose own window the candidate's
// arrival-plus-travel would blow past: the downstream check, not the
// candidate's own window, is what fails here.
func TestTransportTimeFeatureRejectsDownstreamWindowMiss(t *testing.T) {
	dist := pairCost(11, func(i, j int) float64 {
		switch {
		case i == 0 && j == 2, i == 2 && j == 0:
			return 2
		case i == 2 && j == 10, i == 10 && j == 2:
			return 3
		default:
			return 1
		}
	})
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
	)
	feature := features.NewTransportTimeFeature("transport_time", tc, costmodel.DefaultActivityCost{})

	actor := capacityActor(t, nil)
	route := solution.NewRouteContext(actor)
	prev := route.Tour.Activities()[0]

	// Next is a tight-windowed activity not yet in the tour (the evaluator
	// probes it the same way before committing); its Window.End is what
	// the downstream check falls back to when no route-state cache exists.
	next := solution.Activity{Location: 10, Window: vrpmodel.TimeWindow{Start: 0, End: 4}, Job: singleAt(t, 10, vrpmodel.TimeWindow{Start: 0, End: 4})}
	target := solution.Activity{Location: 2, Window: vrpmodel.TimeWindow{Start: 0, End: 100}}
	moveCtx := pipeline.ActivityMoveContext{
		Route: route,
		Activity: pipeline.ActivityContext{Index: 1, Prev: &prev, Target: &target, Next: &next},
	}
	v := feature.Constraint.EvaluateActivity(moveCtx)
	require.NotNil(t, v)
	require.Equal(t, int(features.CodeTimeWindow), v.Code)
}

// TestTransportTimeFeatureAcceptsDownstreamWindowWithRoom is the same
// layout but with a downstream window wide enough to absorb the detour.
func TestTransportTimeFeatureAcceptsDownstreamWindowWithRoom(t *testing.T) {
	dist := pairCost(11, func(i, j int) float64 {
		switch {
		case i == 0 && j == 2, i == 2 && j == 0:
			return 2
		case i == 2 && j == 10, i == 10 && j == 2:
			return 3
		default:
			return 1
		}
	})
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
	)
	feature := features.NewTransportTimeFeature("transport_time", tc, costmodel.DefaultActivityCost{})

	actor := capacityActor(t, nil)
	route := solution.NewRouteContext(actor)
	prev := route.Tour.Activities()[0]

	next := solution.Activity{Location: 10, Window: vrpmodel.TimeWindow{Start: 0, End: 100}, Job: singleAt(t, 10, vrpmodel.TimeWindow{Start: 0, End: 100})}
	target := solution.Activity{Location: 2, Window: vrpmodel.TimeWindow{Start: 0, End: 100}}
	moveCtx := pipeline.ActivityMoveContext{
		Route: route,
		Activity: pipeline.ActivityContext{Index: 1, Prev: &prev, Target: &target, Next: &next},
	}
	v := feature.Constraint.EvaluateActivity(moveCtx)
	require.Nil(t, v)
}

// TestTransportTimeFeatureAcceptRouteStateComputesSchedule checks the
// forward pass directly: arrival/departure/waiting for a two-stop route
// with a gap wide enough to force waiting time.
func TestTransportTimeFeatureAcceptRouteStateComputesSchedule(t *testing.T) {
	dist := pairCost(2, func(i, j int) float64 { return 1 })
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
	)
	feature := features.NewTransportTimeFeature("transport_time", tc, costmodel.DefaultActivityCost{})
	p, err := pipeline.Build([]pipeline.Feature{feature}, nil, nil)
	require.NoError(t, err)

	actor := capacityActor(t, nil)
	route := solution.NewRouteContext(actor)
	job := singleAt(t, 1, vrpmodel.TimeWindow{Start: 5, End: 100})
	require.NoError(t, route.Tour.InsertAt(1, solution.Activity{Location: 1, Job: job, Window: vrpmodel.TimeWindow{Start: 5, End: 100}}))

	p.AcceptRouteState(route)

	acts := route.Tour.Activities()
	require.Equal(t, vrpmodel.Timestamp(1), acts[1].Schedule.Arrival)
	require.Equal(t, vrpmodel.Timestamp(5), acts[1].Schedule.Departure)
	require.False(t, route.State.Stale())
}
