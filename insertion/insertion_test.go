package insertion_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/features"
	"github.com/routeforge/vrpcore/insertion"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/recreate"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// distanceMatrix builds a dense n x n cost matrix whose entry (i, j) is
// cost(i, j), used as both distance and duration so a leg's travel time
// and travel distance coincide.
func distanceMatrix(n int, cost func(i, j int) float64) *costmodel.ProfileMatrix {
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

func fullOpenWindow() vrpmodel.TimeWindow {
	return vrpmodel.TimeWindow{Start: 0, End: 100000}
}

// newRouteHook mirrors solve.Solve's own hook: hand the evaluator one
// fresh route per still-free actor, never more.
func newRouteHook(s *solution.SolutionContext) *solution.RouteContext {
	available := s.Registry.Available()
	if len(available) == 0 {
		return nil
	}
	return solution.NewRouteContext(available[0])
}

func oneVehicleFleet(t *testing.T, capacity vrpmodel.Capacity) *vrpmodel.Fleet {
	t.Helper()
	return vehicleFleet(t, 1, capacity)
}

func vehicleFleet(t *testing.T, n int, capacity vrpmodel.Capacity) *vrpmodel.Fleet {
	t.Helper()
	driver := &vrpmodel.Driver{ID: "driver-1"}
	var vehicles []*vrpmodel.Vehicle
	for i := 0; i < n; i++ {
		vehicles = append(vehicles, &vrpmodel.Vehicle{
			ID:      fmt.Sprintf("vehicle-%d", i),
			Profile: "car",
			Dims:    vrpmodel.Dimensions{Capacity: capacity},
			Details: []vrpmodel.VehicleDetail{{Start: 0, Working: vrpmodel.TimeWindow{Start: 0, End: 100}}},
		})
	}
	fleet, err := vrpmodel.NewFleet([]*vrpmodel.Driver{driver}, vehicles)
	require.NoError(t, err)
	return fleet
}

// TestSingleVehicleClusterPlacesEveryJob is spec.md's S1: a single
// vehicle, three unit-demand deliveries strung out along one axis, open
// time windows. Every job should land in one route, none unassigned.
func TestSingleVehicleClusterPlacesEveryJob(t *testing.T) {
	const n = 4
	dist := distanceMatrix(n, func(i, j int) float64 {
		d := i - j
		if d < 0 {
			d = -d
		}
		return float64(d)
	})
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
	)
	fleet := oneVehicleFleet(t, vrpmodel.Capacity{10})
	fleet.Vehicles[0].Details[0].Working = fullOpenWindow()

	arena := vrpmodel.NewJobArena()
	var jobs []vrpmodel.Job
	for _, loc := range []int{1, 2, 3} {
		l := vrpmodel.Location(loc)
		single, err := arena.NewSingle(vrpmodel.Dimensions{Demand: vrpmodel.Capacity{1}}, []vrpmodel.Place{{
			Location: &l,
			Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: fullOpenWindow()}},
		}})
		require.NoError(t, err)
		jobs = append(jobs, vrpmodel.AsJob(single))
	}

	feats := []pipeline.Feature{
		features.NewCapacityFeature("capacity", 1),
		features.NewTransportTimeFeature("transport_time", tc, costmodel.DefaultActivityCost{}),
	}
	p, err := pipeline.Build(feats, [][]string{{"transport_time"}}, nil)
	require.NoError(t, err)

	eval := insertion.NewEvaluator(p, newRouteHook)
	engine := recreate.New(eval, recreate.SequentialJobSelector{}, insertion.BestResultSelector{})

	problem := &vrpmodel.Problem{Fleet: fleet, Jobs: jobs}
	sol := solution.NewSolutionContext(fleet)
	ic := &solution.InsertionContext{Problem: problem, Solution: sol}
	engine.Run(ic, jobs)

	require.Empty(t, sol.Unassigned)
	require.Len(t, sol.Routes, 1)
	require.Equal(t, 3, sol.Routes[0].Tour.JobCount())
}

// TestCapacitySplitAcrossTwoRoutes is spec.md's S2: two pickups whose
// combined demand exceeds a single vehicle's capacity, with a second
// vehicle available. With only the capacity feature wired, each pickup
// gets its own route and nothing is left unassigned.
func TestCapacitySplitAcrossTwoRoutes(t *testing.T) {
	fleet := vehicleFleet(t, 2, vrpmodel.Capacity{5})
	for i := range fleet.Vehicles {
		fleet.Vehicles[i].Details[0].Working = fullOpenWindow()
	}

	arena := vrpmodel.NewJobArena()
	var jobs []vrpmodel.Job
	for _, loc := range []int{1, 2} {
		l := vrpmodel.Location(loc)
		single, err := arena.NewSingle(vrpmodel.Dimensions{Demand: vrpmodel.Capacity{3}}, []vrpmodel.Place{{
			Location: &l,
			Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: fullOpenWindow()}},
		}})
		require.NoError(t, err)
		jobs = append(jobs, vrpmodel.AsJob(single))
	}

	feats := []pipeline.Feature{features.NewCapacityFeature("capacity", 1)}
	p, err := pipeline.Build(feats, nil, nil)
	require.NoError(t, err)

	eval := insertion.NewEvaluator(p, newRouteHook)
	engine := recreate.New(eval, recreate.SequentialJobSelector{}, insertion.BestResultSelector{})

	problem := &vrpmodel.Problem{Fleet: fleet, Jobs: jobs}
	sol := solution.NewSolutionContext(fleet)
	ic := &solution.InsertionContext{Problem: problem, Solution: sol}
	engine.Run(ic, jobs)

	require.Empty(t, sol.Unassigned)
	require.Len(t, sol.Routes, 2)
	for _, r := range sol.Routes {
		require.Equal(t, 1, r.Tour.JobCount())
	}
}

// TestTimeWindowInfeasibilityLeavesJobUnassigned is spec.md's S3: a job
// whose only reachable time window closes before the vehicle could ever
// arrive. No route should ever be committed for it, and the recorded
// reason must be the time-window code.
func TestTimeWindowInfeasibilityLeavesJobUnassigned(t *testing.T) {
	const n = 11
	dist := distanceMatrix(n, func(i, j int) float64 {
		if i == 0 && j == 10 || i == 10 && j == 0 {
			return 8
		}
		return 1
	})
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
	)
	fleet := oneVehicleFleet(t, vrpmodel.Capacity{10})
	fleet.Vehicles[0].Details[0].Working = vrpmodel.TimeWindow{Start: 0, End: 100}

	arena := vrpmodel.NewJobArena()
	loc := vrpmodel.Location(10)
	single, err := arena.NewSingle(vrpmodel.Dimensions{Demand: vrpmodel.Capacity{1}}, []vrpmodel.Place{{
		Location: &loc,
		Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: vrpmodel.TimeWindow{Start: 0, End: 5}}},
	}})
	require.NoError(t, err)
	job := vrpmodel.AsJob(single)

	feats := []pipeline.Feature{
		features.NewCapacityFeature("capacity", 1),
		features.NewTransportTimeFeature("transport_time", tc, costmodel.DefaultActivityCost{}),
	}
	p, err := pipeline.Build(feats, [][]string{{"transport_time"}}, nil)
	require.NoError(t, err)

	eval := insertion.NewEvaluator(p, newRouteHook)
	engine := recreate.New(eval, recreate.SequentialJobSelector{}, insertion.BestResultSelector{})

	problem := &vrpmodel.Problem{Fleet: fleet, Jobs: []vrpmodel.Job{job}}
	sol := solution.NewSolutionContext(fleet)
	ic := &solution.InsertionContext{Problem: problem, Solution: sol}
	engine.Run(ic, []vrpmodel.Job{job})

	require.Empty(t, sol.Routes)
	require.Len(t, sol.Unassigned, 1)
	reason, ok := sol.Unassigned[job.ID()]
	require.True(t, ok)
	require.Equal(t, int(features.CodeTimeWindow), reason.Code)
}

// TestMultiJobAtomicityLeavesBothUnassigned is spec.md's S4: a multi-job
// whose only admissible ordering would still overflow capacity. Neither
// sub-single may be committed alone — the whole job fails atomically.
func TestMultiJobAtomicityLeavesBothUnassigned(t *testing.T) {
	fleet := oneVehicleFleet(t, vrpmodel.Capacity{1})
	fleet.Vehicles[0].Details[0].Working = fullOpenWindow()

	arena := vrpmodel.NewJobArena()
	loc1, loc2 := vrpmodel.Location(1), vrpmodel.Location(5)
	// Each sub-single carries its own demand — the capacity feature's
	// activity-level cache reads Dims.Demand off the activity's own Single,
	// not off the parent Multi, so the overflow only shows up once both
	// subs are actually in the tour.
	sub1, err := arena.NewSingle(vrpmodel.Dimensions{Demand: vrpmodel.Capacity{1}}, []vrpmodel.Place{{
		Location: &loc1,
		Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: fullOpenWindow()}},
	}})
	require.NoError(t, err)
	sub2, err := arena.NewSingle(vrpmodel.Dimensions{Demand: vrpmodel.Capacity{1}}, []vrpmodel.Place{{
		Location: &loc2,
		Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: fullOpenWindow()}},
	}})
	require.NoError(t, err)
	multi, err := arena.NewMulti(vrpmodel.Dimensions{Demand: vrpmodel.Capacity{2}}, []*vrpmodel.Single{sub1, sub2}, vrpmodel.IdentityPermutator{N: 2})
	require.NoError(t, err)
	job := vrpmodel.AsJob(multi)

	feats := []pipeline.Feature{features.NewCapacityFeature("capacity", 1)}
	p, err := pipeline.Build(feats, nil, nil)
	require.NoError(t, err)

	eval := insertion.NewEvaluator(p, newRouteHook)
	result := eval.EvaluateJob(&solution.InsertionContext{
		Problem:  &vrpmodel.Problem{Fleet: fleet, Jobs: []vrpmodel.Job{job}},
		Solution: solution.NewSolutionContext(fleet),
	}, job)

	require.False(t, result.Ok)
	require.Equal(t, int(features.CodeCapacity), result.Failure.Code)
}
