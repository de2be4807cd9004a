package solve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/config"
	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/features"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solve"
	"github.com/routeforge/vrpcore/vrpmodel"
)

func tinyProblem(t *testing.T) (*vrpmodel.Problem, costmodel.TransportCost) {
	t.Helper()

	const n = 4 // depot (0) + three job locations
	dist := costmodel.NewProfileMatrix(n)
	dur := costmodel.NewProfileMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := float64((i - j) * (i - j))
			dist.Set(i, j, d)
			dur.Set(i, j, d)
		}
	}
	tc := costmodel.NewDenseTransportCost(
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dist},
		map[vrpmodel.Profile]*costmodel.ProfileMatrix{"car": dur},
	)

	driver := &vrpmodel.Driver{ID: "driver-1"}
	vehicle := &vrpmodel.Vehicle{
		ID:      "vehicle-1",
		Profile: "car",
		Details: []vrpmodel.VehicleDetail{{
			Start:   0,
			Working: vrpmodel.TimeWindow{Start: 0, End: 100000},
		}},
	}
	fleet, err := vrpmodel.NewFleet([]*vrpmodel.Driver{driver}, []*vrpmodel.Vehicle{vehicle})
	require.NoError(t, err)

	arena := vrpmodel.NewJobArena()
	var jobs []vrpmodel.Job
	for i := 1; i < n; i++ {
		loc := vrpmodel.Location(i)
		single, err := arena.NewSingle(vrpmodel.Dimensions{}, []vrpmodel.Place{{
			Location: &loc,
			Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: vrpmodel.TimeWindow{Start: 0, End: 100000}}},
		}})
		require.NoError(t, err)
		jobs = append(jobs, vrpmodel.AsJob(single))
	}

	problem := &vrpmodel.Problem{
		Fleet:          fleet,
		Jobs:           jobs,
		ObjectiveNames: [][]string{{"unassigned"}},
	}
	return problem, tc
}

func TestSolvePlacesOrRecordsEveryJob(t *testing.T) {
	problem, tc := tinyProblem(t)
	feats := []pipeline.Feature{features.NewMinimiseUnassignedFeature("unassigned")}

	cfg := config.Default()
	cfg.Termination.MaxGenerations = 3
	cfg.Termination.MaxWallTimeSeconds = 0
	cfg.ParentsPerGen = 2
	cfg.Population.MaxSize = 4

	result, err := solve.Solve(context.Background(), problem, tc, feats, cfg)
	require.NoError(t, err)

	accounted := result.Statistics.TotalJobsPlaced + result.Statistics.TotalUnassigned
	require.Equal(t, len(problem.Jobs), accounted)

	for _, u := range result.Unassigned {
		require.GreaterOrEqual(t, u.Code, 0)
	}
}
