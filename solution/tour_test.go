package solution_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

func newArenaSingle(t *testing.T, arena *vrpmodel.JobArena, loc vrpmodel.Location) *vrpmodel.Single {
	t.Helper()
	single, err := arena.NewSingle(vrpmodel.Dimensions{}, []vrpmodel.Place{{
		Location: &loc,
		Spans:    []vrpmodel.TimeSpan{{Kind: vrpmodel.TimeSpanWindow, Window: vrpmodel.TimeWindow{Start: 0, End: 1000}}},
	}})
	require.NoError(t, err)
	return single
}

func TestTourInsertAtKeepsOrder(t *testing.T) {
	arena := vrpmodel.NewJobArena()
	start := solution.Activity{Location: 0, Tag: "start"}
	tour := solution.NewTour(start, nil)

	j1 := newArenaSingle(t, arena, 1)
	j2 := newArenaSingle(t, arena, 2)

	require.NoError(t, tour.InsertAt(1, solution.Activity{Location: 1, Job: j1}))
	require.NoError(t, tour.InsertAt(2, solution.Activity{Location: 2, Job: j2}))

	acts := tour.Activities()
	require.Len(t, acts, 3)
	require.Equal(t, vrpmodel.Location(1), acts[1].Location)
	require.Equal(t, vrpmodel.Location(2), acts[2].Location)
	require.Equal(t, 2, tour.JobCount())
}

func TestTourRemoveShiftsRemainingActivities(t *testing.T) {
	arena := vrpmodel.NewJobArena()
	tour := solution.NewTour(solution.Activity{Location: 0}, nil)
	j1 := newArenaSingle(t, arena, 1)
	j2 := newArenaSingle(t, arena, 2)
	_ = tour.InsertAt(1, solution.Activity{Location: 1, Job: j1})
	_ = tour.InsertAt(2, solution.Activity{Location: 2, Job: j2})

	idx := tour.Remove(j1)
	require.Equal(t, 1, idx)
	require.Equal(t, 1, tour.JobCount())
	acts := tour.Activities()
	require.Len(t, acts, 2)
	require.Same(t, j2, acts[1].Job)
}

func TestTourRemoveMissingJobReturnsNegativeOne(t *testing.T) {
	arena := vrpmodel.NewJobArena()
	tour := solution.NewTour(solution.Activity{Location: 0}, nil)
	j1 := newArenaSingle(t, arena, 1)
	require.Equal(t, -1, tour.Remove(j1))
}

func TestTourLegsCoverEveryConsecutivePair(t *testing.T) {
	end := solution.Activity{Location: 9, Tag: "end"}
	tour := solution.NewTour(solution.Activity{Location: 0}, &end)
	legs := tour.Legs()
	require.Len(t, legs, 1)
	require.Equal(t, 0, legs[0].PrevIndex)
	require.Equal(t, 1, legs[0].NextIndex)
}

func TestTourCloneIsIndependent(t *testing.T) {
	arena := vrpmodel.NewJobArena()
	tour := solution.NewTour(solution.Activity{Location: 0}, nil)
	j1 := newArenaSingle(t, arena, 1)
	_ = tour.InsertAt(1, solution.Activity{Location: 1, Job: j1})

	clone := tour.Clone()
	_ = clone.InsertAt(2, solution.Activity{Location: 2})
	require.Len(t, tour.Activities(), 2)
	require.Len(t, clone.Activities(), 3)
}
