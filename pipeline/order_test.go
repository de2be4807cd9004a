package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/pipeline"
)

func TestTotalOrderFirstDifferingGroupDecides(t *testing.T) {
	a := []float64{1, 5, 100}
	b := []float64{1, 6, 0}
	require.Equal(t, pipeline.Less, pipeline.TotalOrder(a, b))
	require.Equal(t, pipeline.Greater, pipeline.TotalOrder(b, a))
}

func TestTotalOrderEqual(t *testing.T) {
	a := []float64{2, 2}
	b := []float64{2, 2}
	require.Equal(t, pipeline.Equal, pipeline.TotalOrder(a, b))
}

func TestTotalOrderUnequalLengthComparesSharedPrefix(t *testing.T) {
	a := []float64{1, 2}
	b := []float64{1, 2, 3}
	require.Equal(t, pipeline.Equal, pipeline.TotalOrder(a, b))
}

func TestDominatesRequiresNoWorseAndOneStrictlyBetter(t *testing.T) {
	require.True(t, pipeline.Dominates([]float64{1, 2}, []float64{1, 3}))
	require.False(t, pipeline.Dominates([]float64{1, 2}, []float64{1, 2}))
	require.False(t, pipeline.Dominates([]float64{2, 1}, []float64{1, 2}))
}
