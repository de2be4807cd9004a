package vrprand_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/vrprand"
)

func TestNewIsDeterministic(t *testing.T) {
	a := vrprand.New(42)
	b := vrprand.New(42)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestNewZeroSeedIsReproducible(t *testing.T) {
	a := vrprand.New(0)
	b := vrprand.New(0)
	require.Equal(t, a.Float64(), b.Float64())
}

func TestDeriveProducesIndependentStreams(t *testing.T) {
	parent := vrprand.New(7)
	c1 := parent.Derive(1)
	c2 := parent.Derive(2)
	var same = true
	for i := 0; i < 20; i++ {
		if c1.Intn(1_000_000) != c2.Intn(1_000_000) {
			same = false
			break
		}
	}
	require.False(t, same, "two different streams should not produce identical sequences")
}

func TestDeriveIsDeterministicGivenSameParentState(t *testing.T) {
	p1 := vrprand.New(99)
	p2 := vrprand.New(99)
	c1 := p1.Derive(5)
	c2 := p2.Derive(5)
	for i := 0; i < 20; i++ {
		require.Equal(t, c1.Intn(100), c2.Intn(100))
	}
}

func TestIntRangeBounds(t *testing.T) {
	s := vrprand.New(3)
	for i := 0; i < 200; i++ {
		v := s.IntRange(5, 9)
		require.GreaterOrEqual(t, v, 5)
		require.LessOrEqual(t, v, 9)
	}
}

func TestIntRangeDegenerate(t *testing.T) {
	s := vrprand.New(3)
	require.Equal(t, 5, s.IntRange(5, 5))
	require.Equal(t, 5, s.IntRange(5, 4))
}

func TestBoolClampsProbability(t *testing.T) {
	s := vrprand.New(1)
	require.False(t, s.Bool(0))
	require.True(t, s.Bool(1))
}
