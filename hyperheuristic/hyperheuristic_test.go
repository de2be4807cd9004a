package hyperheuristic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeforge/vrpcore/hyperheuristic"
	"github.com/routeforge/vrpcore/solution"
)

// fixedRand returns Float64 and Intn values taken from queues, letting
// tests script exact selector decisions without a real RNG.
type fixedRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (f *fixedRand) Float64() float64 {
	v := f.floats[f.fi%len(f.floats)]
	f.fi++
	return v
}

func (f *fixedRand) Intn(n int) int {
	v := f.ints[f.ii%len(f.ints)]
	f.ii++
	return v % n
}

func TestStaticSelectiveWeightedSampling(t *testing.T) {
	table := hyperheuristic.NewStaticSelective()
	low := hyperheuristic.Move{RuinIndex: 0, MutationIndex: 0}
	high := hyperheuristic.Move{RuinIndex: 1, MutationIndex: 1}
	table.Add(low, 1, nil)
	table.Add(high, 9, nil)

	// r=0.05*10=0.5 falls within the first row's cumulative weight (1).
	r1 := &fixedRand{floats: []float64{0.05}}
	require.Equal(t, low, table.Select(nil, r1))

	// r=0.99*10=9.9 falls past the first row, selecting the second.
	r2 := &fixedRand{floats: []float64{0.99}}
	require.Equal(t, high, table.Select(nil, r2))
}

func TestStaticSelectiveSkipsIneligibleRows(t *testing.T) {
	table := hyperheuristic.NewStaticSelective()
	blocked := hyperheuristic.Move{RuinIndex: 0, MutationIndex: 0}
	allowed := hyperheuristic.Move{RuinIndex: 1, MutationIndex: 0}
	table.Add(blocked, 5, func(*solution.InsertionContext) bool { return false })
	table.Add(allowed, 5, nil)
	r := &fixedRand{floats: []float64{0.5}}
	require.Equal(t, allowed, table.Select(nil, r))
}

func TestStaticSelectiveEmptyTableReturnsZeroMove(t *testing.T) {
	table := hyperheuristic.NewStaticSelective()
	r := &fixedRand{floats: []float64{0.5}}
	require.Equal(t, hyperheuristic.Move{}, table.Select(nil, r))
}

func TestDynamicSelectiveExploitsLearnedBest(t *testing.T) {
	moves := []hyperheuristic.Move{{RuinIndex: 0}, {RuinIndex: 1}}
	d := hyperheuristic.NewDynamicSelective(moves, 0, 0.5)

	// Train move[1] toward a high reward via repeated Observe calls.
	for i := 0; i < 20; i++ {
		d.Observe(moves[1], hyperheuristic.OutcomeNewBest)
		d.SetState(hyperheuristic.StateBestKnown)
	}

	r := &fixedRand{floats: []float64{0.9}, ints: []int{0}}
	require.Equal(t, moves[1], d.Select(nil, r))
}

func TestDynamicSelectiveExploresWhenEpsilonOne(t *testing.T) {
	moves := []hyperheuristic.Move{{RuinIndex: 0}, {RuinIndex: 1}}
	d := hyperheuristic.NewDynamicSelective(moves, 1, 0.5)
	r := &fixedRand{floats: []float64{0.0}, ints: []int{1}}
	require.Equal(t, moves[1], d.Select(nil, r))
}

func TestDynamicSelectiveMergeExperienceAverages(t *testing.T) {
	moves := []hyperheuristic.Move{{RuinIndex: 0}}
	a := hyperheuristic.NewDynamicSelective(moves, 0, 1)
	b := hyperheuristic.NewDynamicSelective(moves, 0, 1)

	a.Observe(moves[0], hyperheuristic.OutcomeNewBest) // Q -> 100
	b.Observe(moves[0], hyperheuristic.OutcomeDegraded) // Q -> -10

	a.MergeExperience(b)

	r := &fixedRand{floats: []float64{0.9}, ints: []int{0}}
	// After merge there's only one move to pick regardless of averaged Q.
	require.Equal(t, moves[0], a.Select(nil, r))
}

func TestRewardMapping(t *testing.T) {
	require.Equal(t, 100.0, hyperheuristic.Reward(hyperheuristic.OutcomeNewBest))
	require.Equal(t, 1.0, hyperheuristic.Reward(hyperheuristic.OutcomeImproved))
	require.Equal(t, -10.0, hyperheuristic.Reward(hyperheuristic.OutcomeDegraded))
	require.Equal(t, 0.0, hyperheuristic.Reward(hyperheuristic.OutcomeNoChange))
}
