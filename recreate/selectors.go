package recreate

import (
	"github.com/samber/lo"

	"github.com/routeforge/vrpcore/jobindex"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// SequentialJobSelector always picks remaining[0], preserving caller
// order; used when the caller has already sorted jobs (e.g. by regret).
type SequentialJobSelector struct{}

func (SequentialJobSelector) Select(ic *solution.InsertionContext, remaining []vrpmodel.Job) (vrpmodel.Job, []vrpmodel.Job) {
	return remaining[0], remaining[1:]
}

// RandomJobSelector picks a uniformly random job from remaining.
type RandomJobSelector struct{}

func (RandomJobSelector) Select(ic *solution.InsertionContext, remaining []vrpmodel.Job) (vrpmodel.Job, []vrpmodel.Job) {
	i := ic.Random.Intn(len(remaining))
	return remaining[i], lo.DropByIndex(remaining, i)
}

// NearestNeighbourJobSelector always picks whichever remaining job has
// the lowest jobindex.Rank (closest to some vehicle start) under its
// configured Profile, building a short chain outward from the depot.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/approx.go nearest-
// neighbour construction.
type NearestNeighbourJobSelector struct {
	Index   *jobindex.Index
	Profile vrpmodel.Profile
}

func (s NearestNeighbourJobSelector) Select(ic *solution.InsertionContext, remaining []vrpmodel.Job) (vrpmodel.Job, []vrpmodel.Job) {
	pi, ok := s.Index.Profiles[s.Profile]
	if !ok {
		return SequentialJobSelector{}.Select(ic, remaining)
	}
	best := 0
	bestRank := pi.Rank[remaining[0].ID()]
	for i := 1; i < len(remaining); i++ {
		if r := pi.Rank[remaining[i].ID()]; r < bestRank {
			bestRank = r
			best = i
		}
	}
	return remaining[best], lo.DropByIndex(remaining, best)
}

// SkipRandomJobSelector wraps an inner selector but, with probability
// SkipProbability, shuffles one random job to the back of the queue
// instead of selecting the inner choice, diversifying construction order.
type SkipRandomJobSelector struct {
	Inner          JobSelector
	SkipProbability float64
}

func (s SkipRandomJobSelector) Select(ic *solution.InsertionContext, remaining []vrpmodel.Job) (vrpmodel.Job, []vrpmodel.Job) {
	if len(remaining) > 1 && ic.Random.Bool(s.SkipProbability) {
		i := ic.Random.Intn(len(remaining))
		rest := append(lo.DropByIndex(remaining, i), remaining[i])
		return s.Inner.Select(ic, rest)
	}
	return s.Inner.Select(ic, remaining)
}
