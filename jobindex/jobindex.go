// Package jobindex precomputes, per routing profile, each job's
// neighbours sorted by approximate travel cost and each job's rank (the
// minimum cost from any vehicle start location to the job), using
// profile-averaged vehicle costs. Real cost is always recomputed during
// insertion; this index only prunes and orders candidates.
//
// Grounded on github.com/katalvlaran/lvlath's dijkstra package: the same
// container/heap-based relaxation loop, generalized from single-source
// shortest paths on a core.Graph to multi-source "distance from any
// fleet start" ranking over a dense routing matrix.
package jobindex

import (
	"container/heap"
	"sort"

	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// Neighbour is one entry in a job's sorted neighbour list.
type Neighbour struct {
	JobID        int64
	ApproxCost   float64
}

// ProfileIndex holds the precomputed neighbour lists and ranks for one
// routing profile.
type ProfileIndex struct {
	Neighbours map[int64][]Neighbour // job id -> neighbours, ascending
	Rank       map[int64]float64     // job id -> min cost from any vehicle start
}

// Index holds one ProfileIndex per profile used by the fleet.
type Index struct {
	Profiles map[vrpmodel.Profile]*ProfileIndex
}

// avgRates averages a fleet's per-distance/per-driving-time rates for a
// profile, used to build a single "approximate" weighting independent of
// which actor eventually serves a job (spec.md §3: "The index uses
// profile-averaged vehicle costs").
func avgRates(fleet *vrpmodel.Fleet, profile vrpmodel.Profile) (perDistance, perTime float64) {
	var n int
	for _, v := range fleet.Vehicles {
		if v.Profile != profile {
			continue
		}
		perDistance += float64(v.Costs.PerDistance)
		perTime += float64(v.Costs.PerDrivingTime)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return perDistance / float64(n), perTime / float64(n)
}

// approxCost is the departure-independent approximate cost used to build
// the index: distance * avg per-distance + duration * avg per-driving-time,
// evaluated at departure t=0.
func approxCost(tc costmodel.TransportCost, profile vrpmodel.Profile, from, to vrpmodel.Location, perDistance, perTime float64) float64 {
	d := float64(tc.Distance(profile, from, to, 0))
	t := float64(tc.Duration(profile, from, to, 0))
	return d*perDistance + t*perTime
}

// jobLocation returns a representative location for a job: the first
// Single's first Place (or, for a Multi, the first sub-single's first
// Place). Jobs with no resolvable location are skipped by Build.
func jobLocation(j vrpmodel.Job) (vrpmodel.Location, bool) {
	var places []vrpmodel.Place
	switch j.Kind {
	case vrpmodel.KindSingle:
		places = j.Single.Places
	case vrpmodel.KindMulti:
		if len(j.Multi.Jobs) == 0 {
			return 0, false
		}
		places = j.Multi.Jobs[0].Places
	}
	if len(places) == 0 || places[0].Location == nil {
		return 0, false
	}
	return *places[0].Location, true
}

// Build computes the full Index for problem using tc for cost evaluation.
//
// Complexity: O(profiles * jobs^2) for neighbour lists (all pairs within
// a profile), plus O(profiles * (starts + jobs) log(starts + jobs)) for
// the multi-source rank pass.
func Build(problem *vrpmodel.Problem, tc costmodel.TransportCost) *Index {
	idx := &Index{Profiles: make(map[vrpmodel.Profile]*ProfileIndex)}

	type jobLoc = struct {
		id  int64
		loc vrpmodel.Location
	}
	var jobs []jobLoc
	for _, j := range problem.Jobs {
		if loc, ok := jobLocation(j); ok {
			jobs = append(jobs, jobLoc{id: j.ID(), loc: loc})
		}
	}

	for _, profile := range problem.Fleet.Profiles() {
		perDistance, perTime := avgRates(problem.Fleet, profile)
		pi := &ProfileIndex{Neighbours: make(map[int64][]Neighbour), Rank: make(map[int64]float64)}

		// Neighbour lists: ascending approximate cost from each job to
		// every other job, under this profile.
		for _, a := range jobs {
			neighbours := make([]Neighbour, 0, len(jobs)-1)
			for _, b := range jobs {
				if a.id == b.id {
					continue
				}
				c := approxCost(tc, profile, a.loc, b.loc, perDistance, perTime)
				neighbours = append(neighbours, Neighbour{JobID: b.id, ApproxCost: c})
			}
			sort.Slice(neighbours, func(i, j int) bool { return neighbours[i].ApproxCost < neighbours[j].ApproxCost })
			pi.Neighbours[a.id] = neighbours
		}

		// Rank: multi-source Dijkstra-style relaxation seeded from every
		// vehicle start of this profile at distance 0, over the complete
		// bipartite-ish graph of (starts ∪ jobs) with edge weight
		// approxCost. Since the graph is complete, a single heap-pop per
		// job suffices (each job's best source is its minimum edge from
		// any start or already-settled job); we still route it through a
		// heap for clarity and to mirror dijkstra.go's relaxation loop.
		starts := make([]vrpmodel.Location, 0)
		for _, v := range problem.Fleet.Vehicles {
			if v.Profile != profile {
				continue
			}
			for _, d := range v.Details {
				starts = append(starts, d.Start)
			}
		}
		pi.Rank = rankFromStarts(tc, profile, starts, jobs, perDistance, perTime)

		idx.Profiles[profile] = pi
	}
	return idx
}

type rankItem struct {
	dist  float64
	jobID int64
}

type rankHeap []rankItem

func (h rankHeap) Len() int            { return len(h) }
func (h rankHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h rankHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *rankHeap) Push(x interface{}) { *h = append(*h, x.(rankItem)) }
func (h *rankHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// rankFromStarts computes, for every job, the minimum approximate cost
// from any of starts, using a lazy-decrease-key heap exactly like
// dijkstra.go's relaxation loop, except the "graph" here is the complete
// bipartite closure between starts/jobs and jobs/jobs (every pair has an
// edge, since the routing matrix is dense).
func rankFromStarts(tc costmodel.TransportCost, profile vrpmodel.Profile, starts []vrpmodel.Location, jobs []struct {
	id  int64
	loc vrpmodel.Location
}, perDistance, perTime float64) map[int64]float64 {
	best := make(map[int64]float64, len(jobs))
	settled := make(map[int64]bool, len(jobs))
	h := &rankHeap{}
	heap.Init(h)

	for _, j := range jobs {
		minDist := float64(-1)
		for _, s := range starts {
			c := approxCost(tc, profile, s, j.loc, perDistance, perTime)
			if minDist < 0 || c < minDist {
				minDist = c
			}
		}
		if minDist < 0 {
			minDist = 0
		}
		best[j.id] = minDist
		heap.Push(h, rankItem{dist: minDist, jobID: j.id})
	}

	byID := make(map[int64]vrpmodel.Location, len(jobs))
	for _, j := range jobs {
		byID[j.id] = j.loc
	}

	// Relax edges between jobs too, so a job close to an already-settled
	// job (rather than directly close to a start) gets the tighter bound.
	for h.Len() > 0 {
		cur := heap.Pop(h).(rankItem)
		if settled[cur.jobID] {
			continue
		}
		settled[cur.jobID] = true
		for _, j := range jobs {
			if settled[j.id] {
				continue
			}
			c := cur.dist + approxCost(tc, profile, byID[cur.jobID], j.loc, perDistance, perTime)
			if c < best[j.id] {
				best[j.id] = c
				heap.Push(h, rankItem{dist: c, jobID: j.id})
			}
		}
	}
	return best
}
