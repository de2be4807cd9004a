package ruin

import (
	"sort"

	"github.com/samber/lo"

	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/jobindex"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// Operator destroys part of ic.Solution, recording every removal via
// tracker so ruin stays bounded and never touches a locked job.
type Operator interface {
	Run(ic *solution.InsertionContext, tracker *JobRemovalTracker)
}

// jobAt returns the Job wrapping activity a's Single, or the zero Job if
// a is a terminal.
func jobAt(a solution.Activity) (vrpmodel.Job, bool) {
	if a.Job == nil {
		return vrpmodel.Job{}, false
	}
	return vrpmodel.AsJob(a.Job), true
}

// RandomJobRemoval removes uniformly random (route, job) pairs until the
// tracker's limits are hit or no removable job remains.
type RandomJobRemoval struct{}

func (RandomJobRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	for !tracker.Full() {
		route, job, ok := pickRandomAssignedJob(ic)
		if !ok {
			return
		}
		if tracker.CanRemove(ic.Solution, job, route) {
			tracker.Record(ic.Solution, job, route)
		} else {
			return
		}
	}
}

func pickRandomAssignedJob(ic *solution.InsertionContext) (*solution.RouteContext, vrpmodel.Job, bool) {
	candidates := lo.Filter(ic.Solution.Routes, func(r *solution.RouteContext, _ int) bool {
		return r.Tour.JobCount() > 0
	})
	if len(candidates) == 0 {
		return nil, vrpmodel.Job{}, false
	}
	route := candidates[ic.Random.Intn(len(candidates))]
	jobActs := lo.Filter(route.Tour.Activities(), func(a solution.Activity, _ int) bool {
		return !a.IsTerminal()
	})
	if len(jobActs) == 0 {
		return nil, vrpmodel.Job{}, false
	}
	a := jobActs[ic.Random.Intn(len(jobActs))]
	job, _ := jobAt(a)
	return route, job, true
}

// WorstJobRemoval removes the jobs contributing the largest delta-cost
// to their route (cost(prev,target)+cost(target,next)-cost(prev,next))
// first, on the theory that the worst-fit jobs are most worth
// relocating.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/two_opt.go delta-cost
// ranking (the same formula two_opt uses to rank candidate reversals).
type WorstJobRemoval struct {
	TC costmodel.TransportCost
}

type worstCandidate struct {
	route *solution.RouteContext
	job   vrpmodel.Job
	delta float64
}

func (w WorstJobRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	var candidates []worstCandidate
	for _, route := range ic.Solution.Routes {
		acts := route.Tour.Activities()
		profile := route.Actor.Vehicle.Profile
		for i := 1; i+1 < len(acts); i++ {
			prev, target, next := acts[i-1], acts[i], acts[i+1]
			if target.IsTerminal() {
				continue
			}
			cPT := float64(w.TC.Distance(profile, prev.Location, target.Location, prev.Schedule.Departure))
			cTN := float64(w.TC.Distance(profile, target.Location, next.Location, prev.Schedule.Departure))
			cPN := float64(w.TC.Distance(profile, prev.Location, next.Location, prev.Schedule.Departure))
			job, _ := jobAt(target)
			candidates = append(candidates, worstCandidate{route: route, job: job, delta: cPT + cTN - cPN})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].delta > candidates[j].delta })
	for _, c := range candidates {
		if tracker.Full() {
			return
		}
		if tracker.CanRemove(ic.Solution, c.job, c.route) {
			tracker.Record(ic.Solution, c.job, c.route)
		}
	}
}

// NeighbourJobRemoval picks a random currently-assigned seed job, then
// removes its jobindex-nearest currently-assigned neighbours in
// ascending distance order, spreading the ruin around one geographic
// area rather than scattering it randomly.
type NeighbourJobRemoval struct {
	Index   *jobindex.Index
	Profile vrpmodel.Profile
}

func (n NeighbourJobRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	route, seed, ok := pickRandomAssignedJob(ic)
	if !ok {
		return
	}
	if tracker.CanRemove(ic.Solution, seed, route) {
		tracker.Record(ic.Solution, seed, route)
	}
	pi, ok := n.Index.Profiles[n.Profile]
	if !ok {
		return
	}
	assigned := assignedJobIndex(ic)
	for _, nb := range pi.Neighbours[seed.ID()] {
		if tracker.Full() {
			return
		}
		loc, ok := assigned[nb.JobID]
		if !ok {
			continue
		}
		if tracker.CanRemove(ic.Solution, loc.job, loc.route) {
			tracker.Record(ic.Solution, loc.job, loc.route)
		}
	}
}

type jobLocationRef struct {
	job   vrpmodel.Job
	route *solution.RouteContext
}

// assignedJobIndex maps every currently-assigned job id to its (job,
// route) pair, for neighbour/cluster removal lookups.
func assignedJobIndex(ic *solution.InsertionContext) map[int64]jobLocationRef {
	out := make(map[int64]jobLocationRef)
	for _, route := range ic.Solution.Routes {
		for _, a := range route.Tour.Activities() {
			job, ok := jobAt(a)
			if !ok {
				continue
			}
			out[job.ID()] = jobLocationRef{job: job, route: route}
		}
	}
	return out
}

// ClusterJobRemoval groups currently-assigned jobs into density-based
// clusters (DBSCAN) using jobindex neighbour distances, picks one
// multi-job cluster at random, and removes it whole.
//
// Epsilon is derived from the k-distance curvature heuristic: sort every
// job's distance to its k-th nearest neighbour ascending, and pick the
// point of maximum increase (the "elbow") as epsilon, the standard
// DBSCAN parameter-selection method.
type ClusterJobRemoval struct {
	Index   *jobindex.Index
	Profile vrpmodel.Profile
	MinPts  int
}

func (c ClusterJobRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	pi, ok := c.Index.Profiles[c.Profile]
	if !ok {
		return
	}
	assigned := assignedJobIndex(ic)
	if len(assigned) == 0 {
		return
	}
	minPts := c.MinPts
	if minPts < 1 {
		minPts = 1
	}
	eps := kDistanceElbow(pi, assigned, minPts)
	clusters := dbscan(pi, assigned, eps, minPts)
	var multi [][]int64
	for _, cl := range clusters {
		if len(cl) > 1 {
			multi = append(multi, cl)
		}
	}
	if len(multi) == 0 {
		return
	}
	chosen := multi[ic.Random.Intn(len(multi))]
	for _, id := range chosen {
		if tracker.Full() {
			return
		}
		loc, ok := assigned[id]
		if !ok {
			continue
		}
		if tracker.CanRemove(ic.Solution, loc.job, loc.route) {
			tracker.Record(ic.Solution, loc.job, loc.route)
		}
	}
}

// kDistanceElbow computes, for every assigned job, the distance to its
// k-th nearest assigned neighbour, sorts those ascending, and returns the
// value at the index of maximum successive increase (the elbow).
func kDistanceElbow(pi *jobindex.ProfileIndex, assigned map[int64]jobLocationRef, k int) float64 {
	var kDist []float64
	for id := range assigned {
		count := 0
		for _, nb := range pi.Neighbours[id] {
			if _, ok := assigned[nb.JobID]; !ok {
				continue
			}
			count++
			if count == k {
				kDist = append(kDist, nb.ApproxCost)
				break
			}
		}
	}
	if len(kDist) == 0 {
		return 0
	}
	sort.Float64s(kDist)
	if len(kDist) == 1 {
		return kDist[0]
	}
	maxJump, elbow := -1.0, kDist[len(kDist)-1]
	for i := 1; i < len(kDist); i++ {
		jump := kDist[i] - kDist[i-1]
		if jump > maxJump {
			maxJump = jump
			elbow = kDist[i-1]
		}
	}
	return elbow
}

// dbscan runs a minimal density-based clustering pass over assigned job
// ids, using pi.Neighbours restricted to distance <= eps as the
// neighbourhood relation, and minPts as the core-point threshold.
func dbscan(pi *jobindex.ProfileIndex, assigned map[int64]jobLocationRef, eps float64, minPts int) [][]int64 {
	visited := make(map[int64]bool)
	clustered := make(map[int64]bool)
	var clusters [][]int64

	neighboursWithin := func(id int64) []int64 {
		var out []int64
		for _, nb := range pi.Neighbours[id] {
			if nb.ApproxCost > eps {
				break // Neighbours is sorted ascending
			}
			if _, ok := assigned[nb.JobID]; ok {
				out = append(out, nb.JobID)
			}
		}
		return out
	}

	for id := range assigned {
		if visited[id] {
			continue
		}
		visited[id] = true
		neighbours := neighboursWithin(id)
		if len(neighbours)+1 < minPts {
			continue
		}
		cluster := []int64{id}
		clustered[id] = true
		queue := append([]int64(nil), neighbours...)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if !visited[cur] {
				visited[cur] = true
				more := neighboursWithin(cur)
				if len(more)+1 >= minPts {
					queue = append(queue, more...)
				}
			}
			if !clustered[cur] {
				clustered[cur] = true
				cluster = append(cluster, cur)
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// StringRemoval (adjusted, after the SISR "Slack Induction by String
// Removal" operator) removes one contiguous run of job activities from a
// randomly chosen route. The string length is sampled uniformly up to
// MaxStringLength but adjusted down to the route's actual job count so
// short routes still yield a valid (possibly route-emptying) string.
type StringRemoval struct {
	MaxStringLength int
}

func (sr StringRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	candidates := lo.Filter(ic.Solution.Routes, func(r *solution.RouteContext, _ int) bool {
		return r.Tour.JobCount() > 0
	})
	if len(candidates) == 0 {
		return
	}
	route := candidates[ic.Random.Intn(len(candidates))]
	acts := route.Tour.Activities()
	jobIdx := lo.FilterMap(acts, func(a solution.Activity, i int) (int, bool) {
		return i, !a.IsTerminal()
	})
	if len(jobIdx) == 0 {
		return
	}
	maxLen := sr.MaxStringLength
	if maxLen <= 0 || maxLen > len(jobIdx) {
		maxLen = len(jobIdx)
	}
	length := ic.Random.IntRange(1, maxLen)
	start := ic.Random.IntRange(0, len(jobIdx)-length)
	// Snapshot the jobs to remove before mutating: Tour.Remove shifts the
	// underlying activities slice in place, so indexing into acts after a
	// Record call would read already-shifted data.
	var jobs []vrpmodel.Job
	for i := start; i < start+length; i++ {
		if job, ok := jobAt(acts[jobIdx[i]]); ok {
			jobs = append(jobs, job)
		}
	}
	for _, job := range jobs {
		if tracker.Full() {
			return
		}
		if tracker.CanRemove(ic.Solution, job, route) {
			tracker.Record(ic.Solution, job, route)
		}
	}
}

// routeTotalCost sums a route's leg distances under its own profile, used
// by RouteWorstRemoval and RouteCloseRemoval.
func routeTotalCost(tc costmodel.TransportCost, route *solution.RouteContext) float64 {
	var total float64
	acts := route.Tour.Activities()
	profile := route.Actor.Vehicle.Profile
	for i := 0; i+1 < len(acts); i++ {
		total += float64(tc.Distance(profile, acts[i].Location, acts[i+1].Location, acts[i].Schedule.Departure))
	}
	return total
}

// removeAllJobs empties route, honoring tracker limits. It snapshots the
// job list before mutating, since Tour.Remove shifts the underlying
// activities slice in place and ranging over it directly would skip or
// repeat elements as it shrinks.
func removeAllJobs(ic *solution.InsertionContext, tracker *JobRemovalTracker, route *solution.RouteContext) {
	jobs := lo.FilterMap(route.Tour.Activities(), func(a solution.Activity, _ int) (vrpmodel.Job, bool) {
		return jobAt(a)
	})
	for _, job := range jobs {
		if tracker.Full() {
			return
		}
		if tracker.CanRemove(ic.Solution, job, route) {
			tracker.Record(ic.Solution, job, route)
		}
	}
}

// RouteRandomRemoval empties one uniformly random non-empty route.
type RouteRandomRemoval struct{}

func (RouteRandomRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	candidates := lo.Filter(ic.Solution.Routes, func(r *solution.RouteContext, _ int) bool {
		return r.Tour.JobCount() > 0
	})
	if len(candidates) == 0 {
		return
	}
	removeAllJobs(ic, tracker, candidates[ic.Random.Intn(len(candidates))])
}

// RouteWorstRemoval empties the non-empty route with the highest total
// transport cost, on the theory that the worst route is most worth
// rebuilding from scratch.
type RouteWorstRemoval struct {
	TC costmodel.TransportCost
}

func (w RouteWorstRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	var worst *solution.RouteContext
	var worstCost float64
	for _, r := range ic.Solution.Routes {
		if r.Tour.JobCount() == 0 {
			continue
		}
		cost := routeTotalCost(w.TC, r)
		if worst == nil || cost > worstCost {
			worst, worstCost = r, cost
		}
	}
	if worst == nil {
		return
	}
	removeAllJobs(ic, tracker, worst)
}

// RouteCloseRemoval empties the non-empty route whose actor start
// location lies closest (per TC) to a randomly chosen already-assigned
// job's location, ruining one geographic neighbourhood's whole route at
// once rather than scattering removals.
type RouteCloseRemoval struct {
	TC costmodel.TransportCost
}

func (c RouteCloseRemoval) Run(ic *solution.InsertionContext, tracker *JobRemovalTracker) {
	_, seed, ok := pickRandomAssignedJob(ic)
	if !ok {
		return
	}
	var refLoc vrpmodel.Location
	if seed.Kind == vrpmodel.KindSingle {
		refLoc = firstLocation(seed.Single)
	} else if len(seed.Multi.Jobs) > 0 {
		refLoc = firstLocation(seed.Multi.Jobs[0])
	}
	var closest *solution.RouteContext
	var closestDist float64
	for _, r := range ic.Solution.Routes {
		if r.Tour.JobCount() == 0 {
			continue
		}
		d := float64(c.TC.Distance(r.Actor.Vehicle.Profile, r.Actor.Detail.Start, refLoc, 0))
		if closest == nil || d < closestDist {
			closest, closestDist = r, d
		}
	}
	if closest == nil {
		return
	}
	removeAllJobs(ic, tracker, closest)
}

func firstLocation(s *vrpmodel.Single) vrpmodel.Location {
	for _, p := range s.Places {
		if p.Location != nil {
			return *p.Location
		}
	}
	return 0
}
