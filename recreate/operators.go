package recreate

import (
	"sort"

	"github.com/samber/lo"

	"github.com/routeforge/vrpcore/insertion"
	"github.com/routeforge/vrpcore/jobindex"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// The ten named recreate operators, each a differently-configured Engine.
// None introduce new commit logic; they vary only in which job gets
// tried next (JobSelector) and which of two feasible candidates wins a
// tie (ResultSelector) — the same separation of concerns
// github.com/katalvlaran/lvlath's tsp package uses to offer approx/
// two_opt/three_opt/bb/exact as interchangeable Solve strategies.

// NewCheapestRecreate inserts jobs in caller-given order, always taking
// the lowest-cost feasible placement (BestResultSelector): the baseline
// greedy construction heuristic.
func NewCheapestRecreate(eval *insertion.Evaluator) *Engine {
	return New(eval, SequentialJobSelector{}, insertion.BestResultSelector{})
}

// NewFarthestRecreate inserts jobs in caller-given order but, among
// feasible placements, prefers the most expensive one (inserting
// hard-to-place jobs into their costliest-but-only workable slot first,
// leaving easy jobs more room later).
func NewFarthestRecreate(eval *insertion.Evaluator) *Engine {
	return New(eval, SequentialJobSelector{}, insertion.FarthestResultSelector{})
}

// NewNearestNeighbourRecreate grows each route outward from its start by
// always picking whichever remaining job ranks closest to a vehicle
// start (jobindex.Index.Rank).
func NewNearestNeighbourRecreate(eval *insertion.Evaluator, idx *jobindex.Index, profile vrpmodel.Profile) *Engine {
	return New(eval, NearestNeighbourJobSelector{Index: idx, Profile: profile}, insertion.BestResultSelector{})
}

// RegretKJobSelector orders remaining jobs by a regret score: jobs whose
// cheapest-elsewhere alternative (approximated via jobindex.Rank, since
// recomputing every route's true cost for every remaining job on every
// iteration would defeat the purpose of precomputing the index) is far
// worse than their current best feasible cost are inserted first, since
// deferring them risks losing the only route that fits.
type RegretKJobSelector struct {
	Evaluator *insertion.Evaluator
	Index     *jobindex.Index
	Profile   vrpmodel.Profile
}

func (s RegretKJobSelector) Select(ic *solution.InsertionContext, remaining []vrpmodel.Job) (vrpmodel.Job, []vrpmodel.Job) {
	pi, ok := s.Index.Profiles[s.Profile]
	type scored struct {
		idx    int
		regret float64
	}
	scores := make([]scored, len(remaining))
	for i, job := range remaining {
		result := s.Evaluator.EvaluateJob(ic, job)
		best := 0.0
		if result.Ok {
			best = result.Success.Cost
		} else {
			best = 1e18 // infeasible now: still worth trying soon, treat as max regret
		}
		approxAlt := best
		if ok {
			approxAlt = pi.Rank[job.ID()]
		}
		scores[i] = scored{idx: i, regret: approxAlt - best}
	}
	sort.Slice(scores, func(a, b int) bool { return scores[a].regret > scores[b].regret })
	pick := scores[0].idx
	return remaining[pick], lo.DropByIndex(remaining, pick)
}

// NewRegretKRecreate inserts the job with the highest regret first.
func NewRegretKRecreate(eval *insertion.Evaluator, idx *jobindex.Index, profile vrpmodel.Profile) *Engine {
	return New(eval, RegretKJobSelector{Evaluator: eval, Index: idx, Profile: profile}, insertion.BestResultSelector{})
}

// NewSkipBestRecreate behaves like cheapest recreate but never commits
// the single cheapest candidate across the whole batch: it re-sorts
// jobs by ascending best-insertion-cost and services them in that order
// except the very first, which it defers to the end, giving a
// deliberately non-greedy restart shape used to escape a local optimum
// that "cheapest first, always" keeps walking back into.
func NewSkipBestRecreate(eval *insertion.Evaluator) *Engine {
	return New(eval, &skipBestSelector{Evaluator: eval}, insertion.BestResultSelector{})
}

type skipBestSelector struct {
	Evaluator *insertion.Evaluator
	deferred  *vrpmodel.Job
}

func (s *skipBestSelector) Select(ic *solution.InsertionContext, remaining []vrpmodel.Job) (vrpmodel.Job, []vrpmodel.Job) {
	if len(remaining) == 1 {
		s.deferred = nil
		return remaining[0], remaining[1:]
	}
	bestIdx, bestCost := 0, 1e18
	for i, job := range remaining {
		if s.deferred != nil && job.ID() == s.deferred.ID() {
			continue
		}
		result := s.Evaluator.EvaluateJob(ic, job)
		if result.Ok && result.Success.Cost < bestCost {
			bestCost = result.Success.Cost
			bestIdx = i
		}
	}
	if s.deferred == nil {
		d := remaining[bestIdx]
		s.deferred = &d
		return s.Select(ic, remaining)
	}
	return remaining[bestIdx], lo.DropByIndex(remaining, bestIdx)
}

// NewBlinksRecreate is cheapest-insertion with a "blink": each feasible
// candidate position has a BlinkProbability chance of being skipped even
// if it is the best one found so far, a biased-randomization technique
// that trades a little greediness for diversity without discarding
// feasibility checks.
func NewBlinksRecreate(eval *insertion.Evaluator, rand insertion.RandomSource, blinkProbability float64) *Engine {
	return New(eval, SequentialJobSelector{}, blinkResultSelector{Random: rand, BlinkProbability: blinkProbability})
}

type blinkResultSelector struct {
	Random           insertion.RandomSource
	BlinkProbability float64
}

func (b blinkResultSelector) Prefer(a, c insertion.Success) insertion.Success {
	if c.Cost < a.Cost && b.Random.Float64() >= b.BlinkProbability {
		return c
	}
	return a
}

// NewPerturbationRecreate wraps BestResultSelector's comparisons with
// multiplicative noise (insertion.NoiseResultSelector), spreading
// otherwise-identical restarts across a neighbourhood of near-optimal
// constructions.
func NewPerturbationRecreate(eval *insertion.Evaluator, rand insertion.RandomSource, amplitude float64) *Engine {
	return New(eval, SequentialJobSelector{}, insertion.NoiseResultSelector{Random: rand, Amplitude: amplitude})
}

// NewGapsRecreate inserts jobs in caller order, always taking the
// lowest-cost feasible placement; it is configured exactly like
// NewCheapestRecreate and does not look at idle gaps, route load or job
// subsets.
func NewGapsRecreate(eval *insertion.Evaluator) *Engine {
	return New(eval, SequentialJobSelector{}, insertion.BestResultSelector{})
}

// NewSkipRandomRecreate is cheapest recreate with a chance, per
// iteration, of shuffling a random job to the back of the remaining
// queue instead of taking the selector's natural next pick.
func NewSkipRandomRecreate(eval *insertion.Evaluator, skipProbability float64) *Engine {
	return New(eval, SkipRandomJobSelector{Inner: SequentialJobSelector{}, SkipProbability: skipProbability}, insertion.BestResultSelector{})
}

// NewSliceRecreate partitions jobs into contiguous batches of sliceSize
// and recreates each batch independently via cheapest insertion,
// bounding how much of the job list one construction pass considers
// together (useful when ruin removed jobs from many unrelated regions
// and a single global pass would waste time cross-comparing them).
func NewSliceRecreate(eval *insertion.Evaluator, sliceSize int) func(ic *solution.InsertionContext, jobs []vrpmodel.Job) {
	engine := NewCheapestRecreate(eval)
	return func(ic *solution.InsertionContext, jobs []vrpmodel.Job) {
		if sliceSize <= 0 || len(jobs) == 0 {
			engine.Run(ic, jobs)
			return
		}
		for _, batch := range lo.Chunk(jobs, sliceSize) {
			engine.Run(ic, batch)
		}
	}
}

// PhasedRecreate alternates between named variants across successive
// calls (e.g. cheapest early, regret-k later once a route skeleton
// exists), matching the spec's "phase-driven variant selection".
type PhasedRecreate struct {
	Phases []*Engine
	phase  int
}

// NewPhasedRecreate cycles through phases in order, advancing one phase
// per Run call and wrapping around.
func NewPhasedRecreate(phases ...*Engine) *PhasedRecreate {
	return &PhasedRecreate{Phases: phases}
}

func (p *PhasedRecreate) Run(ic *solution.InsertionContext, jobs []vrpmodel.Job) {
	if len(p.Phases) == 0 {
		return
	}
	p.Phases[p.phase%len(p.Phases)].Run(ic, jobs)
	p.phase++
}
