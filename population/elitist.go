package population

import (
	"math"
	"sort"

	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
)

// ElitistPopulation keeps an EliteSize Pareto-nondominated front plus
// DiversitySize additional slots chosen to maximise spread (fitness-space
// distance) from the elite front and each other, and transitions from
// PhaseExploration to PhaseExploitation once ExploitationAfter
// generations have passed without a new best-known elite.
//
// Grounded on spec.md §6's elite+diversity population design; the
// nondominated-front filter itself reuses pipeline.Dominates (spec.md
// §9's multi-criteria comparison).
type ElitistPopulation struct {
	EliteSize         int
	DiversitySize     int
	ExploitationAfter int

	elite       []Individual
	diverse     []Individual
	generation  int
	lastEliteAt int
	phase       Phase
}

// NewElitistPopulation builds an empty population with the given elite
// and diversity slot counts, switching to PhaseExploitation after
// exploitationAfter generations without a new elite-front member.
func NewElitistPopulation(eliteSize, diversitySize, exploitationAfter int) *ElitistPopulation {
	return &ElitistPopulation{
		EliteSize:         eliteSize,
		DiversitySize:     diversitySize,
		ExploitationAfter: exploitationAfter,
		phase:             PhaseExploration,
	}
}

func (e *ElitistPopulation) Add(s *solution.SolutionContext, p *pipeline.Pipeline) bool {
	return e.addIndividual(Individual{Solution: s, Fitness: p.Fitness(s)})
}

func (e *ElitistPopulation) addIndividual(ind Individual) bool {
	e.generation++
	all := append(append([]Individual{}, e.elite...), e.diverse...)
	all = append(all, ind)

	front := nondominatedFront(all)
	sort.Slice(front, func(i, j int) bool {
		return pipeline.TotalOrder(front[i].Fitness, front[j].Fitness) == pipeline.Less
	})
	grewElite := len(front) > 0 && !containsSolution(e.elite, front[0].Solution)
	if e.EliteSize > 0 && len(front) > e.EliteSize {
		front = front[:e.EliteSize]
	}
	e.elite = front

	rest := make([]Individual, 0, len(all))
	for _, a := range all {
		if !containsSolution(e.elite, a.Solution) {
			rest = append(rest, a)
		}
	}
	e.diverse = selectDiverse(rest, e.DiversitySize)

	if grewElite {
		e.lastEliteAt = e.generation
	}
	if e.ExploitationAfter > 0 && e.generation-e.lastEliteAt >= e.ExploitationAfter {
		e.phase = PhaseExploitation
	} else {
		e.phase = PhaseExploration
	}

	return containsSolution(e.elite, ind.Solution) || containsSolution(e.diverse, ind.Solution)
}

func (e *ElitistPopulation) AddAll(candidates []*solution.SolutionContext, p *pipeline.Pipeline) {
	for _, c := range candidates {
		e.Add(c, p)
	}
}

// Select returns the elite front in exploitation phase (focus mutation on
// the best-known), or elite+diversity in exploration phase (spread
// mutation across the whole surviving set).
func (e *ElitistPopulation) Select() []Individual {
	if e.phase == PhaseExploitation {
		out := make([]Individual, len(e.elite))
		copy(out, e.elite)
		return out
	}
	return e.Ranked()
}

func (e *ElitistPopulation) Ranked() []Individual {
	out := make([]Individual, 0, len(e.elite)+len(e.diverse))
	out = append(out, e.elite...)
	out = append(out, e.diverse...)
	sort.Slice(out, func(i, j int) bool {
		return pipeline.TotalOrder(out[i].Fitness, out[j].Fitness) == pipeline.Less
	})
	return out
}

func (e *ElitistPopulation) SelectionPhase() Phase { return e.phase }

func (e *ElitistPopulation) Size() int { return len(e.elite) + len(e.diverse) }

func containsSolution(inds []Individual, s *solution.SolutionContext) bool {
	for _, i := range inds {
		if i.Solution == s {
			return true
		}
	}
	return false
}

// nondominatedFront returns every individual not Pareto-dominated by any
// other in all.
func nondominatedFront(all []Individual) []Individual {
	var front []Individual
	for i, a := range all {
		dominated := false
		for j, b := range all {
			if i == j {
				continue
			}
			if pipeline.Dominates(b.Fitness, a.Fitness) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, a)
		}
	}
	return front
}

// selectDiverse greedily picks up to limit individuals from candidates
// that maximise minimum fitness-space distance to the already-chosen set
// (a simple farthest-point diversity heuristic).
func selectDiverse(candidates []Individual, limit int) []Individual {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}
	chosen := []Individual{candidates[0]}
	remaining := candidates[1:]
	for len(chosen) < limit && len(remaining) > 0 {
		bestIdx := 0
		bestDist := -1.0
		for i, c := range remaining {
			d := minDistance(c, chosen)
			if d > bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		chosen = append(chosen, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return chosen
}

func minDistance(c Individual, chosen []Individual) float64 {
	min := math.MaxFloat64
	for _, ch := range chosen {
		d := euclidean(c.Fitness, ch.Fitness)
		if d < min {
			min = d
		}
	}
	return min
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
