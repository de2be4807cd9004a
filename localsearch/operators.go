// Package localsearch refines an already-feasible solution with small,
// reversible structural moves (exchange, reversal, rescheduling),
// keeping a move only when it is feasible and improves the solution under
// the pipeline's TotalOrder comparison (ExchangeInter's random variant
// keeps any feasible swap).
//
// Grounded on github.com/katalvlaran/lvlath's tsp/two_opt.go and
// tsp/three_opt.go: the same "evaluate a bounded local neighbourhood,
// accept only improving or explicitly-allowed moves" discipline,
// generalized from a single Hamiltonian cycle to many per-actor routes.
package localsearch

import (
	"github.com/routeforge/vrpcore/features"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// RandomSource is the minimal randomness local-search operators need.
type RandomSource interface {
	Intn(n int) int
	Bool(p float64) bool
}

// Operator applies one local-search move to ic.Solution, reverting
// internally if the move turns out infeasible or non-improving (except
// ExchangeInter with Best unset, which keeps any feasible swap), and
// reports whether anything changed.
type Operator interface {
	Apply(ic *solution.InsertionContext, p *pipeline.Pipeline, rand RandomSource) bool
}

// isLockedActivity reports whether a carries a job ic.Solution has
// locked against relocation.
func isLockedActivity(ic *solution.InsertionContext, a solution.Activity) bool {
	if a.Job == nil {
		return false
	}
	return ic.Solution.IsLocked(vrpmodel.AsJob(a.Job))
}

// feasibleAt re-validates every hard constraint for activity idx in
// route after a structural change, using its current neighbours.
func feasibleAt(p *pipeline.Pipeline, ic *solution.InsertionContext, route *solution.RouteContext, idx int) bool {
	acts := route.Tour.Activities()
	if idx <= 0 || idx >= len(acts) {
		return true
	}
	target := acts[idx]
	if target.Job == nil {
		return true
	}
	var next *solution.Activity
	if idx+1 < len(acts) {
		next = &acts[idx+1]
	}
	ctx := pipeline.ActivityMoveContext{
		Route: route,
		Activity: pipeline.ActivityContext{
			Index: idx, Prev: &acts[idx-1], Target: &acts[idx], Next: next,
		},
	}
	moveCtx := pipeline.RouteMoveContext{Solution: ic.Solution, Route: route, Job: vrpmodel.AsJob(target.Job)}
	return p.EvaluateHard(moveCtx, ctx) == nil
}

// ExchangeInter swaps one random job activity between two different
// routes (best variant tries every pair within a sampled set, keeping
// only improving swaps; random variant commits the first feasible swap it
// finds, whether or not it improves fitness).
type ExchangeInter struct {
	Best bool
	Tries int
}

func (e ExchangeInter) Apply(ic *solution.InsertionContext, p *pipeline.Pipeline, rand RandomSource) bool {
	routes := ic.Solution.Routes
	if len(routes) < 2 {
		return false
	}
	tries := e.Tries
	if tries <= 0 {
		tries = 10
	}
	before := p.Fitness(ic.Solution)
	applied := false
	for t := 0; t < tries; t++ {
		r1, r2 := routes[rand.Intn(len(routes))], routes[rand.Intn(len(routes))]
		if r1 == r2 {
			continue
		}
		i1, ok1 := randomJobIndex(r1, rand)
		i2, ok2 := randomJobIndex(r2, rand)
		if !ok1 || !ok2 {
			continue
		}
		a1, _ := r1.Tour.At(i1)
		a2, _ := r2.Tour.At(i2)
		if isLockedActivity(ic, a1) || isLockedActivity(ic, a2) {
			continue
		}
		// Build the swapped activities from each other's job, location,
		// duration and window but this route's own schedule fields
		// (schedule is recomputed by AcceptRouteState once committed).
		na1 := a2
		na1.Schedule = a1.Schedule
		na2 := a1
		na2.Schedule = a2.Schedule
		_ = r1.Tour.SetAt(i1, na1)
		_ = r2.Tour.SetAt(i2, na2)
		r1.State.MarkStale()
		r2.State.MarkStale()
		p.AcceptRouteState(r1)
		p.AcceptRouteState(r2)
		if !feasibleAt(p, ic, r1, i1) || !feasibleAt(p, ic, r2, i2) {
			revertSwap(r1, i1, a1, r2, i2, a2, p)
			continue
		}
		after := p.Fitness(ic.Solution)
		if e.Best && pipeline.TotalOrder(after, before) != pipeline.Less {
			revertSwap(r1, i1, a1, r2, i2, a2, p)
			continue
		}
		applied = true
		before = after
		if !e.Best {
			return true
		}
	}
	return applied
}

func revertSwap(r1 *solution.RouteContext, i1 int, a1 solution.Activity, r2 *solution.RouteContext, i2 int, a2 solution.Activity, p *pipeline.Pipeline) {
	_ = r1.Tour.SetAt(i1, a1)
	_ = r2.Tour.SetAt(i2, a2)
	r1.State.MarkStale()
	r2.State.MarkStale()
	p.AcceptRouteState(r1)
	p.AcceptRouteState(r2)
}

func randomJobIndex(route *solution.RouteContext, rand RandomSource) (int, bool) {
	acts := route.Tour.Activities()
	var idxs []int
	for i, a := range acts {
		if !a.IsTerminal() {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) == 0 {
		return 0, false
	}
	return idxs[rand.Intn(len(idxs))], true
}

// ExchangeIntra swaps two random job activities within the same route.
type ExchangeIntra struct{}

func (ExchangeIntra) Apply(ic *solution.InsertionContext, p *pipeline.Pipeline, rand RandomSource) bool {
	routes := ic.Solution.Routes
	var candidates []*solution.RouteContext
	for _, r := range routes {
		if r.Tour.JobCount() >= 2 {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	route := candidates[rand.Intn(len(candidates))]
	i1, ok1 := randomJobIndex(route, rand)
	i2, ok2 := randomJobIndex(route, rand)
	if !ok1 || !ok2 || i1 == i2 {
		return false
	}
	a1, _ := route.Tour.At(i1)
	a2, _ := route.Tour.At(i2)
	if isLockedActivity(ic, a1) || isLockedActivity(ic, a2) {
		return false
	}
	before := p.Fitness(ic.Solution)
	na1, na2 := a2, a1
	_ = route.Tour.SetAt(i1, na1)
	_ = route.Tour.SetAt(i2, na2)
	route.State.MarkStale()
	p.AcceptRouteState(route)
	if !feasibleAt(p, ic, route, i1) || !feasibleAt(p, ic, route, i2) {
		_ = route.Tour.SetAt(i1, a1)
		_ = route.Tour.SetAt(i2, a2)
		route.State.MarkStale()
		p.AcceptRouteState(route)
		return false
	}
	after := p.Fitness(ic.Solution)
	if pipeline.TotalOrder(after, before) != pipeline.Less {
		_ = route.Tour.SetAt(i1, a1)
		_ = route.Tour.SetAt(i2, a2)
		route.State.MarkStale()
		p.AcceptRouteState(route)
		return false
	}
	return true
}

// TwoOpt reverses a contiguous segment of one route, the classic
// tour-untangling move; aborts (without applying) if any activity in the
// segment is locked.
//
// Grounded directly on github.com/katalvlaran/lvlath's tsp/two_opt.go
// segment-reversal loop.
type TwoOpt struct{}

func (TwoOpt) Apply(ic *solution.InsertionContext, p *pipeline.Pipeline, rand RandomSource) bool {
	var candidates []*solution.RouteContext
	for _, r := range ic.Solution.Routes {
		if r.Tour.JobCount() >= 2 {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	route := candidates[rand.Intn(len(candidates))]
	acts := route.Tour.Activities()
	n := len(acts)
	if n < 4 {
		return false
	}
	i := 1 + rand.Intn(n-2)
	j := 1 + rand.Intn(n-2)
	if i > j {
		i, j = j, i
	}
	if i == j {
		return false
	}
	for k := i; k <= j; k++ {
		if isLockedActivity(ic, acts[k]) {
			return false
		}
	}
	before := p.Fitness(ic.Solution)
	original := make([]solution.Activity, j-i+1)
	copy(original, acts[i:j+1])
	for a, b := i, j; a < b; a, b = a+1, b-1 {
		acts[a], acts[b] = acts[b], acts[a]
	}
	for k := i; k <= j; k++ {
		_ = route.Tour.SetAt(k, acts[k])
	}
	route.State.MarkStale()
	p.AcceptRouteState(route)
	ok := true
	for k := i; k <= j && ok; k++ {
		ok = feasibleAt(p, ic, route, k)
	}
	after := p.Fitness(ic.Solution)
	if !ok || pipeline.TotalOrder(after, before) != pipeline.Less {
		for k := i; k <= j; k++ {
			_ = route.Tour.SetAt(k, original[k-i])
		}
		route.State.MarkStale()
		p.AcceptRouteState(route)
		return false
	}
	return true
}

// SequenceExchange swaps two equal-length contiguous job runs (RunLength
// activities, default 1) between two different routes, a small generalisation of
// ExchangeInter that preserves adjacency within each run.
type SequenceExchange struct {
	RunLength int
}

func (s SequenceExchange) Apply(ic *solution.InsertionContext, p *pipeline.Pipeline, rand RandomSource) bool {
	runLen := s.RunLength
	if runLen < 1 {
		runLen = 1
	}
	routes := ic.Solution.Routes
	if len(routes) < 2 {
		return false
	}
	r1, r2 := routes[rand.Intn(len(routes))], routes[rand.Intn(len(routes))]
	if r1 == r2 {
		return false
	}
	acts1, acts2 := r1.Tour.Activities(), r2.Tour.Activities()
	if len(acts1) < runLen+2 || len(acts2) < runLen+2 {
		return false
	}
	start1 := 1 + rand.Intn(len(acts1)-runLen-1)
	start2 := 1 + rand.Intn(len(acts2)-runLen-1)
	for k := 0; k < runLen; k++ {
		if isLockedActivity(ic, acts1[start1+k]) || isLockedActivity(ic, acts2[start2+k]) {
			return false
		}
	}
	before := p.Fitness(ic.Solution)
	orig1 := append([]solution.Activity(nil), acts1[start1:start1+runLen]...)
	orig2 := append([]solution.Activity(nil), acts2[start2:start2+runLen]...)
	for k := 0; k < runLen; k++ {
		n1, n2 := acts2[start2+k], acts1[start1+k]
		_ = r1.Tour.SetAt(start1+k, n1)
		_ = r2.Tour.SetAt(start2+k, n2)
	}
	r1.State.MarkStale()
	r2.State.MarkStale()
	p.AcceptRouteState(r1)
	p.AcceptRouteState(r2)
	ok := true
	for k := 0; k < runLen && ok; k++ {
		ok = feasibleAt(p, ic, r1, start1+k) && feasibleAt(p, ic, r2, start2+k)
	}
	after := p.Fitness(ic.Solution)
	if !ok || pipeline.TotalOrder(after, before) != pipeline.Less {
		for k := 0; k < runLen; k++ {
			_ = r1.Tour.SetAt(start1+k, orig1[k])
			_ = r2.Tour.SetAt(start2+k, orig2[k])
		}
		r1.State.MarkStale()
		r2.State.MarkStale()
		p.AcceptRouteState(r1)
		p.AcceptRouteState(r2)
		return false
	}
	return true
}

// RescheduleDeparture shifts a random route's departure time earlier or
// later via the TransportTimeFeature's Advance/RecedeDeparture, reducing
// waiting time without touching job order.
type RescheduleDeparture struct {
	Feature *features.TransportTimeFeature
	MaxStep vrpmodel.Duration
}

func (rd RescheduleDeparture) Apply(ic *solution.InsertionContext, p *pipeline.Pipeline, rand RandomSource) bool {
	if len(ic.Solution.Routes) == 0 || rd.Feature == nil {
		return false
	}
	route := ic.Solution.Routes[rand.Intn(len(ic.Solution.Routes))]
	step := rd.MaxStep
	if step <= 0 {
		step = 60
	}
	before := p.Fitness(ic.Solution)
	original, _ := route.Tour.At(0)
	if rand.Bool(0.5) {
		rd.Feature.AdvanceDeparture(route, step)
	} else {
		rd.Feature.RecedeDeparture(route, step)
	}
	p.AcceptRouteState(route)
	after := p.Fitness(ic.Solution)
	if pipeline.TotalOrder(after, before) != pipeline.Less {
		_ = route.Tour.SetAt(0, original)
		route.State.MarkStale()
		p.AcceptRouteState(route)
		return false
	}
	return true
}

// CompositeLocalOperator applies a weighted-random pick among several
// Operators, repeated UniformRepeat times per call, reverting to the
// pre-call solution snapshot (via SolutionContext.Clone) unless the net
// result is strictly better under TotalOrder.
type CompositeLocalOperator struct {
	Operators     []Operator
	Weights       []float64
	UniformRepeat int
}

func (c CompositeLocalOperator) Apply(ic *solution.InsertionContext, p *pipeline.Pipeline, rand RandomSource) bool {
	if len(c.Operators) == 0 {
		return false
	}
	repeat := c.UniformRepeat
	if repeat < 1 {
		repeat = 1
	}
	snapshot := ic.Solution.Clone()
	before := p.Fitness(ic.Solution)
	anyApplied := false
	for i := 0; i < repeat; i++ {
		op := c.pick(rand)
		if op.Apply(ic, p, rand) {
			anyApplied = true
		}
	}
	if !anyApplied {
		return false
	}
	after := p.Fitness(ic.Solution)
	if pipeline.TotalOrder(after, before) != pipeline.Less {
		*ic.Solution = *snapshot
		return false
	}
	return true
}

func (c CompositeLocalOperator) pick(rand RandomSource) Operator {
	if len(c.Weights) != len(c.Operators) {
		return c.Operators[rand.Intn(len(c.Operators))]
	}
	var total float64
	for _, w := range c.Weights {
		total += w
	}
	if total <= 0 {
		return c.Operators[rand.Intn(len(c.Operators))]
	}
	r := pseudoFloat(rand) * total
	var cum float64
	for i, w := range c.Weights {
		cum += w
		if r <= cum {
			return c.Operators[i]
		}
	}
	return c.Operators[len(c.Operators)-1]
}

// pseudoFloat derives a [0,1) float from the minimal RandomSource (which
// exposes only Intn/Bool), avoiding a dependency on a richer interface
// just for weighted selection.
func pseudoFloat(rand RandomSource) float64 {
	const scale = 1 << 20
	return float64(rand.Intn(scale)) / float64(scale)
}
