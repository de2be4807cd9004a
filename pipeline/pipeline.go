// Package pipeline composes independent Feature modules (constraint +
// objective + state triples) into one evaluation pipeline, preserving
// cache coherence and the hard/soft constraint short-circuit semantics
// the insertion evaluator and local search rely on.
//
// Grounded on github.com/katalvlaran/lvlath's builder package: the same
// "functional constructors applied in order, fail fast with a wrapped
// error" orchestration (builder.BuildGraph) is reused here for composing
// Features instead of graph Constructors.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// Configuration-time errors (spec.md §7.1): never returned after the
// pipeline is built.
var (
	ErrDuplicateFeatureName = errors.New("pipeline: duplicate feature name")
	ErrDuplicateStateKey    = errors.New("pipeline: duplicate state key")
	ErrUnknownFeatureName   = errors.New("pipeline: objective hierarchy references unknown feature")
	ErrEmptyFeatureSet      = errors.New("pipeline: empty feature set")
	ErrReentryCapExceeded   = errors.New("pipeline: accept_solution_state re-entry cap exceeded")
)

// maxAcceptSolutionStateReentries bounds how many times
// AcceptSolutionState may re-enter state hooks when a promotion/demotion
// keeps invalidating the required/ignored/unassigned counts. Spec.md §9
// treats the exact number as an implementation constant (source uses
// 100); we keep that value rather than guess at a "better" one.
const maxAcceptSolutionStateReentries = 100

// RouteMoveContext is the route-level move shape a Constraint/Objective
// evaluates: "is it OK to add job to route at all".
type RouteMoveContext struct {
	Solution *solution.SolutionContext
	Route    *solution.RouteContext
	Job      vrpmodel.Job
}

// ActivityContext is the activity-level move shape: a candidate insertion
// position described by its neighbours.
type ActivityContext struct {
	Index  int
	Prev   *solution.Activity
	Target *solution.Activity
	Next   *solution.Activity // nil when inserting at the open end of the tour
}

// ActivityMoveContext pairs a Route with a candidate ActivityContext.
type ActivityMoveContext struct {
	Route    *solution.RouteContext
	Activity ActivityContext
}

// Violation is returned by a Constraint when a move is rejected.
// Stopped==true means the evaluator should abandon the current (job,
// route) search entirely; Stopped==false lets it continue trying other
// positions but the first violation seen is still the one reported if no
// later position succeeds.
type Violation struct {
	Code    int
	Stopped bool
}

// Constraint evaluates route-level and activity-level moves.
type Constraint interface {
	// EvaluateRoute checks a job-about-to-be-added-to-a-route move.
	// Returning nil means "no objection at the route level".
	EvaluateRoute(ctx RouteMoveContext) *Violation
	// EvaluateActivity checks a specific insertion position.
	EvaluateActivity(ctx ActivityMoveContext) *Violation
	// Merge decides whether candidate may be merged into source during
	// a multi-job or locked-job reconciliation; returns the resulting Job
	// (often just source) or a rejection code.
	Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error)
}

// Objective produces a solution-level fitness and a move-level cost
// estimate used for insertion tie-breaking and local-search comparisons.
type Objective interface {
	Fitness(s *solution.SolutionContext) float64
	Estimate(ctx ActivityMoveContext) float64
}

// State hooks keep cached derived quantities in sync with solution
// mutations.
type State interface {
	// AcceptInsertion is called exactly once per successful insertion.
	AcceptInsertion(s *solution.SolutionContext, routeIdx int, job vrpmodel.Job)
	// AcceptRouteState refreshes route's cache if it is stale.
	AcceptRouteState(route *solution.RouteContext)
	// AcceptSolutionState is called at pipeline boundaries; it may
	// promote/demote jobs between Required/Ignored/Unassigned, in which
	// case the pipeline re-enters every state hook (bounded).
	AcceptSolutionState(s *solution.SolutionContext)
}

// Feature bundles an optional Constraint, Objective and State under a
// unique name.
type Feature struct {
	Name       string
	Constraint Constraint
	Objective  Objective
	State      State
}

// Pipeline composes N features, evaluates moves honoring hard-constraint
// short-circuit semantics, sums soft costs, and maintains state caches.
type Pipeline struct {
	features        []Feature
	byName          map[string]*Feature
	globalHierarchy [][]string // list of lists of feature names
	localHierarchy  [][]string
}

// Build validates and constructs a Pipeline. Feature names and the state
// keys features register must be unique; objective hierarchies must be
// subsets of features actually carrying an Objective.
//
// Grounded on builder.BuildGraph's single-orchestrator, fail-fast
// validation, with "%w"-wrapped errors instead of partial construction.
func Build(features []Feature, globalHierarchy, localHierarchy [][]string) (*Pipeline, error) {
	if len(features) == 0 {
		return nil, ErrEmptyFeatureSet
	}
	p := &Pipeline{byName: make(map[string]*Feature, len(features))}
	for i := range features {
		f := features[i]
		if _, dup := p.byName[f.Name]; dup {
			return nil, fmt.Errorf("pipeline: build: %w: %q", ErrDuplicateFeatureName, f.Name)
		}
		p.byName[f.Name] = &f
		p.features = append(p.features, f)
	}
	for _, group := range globalHierarchy {
		for _, name := range group {
			f, ok := p.byName[name]
			if !ok || f.Objective == nil {
				return nil, fmt.Errorf("pipeline: build: %w: %q", ErrUnknownFeatureName, name)
			}
		}
	}
	for _, group := range localHierarchy {
		for _, name := range group {
			f, ok := p.byName[name]
			if !ok || f.Objective == nil {
				return nil, fmt.Errorf("pipeline: build: %w: %q", ErrUnknownFeatureName, name)
			}
		}
	}
	p.globalHierarchy = globalHierarchy
	p.localHierarchy = localHierarchy
	return p, nil
}

// EvaluateHard runs every feature's route-level then activity-level
// constraint, short-circuiting immediately on the first Stopped==true
// violation. It returns the first violation seen (stopping or not) if no
// position ultimately succeeds; the caller decides whether to try
// another leg.
func (p *Pipeline) EvaluateHard(route RouteMoveContext, activity ActivityMoveContext) *Violation {
	var first *Violation
	for _, f := range p.features {
		if f.Constraint == nil {
			continue
		}
		if v := f.Constraint.EvaluateRoute(route); v != nil {
			if first == nil {
				first = v
			}
			if v.Stopped {
				return v
			}
		}
		if v := f.Constraint.EvaluateActivity(activity); v != nil {
			if first == nil {
				first = v
			}
			if v.Stopped {
				return v
			}
		}
	}
	return first
}

// EstimateSoft sums every feature's Objective.Estimate for the candidate
// move (the move-level component of the cost the insertion evaluator
// compares against ResultSelector).
func (p *Pipeline) EstimateSoft(ctx ActivityMoveContext) float64 {
	var total float64
	for _, f := range p.features {
		if f.Objective != nil {
			total += f.Objective.Estimate(ctx)
		}
	}
	return total
}

// Fitness evaluates the full solution-level objective vector, grouped by
// the global hierarchy: groups[i] is the summed fitness of every
// objective-bearing feature named in globalHierarchy[i].
func (p *Pipeline) Fitness(s *solution.SolutionContext) []float64 {
	groups := make([]float64, len(p.globalHierarchy))
	for i, names := range p.globalHierarchy {
		var sum float64
		for _, name := range names {
			sum += p.byName[name].Objective.Fitness(s)
		}
		groups[i] = sum
	}
	return groups
}

// AcceptInsertion notifies every feature's State hook after a successful
// insertion, in registration order.
func (p *Pipeline) AcceptInsertion(s *solution.SolutionContext, routeIdx int, job vrpmodel.Job) {
	for _, f := range p.features {
		if f.State != nil {
			f.State.AcceptInsertion(s, routeIdx, job)
		}
	}
}

// AcceptRouteState refreshes route's cache via every feature's State hook
// if route is stale, then marks it fresh. Called at most once per stale
// route per pipeline pass (spec.md §5).
func (p *Pipeline) AcceptRouteState(route *solution.RouteContext) {
	if !route.State.Stale() {
		return
	}
	for _, f := range p.features {
		if f.State != nil {
			f.State.AcceptRouteState(route)
		}
	}
	route.State.MarkFresh()
}

// AcceptSolutionState re-enters every feature's State hook until the
// required/ignored/unassigned counts stabilise, bounded by
// maxAcceptSolutionStateReentries. Exceeding the cap indicates a
// mis-configured pipeline (an assertion failure per spec.md §7.4), not a
// recoverable condition — callers should treat the returned error as a
// bug report.
func (p *Pipeline) AcceptSolutionState(s *solution.SolutionContext) error {
	for iter := 0; iter < maxAcceptSolutionStateReentries; iter++ {
		before := countKey(s)
		for _, f := range p.features {
			if f.State != nil {
				f.State.AcceptSolutionState(s)
			}
		}
		if countKey(s) == before {
			return nil
		}
	}
	return ErrReentryCapExceeded
}

func countKey(s *solution.SolutionContext) [3]int {
	return [3]int{len(s.Required), len(s.Ignored), len(s.Unassigned)}
}

// Feature looks up a composed feature by name (used by tests and by
// features that need to read another feature's cached state, e.g. the
// transport feature reading capacity's per-route total).
func (p *Pipeline) Feature(name string) (Feature, bool) {
	f, ok := p.byName[name]
	if !ok {
		return Feature{}, false
	}
	return *f, true
}
