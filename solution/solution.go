package solution

import "github.com/routeforge/vrpcore/vrpmodel"

// UnassignedReason records why a job could not be placed: the violation
// code that rejected its last attempted insertion, plus optional
// per-actor detail (spec.md §6: "optional per-actor detailed reasons").
type UnassignedReason struct {
	Code          int
	PerActorCodes map[int64]int
}

// ActorRegistry tracks which actors are not currently assigned to any
// route, satisfying invariant 2 ("registry contains an actor iff no
// route uses it") by construction: every mutation that assigns/frees an
// actor goes through Use/Release.
type ActorRegistry struct {
	free map[int64]*vrpmodel.Actor
}

// NewActorRegistry seeds the registry with every actor in the fleet.
func NewActorRegistry(actors []*vrpmodel.Actor) *ActorRegistry {
	r := &ActorRegistry{free: make(map[int64]*vrpmodel.Actor, len(actors))}
	for _, a := range actors {
		r.free[a.ID] = a
	}
	return r
}

// Use removes an actor from the free set (a route now uses it).
func (r *ActorRegistry) Use(a *vrpmodel.Actor) { delete(r.free, a.ID) }

// Release returns an actor to the free set (its route was dropped).
func (r *ActorRegistry) Release(a *vrpmodel.Actor) { r.free[a.ID] = a }

// Available returns every currently-unused actor.
func (r *ActorRegistry) Available() []*vrpmodel.Actor {
	out := make([]*vrpmodel.Actor, 0, len(r.free))
	for _, a := range r.free {
		out = append(out, a)
	}
	return out
}

// Clone returns a deep copy.
func (r *ActorRegistry) Clone() *ActorRegistry {
	out := &ActorRegistry{free: make(map[int64]*vrpmodel.Actor, len(r.free))}
	for k, v := range r.free {
		out.free[k] = v
	}
	return out
}

// SolutionContext is routes + required (must be attempted) + ignored
// (skipped by policy) + unassigned (job -> reason) + locked (may not be
// moved) + a registry of still-available actors.
type SolutionContext struct {
	Routes     []*RouteContext
	Required   []vrpmodel.Job
	Ignored    []vrpmodel.Job
	Unassigned map[int64]UnassignedReason
	Locked     map[int64]struct{}
	Registry   *ActorRegistry
}

// NewSolutionContext builds an empty solution over fleet's actors, with
// every actor free and no jobs yet attempted.
func NewSolutionContext(fleet *vrpmodel.Fleet) *SolutionContext {
	return &SolutionContext{
		Unassigned: make(map[int64]UnassignedReason),
		Locked:     make(map[int64]struct{}),
		Registry:   NewActorRegistry(fleet.Actors),
	}
}

// IsLocked reports whether job may not be moved by a ruin operator.
func (s *SolutionContext) IsLocked(job vrpmodel.Job) bool {
	_, ok := s.Locked[job.ID()]
	return ok
}

// RouteUsing returns the route currently containing job's activities, or
// nil if job is not placed in any route.
func (s *SolutionContext) RouteUsing(job *vrpmodel.Single) *RouteContext {
	for _, r := range s.Routes {
		for _, a := range r.Tour.Activities() {
			if a.Job == job {
				return r
			}
		}
	}
	return nil
}

// Clone returns a deep copy: routes and registry are duplicated; Problem-
// level data (Required/Ignored job slices reference shared Problem jobs,
// so only the slice headers are copied, not the jobs themselves).
func (s *SolutionContext) Clone() *SolutionContext {
	out := &SolutionContext{
		Required:   append([]vrpmodel.Job(nil), s.Required...),
		Ignored:    append([]vrpmodel.Job(nil), s.Ignored...),
		Unassigned: make(map[int64]UnassignedReason, len(s.Unassigned)),
		Locked:     make(map[int64]struct{}, len(s.Locked)),
		Registry:   s.Registry.Clone(),
	}
	for k, v := range s.Unassigned {
		out.Unassigned[k] = v
	}
	for k := range s.Locked {
		out.Locked[k] = struct{}{}
	}
	out.Routes = make([]*RouteContext, len(s.Routes))
	for i, r := range s.Routes {
		out.Routes[i] = r.Clone()
	}
	return out
}

// RandomSource is the minimal interface InsertionContext needs from
// vrprand.Source, kept local to avoid a solution -> vrprand import cycle
// with packages that both depend on solution and need randomness.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
	IntRange(lo, hi int) int
	Bool(p float64) bool
}

// InsertionContext is SolutionContext + the shared, immutable Problem +
// a per-thread random source: the unit of mutation for one metaheuristic
// step. Deep copies share the Problem reference and duplicate only
// route/solution state (spec.md §3 Lifecycle).
type InsertionContext struct {
	Problem  *vrpmodel.Problem
	Solution *SolutionContext
	Random   RandomSource
}

// Clone deep-copies the solution state and keeps the same Problem
// reference and random source (callers that need an independent RNG
// stream should replace Random after cloning, e.g. via vrprand.Derive).
func (ic *InsertionContext) Clone() *InsertionContext {
	return &InsertionContext{
		Problem:  ic.Problem,
		Solution: ic.Solution.Clone(),
		Random:   ic.Random,
	}
}
