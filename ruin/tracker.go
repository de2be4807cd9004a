// Package ruin destroys part of a solution (removes a bounded number of
// jobs back into SolutionContext.Required) so a recreate operator has
// something to rebuild; this is the "ruin" half of the ruin-and-recreate
// metaheuristic step.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/three_opt.go
// segment-perturbation discipline (a bounded, randomized structural
// change applied before re-optimizing), generalized from reversing a
// tour segment to removing a bounded job set across many routes.
package ruin

import (
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// RemovalLimits bounds how much damage a single ruin pass may do.
type RemovalLimits struct {
	MaxJobsToRemove   int
	MaxRoutesAffected int
}

// JobRemovalTracker enforces RemovalLimits, refuses to remove locked
// jobs, and records what was actually removed so the caller knows what
// to hand the recreate stage.
type JobRemovalTracker struct {
	Limits  RemovalLimits
	removed []vrpmodel.Job
	routes  map[*solution.RouteContext]struct{}
}

// NewJobRemovalTracker returns a tracker bounded by limits.
func NewJobRemovalTracker(limits RemovalLimits) *JobRemovalTracker {
	return &JobRemovalTracker{Limits: limits, routes: make(map[*solution.RouteContext]struct{})}
}

// CanRemove reports whether job may still be removed from route without
// exceeding limits or touching a locked job.
func (t *JobRemovalTracker) CanRemove(s *solution.SolutionContext, job vrpmodel.Job, route *solution.RouteContext) bool {
	if s.IsLocked(job) {
		return false
	}
	if t.Limits.MaxJobsToRemove > 0 && len(t.removed) >= t.Limits.MaxJobsToRemove {
		return false
	}
	if _, already := t.routes[route]; !already && t.Limits.MaxRoutesAffected > 0 && len(t.routes) >= t.Limits.MaxRoutesAffected {
		return false
	}
	return true
}

// Record removes job's activity from route's tour and tracks the
// removal; callers must have already checked CanRemove.
func (t *JobRemovalTracker) Record(s *solution.SolutionContext, job vrpmodel.Job, route *solution.RouteContext) {
	if job.Kind == vrpmodel.KindSingle {
		route.Tour.Remove(job.Single)
	} else {
		for _, sub := range job.Multi.Jobs {
			route.Tour.Remove(sub)
		}
	}
	route.State.MarkStale()
	t.routes[route] = struct{}{}
	t.removed = append(t.removed, job)
	s.Required = append(s.Required, job)
}

// Removed returns every job removed so far, in removal order.
func (t *JobRemovalTracker) Removed() []vrpmodel.Job { return t.removed }

// RoutesAffected returns how many distinct routes were touched.
func (t *JobRemovalTracker) RoutesAffected() int { return len(t.routes) }

// Full reports whether the job-count limit has been reached.
func (t *JobRemovalTracker) Full() bool {
	return t.Limits.MaxJobsToRemove > 0 && len(t.removed) >= t.Limits.MaxJobsToRemove
}
