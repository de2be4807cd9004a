package features

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// LockedJobsFeature enforces vrpmodel.Lock restrictions: a locked job may
// only be assigned to an actor its Lock.Predicate accepts, and under
// LockSequence/LockStrict ordering the job must not be separated from
// the rest of its lock's job list out of order.
//
// Grounded on github.com/katalvlaran/lvlath's core/order.go topological
// precedence bookkeeping (a node may not be placed before a dependency
// it's locked behind), adapted from DAG precedence to tour-position
// precedence within one actor's route.
type LockedJobsFeature struct {
	Name     string
	Locks    []vrpmodel.Lock
	byJobID  map[int64]*vrpmodel.Lock
	posInLock map[int64]int
}

func NewLockedJobsFeature(name string, locks []vrpmodel.Lock) pipeline.Feature {
	f := &LockedJobsFeature{Name: name, Locks: locks, byJobID: make(map[int64]*vrpmodel.Lock), posInLock: make(map[int64]int)}
	for i := range locks {
		l := &locks[i]
		for pos, j := range l.Jobs {
			f.byJobID[j.ID()] = l
			f.posInLock[j.ID()] = pos
		}
	}
	return pipeline.Feature{Name: name, Constraint: f}
}

func (f *LockedJobsFeature) EvaluateRoute(ctx pipeline.RouteMoveContext) *pipeline.Violation {
	lock, ok := f.byJobID[ctx.Job.ID()]
	if !ok {
		return nil
	}
	if lock.Predicate != nil && !lock.Predicate(ctx.Route.Actor) {
		return &pipeline.Violation{Code: int(CodeLocked), Stopped: true}
	}
	return nil
}

// EvaluateActivity enforces that, under LockSequence or LockStrict, a
// locked job's neighbours in the tour respect the lock's declared order:
// the activity immediately before (if it belongs to the same lock) must
// have an earlier position, and the one immediately after a later one.
// LockStrict additionally forbids any non-lock activity between them;
// LockSequence only requires relative order.
func (f *LockedJobsFeature) EvaluateActivity(ctx pipeline.ActivityMoveContext) *pipeline.Violation {
	ac := ctx.Activity
	if ac.Target == nil || ac.Target.Job == nil {
		return nil
	}
	targetID := vrpmodel.AsJob(ac.Target.Job).ID()
	lock, ok := f.byJobID[targetID]
	if !ok || lock.Order == vrpmodel.LockAny {
		return nil
	}
	myPos := f.posInLock[targetID]

	if ac.Prev.Job != nil {
		prevID := vrpmodel.AsJob(ac.Prev.Job).ID()
		if prevLock, ok := f.byJobID[prevID]; ok && prevLock == lock {
			if f.posInLock[prevID] > myPos {
				return &pipeline.Violation{Code: int(CodeLocked), Stopped: true}
			}
		} else if lock.Order == vrpmodel.LockStrict && myPos > 0 {
			return &pipeline.Violation{Code: int(CodeLocked), Stopped: true}
		}
	}
	if ac.Next != nil && ac.Next.Job != nil {
		nextID := vrpmodel.AsJob(ac.Next.Job).ID()
		if nextLock, ok := f.byJobID[nextID]; ok && nextLock == lock {
			if f.posInLock[nextID] < myPos {
				return &pipeline.Violation{Code: int(CodeLocked), Stopped: true}
			}
		} else if lock.Order == vrpmodel.LockStrict && myPos < len(lock.Jobs)-1 {
			return &pipeline.Violation{Code: int(CodeLocked), Stopped: true}
		}
	}
	return nil
}

func (f *LockedJobsFeature) Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error) {
	return source, 0, nil
}
