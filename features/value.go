package features

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// TotalValueFeature rewards assigning high-Dims.Priority jobs: it is an
// objective (more assigned value is better, so Fitness/Estimate return
// the *negative* of accumulated priority, keeping the convention that
// lower is better across every feature in the hierarchy) with an
// optional Merge rule that prefers keeping the higher-priority job when
// two jobs conflict for the same slot.
type TotalValueFeature struct {
	Name string
}

func NewTotalValueFeature(name string) pipeline.Feature {
	f := &TotalValueFeature{Name: name}
	return pipeline.Feature{Name: name, Objective: f, Constraint: f}
}

func (f *TotalValueFeature) EvaluateRoute(ctx pipeline.RouteMoveContext) *pipeline.Violation { return nil }
func (f *TotalValueFeature) EvaluateActivity(ctx pipeline.ActivityMoveContext) *pipeline.Violation {
	return nil
}

// Merge keeps whichever job carries the higher priority (source on a
// tie) and always returns code 0; it never rejects either job.
func (f *TotalValueFeature) Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error) {
	if candidate.Dims().Priority > source.Dims().Priority {
		return candidate, 0, nil
	}
	return source, 0, nil
}

func (f *TotalValueFeature) Estimate(ctx pipeline.ActivityMoveContext) float64 {
	if ctx.Activity.Target == nil || ctx.Activity.Target.Job == nil {
		return 0
	}
	return -float64(ctx.Activity.Target.Job.Dims.Priority)
}

func (f *TotalValueFeature) Fitness(s *solution.SolutionContext) float64 {
	var total float64
	for _, r := range s.Routes {
		for _, a := range r.Tour.Activities() {
			if a.Job != nil {
				total -= float64(a.Job.Dims.Priority)
			}
		}
	}
	return total
}
