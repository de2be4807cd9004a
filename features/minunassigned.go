package features

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
)

// MinimiseUnassignedFeature is a pure objective: its Fitness is simply
// the count of currently-unassigned required jobs, dominating every
// other soft objective in a lexicographic hierarchy by convention (place
// its name first in Pipeline's globalHierarchy group so it is compared
// before route-cost or balance objectives).
type MinimiseUnassignedFeature struct {
	Name string
}

func NewMinimiseUnassignedFeature(name string) pipeline.Feature {
	f := &MinimiseUnassignedFeature{Name: name}
	return pipeline.Feature{Name: name, Objective: f}
}

func (f *MinimiseUnassignedFeature) Estimate(ctx pipeline.ActivityMoveContext) float64 {
	return -1 // inserting a job always reduces the unassigned count by one
}

func (f *MinimiseUnassignedFeature) Fitness(s *solution.SolutionContext) float64 {
	return float64(len(s.Unassigned))
}
