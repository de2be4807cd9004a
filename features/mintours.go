package features

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
)

// MinimiseToursFeature is a pure objective counting non-empty routes,
// used to discourage spreading jobs across more vehicles than necessary
// once feasibility and unassigned-count are already settled.
type MinimiseToursFeature struct {
	Name string
}

func NewMinimiseToursFeature(name string) pipeline.Feature {
	f := &MinimiseToursFeature{Name: name}
	return pipeline.Feature{Name: name, Objective: f}
}

func (f *MinimiseToursFeature) Estimate(ctx pipeline.ActivityMoveContext) float64 {
	// Opening a brand new route is detected by the caller (insertion
	// picks an empty RouteContext); here we only score whole solutions.
	return 0
}

func (f *MinimiseToursFeature) Fitness(s *solution.SolutionContext) float64 {
	var used float64
	for _, r := range s.Routes {
		if r.Tour.JobCount() > 0 {
			used++
		}
	}
	return used
}
