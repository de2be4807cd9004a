package features

import (
	"math"

	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// BalanceMetric selects what per-route quantity WorkBalanceFeature
// balances across the fleet.
type BalanceMetric int

const (
	BalanceByDuration BalanceMetric = iota
	BalanceByDistance
	BalanceByJobCount
)

// WorkBalanceFeature is an objective-only feature minimising the
// coefficient of variation (stddev/mean) of a chosen per-route metric,
// so that work is spread evenly across the fleet rather than piled onto
// a few routes.
//
// Grounded on github.com/katalvlaran/lvlath's matrix/impl_statistics.go
// mean/variance helpers (population variance over a float64 slice),
// generalized from matrix cell values to per-route metric totals.
type WorkBalanceFeature struct {
	Name   string
	Metric BalanceMetric
	TC     costmodel.TransportCost
}

func NewWorkBalanceFeature(name string, metric BalanceMetric, tc costmodel.TransportCost) pipeline.Feature {
	f := &WorkBalanceFeature{Name: name, Metric: metric, TC: tc}
	return pipeline.Feature{Name: name, Objective: f}
}

func (f *WorkBalanceFeature) routeMetric(r *solution.RouteContext) float64 {
	acts := r.Tour.Activities()
	switch f.Metric {
	case BalanceByJobCount:
		return float64(r.Tour.JobCount())
	case BalanceByDistance:
		var total vrpmodel.Distance
		profile := r.Actor.Vehicle.Profile
		for i := 0; i+1 < len(acts); i++ {
			total += f.TC.Distance(profile, acts[i].Location, acts[i+1].Location, acts[i].Schedule.Departure)
		}
		return float64(total)
	default: // BalanceByDuration
		var total vrpmodel.Duration
		profile := r.Actor.Vehicle.Profile
		for i := 0; i+1 < len(acts); i++ {
			total += f.TC.Duration(profile, acts[i].Location, acts[i+1].Location, acts[i].Schedule.Departure)
		}
		return float64(total)
	}
}

// coefficientOfVariation returns stddev/mean over vals, 0 when mean is 0
// or fewer than two samples exist (nothing to balance).
func coefficientOfVariation(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range vals {
		d := v - mean
		sqDiff += d * d
	}
	variance := sqDiff / float64(n)
	return math.Sqrt(variance) / mean
}

func (f *WorkBalanceFeature) Estimate(ctx pipeline.ActivityMoveContext) float64 {
	// Per-activity delta estimation would require re-deriving every other
	// route's metric; balance is cheap enough to evaluate at solution
	// granularity only, so insertion-time estimation contributes nothing.
	return 0
}

func (f *WorkBalanceFeature) Fitness(s *solution.SolutionContext) float64 {
	vals := make([]float64, 0, len(s.Routes))
	for _, r := range s.Routes {
		if r.Tour.JobCount() == 0 {
			continue
		}
		vals = append(vals, f.routeMetric(r))
	}
	return coefficientOfVariation(vals)
}
