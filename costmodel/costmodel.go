// Package costmodel defines the only two interfaces in the solver that
// perform raw time/distance arithmetic: TransportCost (distance/duration/
// cost between two locations) and ActivityCost (departure time, latest
// feasible arrival, and the monetary cost of waiting/serving at an
// activity). Every higher-level package consumes these via interface.
//
// Grounded on github.com/katalvlaran/lvlath's matrix.Matrix interface
// (bounds-checked, allocation-light accessors) and tsp/cost.go's
// stabilize-to-1e-9 cost rounding discipline.
package costmodel

import (
	"errors"
	"math"

	"github.com/routeforge/vrpcore/vrpmodel"
)

// ErrDimensionMismatch indicates a routing matrix's shape does not match
// the number of locations the Problem references.
var ErrDimensionMismatch = errors.New("costmodel: matrix dimension mismatch")

// stabilize rounds a float cost to 1e-9 precision to keep repeated
// delta-cost arithmetic from drifting under floating point error,
// matching tsp/cost.go's round1e9 discipline.
func stabilize(v float64) float64 {
	const scale = 1e9
	return math.Round(v*scale) / scale
}

// TransportCost returns distance, duration and a combined monetary cost
// between two locations for a given profile and departure time.
// Implementations may be departure-independent (a static dense matrix) or
// time-dependent.
type TransportCost interface {
	Distance(profile vrpmodel.Profile, from, to vrpmodel.Location, departure vrpmodel.Timestamp) vrpmodel.Distance
	Duration(profile vrpmodel.Profile, from, to vrpmodel.Location, departure vrpmodel.Timestamp) vrpmodel.Duration
	Cost(actor *vrpmodel.Actor, from, to vrpmodel.Location, departure vrpmodel.Timestamp) vrpmodel.Cost
}

// ActivityCost computes activity-level schedule and cost.
type ActivityCost interface {
	// Departure returns the time the actor leaves the activity: arrival,
	// or the activity's time-window start if arrival is early (waiting),
	// plus the service duration.
	Departure(actor *vrpmodel.Actor, place vrpmodel.Place, window vrpmodel.TimeWindow, arrival vrpmodel.Timestamp) vrpmodel.Timestamp
	// LatestArrival returns the latest arrival consistent with a given
	// latest departure from this activity (used in the backward pass).
	LatestArrival(actor *vrpmodel.Actor, place vrpmodel.Place, window vrpmodel.TimeWindow, latestDeparture vrpmodel.Timestamp) vrpmodel.Timestamp
	// Cost returns the monetary cost of waiting + service at this
	// activity, summed over driver and vehicle per-time rates.
	Cost(actor *vrpmodel.Actor, arrival, departure vrpmodel.Timestamp, serviceDuration vrpmodel.Duration) vrpmodel.Cost
}

// DefaultActivityCost is the stock ActivityCost: waiting is
// max(0, window.Start - arrival); service starts at max(arrival,
// window.Start) and always runs the full serviceDuration.
type DefaultActivityCost struct{}

func (DefaultActivityCost) Departure(actor *vrpmodel.Actor, place vrpmodel.Place, window vrpmodel.TimeWindow, arrival vrpmodel.Timestamp) vrpmodel.Timestamp {
	serviceStart := arrival
	if serviceStart < window.Start {
		serviceStart = window.Start
	}
	return serviceStart + vrpmodel.Timestamp(place.Duration)
}

func (DefaultActivityCost) LatestArrival(actor *vrpmodel.Actor, place vrpmodel.Place, window vrpmodel.TimeWindow, latestDeparture vrpmodel.Timestamp) vrpmodel.Timestamp {
	latestServiceStart := latestDeparture - vrpmodel.Timestamp(place.Duration)
	if latestServiceStart > window.End {
		latestServiceStart = window.End
	}
	return latestServiceStart
}

func (DefaultActivityCost) Cost(actor *vrpmodel.Actor, arrival, departure vrpmodel.Timestamp, serviceDuration vrpmodel.Duration) vrpmodel.Cost {
	total := vrpmodel.Duration(departure - arrival) // waiting + service
	waiting := total - serviceDuration
	if waiting < 0 {
		waiting = 0
	}
	var waitRate, serveRate vrpmodel.Cost
	if actor != nil {
		waitRate = actor.Vehicle.Costs.PerWaitingTime + actor.Driver.Costs.PerWaitingTime
		serveRate = actor.Vehicle.Costs.PerServiceTime
	}
	return vrpmodel.Cost(stabilize(float64(waiting)*float64(waitRate) + float64(serviceDuration)*float64(serveRate)))
}
