// Package vrpmodel defines the immutable problem domain: fleet, jobs,
// activities, routing costs, time windows, loads and the heterogeneous
// dimensions bag.
//
// A Problem built from these types is shared and read-only for the
// lifetime of a solve; mutation happens only in the working state owned
// by the solution package (RouteContext / SolutionContext).
//
// Grounded on github.com/katalvlaran/lvlath's core/types.go: the same
// sentinel-error discipline used there for Vertex/Edge/Graph is reused
// here for Job/Vehicle/Fleet.
package vrpmodel

import "errors"

// Sentinel errors for domain construction.
var (
	ErrEmptyJobID       = errors.New("vrpmodel: job id is empty")
	ErrNoPlaces         = errors.New("vrpmodel: single job has no places")
	ErrNoPermutations   = errors.New("vrpmodel: multi job permutator has no admissible orderings")
	ErrEmptyMulti       = errors.New("vrpmodel: multi job has no sub-singles")
	ErrEmptyVehicleID   = errors.New("vrpmodel: vehicle id is empty")
	ErrNoVehicleDetails = errors.New("vrpmodel: vehicle has no details")
	ErrUnknownProfile   = errors.New("vrpmodel: unknown routing profile")
)

// Location is an opaque index into a routing matrix.
type Location uint32

// Timestamp, Duration, Distance and Cost are scalar reals; kept as distinct
// named types so call sites cannot accidentally add a Distance to a Cost.
type (
	Timestamp float64
	Duration  float64
	Distance  float64
	Cost      float64
)

// TimeWindow is a closed interval [Start, End].
type TimeWindow struct {
	Start Timestamp
	End   Timestamp
}

// Contains reports whether t falls within the closed window.
func (tw TimeWindow) Contains(t Timestamp) bool {
	return t >= tw.Start && t <= tw.End
}

// Overlaps reports whether tw and other share any instant.
func (tw TimeWindow) Overlaps(other TimeWindow) bool {
	return tw.Start <= other.End && other.Start <= tw.End
}

// TimeSpanKind discriminates the two TimeSpan shapes.
type TimeSpanKind uint8

const (
	// TimeSpanWindow is an absolute [Start, End] window.
	TimeSpanWindow TimeSpanKind = iota
	// TimeSpanOffset is relative to the actor's departure time.
	TimeSpanOffset
)

// TimeSpan is either an absolute TimeWindow or an offset-from-departure
// duration; Place.Spans carries one-or-more of these.
type TimeSpan struct {
	Kind   TimeSpanKind
	Window TimeWindow // valid when Kind == TimeSpanWindow
	Offset Duration   // valid when Kind == TimeSpanOffset: [0, Offset] from departure
}

// Resolve turns a TimeSpan into an absolute TimeWindow given the actor's
// departure time (only meaningful for TimeSpanOffset spans).
func (ts TimeSpan) Resolve(departure Timestamp) TimeWindow {
	if ts.Kind == TimeSpanWindow {
		return ts.Window
	}
	return TimeWindow{Start: departure, End: departure + Timestamp(ts.Offset)}
}
