// Package solution holds the mutable working state of a search: tours,
// per-route state caches, and the solution-level bookkeeping of
// unassigned/locked jobs and the free-actor registry.
//
// Grounded on github.com/katalvlaran/lvlath's core/adjacency_list.go and
// core/view.go (forward/backward iteration over an owned mutable
// structure) and core/methods_clone.go (the deep-copy-sharing-immutable-
// parent pattern), generalized from an adjacency list of a shared Graph
// to an ordered Tour of a shared Problem.
package solution

import "github.com/routeforge/vrpcore/vrpmodel"

// Schedule is an activity's realized arrival/departure pair.
type Schedule struct {
	Arrival   vrpmodel.Timestamp
	Departure vrpmodel.Timestamp
}

// Activity is one visit within a Tour: a location, a service duration, a
// time window, a schedule, and an optional reference to the Single it
// realises (absent for the terminal start/end activities).
type Activity struct {
	Location vrpmodel.Location
	Duration vrpmodel.Duration
	Window   vrpmodel.TimeWindow
	Schedule Schedule

	// Job is the Single this activity realises, or nil for a terminal
	// start/end activity.
	Job *vrpmodel.Single

	// Tag carries an optional free-form label (e.g. "start", "end",
	// "break") for diagnostics; it is never interpreted by the core.
	Tag string
}

// IsTerminal reports whether this is a start/end activity (no Job).
func (a Activity) IsTerminal() bool { return a.Job == nil }

// Clone returns a value copy of a (Activity has no reference fields that
// need deep copying beyond the Job pointer, which is shared by design:
// Singles are immutable Problem data).
func (a Activity) Clone() Activity { return a }
