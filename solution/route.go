package solution

import "github.com/routeforge/vrpcore/vrpmodel"

// RouteContext is an owned (tour, state cache, actor reference) triple:
// the unit of mutation the insertion evaluator, recreate/ruin operators
// and local search all operate on.
type RouteContext struct {
	Actor *vrpmodel.Actor
	Tour  *Tour
	State *StateCache
}

// NewRouteContext builds a fresh RouteContext for actor, framed by a
// start activity at the actor's detail start location and, if the detail
// has an End, a matching end activity.
func NewRouteContext(actor *vrpmodel.Actor) *RouteContext {
	start := Activity{
		Location: actor.Detail.Start,
		Window:   actor.Detail.Working,
		Tag:      "start",
	}
	start.Schedule = Schedule{Arrival: actor.Detail.Working.Start, Departure: actor.Detail.Working.Start}

	var end *Activity
	if actor.Detail.End != nil {
		e := Activity{
			Location: *actor.Detail.End,
			Window:   actor.Detail.Working,
			Tag:      "end",
		}
		end = &e
	}
	return &RouteContext{
		Actor: actor,
		Tour:  NewTour(start, end),
		State: NewStateCache(),
	}
}

// Clone returns a deep copy: a new Tour and a new StateCache, sharing the
// same (immutable) Actor reference.
func (r *RouteContext) Clone() *RouteContext {
	return &RouteContext{
		Actor: r.Actor,
		Tour:  r.Tour.Clone(),
		State: r.State.Clone(),
	}
}
