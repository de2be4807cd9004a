package vrpmodel

// Profile names a routing cost regime (e.g. "car", "truck", "bike"); the
// same location pair may have different distance/duration/cost under
// different profiles.
type Profile string

// VehicleDetail is a start place, an optional end place (nil ⇒ open-end
// vehicle) and a working time window, one of which a Vehicle must carry
// at least one of.
type VehicleDetail struct {
	Start   Location
	End     *Location
	Working TimeWindow
}

// VehicleCosts folds fixed cost, per-distance cost and per-time costs for
// driving/waiting/service into one bundle, matching spec.md §4.1's
// TransportCost/ActivityCost consumers.
type VehicleCosts struct {
	Fixed          Cost
	PerDistance    Cost
	PerDrivingTime Cost
	PerWaitingTime Cost
	PerServiceTime Cost
}

// Vehicle is a routing profile, a cost bundle, dimensions (capacity,
// skills, ...) and one-or-more VehicleDetails (alternative start/end/
// working-window combinations the same physical vehicle could run).
type Vehicle struct {
	ID      string
	Profile Profile
	Costs   VehicleCosts
	Dims    Dimensions
	Details []VehicleDetail
}

// DriverCosts folds the driver's own per-time rates; currently reserved
// for future driver/vehicle matching (spec.md §3: "exactly one driver").
type DriverCosts struct {
	PerDrivingTime Cost
	PerWaitingTime Cost
}

// Driver carries per-time costs and dimensions.
type Driver struct {
	ID    string
	Costs DriverCosts
	Dims  Dimensions
}

// Actor is a unique (vehicle, driver, detail) triple: the indivisible
// unit a route is assigned to. Actors are pre-materialised at fleet
// construction, never created lazily during search.
type Actor struct {
	ID      int64
	Vehicle *Vehicle
	Driver  *Driver
	Detail  VehicleDetail
}

// Fleet owns drivers, vehicles and actors, and exposes the set of
// distinct routing profiles in use.
//
// Grounded on core.Graph's map-of-entities-plus-derived-index shape
// (vertices/edges/adjacencyList), generalized from a mutable graph to an
// immutable, fully pre-materialised fleet: actors are the VRP analogue of
// core's adjacency entries, computed once at construction instead of
// incrementally as edges are added.
type Fleet struct {
	Drivers  []*Driver
	Vehicles []*Vehicle
	Actors   []*Actor
	profiles map[Profile]struct{}
}

// NewFleet pre-materialises one Actor per (vehicle, driver, detail)
// triple. With a single driver (current scope, spec.md §3) every vehicle
// detail is paired with drivers[0].
//
// Complexity: O(sum of len(vehicle.Details)).
func NewFleet(drivers []*Driver, vehicles []*Vehicle) (*Fleet, error) {
	if len(drivers) == 0 {
		return nil, ErrEmptyVehicleID // reuse: "fleet has no driver" shares the same class
	}
	f := &Fleet{Drivers: drivers, Vehicles: vehicles, profiles: make(map[Profile]struct{})}
	var nextActorID int64
	for _, v := range vehicles {
		if v.ID == "" {
			return nil, ErrEmptyVehicleID
		}
		if len(v.Details) == 0 {
			return nil, ErrNoVehicleDetails
		}
		f.profiles[v.Profile] = struct{}{}
		for _, d := range v.Details {
			nextActorID++
			f.Actors = append(f.Actors, &Actor{
				ID:      nextActorID,
				Vehicle: v,
				Driver:  drivers[0],
				Detail:  d,
			})
		}
	}
	return f, nil
}

// Profiles returns the distinct routing profiles used by the fleet's
// vehicles.
func (f *Fleet) Profiles() []Profile {
	out := make([]Profile, 0, len(f.profiles))
	for p := range f.profiles {
		out = append(out, p)
	}
	return out
}

// LockOrder constrains how a locked job set relates to its actor: Any
// means the jobs may appear anywhere in the actor's tour, Sequence means
// they must appear contiguously and in the given order, Strict additionally
// forbids any other job from being inserted in between.
type LockOrder uint8

const (
	LockAny LockOrder = iota
	LockSequence
	LockStrict
)

// ActorPredicate selects which actors a Lock applies to.
type ActorPredicate func(a *Actor) bool

// Lock pins a set of jobs to the actors selected by Predicate, honoring
// Order. Ruin operators must never remove a job appearing in a Lock's
// Jobs (spec.md invariant 7 / Non-goals).
type Lock struct {
	Predicate ActorPredicate
	Jobs      []Job
	Order     LockOrder
}

// Problem is the immutable, shared input to a solve: fleet, jobs,
// routing data per profile, locks and the objective hierarchy spec. It
// never mutates after construction; every metaheuristic step works
// against a solution.InsertionContext that merely holds a reference to
// it (spec.md §3 Lifecycle).
type Problem struct {
	Fleet            *Fleet
	Jobs             []Job
	Locks            []Lock
	ObjectiveNames   [][]string // global hierarchy: list of lists of feature names
	LocalObjective   [][]string // tie-breaking hierarchy used during insertion
}
