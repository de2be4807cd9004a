package solution

import "sync/atomic"

// StateKey is an opaque key into a route's state cache. Core-defined keys
// (load, latest-arrival, waiting, ...) are small integers registered by
// the features package; user extensions get their own keys the same way.
type StateKey int

// ActivityKey pairs a StateKey with an activity index, for per-activity
// cached values (spec.md §9: "two parallel maps per route").
type ActivityKey struct {
	Key   StateKey
	Index int
}

// StateCache is a route's keyed cache of derived quantities: a
// tour-level map and an activity-level map, spilling from small-vector
// storage is left to individual features — here we provide the two maps
// the spec calls for plus the stale flag they're coherent (or not) with.
type StateCache struct {
	tourState     map[StateKey]interface{}
	activityState map[ActivityKey]interface{}
	stale         int32 // atomic bool: 0 = coherent, 1 = stale
}

// NewStateCache returns an empty, stale cache (nothing has been computed
// yet, so it must be refreshed before first use).
func NewStateCache() *StateCache {
	return &StateCache{
		tourState:     make(map[StateKey]interface{}),
		activityState: make(map[ActivityKey]interface{}),
		stale:         1,
	}
}

// TourValue reads a tour-level cached value. Reading is lock-free; the
// cache must only be read by the goroutine that owns the enclosing
// RouteContext (RouteContext itself is never shared across goroutines
// concurrently, per spec.md §5).
func (c *StateCache) TourValue(key StateKey) (interface{}, bool) {
	v, ok := c.tourState[key]
	return v, ok
}

// SetTourValue writes a tour-level cached value. Writing does not mark
// the route stale by itself — accept_route_state writes are exactly the
// operation that clears staleness; ordinary feature writes during
// accept_insertion should call MarkStale explicitly if they touch
// anything beyond what accept_route_state will recompute.
func (c *StateCache) SetTourValue(key StateKey, v interface{}) {
	c.tourState[key] = v
}

// ActivityValue reads a per-activity cached value.
func (c *StateCache) ActivityValue(key StateKey, index int) (interface{}, bool) {
	v, ok := c.activityState[ActivityKey{Key: key, Index: index}]
	return v, ok
}

// SetActivityValue writes a per-activity cached value.
func (c *StateCache) SetActivityValue(key StateKey, index int, v interface{}) {
	c.activityState[ActivityKey{Key: key, Index: index}] = v
}

// MarkStale flags the cache as out of date; the feature pipeline will
// refresh derived caches (accept_route_state) on the next pass.
func (c *StateCache) MarkStale() { atomic.StoreInt32(&c.stale, 1) }

// MarkFresh clears the stale flag; called by accept_route_state once it
// has recomputed everything it owns.
func (c *StateCache) MarkFresh() { atomic.StoreInt32(&c.stale, 0) }

// Stale reports whether the cache is out of date with its tour.
func (c *StateCache) Stale() bool { return atomic.LoadInt32(&c.stale) != 0 }

// Clear empties both maps (used before a full recompute in
// accept_route_state).
func (c *StateCache) Clear() {
	c.tourState = make(map[StateKey]interface{})
	c.activityState = make(map[ActivityKey]interface{})
}

// Clone returns a deep copy; activity/tour maps are copied key-by-key so
// the clone can be mutated independently, per spec.md §5 ("deep-copies
// duplicate routes and state caches").
func (c *StateCache) Clone() *StateCache {
	out := &StateCache{
		tourState:     make(map[StateKey]interface{}, len(c.tourState)),
		activityState: make(map[ActivityKey]interface{}, len(c.activityState)),
		stale:         atomic.LoadInt32(&c.stale),
	}
	for k, v := range c.tourState {
		out.tourState[k] = v
	}
	for k, v := range c.activityState {
		out.activityState[k] = v
	}
	return out
}
