package solution

import (
	"errors"

	"github.com/routeforge/vrpcore/vrpmodel"
)

// ErrActivityIndexOutOfRange indicates an out-of-bounds tour position.
var ErrActivityIndexOutOfRange = errors.New("solution: activity index out of range")

// Leg is a pair of consecutive activities in a Tour: the slot where a new
// activity can be inserted.
type Leg struct {
	PrevIndex int
	NextIndex int
	Prev      *Activity
	Next      *Activity
}

// Tour is an ordered sequence of activities, always framed by a start
// activity and (if the actor is closed, i.e. has an End) an end activity.
type Tour struct {
	activities []Activity
}

// NewTour builds a tour framed by the given start and (optional) end
// activities.
func NewTour(start Activity, end *Activity) *Tour {
	t := &Tour{activities: []Activity{start}}
	if end != nil {
		t.activities = append(t.activities, *end)
	}
	return t
}

// Activities returns the tour's activities in forward order. The slice is
// owned by the Tour; callers must not retain it across a mutation.
func (t *Tour) Activities() []Activity { return t.activities }

// Len returns the number of activities, including terminals.
func (t *Tour) Len() int { return len(t.activities) }

// At returns the activity at idx.
func (t *Tour) At(idx int) (Activity, error) {
	if idx < 0 || idx >= len(t.activities) {
		return Activity{}, ErrActivityIndexOutOfRange
	}
	return t.activities[idx], nil
}

// SetAt overwrites the activity at idx (used to commit a recomputed
// schedule after an insertion or local-search move).
func (t *Tour) SetAt(idx int, a Activity) error {
	if idx < 0 || idx >= len(t.activities) {
		return ErrActivityIndexOutOfRange
	}
	t.activities[idx] = a
	return nil
}

// Legs iterates every consecutive pair of activities, forward.
func (t *Tour) Legs() []Leg {
	legs := make([]Leg, 0, len(t.activities)-1)
	for i := 0; i+1 < len(t.activities); i++ {
		legs = append(legs, Leg{
			PrevIndex: i, NextIndex: i + 1,
			Prev: &t.activities[i], Next: &t.activities[i+1],
		})
	}
	return legs
}

// InsertAt inserts activity a at position idx (0 < idx <= Len()-1 for a
// framed tour with two terminals; idx==Len() is only valid for a Tour
// whose final activity is not a hard terminal, i.e. an open-end vehicle).
func (t *Tour) InsertAt(idx int, a Activity) error {
	if idx < 0 || idx > len(t.activities) {
		return ErrActivityIndexOutOfRange
	}
	t.activities = append(t.activities, Activity{})
	copy(t.activities[idx+1:], t.activities[idx:])
	t.activities[idx] = a
	return nil
}

// Remove deletes the first activity realising job and returns its former
// index, or -1 if job is not present.
func (t *Tour) Remove(job *vrpmodel.Single) int {
	for i, a := range t.activities {
		if a.Job == job {
			t.activities = append(t.activities[:i], t.activities[i+1:]...)
			return i
		}
	}
	return -1
}

// JobCount returns the number of distinct jobs realised by this tour
// (terminal activities excluded).
func (t *Tour) JobCount() int {
	seen := make(map[*vrpmodel.Single]struct{})
	for _, a := range t.activities {
		if a.Job != nil {
			seen[a.Job] = struct{}{}
		}
	}
	return len(seen)
}

// JobActivityCount returns the number of non-terminal activities.
func (t *Tour) JobActivityCount() int {
	n := 0
	for _, a := range t.activities {
		if !a.IsTerminal() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the tour (activities slice duplicated;
// each Activity is a value type so this fully decouples the clone).
func (t *Tour) Clone() *Tour {
	out := &Tour{activities: make([]Activity, len(t.activities))}
	copy(out.activities, t.activities)
	return out
}
