package hyperheuristic

import "github.com/routeforge/vrpcore/solution"

// Predicate gates whether a Move is currently eligible, e.g. "only use
// the route-removal ruin operator once at least two routes exist."
type Predicate func(ic *solution.InsertionContext) bool

// entry is one weighted, optionally-gated row of a StaticSelective table.
type entry struct {
	move      Move
	weight    float64
	predicate Predicate
}

// StaticSelective picks a Move by weighted-random sampling over whichever
// table rows currently pass their Predicate (or have none); it never
// learns, matching spec.md's "fixed weighted/predicated operator table"
// hyper-heuristic variant.
type StaticSelective struct {
	entries []entry
}

// NewStaticSelective builds an empty table; add rows with Add.
func NewStaticSelective() *StaticSelective {
	return &StaticSelective{}
}

// Add registers one (move, weight) row, optionally gated by predicate
// (pass nil for an always-eligible row).
func (s *StaticSelective) Add(move Move, weight float64, predicate Predicate) {
	s.entries = append(s.entries, entry{move: move, weight: weight, predicate: predicate})
}

// Select samples a Move proportional to weight among eligible rows,
// falling back to the first registered row if none pass their predicate
// (keeps Select total even in a degenerate table).
func (s *StaticSelective) Select(ic *solution.InsertionContext, rand RandomSource) Move {
	var total float64
	var eligible []entry
	for _, e := range s.entries {
		if e.predicate == nil || e.predicate(ic) {
			eligible = append(eligible, e)
			total += e.weight
		}
	}
	if len(eligible) == 0 {
		if len(s.entries) == 0 {
			return Move{}
		}
		return s.entries[0].move
	}
	r := rand.Float64() * total
	var cum float64
	for _, e := range eligible {
		cum += e.weight
		if r <= cum {
			return e.move
		}
	}
	return eligible[len(eligible)-1].move
}

// Observe is a no-op: StaticSelective never adapts its weights.
func (s *StaticSelective) Observe(Move, Outcome) {}
