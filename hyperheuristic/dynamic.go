package hyperheuristic

import (
	"sync"

	"github.com/routeforge/vrpcore/solution"
)

// SearchState classifies the search's current standing relative to the
// best-known solution, the RL state a DynamicSelective conditions on.
type SearchState int

const (
	// StateBestKnown: current solution equals the best found so far.
	StateBestKnown SearchState = iota
	// StateDiverse: several non-improving steps have passed; search is
	// exploring away from the best-known region.
	StateDiverse
	// StateRuined: immediately after a ruin pass, before recreate.
	StateRuined
	// StateNewBest: the step just produced a new best.
	StateNewBest
	// StateImproved: the step improved on the immediately-prior solution
	// without beating the best-known.
	StateImproved
	// StateDegraded: the step made things worse.
	StateDegraded
)

// qKey packs a (state, move) pair into the Q-table's map key.
type qKey struct {
	state SearchState
	move  Move
}

// DynamicSelective is a tabular Q-learning hyper-heuristic: it tracks
// Q(state, move) estimates and picks moves epsilon-greedily, updating
// estimates from the reward each applied Move produced.
//
// Grounded on github.com/niceyeti-tabular's reinforcement/learning.go
// alpha-MC trainer: an epsilon-greedy policy over a shared value table,
// updated with a fixed learning rate (Alpha) from observed rewards, and
// safe for concurrent agents via the same guarded-update discipline
// (there: atomic_float.AtomicAdd per state; here: a mutex around the
// whole table, since Go has no atomic float add primitive in the
// standard library and this repo does not otherwise need one).
type DynamicSelective struct {
	Moves   []Move
	Epsilon float64
	Alpha   float64

	mu      sync.Mutex
	q       map[qKey]float64
	current SearchState
	last    Move
}

// NewDynamicSelective builds a table over moves with the given
// exploration rate and learning rate.
func NewDynamicSelective(moves []Move, epsilon, alpha float64) *DynamicSelective {
	return &DynamicSelective{
		Moves:   moves,
		Epsilon: epsilon,
		Alpha:   alpha,
		q:       make(map[qKey]float64),
		current: StateBestKnown,
	}
}

// SetState records the SearchState Select should condition its next
// choice on; callers classify the search's current standing and set it
// before calling Select.
func (d *DynamicSelective) SetState(state SearchState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = state
}

// Select picks a Move epsilon-greedily: with probability Epsilon, a
// uniformly random move (exploration); otherwise the highest-Q move for
// the current state (exploitation, ties broken by table order).
func (d *DynamicSelective) Select(ic *solution.InsertionContext, rand RandomSource) Move {
	if len(d.Moves) == 0 {
		return Move{}
	}
	d.mu.Lock()
	state := d.current
	d.mu.Unlock()

	if rand.Float64() < d.Epsilon {
		move := d.Moves[rand.Intn(len(d.Moves))]
		d.last = move
		return move
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	best := d.Moves[0]
	bestVal := d.q[qKey{state: state, move: best}]
	for _, m := range d.Moves[1:] {
		v := d.q[qKey{state: state, move: m}]
		if v > bestVal {
			bestVal = v
			best = m
		}
	}
	d.last = best
	return best
}

// Observe updates Q(state, move) toward the reward Outcome produced using
// a fixed learning rate: Q += Alpha * (reward - Q).
func (d *DynamicSelective) Observe(move Move, outcome Outcome) {
	reward := Reward(outcome)
	d.mu.Lock()
	defer d.mu.Unlock()
	key := qKey{state: d.current, move: move}
	d.q[key] += d.Alpha * (reward - d.q[key])
	d.current = classifyFromOutcome(outcome)
}

func classifyFromOutcome(o Outcome) SearchState {
	switch o {
	case OutcomeNewBest:
		return StateNewBest
	case OutcomeImproved:
		return StateImproved
	case OutcomeDegraded:
		return StateDegraded
	default:
		return StateDiverse
	}
}

// MergeExperience folds another DynamicSelective's Q-table into d by
// averaging overlapping entries, the parallel-agent merge rule spec.md
// calls for when several search threads learn independently and must
// periodically synchronize (mirroring the alpha-MC trainer's estimator
// goroutine batching many agents' episodes into one shared value table).
func (d *DynamicSelective) MergeExperience(other *DynamicSelective) {
	other.mu.Lock()
	snapshot := make(map[qKey]float64, len(other.q))
	for k, v := range other.q {
		snapshot[k] = v
	}
	other.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range snapshot {
		if existing, ok := d.q[k]; ok {
			d.q[k] = (existing + v) / 2
		} else {
			d.q[k] = v
		}
	}
}
