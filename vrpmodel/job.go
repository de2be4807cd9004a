package vrpmodel

// Place is an (optional location, required service duration, one-or-more
// permitted time spans) triple attached to a job.
type Place struct {
	// Location is the place's location; nil means "any actor-reachable
	// location" is not supported here — every Place must resolve to a
	// concrete Location before it reaches the insertion evaluator, but the
	// pointer stays optional at construction time so builders can fill it
	// in after geocoding.
	Location *Location
	Duration Duration
	Spans    []TimeSpan
}

// Permutator enumerates admissible visit orderings for a Multi's
// sub-singles and validates a candidate ordering.
//
// Grounded on spec.md §9's description of the permutator abstraction;
// built-ins below mirror the source's "fixed" and "any order" variants.
type Permutator interface {
	// Iter yields admissible permutations as index slices into the
	// Multi's Jobs slice. The first permutation is the identity order
	// unless the permutator defines otherwise.
	Iter() [][]int
	// Validate reports whether order is one of the admissible permutations.
	Validate(order []int) bool
}

// IdentityPermutator admits only the fixed order [0, 1, ..., n-1]
// (e.g. strict pickup-then-delivery).
type IdentityPermutator struct{ N int }

func (p IdentityPermutator) Iter() [][]int {
	order := make([]int, p.N)
	for i := range order {
		order[i] = i
	}
	return [][]int{order}
}

func (p IdentityPermutator) Validate(order []int) bool {
	if len(order) != p.N {
		return false
	}
	for i, v := range order {
		if v != i {
			return false
		}
	}
	return true
}

// StrictPermutator admits exactly the given fixed list of admissible
// permutations (e.g. "pickup before delivery, but either pickup first").
type StrictPermutator struct{ Orders [][]int }

func (p StrictPermutator) Iter() [][]int { return p.Orders }

func (p StrictPermutator) Validate(order []int) bool {
	for _, o := range p.Orders {
		if equalOrder(o, order) {
			return true
		}
	}
	return false
}

func equalOrder(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AnyOrderPermutator admits every permutation of N elements (k-factorial).
// Intended only for small N: Iter materializes all N! orderings.
type AnyOrderPermutator struct{ N int }

func (p AnyOrderPermutator) Iter() [][]int {
	var out [][]int
	perm := make([]int, p.N)
	for i := range perm {
		perm[i] = i
	}
	var permute func(k int)
	permute = func(k int) {
		if k == len(perm) {
			cp := make([]int, len(perm))
			copy(cp, perm)
			out = append(out, cp)
			return
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			permute(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	permute(0)
	return out
}

func (p AnyOrderPermutator) Validate(order []int) bool {
	if len(order) != p.N {
		return false
	}
	seen := make([]bool, p.N)
	for _, v := range order {
		if v < 0 || v >= p.N || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// Single is a set of alternative places plus dimensions; it must be
// visited exactly once.
type Single struct {
	id     int64 // arena identity; equality/hash use this, never content
	Dims   Dimensions
	Places []Place

	// parent is the owning Multi's arena id, or -1 for a standalone
	// Single. Sub-singles hold this non-owning back-reference; it is a
	// relation lookup only, never ownership (spec.md §3).
	parent int64
}

// Multi is an ordered collection of sub-singles plus a permutator
// enumerating admissible orderings; it is atomically assigned (all or
// none).
type Multi struct {
	id         int64
	Dims       Dimensions
	Jobs       []*Single
	Permutator Permutator
}

// JobKind discriminates the two Job variants.
type JobKind uint8

const (
	KindSingle JobKind = iota
	KindMulti
)

// Job is the {Single, Multi} variant. Equality and hashing are by
// identity (arena id), not by content, so two structurally equal jobs
// never collide — mirrors spec.md §3/§9's resolution of the source's
// pointer-identity hashing.
type Job struct {
	Kind   JobKind
	Single *Single
	Multi  *Multi
}

// ID returns the job's identity key, suitable for use as a map key.
func (j Job) ID() int64 {
	if j.Kind == KindSingle {
		return j.Single.id
	}
	return j.Multi.id
}

// Dims returns the job's dimensions bag regardless of variant.
func (j Job) Dims() Dimensions {
	if j.Kind == KindSingle {
		return j.Single.Dims
	}
	return j.Multi.Dims
}

// JobArena owns all Single and Multi values created for a Problem,
// assigning each a unique id at creation and resolving a Single's parent
// Multi (JobArena.Parent) without cyclic references or unsafe aliasing.
//
// Grounded on spec.md §9's arena resolution of the source's cyclic
// sub-job<->parent-multi back-references (installed via unsafe aliasing
// in the original): here, sub-singles store an index into the arena and
// the arena performs the lookup, so there is never a Go pointer cycle.
type JobArena struct {
	nextID  int64
	singles map[int64]*Single
	multis  map[int64]*Multi
}

// NewJobArena returns an empty arena.
func NewJobArena() *JobArena {
	return &JobArena{singles: make(map[int64]*Single), multis: make(map[int64]*Multi)}
}

// NewSingle allocates a standalone Single (not a Multi's sub-single).
func (a *JobArena) NewSingle(dims Dimensions, places []Place) (*Single, error) {
	if len(places) == 0 {
		return nil, ErrNoPlaces
	}
	a.nextID++
	s := &Single{id: a.nextID, Dims: dims, Places: places, parent: -1}
	a.singles[s.id] = s
	return s, nil
}

// NewMulti allocates a Multi from pre-built sub-singles (created via
// NewSingle or inline), installing each sub-single's parent back-reference.
func (a *JobArena) NewMulti(dims Dimensions, subs []*Single, perm Permutator) (*Multi, error) {
	if len(subs) == 0 {
		return nil, ErrEmptyMulti
	}
	if perm == nil {
		perm = IdentityPermutator{N: len(subs)}
	}
	if len(perm.Iter()) == 0 {
		return nil, ErrNoPermutations
	}
	a.nextID++
	m := &Multi{id: a.nextID, Dims: dims, Jobs: subs, Permutator: perm}
	for _, s := range subs {
		s.parent = m.id
		a.singles[s.id] = s
	}
	a.multis[m.id] = m
	return m, nil
}

// Parent resolves s's owning Multi, or nil if s is standalone.
func (a *JobArena) Parent(s *Single) *Multi {
	if s.parent < 0 {
		return nil
	}
	return a.multis[s.parent]
}

// AsJob wraps a Single or Multi as a Job variant.
func AsJob(v interface{}) Job {
	switch t := v.(type) {
	case *Single:
		return Job{Kind: KindSingle, Single: t}
	case *Multi:
		return Job{Kind: KindMulti, Multi: t}
	default:
		panic("vrpmodel: AsJob requires *Single or *Multi")
	}
}
