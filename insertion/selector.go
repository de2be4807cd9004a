package insertion

// ResultSelector picks which of two feasible Success candidates to
// prefer, letting recreate operators trade pure greediness for
// diversification.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/approx.go vs.
// tsp/three_opt.go split (one picks the strict minimum, the other
// accepts a perturbed/non-improving move to escape local optima).
type ResultSelector interface {
	Prefer(a, b Success) Success
}

// BestResultSelector always keeps the lower-cost candidate (ties keep a,
// i.e. the earlier-found one, matching the "earlier insertion index wins
// on ties" rule).
type BestResultSelector struct{}

func (BestResultSelector) Prefer(a, b Success) Success {
	if b.Cost < a.Cost {
		return b
	}
	return a
}

// RandomSource is the minimal randomness NoiseResultSelector needs.
type RandomSource interface {
	Float64() float64
}

// NoiseResultSelector adds uniform noise in [0, Amplitude*cost) to each
// candidate before comparing, so a slightly worse insertion occasionally
// wins — used by recreate operators that need to diversify a restart.
type NoiseResultSelector struct {
	Random    RandomSource
	Amplitude float64
}

func (n NoiseResultSelector) Prefer(a, b Success) Success {
	na := a.Cost + n.Random.Float64()*n.Amplitude*absf(a.Cost)
	nb := b.Cost + n.Random.Float64()*n.Amplitude*absf(b.Cost)
	if nb < na {
		return b
	}
	return a
}

// FarthestResultSelector prefers the *more expensive* candidate: used by
// farthest-insertion-style recreate operators that deliberately place
// the hardest-to-fit job first, so later, easier jobs still have slack.
type FarthestResultSelector struct{}

func (FarthestResultSelector) Prefer(a, b Success) Success {
	if b.Cost > a.Cost {
		return b
	}
	return a
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
