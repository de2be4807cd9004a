// Package evolution drives the generational search loop: build an
// initial population, repeatedly mutate parents via a hyper-heuristic,
// fold offspring back into the population, and stop once a Termination
// condition fires.
package evolution

import (
	"math"
	"time"

	"github.com/routeforge/vrpcore/population"
)

// Termination decides when the evolution loop should stop, and reports
// how close it is via Estimate (0 = just started, 1 = should stop now),
// the progress signal telemetry renders as a percentage.
type Termination interface {
	ShouldStop(gen int, started time.Time, pop population.Population) bool
	Estimate(gen int, started time.Time, pop population.Population) float64
}

// MaxGenerations stops once gen reaches Limit.
type MaxGenerations struct {
	Limit int
}

func (m MaxGenerations) ShouldStop(gen int, _ time.Time, _ population.Population) bool {
	return m.Limit > 0 && gen >= m.Limit
}

func (m MaxGenerations) Estimate(gen int, _ time.Time, _ population.Population) float64 {
	if m.Limit <= 0 {
		return 0
	}
	return clamp01(float64(gen) / float64(m.Limit))
}

// MaxWallTime stops once Limit has elapsed since started.
type MaxWallTime struct {
	Limit time.Duration
}

func (m MaxWallTime) ShouldStop(_ int, started time.Time, _ population.Population) bool {
	return m.Limit > 0 && time.Since(started) >= m.Limit
}

func (m MaxWallTime) Estimate(_ int, started time.Time, _ population.Population) float64 {
	if m.Limit <= 0 {
		return 0
	}
	return clamp01(float64(time.Since(started)) / float64(m.Limit))
}

// CoefficientOfVariation stops once the population's fitness spread
// (stddev/mean of each surviving individual's first fitness group) drops
// below Threshold for MinGenerations consecutive generations, the
// "search has converged" signal.
type CoefficientOfVariation struct {
	Threshold     float64
	MinGenerations int

	below int
}

func (c *CoefficientOfVariation) ShouldStop(_ int, _ time.Time, pop population.Population) bool {
	cov := c.currentCoV(pop)
	if cov < c.Threshold {
		c.below++
	} else {
		c.below = 0
	}
	return c.below >= c.MinGenerations
}

func (c *CoefficientOfVariation) Estimate(_ int, _ time.Time, pop population.Population) float64 {
	cov := c.currentCoV(pop)
	if c.Threshold <= 0 {
		return 0
	}
	if cov >= c.Threshold {
		return 0
	}
	return clamp01(float64(c.below) / float64(maxInt(c.MinGenerations, 1)))
}

func (c *CoefficientOfVariation) currentCoV(pop population.Population) float64 {
	ranked := pop.Ranked()
	if len(ranked) < 2 {
		return 0
	}
	var sum float64
	for _, ind := range ranked {
		if len(ind.Fitness) > 0 {
			sum += ind.Fitness[0]
		}
	}
	mean := sum / float64(len(ranked))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, ind := range ranked {
		var v float64
		if len(ind.Fitness) > 0 {
			v = ind.Fitness[0]
		}
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(ranked))
	return math.Sqrt(variance) / math.Abs(mean)
}

// Composite stops once any child Termination fires, and reports the
// maximum of the children's Estimate (closest-to-done child dominates).
type Composite struct {
	Children []Termination
}

func (c Composite) ShouldStop(gen int, started time.Time, pop population.Population) bool {
	for _, t := range c.Children {
		if t.ShouldStop(gen, started, pop) {
			return true
		}
	}
	return false
}

func (c Composite) Estimate(gen int, started time.Time, pop population.Population) float64 {
	var best float64
	for _, t := range c.Children {
		if e := t.Estimate(gen, started, pop); e > best {
			best = e
		}
	}
	return best
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
