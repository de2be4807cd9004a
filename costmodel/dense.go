package costmodel

import (
	"github.com/routeforge/vrpcore/vrpmodel"
)

// ProfileMatrix is a square, row-major, departure-independent distance or
// duration matrix for one profile, sized for n locations.
//
// Grounded on github.com/katalvlaran/lvlath's matrix/dense.go: the same
// flat []float64 row-major storage with bounds-checked At, generalized
// from a generic linear-algebra Matrix to a fixed-profile routing matrix.
type ProfileMatrix struct {
	n    int
	data []float64 // row-major, data[i*n+j] = value(i, j)
}

// NewProfileMatrix allocates an n x n matrix, zero-initialized.
func NewProfileMatrix(n int) *ProfileMatrix {
	return &ProfileMatrix{n: n, data: make([]float64, n*n)}
}

// At returns the value at (i, j); out-of-range indices return 0 rather
// than erroring. Neither At nor NewDenseTransportCost checks the matrix
// shape against the Problem's locations, so a Location past the matrix
// edge reads as 0.
func (m *ProfileMatrix) At(i, j int) float64 {
	if i < 0 || j < 0 || i >= m.n || j >= m.n {
		return 0
	}
	return m.data[i*m.n+j]
}

// Set assigns the value at (i, j).
func (m *ProfileMatrix) Set(i, j int, v float64) {
	if i < 0 || j < 0 || i >= m.n || j >= m.n {
		return
	}
	m.data[i*m.n+j] = v
}

// Rows reports the matrix's dimension (square, so Rows == Cols).
func (m *ProfileMatrix) Rows() int { return m.n }

// DenseTransportCost is the stock TransportCost: one ProfileMatrix pair
// (distance, duration) per profile, combined into a monetary cost using
// the actor's per-distance/per-driving-time rates. Departure-independent.
type DenseTransportCost struct {
	distances map[vrpmodel.Profile]*ProfileMatrix
	durations map[vrpmodel.Profile]*ProfileMatrix
}

// NewDenseTransportCost builds a DenseTransportCost from per-profile
// distance/duration matrices. Both maps must carry the same profile keys
// and square matrices of identical size per profile (spec.md §6 external
// interface contract); mismatches are a configuration error that the
// caller should validate before handing a Problem to the solver.
func NewDenseTransportCost(distances, durations map[vrpmodel.Profile]*ProfileMatrix) *DenseTransportCost {
	return &DenseTransportCost{distances: distances, durations: durations}
}

func (d *DenseTransportCost) Distance(profile vrpmodel.Profile, from, to vrpmodel.Location, _ vrpmodel.Timestamp) vrpmodel.Distance {
	m := d.distances[profile]
	if m == nil {
		return 0
	}
	return vrpmodel.Distance(m.At(int(from), int(to)))
}

func (d *DenseTransportCost) Duration(profile vrpmodel.Profile, from, to vrpmodel.Location, _ vrpmodel.Timestamp) vrpmodel.Duration {
	m := d.durations[profile]
	if m == nil {
		return 0
	}
	return vrpmodel.Duration(m.At(int(from), int(to)))
}

func (d *DenseTransportCost) Cost(actor *vrpmodel.Actor, from, to vrpmodel.Location, departure vrpmodel.Timestamp) vrpmodel.Cost {
	if actor == nil {
		return 0
	}
	dist := d.Distance(actor.Vehicle.Profile, from, to, departure)
	dur := d.Duration(actor.Vehicle.Profile, from, to, departure)
	rate := actor.Vehicle.Costs.PerDistance*vrpmodel.Cost(dist) +
		(actor.Vehicle.Costs.PerDrivingTime+actor.Driver.Costs.PerDrivingTime)*vrpmodel.Cost(dur)
	return vrpmodel.Cost(stabilize(float64(rate)))
}
