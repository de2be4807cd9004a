package features

import (
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/vrpmodel"
)

// Point is a planar coordinate used only by the Area feature to test
// location membership in an actor's operating zone; the rest of the core
// never needs real coordinates (everything else routes via the opaque
// Location index and a routing matrix).
type Point struct{ X, Y float64 }

// Polygon is a closed ring of vertices (first != last; the edge from the
// last vertex back to the first is implicit).
type Polygon []Point

// Contains reports whether p lies inside the polygon using the standard
// ray-casting (even-odd rule) test: count how many polygon edges a
// horizontal ray from p crosses; odd means inside.
//
// Grounded on github.com/katalvlaran/lvlath's gridgraph package's cell/
// boundary membership reasoning, adapted from grid-cell adjacency to a
// continuous polygon boundary test.
func (poly Polygon) Contains(p Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := poly[i], poly[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}

// AreaFeature rejects a candidate location outside its actor's operating
// zone.
type AreaFeature struct {
	Name     string
	ZoneOf   func(actor *vrpmodel.Actor) (Polygon, bool)
	Coord    func(loc vrpmodel.Location) Point
}

func NewAreaFeature(name string, zoneOf func(*vrpmodel.Actor) (Polygon, bool), coord func(vrpmodel.Location) Point) pipeline.Feature {
	f := &AreaFeature{Name: name, ZoneOf: zoneOf, Coord: coord}
	return pipeline.Feature{Name: name, Constraint: f}
}

func (f *AreaFeature) EvaluateRoute(ctx pipeline.RouteMoveContext) *pipeline.Violation {
	return nil
}

func (f *AreaFeature) EvaluateActivity(ctx pipeline.ActivityMoveContext) *pipeline.Violation {
	if ctx.Activity.Target == nil {
		return nil
	}
	zone, ok := f.ZoneOf(ctx.Route.Actor)
	if !ok {
		return nil
	}
	if !zone.Contains(f.Coord(ctx.Activity.Target.Location)) {
		return &pipeline.Violation{Code: int(CodeArea), Stopped: false}
	}
	return nil
}

func (f *AreaFeature) Merge(source, candidate vrpmodel.Job) (vrpmodel.Job, int, error) {
	return source, 0, nil
}
