package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// State is the full position/velocity buffer of one simulation, indexed in
// parallel with the nodes of the Graph it was seeded for. A State is never
// modified after it is returned from Seed or Step.
type State struct {
	Canvas Canvas
	Tick   int
	Pos    []r2.Vec
	Vel    []r2.Vec
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := State{Canvas: s.Canvas, Tick: s.Tick}
	c.Pos = append([]r2.Vec(nil), s.Pos...)
	c.Vel = append([]r2.Vec(nil), s.Vel...)
	return c
}

// Point is a node position as exposed outside the engine.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position returns the position of the node with the given id.
func (s State) Position(g *model.Graph, id string) (Point, bool) {
	i, ok := g.Index(id)
	if !ok || i >= len(s.Pos) {
		return Point{}, false
	}
	return Point{X: s.Pos[i].X, Y: s.Pos[i].Y}, true
}

// Positions returns every node position keyed by node id.
func (s State) Positions(g *model.Graph) map[string]Point {
	out := make(map[string]Point, g.Len())
	for i, n := range g.Nodes() {
		if i >= len(s.Pos) {
			break
		}
		out[n.ID] = Point{X: s.Pos[i].X, Y: s.Pos[i].Y}
	}
	return out
}

// MaxDisplacement returns the largest distance any node moved between a and b.
func MaxDisplacement(a, b State) float64 {
	var m float64
	for i := range a.Pos {
		if i >= len(b.Pos) {
			break
		}
		if d := r2.Norm(r2.Sub(b.Pos[i], a.Pos[i])); d > m {
			m = d
		}
	}
	return m
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
