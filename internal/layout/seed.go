package layout

import (
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

const (
	seedRadiusFactor = 0.35
	seedJitter       = 50
)

// Seed places anchors at the canvas center and every other node on a circle
// of radius 0.35*min(width, height) at angle 2*pi*i/n, jittered by up to half
// of seedJitter on each axis. Velocities start at zero.
func Seed(g *model.Graph, c Canvas, rng *rand.Rand) State {
	n := g.Len()
	s := State{
		Canvas: c,
		Pos:    make([]r2.Vec, n),
		Vel:    make([]r2.Vec, n),
	}
	center := c.Center()
	radius := math.Min(c.Width, c.Height) * seedRadiusFactor
	for i, node := range g.Nodes() {
		if node.Type.Anchor() {
			s.Pos[i] = center
			continue
		}
		angle := 2 * math.Pi * float64(i) / float64(n)
		s.Pos[i] = r2.Vec{
			X: center.X + math.Cos(angle)*radius + (rng.Float64()-0.5)*seedJitter,
			Y: center.Y + math.Sin(angle)*radius + (rng.Float64()-0.5)*seedJitter,
		}
	}
	return s
}

// SeedFor returns a jitter source derived from the graph's node ids, so the
// same graph always starts from the same positions.
func SeedFor(g *model.Graph) *rand.Rand {
	d := xxhash.New()
	for _, n := range g.Nodes() {
		_, _ = d.WriteString(n.ID)
		_, _ = d.Write([]byte{0})
	}
	sum := d.Sum64()
	return rand.New(rand.NewPCG(sum, sum^0x9e3779b97f4a7c15))
}
