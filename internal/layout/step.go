package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// goldenAngle spreads fallback directions for coincident pairs.
const goldenAngle = 2.399963229728653

// Step advances the simulation by one tick. All forces are computed from s
// and applied to a fresh State; s is left untouched.
func Step(s State, g *model.Graph, p Params) State {
	n := g.Len()
	next := State{
		Canvas: s.Canvas,
		Tick:   s.Tick + 1,
		Pos:    make([]r2.Vec, n),
		Vel:    make([]r2.Vec, n),
	}
	if n == 0 {
		return next
	}

	nodes := g.Nodes()
	anchor := make([]bool, n)
	for i, node := range nodes {
		anchor[i] = node.Type.Anchor()
	}
	impulse := make([]r2.Vec, n)
	center := s.Canvas.Center()

	// Repulsion between non-anchor pairs closer than MinDist.
	repel := func(i, j int) {
		d := r2.Sub(s.Pos[i], s.Pos[j])
		dist := r2.Norm(d)
		if dist >= p.MinDist {
			return
		}
		u := unitOrFallback(d, &dist, i, j)
		f := r2.Scale((p.MinDist-dist)*p.Repulsion, u)
		impulse[i] = r2.Add(impulse[i], f)
		impulse[j] = r2.Sub(impulse[j], f)
	}
	if p.GridIndex {
		forEachNearPair(s.Pos, anchor, p.MinDist, repel)
	} else {
		for i := 0; i < n; i++ {
			if anchor[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !anchor[j] {
					repel(i, j)
				}
			}
		}
	}

	// Springs toward RestLength, stiffness scaled by edge weight.
	for _, e := range g.Edges() {
		si, _ := g.Index(e.Source)
		ti, _ := g.Index(e.Target)
		if si == ti {
			continue
		}
		d := r2.Sub(s.Pos[ti], s.Pos[si])
		dist := r2.Norm(d)
		u := unitOrFallback(d, &dist, ti, si)
		f := r2.Scale((dist-p.RestLength)*p.Spring*e.EffectiveWeight(), u)
		if !anchor[si] {
			impulse[si] = r2.Add(impulse[si], f)
		}
		if !anchor[ti] {
			impulse[ti] = r2.Sub(impulse[ti], f)
		}
	}

	xlo, xhi := bounds(s.Canvas.Width, p.Margin)
	ylo, yhi := bounds(s.Canvas.Height, p.Margin)
	for i := range nodes {
		if anchor[i] {
			next.Pos[i] = center
			continue
		}
		impulse[i] = r2.Add(impulse[i], r2.Scale(p.Gravity, r2.Sub(center, s.Pos[i])))

		v := r2.Add(s.Vel[i], impulse[i])
		pos := r2.Add(s.Pos[i], r2.Scale(p.StepFactor, v))
		v = r2.Scale(p.Damping, v)
		pos.X = clamp(pos.X, xlo, xhi)
		pos.Y = clamp(pos.Y, ylo, yhi)

		if !finite(pos) || !finite(v) {
			pos, v = s.Pos[i], r2.Vec{}
			if !finite(pos) {
				pos = center
			}
		}
		next.Pos[i] = pos
		next.Vel[i] = v
	}
	return next
}

// unitOrFallback returns d normalized. Coincident points get a distance of 1
// and a deterministic direction derived from the pair indices.
func unitOrFallback(d r2.Vec, dist *float64, i, j int) r2.Vec {
	if *dist > 0 {
		return r2.Scale(1 / *dist, d)
	}
	*dist = 1
	a := goldenAngle * float64(i+j+1)
	if i < j {
		a += math.Pi
	}
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

func bounds(size, margin float64) (float64, float64) {
	lo, hi := margin, size-margin
	if lo > hi {
		return size / 2, size / 2
	}
	return lo, hi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
