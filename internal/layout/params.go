// Package layout implements the force-directed layout used by every graph
// view: seeding, a pure per-tick step function, and a cancelable runner that
// drives a fixed tick budget one frame at a time.
package layout

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Canvas is the drawing area a layout is computed for.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the canvas.
func (c Canvas) Center() r2.Vec {
	return r2.Vec{X: c.Width / 2, Y: c.Height / 2}
}

// Params holds the simulation constants.
type Params struct {
	MinDist    float64 // repulsion only acts below this separation
	Repulsion  float64 // gain applied to (MinDist - d)
	RestLength float64 // spring target length
	Spring     float64 // gain applied to (d - RestLength), times edge weight
	Gravity    float64 // pull toward the canvas center, per unit of offset
	StepFactor float64 // position advances by velocity times this factor
	Damping    float64 // velocity multiplier applied every tick
	Margin     float64 // positions are clamped this far inside the canvas

	MaxTicks      int
	FrameInterval time.Duration // 0 runs ticks back to back

	// SettleEpsilon enables early stop when positive: the run ends once the
	// largest per-node displacement stays below it for SettleFrames ticks.
	SettleEpsilon float64
	SettleFrames  int

	// GridIndex buckets nodes into MinDist-sized cells for the repulsion
	// pass instead of scanning every pair.
	GridIndex bool
}

// DefaultParams returns the standard constants: 100 ticks at ~60fps.
func DefaultParams() Params {
	return Params{
		MinDist:       60,
		Repulsion:     0.05,
		RestLength:    100,
		Spring:        0.01,
		Gravity:       0.001,
		StepFactor:    0.8,
		Damping:       0.9,
		Margin:        40,
		MaxTicks:      100,
		FrameInterval: 16 * time.Millisecond,
		SettleFrames:  5,
	}
}
