package layout

import (
	"context"
	"errors"
	"time"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// ErrEmptyGraph is returned when a run is requested for a graph with no
// nodes. No ticks are performed.
var ErrEmptyGraph = errors.New("layout: graph has no nodes")

// Scheduler paces ticks, one per frame.
type Scheduler interface {
	// Wait blocks until the next frame is due or ctx is done.
	Wait(ctx context.Context) error
	Stop()
}

type frameScheduler struct {
	ticker *time.Ticker
}

// FrameScheduler returns a Scheduler that releases one frame per interval.
func FrameScheduler(interval time.Duration) Scheduler {
	return &frameScheduler{ticker: time.NewTicker(interval)}
}

func (f *frameScheduler) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.ticker.C:
		return nil
	}
}

func (f *frameScheduler) Stop() { f.ticker.Stop() }

type immediate struct{}

// Immediate returns a Scheduler that never waits. Used for headless renders.
func Immediate() Scheduler { return immediate{} }

func (immediate) Wait(ctx context.Context) error { return ctx.Err() }
func (immediate) Stop()                          {}

// Result describes a finished run.
type Result struct {
	Ticks   int
	Settled bool // stopped early by settle detection
	State   State
}

// Runner drives Step for a fixed tick budget.
type Runner struct {
	params       Params
	newScheduler func() Scheduler
}

// NewRunner returns a runner pacing ticks by p.FrameInterval, or running
// them back to back when the interval is zero.
func NewRunner(p Params) *Runner {
	r := &Runner{params: p}
	if p.FrameInterval > 0 {
		r.newScheduler = func() Scheduler { return FrameScheduler(p.FrameInterval) }
	} else {
		r.newScheduler = Immediate
	}
	return r
}

// WithScheduler replaces the frame source, mostly for tests.
func (r *Runner) WithScheduler(fn func() Scheduler) *Runner {
	r.newScheduler = fn
	return r
}

// Params returns the constants the runner steps with.
func (r *Runner) Params() Params { return r.params }

// Run performs up to MaxTicks ticks starting from s, calling onFrame with
// each new state. It returns ErrEmptyGraph for a graph without nodes and
// ctx.Err() if canceled between ticks.
func (r *Runner) Run(ctx context.Context, g *model.Graph, s State, onFrame func(State)) (Result, error) {
	res := Result{State: s}
	if g.Empty() {
		return res, ErrEmptyGraph
	}

	sched := r.newScheduler()
	defer sched.Stop()

	p := r.params
	calm := 0
	for res.Ticks < p.MaxTicks {
		if err := sched.Wait(ctx); err != nil {
			return res, err
		}
		next := Step(res.State, g, p)
		res.Ticks++
		if onFrame != nil {
			onFrame(next)
		}
		prev := res.State
		res.State = next

		if p.SettleEpsilon > 0 {
			if MaxDisplacement(prev, next) < p.SettleEpsilon {
				calm++
			} else {
				calm = 0
			}
			if calm >= max(p.SettleFrames, 1) {
				res.Settled = true
				break
			}
		}
	}
	return res, nil
}

// Settle seeds g deterministically and runs the full budget without pacing.
// Used for static renders and snapshots.
func Settle(ctx context.Context, g *model.Graph, c Canvas, p Params) (Result, error) {
	p.FrameInterval = 0
	return NewRunner(p).Run(ctx, g, Seed(g, c, SeedFor(g)), nil)
}
