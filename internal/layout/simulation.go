package layout

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// Frame is one tick delivered by a Simulation. The last frame of a run has
// Done set; Err is ErrEmptyGraph for an empty graph and nil otherwise.
type Frame struct {
	Graph *model.Graph
	State State
	Done  bool
	Ticks int
	Err   error
}

// Simulation owns the layout of one graph view. Starting it with a graph
// built from a different GraphData cancels the current run and reseeds.
type Simulation struct {
	runner *Runner
	canvas Canvas
	rng    *rand.Rand

	mu     sync.Mutex
	src    *model.GraphData
	cancel context.CancelFunc
	done   chan struct{}
	frames chan Frame
}

// NewSimulation creates an idle simulation. A nil rng seeds each graph from
// its node ids.
func NewSimulation(r *Runner, c Canvas, rng *rand.Rand) *Simulation {
	return &Simulation{
		runner: r,
		canvas: c,
		rng:    rng,
		frames: make(chan Frame),
	}
}

// Frames delivers ticks of the current run. The channel is never closed.
func (s *Simulation) Frames() <-chan Frame { return s.frames }

// Canvas returns the canvas the simulation lays out for.
func (s *Simulation) Canvas() Canvas { return s.canvas }

// Start begins a run for g. It reports false without doing anything when g
// comes from the GraphData already being simulated.
func (s *Simulation) Start(ctx context.Context, g *model.Graph) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil && s.src == g.Source() {
		return false
	}
	s.stopLocked()

	rng := s.rng
	if rng == nil {
		rng = SeedFor(g)
	}
	seed := Seed(g, s.canvas, rng)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.src = g.Source()
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		res, err := s.runner.Run(runCtx, g, seed, func(st State) {
			select {
			case s.frames <- Frame{Graph: g, State: st, Ticks: st.Tick}:
			case <-runCtx.Done():
			}
		})
		if runCtx.Err() != nil {
			return
		}
		select {
		case s.frames <- Frame{Graph: g, State: res.State, Done: true, Ticks: res.Ticks, Err: err}:
		case <-runCtx.Done():
		}
	}()
	return true
}

// Stop cancels the current run, if any, and waits for it to exit.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Simulation) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.src = nil
}
