// Package snapshot periodically renders graph sources to SVG and writes them
// to one or more destinations (S3, a local directory).
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fractionaljobsuk/skillgraph/internal/idgen"
	"github.com/fractionaljobsuk/skillgraph/internal/interact"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/fractionaljobsuk/skillgraph/internal/render"
)

const (
	contentTypeSVG  = "image/svg+xml"
	contentTypeJSON = "application/json"
	manifestName    = "manifest.json"
)

// Destination is the interface for a snapshot target.
type Destination interface {
	// Write stores one object under name.
	Write(ctx context.Context, name, contentType string, data []byte) error
}

// Fetcher resolves a source to its graph data. *provider.Providers satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, src provider.Source) (*model.GraphData, error)
}

// Entry describes one rendered source in the manifest.
type Entry struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
	Ticks int    `json:"ticks"`
	Error string `json:"error,omitempty"`
}

// Manifest is written alongside the SVGs after every run.
type Manifest struct {
	RunID   string    `json:"run_id"`
	Time    time.Time `json:"time"`
	Entries []Entry   `json:"entries"`
}

// Options configures a Scheduler.
type Options struct {
	Sources  []provider.Source
	Canvas   layout.Canvas
	Params   layout.Params
	Interval time.Duration
}

// Scheduler renders every source at a fixed interval.
type Scheduler struct {
	fetcher      Fetcher
	destinations []Destination
	opts         Options
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that renders from fetcher to the given
// destinations.
func NewScheduler(f Fetcher, destinations []Destination, opts Options, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		fetcher:      f,
		destinations: destinations,
		opts:         opts,
		logger:       logger,
	}
}

// DefaultSources lists every role taxonomy, plus the default jobs graph when
// a store is available.
func DefaultSources(withJobs bool) []provider.Source {
	var out []provider.Source
	for _, r := range (provider.Taxonomy{}).Roles() {
		out = append(out, provider.Source{Kind: provider.KindRoles, Role: r.Key})
	}
	if withJobs {
		out = append(out, provider.Source{Kind: provider.KindJobs})
	}
	return out
}

// Start begins periodic snapshots. It runs once immediately, then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current run (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce renders every source and writes the SVGs plus a manifest. Failures
// are logged per source and recorded in the manifest.
func (s *Scheduler) RunOnce(ctx context.Context) *Manifest {
	runID, err := idgen.Snapshot()
	if err != nil {
		s.logger.Error("snapshot id", "err", err)
		return nil
	}
	m := &Manifest{RunID: runID, Time: time.Now().UTC()}

	for _, src := range s.opts.Sources {
		if ctx.Err() != nil {
			return m
		}
		entry := Entry{Name: src.Name(), File: src.Name() + ".svg"}
		data, e, err := s.renderSource(ctx, src)
		if err != nil {
			s.logger.Error("snapshot render failed", "source", entry.Name, "err", err)
			entry.Error = err.Error()
			m.Entries = append(m.Entries, entry)
			continue
		}
		entry.Nodes, entry.Edges, entry.Ticks = e.Nodes, e.Edges, e.Ticks
		m.Entries = append(m.Entries, entry)
		s.writeAll(ctx, entry.File, contentTypeSVG, data)
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		s.logger.Error("snapshot manifest", "err", err)
		return m
	}
	s.writeAll(ctx, manifestName, contentTypeJSON, manifest)

	s.logger.Info("snapshot completed", "run", runID, "sources", len(m.Entries), "destinations", len(s.destinations))
	return m
}

func (s *Scheduler) renderSource(ctx context.Context, src provider.Source) ([]byte, Entry, error) {
	gd, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("fetch: %w", err)
	}
	sc, res, err := render.Static(ctx, gd, s.opts.Params, interact.View{}, render.Options{
		Width:  s.opts.Canvas.Width,
		Height: s.opts.Canvas.Height,
		Title:  src.Name(),
	})
	if err != nil {
		return nil, Entry{}, fmt.Errorf("layout: %w", err)
	}
	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, sc); err != nil {
		return nil, Entry{}, fmt.Errorf("encode svg: %w", err)
	}
	return buf.Bytes(), Entry{Nodes: len(sc.Nodes), Edges: len(sc.Edges), Ticks: res.Ticks}, nil
}

func (s *Scheduler) writeAll(ctx context.Context, name, contentType string, data []byte) {
	for i, dest := range s.destinations {
		if err := dest.Write(ctx, name, contentType, data); err != nil {
			s.logger.Error("snapshot destination write failed", "destination", fmt.Sprintf("%d", i), "object", name, "err", err)
		}
	}
}
