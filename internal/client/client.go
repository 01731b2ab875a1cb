// Package client provides access to a skillgraph server: an HTTP/JSON client
// for graphs, renders and refreshes, and layout clients that settle a graph
// either remotely over gRPC or in process.
package client

import (
	"context"
	"errors"

	skillgraphv1 "github.com/fractionaljobsuk/skillgraph/gen/skillgraph/v1"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// Layouter settles a graph and returns the final node positions. It is
// implemented by GRPCClient and Local.
type Layouter interface {
	Layout(ctx context.Context, req *skillgraphv1.LayoutRequest) (*skillgraphv1.LayoutResponse, error)
	Close() error
}

// HealthStatus is the server health response.
type HealthStatus struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// RenderRequest selects the output of a render call. Zero values use the
// server defaults.
type RenderRequest struct {
	Format string // svg (default), echarts or json
	Width  float64
	Height float64
	Select string
	Hover  string
}

// Local settles graphs in process with the given parameters.
type Local struct {
	Params layout.Params
	Canvas layout.Canvas
}

// Close is a no-op for the local layouter.
func (Local) Close() error { return nil }

// Layout normalizes and settles req.Graph without any network round trip.
func (l Local) Layout(ctx context.Context, req *skillgraphv1.LayoutRequest) (*skillgraphv1.LayoutResponse, error) {
	if req.Graph == nil {
		return nil, errors.New("graph is required")
	}
	c := l.Canvas
	if req.Width > 0 {
		c.Width = req.Width
	}
	if req.Height > 0 {
		c.Height = req.Height
	}
	p := l.Params
	if req.MaxTicks > 0 {
		p.MaxTicks = req.MaxTicks
	}

	g, _ := model.Normalize(req.Graph)
	resp := &skillgraphv1.LayoutResponse{Positions: map[string]skillgraphv1.Position{}}
	res, err := layout.Settle(ctx, g, c, p)
	switch {
	case errors.Is(err, layout.ErrEmptyGraph):
		resp.Empty = true
		return resp, nil
	case err != nil:
		return nil, err
	}
	for id, pt := range res.State.Positions(g) {
		resp.Positions[id] = skillgraphv1.Position{X: pt.X, Y: pt.Y}
	}
	resp.Ticks = res.Ticks
	return resp, nil
}
