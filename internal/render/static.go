package render

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fractionaljobsuk/skillgraph/internal/interact"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// Static normalizes data, runs the whole tick budget without pacing and
// renders the final frame. An empty graph yields the empty-state scene with
// zero ticks.
func Static(ctx context.Context, data *model.GraphData, p layout.Params, v interact.View, o Options) (*Scene, layout.Result, error) {
	g, issues := model.Normalize(data)
	model.LogIssues(slog.Default(), issues)

	res, err := layout.Settle(ctx, g, layout.Canvas{Width: o.Width, Height: o.Height}, p)
	if err != nil && !errors.Is(err, layout.ErrEmptyGraph) {
		return nil, res, err
	}
	return Render(g, res.State, v, o), res, nil
}
