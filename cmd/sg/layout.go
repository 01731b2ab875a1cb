package main

import (
	"fmt"
	"slices"

	skillgraphv1 "github.com/fractionaljobsuk/skillgraph/gen/skillgraph/v1"
	"github.com/fractionaljobsuk/skillgraph/internal/client"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/ui"
	"github.com/spf13/cobra"
)

var layoutFlags struct {
	src    sourceFlags
	local  bool
	width  float64
	height float64
	ticks  int
}

var layoutCmd = &cobra.Command{
	Use:   "layout <source>",
	Short: "Settle a graph and print node positions",
	Long: `Settle a graph and print the final node positions.

The layout runs on the server's gRPC LayoutService unless --local is set.`,
	Example: `  sg layout roles/cmo
  sg layout -f graph.json --local --json`,
	GroupID: "graphs",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &layoutFlags
		ctx := cmd.Context()
		data, _, err := f.src.load(ctx, args)
		if err != nil {
			return err
		}

		var lay client.Layouter
		if f.local {
			lay = client.Local{Params: layout.DefaultParams(), Canvas: layout.Canvas{Width: 600, Height: 400}}
		} else {
			lay, err = client.NewGRPCClient(grpcAddr, authToken)
			if err != nil {
				return err
			}
		}
		defer lay.Close()

		resp, err := lay.Layout(ctx, &skillgraphv1.LayoutRequest{
			Graph: data, Width: f.width, Height: f.height, MaxTicks: f.ticks,
		})
		if err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printPositions(cmd, resp)
		return nil
	},
}

func printPositions(cmd *cobra.Command, resp *skillgraphv1.LayoutResponse) {
	w := cmd.OutOrStdout()
	if resp.Empty {
		fmt.Fprintln(w, "No graph data available")
		return
	}
	ids := make([]string, 0, len(resp.Positions))
	for id := range resp.Positions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		p := resp.Positions[id]
		rows = append(rows, []string{id, fmt.Sprintf("%.1f", p.X), fmt.Sprintf("%.1f", p.Y)})
	}
	ui.Table(w, []string{"NODE", "X", "Y"}, rows)
	fmt.Fprintf(w, "\n%d nodes settled in %d ticks\n", len(ids), resp.Ticks)
}

func init() {
	f := &layoutFlags
	f.src.bind(layoutCmd, true)
	layoutCmd.Flags().BoolVar(&f.local, "local", false, "run the layout in process instead of over gRPC")
	layoutCmd.Flags().Float64Var(&f.width, "width", 0, "canvas width (default 600)")
	layoutCmd.Flags().Float64Var(&f.height, "height", 0, "canvas height (default 400)")
	layoutCmd.Flags().IntVar(&f.ticks, "ticks", 0, "tick budget (default 100)")
}
