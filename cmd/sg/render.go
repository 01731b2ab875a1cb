package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fractionaljobsuk/skillgraph/internal/interact"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/render"
	"github.com/spf13/cobra"
)

var renderFlags struct {
	src     sourceFlags
	format  string
	out     string
	width   float64
	height  float64
	ticks   int
	title   string
	sel     string
	hover   string
	chrome  string
	timeout time.Duration
}

var renderCmd = &cobra.Command{
	Use:   "render <source>",
	Short: "Lay out a graph and write the final frame",
	Long: `Lay out a graph to completion and write the final frame.

Role taxonomies are built locally; jobs and user graphs are fetched from the
server. Formats: svg (default), html, echarts, png (needs Chrome) and json.`,
	Example: `  sg render roles/cfo -o cfo.svg
  sg render jobs --role cto -q kubernetes --format echarts -o jobs.html
  sg render user/42 --select skill-go --format png -o me.png
  sg render -f graph.json --format json`,
	GroupID: "graphs",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &renderFlags
		switch f.format {
		case "svg", "html", "echarts", "png", "json":
		default:
			return fmt.Errorf("unknown format %q (svg, html, echarts, png or json)", f.format)
		}
		if f.width <= 0 || f.height <= 0 {
			return fmt.Errorf("--width and --height must be positive")
		}

		ctx := cmd.Context()
		data, title, err := f.src.load(ctx, args)
		if err != nil {
			return err
		}
		if f.title != "" {
			title = f.title
		}

		p := layout.DefaultParams()
		if f.ticks > 0 {
			p.MaxTicks = f.ticks
		}
		view := interact.View{Selected: f.sel, Hovered: f.hover}
		opts := render.Options{Width: f.width, Height: f.height, Title: title}
		sc, res, err := render.Static(ctx, data, p, view, opts)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		switch f.format {
		case "svg":
			err = render.WriteSVG(&buf, sc)
		case "html":
			err = render.WriteHTML(&buf, sc, render.LiveOptions{})
		case "echarts":
			err = render.WriteECharts(&buf, sc)
		case "json":
			err = printJSON(&buf, map[string]any{"scene": sc, "ticks": res.Ticks, "settled": res.Settled})
		case "png":
			var png []byte
			png, err = render.Rasterizer{ExecPath: f.chrome, Timeout: f.timeout}.PNG(ctx, sc)
			buf.Write(png)
		}
		if err != nil {
			return fmt.Errorf("rendering %s: %w", f.format, err)
		}
		if err := writeOutput(f.out, buf.Bytes(), f.format == "png"); err != nil {
			return err
		}
		if f.out != "" && f.out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d nodes, %d ticks)\n", f.out, len(sc.Nodes), res.Ticks)
		}
		return nil
	},
}

func init() {
	f := &renderFlags
	f.src.bind(renderCmd, true)
	renderCmd.Flags().StringVar(&f.format, "format", "svg", "output format: svg, html, echarts, png or json")
	renderCmd.Flags().StringVarP(&f.out, "out", "o", "", "output file (default stdout)")
	renderCmd.Flags().Float64Var(&f.width, "width", 600, "canvas width")
	renderCmd.Flags().Float64Var(&f.height, "height", 400, "canvas height")
	renderCmd.Flags().IntVar(&f.ticks, "ticks", 0, "tick budget (default 100)")
	renderCmd.Flags().StringVar(&f.title, "title", "", "title above the graph")
	renderCmd.Flags().StringVar(&f.sel, "select", "", "node id to select, showing its detail panel")
	renderCmd.Flags().StringVar(&f.hover, "hover", "", "node id to render as hovered")
	renderCmd.Flags().StringVar(&f.chrome, "chrome", "", "Chrome binary for png output")
	renderCmd.Flags().DurationVar(&f.timeout, "png-timeout", 30*time.Second, "png rasterization timeout")
}
