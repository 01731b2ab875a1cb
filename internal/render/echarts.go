package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// EChartsGraph builds a go-echarts graph for sc. The layout is fixed to the
// scene positions; ECharts only draws it.
func EChartsGraph(sc *Scene) *charts.Graph {
	title := sc.Title
	if title == "" {
		title = "Knowledge graph"
	}
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     fmt.Sprintf("%gpx", sc.Width),
			Height:    fmt.Sprintf("%gpx", sc.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: sc.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	if sc.Empty {
		graph.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
			Title:    sc.Title,
			Subtitle: "No graph data available",
		}))
	}

	categories := make([]*opts.GraphCategory, 0, len(sc.Legend))
	for _, e := range sc.Legend {
		categories = append(categories, &opts.GraphCategory{
			Name:      e.Name,
			ItemStyle: &opts.ItemStyle{Color: e.Color},
		})
	}

	graph.AddSeries("graph", echartsNodes(sc), echartsLinks(sc),
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:     "none",
			Roam:       opts.Bool(true),
			Draggable:  opts.Bool(false),
			Categories: categories,
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    labelColor,
			Position: "bottom",
		}),
	)
	return graph
}

// echartsNodes names nodes by label. ECharts keys nodes by name, so a label
// shared by several nodes gets the node id appended.
func echartsNodes(sc *Scene) []opts.GraphNode {
	seen := make(map[string]int, len(sc.Nodes))
	for _, n := range sc.Nodes {
		seen[n.Label]++
	}
	nodes := make([]opts.GraphNode, 0, len(sc.Nodes))
	for _, n := range sc.Nodes {
		name := n.Label
		if seen[name] > 1 || name == "" {
			name = fmt.Sprintf("%s (%s)", n.Label, n.ID)
		}
		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			X:          float32(n.X),
			Y:          float32(n.Y),
			Category:   int(n.Type) - 1,
			SymbolSize: n.Radius * 2,
			ItemStyle: &opts.ItemStyle{
				Color:   n.Color,
				Opacity: opts.Float(float32(n.Opacity)),
			},
		})
	}
	return nodes
}

func echartsLinks(sc *Scene) []opts.GraphLink {
	index := make(map[string]int, len(sc.Nodes))
	for i, n := range sc.Nodes {
		index[n.ID] = i
	}
	links := make([]opts.GraphLink, 0, len(sc.Edges))
	for _, e := range sc.Edges {
		link := opts.GraphLink{
			Source: index[e.Source],
			Target: index[e.Target],
			LineStyle: &opts.LineStyle{
				Color:   e.Stroke,
				Width:   float32(e.Width),
				Opacity: opts.Float(float32(e.Opacity)),
			},
		}
		if e.Label != "" {
			link.Label = &opts.EdgeLabel{Show: opts.Bool(e.ShowLabel), Formatter: e.Label}
		}
		links = append(links, link)
	}
	return links
}

// WriteECharts writes a standalone go-echarts page for sc.
func WriteECharts(w io.Writer, sc *Scene) error {
	page := components.NewPage()
	page.AddCharts(EChartsGraph(sc))
	return page.Render(w)
}
