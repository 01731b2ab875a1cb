package render

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/fractionaljobsuk/skillgraph/internal/interact"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// Options controls the drawing area and the optional heading.
type Options struct {
	Width  float64
	Height float64
	Title  string
}

// Ring is an outline drawn around a selected or hovered node.
type Ring struct {
	Radius  float64 `json:"radius"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// NodeShape is one node ready to draw.
type NodeShape struct {
	ID           string            `json:"id"`
	Type         model.NodeType    `json:"type"`
	X            float64           `json:"x"`
	Y            float64           `json:"y"`
	Radius       float64           `json:"radius"`
	Color        string            `json:"color"`
	Glyph        string            `json:"glyph"`
	Label        string            `json:"label"`      // truncated for display
	FullLabel    string            `json:"full_label"` // as supplied
	LabelY       float64           `json:"label_y"`    // offset below the center
	Opacity      float64           `json:"opacity"`
	LabelOpacity float64           `json:"label_opacity"`
	Emphasis     interact.Emphasis `json:"-"`
	Selected     bool              `json:"selected,omitempty"`
	Hovered      bool              `json:"hovered,omitempty"`
	Ring         *Ring             `json:"ring,omitempty"`
}

// EdgeShape is one edge ready to draw.
type EdgeShape struct {
	Source    string            `json:"source"`
	Target    string            `json:"target"`
	X1        float64           `json:"x1"`
	Y1        float64           `json:"y1"`
	X2        float64           `json:"x2"`
	Y2        float64           `json:"y2"`
	Stroke    string            `json:"stroke"`
	Width     float64           `json:"width"`
	Opacity   float64           `json:"opacity"`
	Label     string            `json:"label,omitempty"`
	ShowLabel bool              `json:"show_label,omitempty"`
	LabelX    float64           `json:"label_x"`
	LabelY    float64           `json:"label_y"`
	Emphasis  interact.Emphasis `json:"-"`
}

// LegendEntry maps a node type to its color.
type LegendEntry struct {
	Type  model.NodeType `json:"type"`
	Name  string         `json:"name"`
	Color string         `json:"color"`
	Glyph string         `json:"glyph"`
}

// DataEntry is one key/value line of the detail panel.
type DataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Panel describes the selected node.
type Panel struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Type        model.NodeType `json:"type"`
	Color       string         `json:"color"`
	Data        []DataEntry    `json:"data,omitempty"`
	Connections int            `json:"connections"`
}

// Scene is everything an encoder needs to draw one frame. Edges come before
// nodes so nodes paint on top.
type Scene struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Title  string        `json:"title,omitempty"`
	Empty  bool          `json:"empty,omitempty"`
	Edges  []EdgeShape   `json:"edges"`
	Nodes  []NodeShape   `json:"nodes"`
	Legend []LegendEntry `json:"legend"`
	Panel  *Panel        `json:"panel,omitempty"`
}

// Render builds the Scene for g at the positions in st. Nodes without a
// position in st are placed at the canvas center.
func Render(g *model.Graph, st layout.State, v interact.View, o Options) *Scene {
	sc := &Scene{
		Width:  o.Width,
		Height: o.Height,
		Title:  o.Title,
		Legend: legend(),
	}
	if g == nil || g.Empty() {
		sc.Empty = true
		return sc
	}

	center := layout.Canvas{Width: o.Width, Height: o.Height}.Center()
	pos := func(i int) r2.Vec {
		if i < len(st.Pos) {
			return st.Pos[i]
		}
		return center
	}
	hl := interact.NewHighlight(g, v)

	for i, e := range g.Edges() {
		si, _ := g.Index(e.Source)
		ti, _ := g.Index(e.Target)
		a, b := pos(si), pos(ti)
		es := EdgeShape{
			Source:   e.Source,
			Target:   e.Target,
			X1:       a.X,
			Y1:       a.Y,
			X2:       b.X,
			Y2:       b.Y,
			Stroke:   edgeColor,
			Width:    1,
			Opacity:  0.6,
			Label:    e.Label,
			LabelX:   (a.X + b.X) / 2,
			LabelY:   (a.Y+b.Y)/2 + edgeLabelDY,
			Emphasis: hl.Edge(i),
		}
		switch es.Emphasis {
		case interact.Highlighted:
			es.Stroke = edgeHighlightColor
			es.Width = 2
			es.Opacity = 0.9
			es.ShowLabel = e.Label != ""
		case interact.Dimmed:
			es.Opacity = 0.2
		}
		sc.Edges = append(sc.Edges, es)
	}

	for i, n := range g.Nodes() {
		sty := StyleOf(n.Type)
		p := pos(i)
		ns := NodeShape{
			ID:           n.ID,
			Type:         n.Type,
			X:            p.X,
			Y:            p.Y,
			Radius:       sty.Radius,
			Color:        sty.Color,
			Glyph:        sty.Glyph,
			Label:        Truncate(n.Label, maxLabelRunes),
			FullLabel:    n.Label,
			LabelY:       sty.Radius + labelOffset,
			Opacity:      1,
			LabelOpacity: 1,
			Emphasis:     hl.Node(n.ID),
			Selected:     v.Selected == n.ID,
			Hovered:      v.Hovered == n.ID,
		}
		if ns.Emphasis == interact.Dimmed {
			ns.Opacity = 0.2
			ns.LabelOpacity = 0.3
		}
		switch {
		case ns.Selected:
			ns.Ring = &Ring{Radius: sty.Radius + 6, Width: 3, Opacity: 0.5}
		case ns.Hovered:
			ns.Ring = &Ring{Radius: sty.Radius + 4, Width: 2, Opacity: 0.3}
		}
		sc.Nodes = append(sc.Nodes, ns)
	}

	if n, ok := g.Node(v.Selected); ok {
		sc.Panel = panel(g, n)
	}
	return sc
}

func legend() []LegendEntry {
	out := make([]LegendEntry, 0, model.NumNodeTypes)
	for _, t := range model.NodeTypes() {
		st := StyleOf(t)
		out = append(out, LegendEntry{Type: t, Name: st.Legend, Color: st.Color, Glyph: st.Glyph})
	}
	return out
}

func panel(g *model.Graph, n model.Node) *Panel {
	p := &Panel{
		ID:          n.ID,
		Label:       n.Label,
		Type:        n.Type,
		Color:       StyleOf(n.Type).Color,
		Connections: g.Degree(n.ID),
	}
	keys := make([]string, 0, len(n.Data))
	for k := range n.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Data = append(p.Data, DataEntry{Key: k, Value: fmt.Sprint(n.Data[k])})
	}
	return p
}

// Truncate shortens s to limit runes, replacing the tail with "...".
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	keep := limit - 2
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + "..."
}
