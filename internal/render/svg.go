package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo/float"
)

const (
	fontFamily   = "font-family:system-ui,-apple-system,sans-serif"
	legendLine   = 16.0
	panelWidth   = 200.0
	panelLine    = 16.0
	panelPadding = 10.0
)

// errWriter keeps the first write error so drawing code can ignore errors
// until the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// attr formats an escaped XML attribute for the svgo style arguments.
func attr(name, value string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(`="`)
	_ = xml.EscapeText(&b, []byte(value))
	b.WriteByte('"')
	return b.String()
}

// WriteSVG encodes sc as a standalone SVG document. Node groups carry a
// data-node-id attribute for hit testing in the live view.
func WriteSVG(w io.Writer, sc *Scene) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startview(sc.Width, sc.Height, 0, 0, sc.Width, sc.Height)
	if sc.Title != "" {
		canvas.Title(sc.Title)
	}
	canvas.Rect(0, 0, sc.Width, sc.Height,
		fmt.Sprintf("fill:%s;stroke:%s", backgroundColor, borderColor))

	if sc.Empty {
		canvas.Text(sc.Width/2, sc.Height/2, "No graph data available",
			fmt.Sprintf("fill:%s;font-size:14px;text-anchor:middle;%s", mutedColor, fontFamily),
			attr("class", "empty"))
		canvas.End()
		return ew.err
	}

	canvas.Group(attr("class", "edges"))
	for _, e := range sc.Edges {
		canvas.Line(e.X1, e.Y1, e.X2, e.Y2,
			fmt.Sprintf("stroke:%s;stroke-width:%g;opacity:%g", e.Stroke, e.Width, e.Opacity),
			attr("data-source", e.Source), attr("data-target", e.Target))
		if e.ShowLabel {
			canvas.Text(e.LabelX, e.LabelY, e.Label,
				fmt.Sprintf("fill:%s;font-size:10px;text-anchor:middle;%s", edgeLabelColor, fontFamily),
				attr("class", "edge-label"))
		}
	}
	canvas.Gend()

	canvas.Group(attr("class", "nodes"))
	for _, n := range sc.Nodes {
		canvas.Group("cursor:pointer",
			attr("class", "node"),
			attr("data-node-id", n.ID),
			attr("transform", fmt.Sprintf("translate(%.2f,%.2f)", n.X, n.Y)))
		if n.Ring != nil {
			canvas.Circle(0, 0, n.Ring.Radius,
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g;opacity:%g", n.Color, n.Ring.Width, n.Ring.Opacity),
				attr("class", "ring"))
		}
		canvas.Circle(0, 0, n.Radius, fmt.Sprintf("fill:%s;opacity:%g", n.Color, n.Opacity))
		canvas.Text(0, glyphOffset, n.Glyph,
			"fill:#FFFFFF;font-size:12px;text-anchor:middle;pointer-events:none")
		canvas.Text(0, n.LabelY, n.Label,
			fmt.Sprintf("fill:%s;font-size:11px;font-weight:500;text-anchor:middle;pointer-events:none;opacity:%g;%s",
				labelColor, n.LabelOpacity, fontFamily),
			attr("class", "label"))
		canvas.Gend()
	}
	canvas.Gend()

	writeLegend(canvas, sc.Legend)
	if sc.Panel != nil {
		writePanel(canvas, sc)
	}
	canvas.End()
	return ew.err
}

func writeLegend(canvas *svg.SVG, entries []LegendEntry) {
	h := float64(len(entries))*legendLine + 8
	canvas.Group(attr("class", "legend"))
	canvas.Roundrect(8, 8, 110, h, 6, 6,
		fmt.Sprintf("fill:#FFFFFF;fill-opacity:0.9;stroke:%s", borderColor))
	for i, e := range entries {
		y := 8 + 4 + float64(i)*legendLine + legendLine/2
		canvas.Circle(20, y, 5, "fill:"+e.Color)
		canvas.Text(32, y+4, e.Name, fmt.Sprintf("fill:%s;font-size:11px;%s", labelColor, fontFamily))
	}
	canvas.Gend()
}

func writePanel(canvas *svg.SVG, sc *Scene) {
	p := sc.Panel
	lines := 3 + len(p.Data)
	h := float64(lines)*panelLine + 2*panelPadding
	x := sc.Width - panelWidth - 16
	y := sc.Height - h - 16

	canvas.Group(attr("class", "panel"), attr("data-panel-id", p.ID))
	canvas.Roundrect(x, y, panelWidth, h, 8, 8,
		fmt.Sprintf("fill:#FFFFFF;stroke:%s", borderColor))
	ty := y + panelPadding + panelLine - 4
	canvas.Circle(x+panelPadding+6, ty-4, 6, "fill:"+p.Color)
	canvas.Text(x+panelPadding+18, ty, p.Label,
		fmt.Sprintf("fill:#111827;font-size:12px;font-weight:600;%s", fontFamily))
	text := fmt.Sprintf("fill:%s;font-size:11px;%s", mutedColor, fontFamily)
	ty += panelLine
	canvas.Text(x+panelPadding, ty, "Type: "+p.Type.String(), text)
	for _, d := range p.Data {
		ty += panelLine
		canvas.Text(x+panelPadding, ty, d.Key+": "+d.Value, text)
	}
	ty += panelLine
	canvas.Text(x+panelPadding, ty, fmt.Sprintf("%d connections", p.Connections),
		fmt.Sprintf("fill:#9CA3AF;font-size:10px;%s", fontFamily))
	canvas.Gend()
}

// SVGString renders sc to a string. Used for live frames.
func SVGString(sc *Scene) (string, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
