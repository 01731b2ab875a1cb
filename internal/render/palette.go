// Package render turns a laid out graph plus interaction state into drawing
// primitives, and encodes those primitives as SVG, HTML, ECharts or PNG.
package render

import "github.com/fractionaljobsuk/skillgraph/internal/model"

// Style is the fixed appearance of one node type.
type Style struct {
	Color  string
	Radius float64
	Glyph  string
	Legend string
}

var styles = [model.NumNodeTypes + 1]Style{
	{},
	model.NodeUser:       {Color: "#8B5CF6", Radius: 30, Glyph: "👤", Legend: "You"},
	model.NodeSkill:      {Color: "#3B82F6", Radius: 18, Glyph: "🎯", Legend: "Skills"},
	model.NodeJob:        {Color: "#10B981", Radius: 22, Glyph: "💼", Legend: "Jobs"},
	model.NodeCompany:    {Color: "#F59E0B", Radius: 20, Glyph: "🏢", Legend: "Companies"},
	model.NodePreference: {Color: "#EC4899", Radius: 16, Glyph: "⚙️", Legend: "Preferences"},
	model.NodeFact:       {Color: "#6366F1", Radius: 16, Glyph: "•", Legend: "Facts"},
}

// StyleOf returns the appearance of t. Invalid types draw as facts.
func StyleOf(t model.NodeType) Style {
	if !t.IsValid() {
		return styles[model.NodeFact]
	}
	return styles[t]
}

const (
	edgeColor          = "#CBD5E1"
	edgeHighlightColor = "#8B5CF6"
	labelColor         = "#374151"
	edgeLabelColor     = "#6D28D9"
	backgroundColor    = "#F9FAFB"
	borderColor        = "#E5E7EB"
	mutedColor         = "#6B7280"

	maxLabelRunes = 15
	labelOffset   = 14
	glyphOffset   = 4
	edgeLabelDY   = -5
)
