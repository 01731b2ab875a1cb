package interact

import "github.com/fractionaljobsuk/skillgraph/internal/model"

// Emphasis is how strongly an element is drawn.
type Emphasis int

const (
	Normal Emphasis = iota
	Highlighted
	Dimmed
)

func (e Emphasis) String() string {
	switch e {
	case Highlighted:
		return "highlighted"
	case Dimmed:
		return "dimmed"
	default:
		return "normal"
	}
}

// Highlight is the emphasis of every node and edge for one View.
type Highlight struct {
	Active bool // a node is hovered
	nodes  map[string]bool
	edges  map[int]bool
}

// NewHighlight derives emphasis from the hovered node of v. Without a hover
// (or with a hover id missing from g) everything is Normal.
func NewHighlight(g *model.Graph, v View) Highlight {
	if v.Hovered == "" {
		return Highlight{}
	}
	if _, ok := g.Index(v.Hovered); !ok {
		return Highlight{}
	}
	h := Highlight{
		Active: true,
		nodes:  map[string]bool{v.Hovered: true},
		edges:  make(map[int]bool),
	}
	for _, id := range g.Neighbors(v.Hovered) {
		h.nodes[id] = true
	}
	for _, ei := range g.IncidentEdges(v.Hovered) {
		h.edges[ei] = true
	}
	return h
}

// Node returns the emphasis of the node with the given id.
func (h Highlight) Node(id string) Emphasis {
	if !h.Active {
		return Normal
	}
	if h.nodes[id] {
		return Highlighted
	}
	return Dimmed
}

// Edge returns the emphasis of the edge at index i of the graph's Edges.
func (h Highlight) Edge(i int) Emphasis {
	if !h.Active {
		return Normal
	}
	if h.edges[i] {
		return Highlighted
	}
	return Dimmed
}
