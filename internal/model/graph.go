package model

import (
	"log/slog"
	"math"
)

// Node is a single vertex of a knowledge graph.
type Node struct {
	ID    string         `json:"id"`
	Type  NodeType       `json:"type"`
	Label string         `json:"label"`
	Data  map[string]any `json:"data,omitempty"` // scalar values shown in the detail panel
}

// Edge connects two nodes by id.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   string   `json:"type"`
	Weight *float64 `json:"weight,omitempty"` // nil means 1
	Label  string   `json:"label,omitempty"`
}

// EffectiveWeight returns the spring multiplier for the edge. Missing,
// negative and non-finite weights count as 1.
func (e Edge) EffectiveWeight() float64 {
	if e.Weight == nil {
		return 1
	}
	w := *e.Weight
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 1
	}
	return w
}

// Weight returns a pointer to w, for building edges with an explicit weight.
func Weight(w float64) *float64 {
	return &w
}

// GraphData is the provider-facing input: a list of nodes and edges.
// It is treated as immutable once handed to Normalize.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Graph is the normalized working set derived from a GraphData: node ids are
// unique and every edge references existing nodes.
type Graph struct {
	src   *GraphData
	nodes []Node
	edges []Edge
	index map[string]int
	adj   [][]int // node index -> incident edge indices
}

// Source returns the GraphData the graph was built from. A different pointer
// means a different graph identity.
func (g *Graph) Source() *GraphData { return g.src }

// Nodes returns the normalized nodes. Callers must not modify the slice.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the normalized edges. Callers must not modify the slice.
func (g *Graph) Edges() []Edge { return g.edges }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool { return len(g.nodes) == 0 }

// Index returns the position of id in Nodes.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Degree counts edges whose source or target is id.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.adj[i])
}

// IncidentEdges returns the indices into Edges of every edge touching id.
func (g *Graph) IncidentEdges(id string) []int {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.adj[i]
}

// Neighbors returns the ids directly connected to id, excluding id itself.
func (g *Graph) Neighbors(id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ei := range g.IncidentEdges(id) {
		e := g.edges[ei]
		other := e.Target
		if other == id {
			other = e.Source
		}
		if other == id || seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, other)
	}
	return out
}

// IssueKind classifies a normalization finding.
type IssueKind string

const (
	IssueDuplicateNode IssueKind = "duplicate_node"
	IssueEmptyID       IssueKind = "empty_id"
	IssueDanglingEdge  IssueKind = "dangling_edge"
)

// Issue records an element dropped during normalization.
type Issue struct {
	Kind    IssueKind
	ID      string // node id, or "source->target" for edges
	Message string
}

// Normalize builds a Graph from data. Duplicate or empty node ids are dropped
// (first occurrence wins) and edges referencing unknown nodes are skipped.
// data itself is never modified.
func Normalize(data *GraphData) (*Graph, []Issue) {
	g := &Graph{src: data, index: make(map[string]int)}
	if data == nil {
		return g, nil
	}

	var issues []Issue
	for _, n := range data.Nodes {
		if n.ID == "" {
			issues = append(issues, Issue{Kind: IssueEmptyID, Message: "node has no id"})
			continue
		}
		if _, dup := g.index[n.ID]; dup {
			issues = append(issues, Issue{Kind: IssueDuplicateNode, ID: n.ID, Message: "duplicate node id"})
			continue
		}
		g.index[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}

	g.adj = make([][]int, len(g.nodes))
	for _, e := range data.Edges {
		si, okS := g.index[e.Source]
		ti, okT := g.index[e.Target]
		if !okS || !okT {
			issues = append(issues, Issue{
				Kind:    IssueDanglingEdge,
				ID:      e.Source + "->" + e.Target,
				Message: "edge references unknown node",
			})
			continue
		}
		ei := len(g.edges)
		g.edges = append(g.edges, e)
		g.adj[si] = append(g.adj[si], ei)
		if ti != si {
			g.adj[ti] = append(g.adj[ti], ei)
		}
	}
	return g, issues
}

// LogIssues reports normalization findings. Duplicate and empty ids are
// warnings; dangling edges are expected from providers and logged at debug.
func LogIssues(logger *slog.Logger, issues []Issue) {
	for _, is := range issues {
		if is.Kind == IssueDanglingEdge {
			logger.Debug("graph: dropped edge", "edge", is.ID, "reason", is.Message)
			continue
		}
		logger.Warn("graph: dropped node", "kind", string(is.Kind), "id", is.ID, "reason", is.Message)
	}
}
