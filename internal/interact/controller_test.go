package interact

import (
	"testing"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

func testGraph(t *testing.T) *model.Graph {
	t.Helper()
	g, _ := model.Normalize(&model.GraphData{
		Nodes: []model.Node{
			{ID: "u", Type: model.NodeUser, Label: "You"},
			{ID: "s1", Type: model.NodeSkill, Label: "Financial Modelling", Data: map[string]any{"category": "finance"}},
			{ID: "s2", Type: model.NodeSkill, Label: "Go"},
			{ID: "c1", Type: model.NodeCompany, Label: "Acme"},
		},
		Edges: []model.Edge{
			{Source: "u", Target: "s1", Type: "has_skill"},
			{Source: "u", Target: "c1", Type: "worked_at"},
			{Source: "s2", Target: "c1", Type: "used_at"},
		},
	})
	return g
}

func TestClickToggles(t *testing.T) {
	g := testGraph(t)
	var clicked []model.Node
	c := NewController(g, func(n model.Node) { clicked = append(clicked, n) })

	if !c.Click("s1") {
		t.Fatal("Click(s1) = false")
	}
	if got := c.View().Selected; got != "s1" {
		t.Fatalf("Selected = %q, want s1", got)
	}
	c.Click("s1")
	if got := c.View().Selected; got != "" {
		t.Fatalf("Selected after second click = %q, want empty", got)
	}
	c.Click("s2")
	c.Click("u")
	if got := c.View().Selected; got != "u" {
		t.Fatalf("Selected = %q, want u", got)
	}

	if len(clicked) != 4 {
		t.Fatalf("callback called %d times, want 4", len(clicked))
	}
	n := clicked[0]
	if n.ID != "s1" || n.Type != model.NodeSkill || n.Label != "Financial Modelling" || n.Data["category"] != "finance" {
		t.Errorf("callback got %+v, want the full s1 node", n)
	}
}

func TestClickUnknown(t *testing.T) {
	called := false
	c := NewController(testGraph(t), func(model.Node) { called = true })
	if c.Click("nope") {
		t.Error("Click(nope) = true")
	}
	if called || c.View().Selected != "" {
		t.Error("unknown click changed state")
	}
}

func TestHoverUnhover(t *testing.T) {
	c := NewController(testGraph(t), nil)
	c.Hover("s1")
	if c.Unhover("s2") {
		t.Error("Unhover(s2) cleared a hover on s1")
	}
	if c.View().Hovered != "s1" {
		t.Fatalf("Hovered = %q", c.View().Hovered)
	}
	if !c.Unhover("s1") || c.View().Hovered != "" {
		t.Error("Unhover(s1) did not clear")
	}
	if c.Hover("missing") {
		t.Error("Hover(missing) = true")
	}
}

func TestRetain(t *testing.T) {
	c := NewController(testGraph(t), nil)
	c.Click("s2")
	c.Hover("u")

	g2, _ := model.Normalize(&model.GraphData{Nodes: []model.Node{{ID: "u", Type: model.NodeUser}}})
	c.Retain(g2)
	v := c.View()
	if v.Selected != "" || v.Hovered != "u" {
		t.Errorf("View = %+v, want hover kept and selection dropped", v)
	}
	if c.Graph() != g2 {
		t.Error("Graph not switched")
	}
}

func TestHighlight(t *testing.T) {
	g := testGraph(t)

	idle := NewHighlight(g, View{Selected: "s1"})
	if idle.Active || idle.Node("s2") != Normal || idle.Edge(0) != Normal {
		t.Error("selection alone should not dim anything")
	}

	h := NewHighlight(g, View{Hovered: "u"})
	if !h.Active {
		t.Fatal("Active = false")
	}
	nodes := map[string]Emphasis{"u": Highlighted, "s1": Highlighted, "c1": Highlighted, "s2": Dimmed}
	for id, want := range nodes {
		if got := h.Node(id); got != want {
			t.Errorf("Node(%s) = %v, want %v", id, got, want)
		}
	}
	edges := []Emphasis{Highlighted, Highlighted, Dimmed}
	for i, want := range edges {
		if got := h.Edge(i); got != want {
			t.Errorf("Edge(%d) = %v, want %v", i, got, want)
		}
	}

	stale := NewHighlight(g, View{Hovered: "gone"})
	if stale.Active {
		t.Error("hover on a missing node should not activate")
	}
}
