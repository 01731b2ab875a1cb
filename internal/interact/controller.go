// Package interact tracks hover and selection for a graph view. It only
// affects how a graph is drawn; it never touches the layout.
package interact

import (
	"sync"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// View is an immutable snapshot of the interaction state.
type View struct {
	Selected string `json:"selected,omitempty"`
	Hovered  string `json:"hovered,omitempty"`
}

// Controller holds the selected and hovered node ids of one view.
// It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	g        *model.Graph
	selected string
	hovered  string
	onClick  func(model.Node)
}

// NewController returns a controller for g. onClick may be nil.
func NewController(g *model.Graph, onClick func(model.Node)) *Controller {
	return &Controller{g: g, onClick: onClick}
}

// Hover marks id as hovered. Unknown ids are ignored.
func (c *Controller) Hover(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.g.Index(id); !ok {
		return false
	}
	c.hovered = id
	return true
}

// Unhover clears the hover state if id is the hovered node.
func (c *Controller) Unhover(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hovered == "" || c.hovered != id {
		return false
	}
	c.hovered = ""
	return true
}

// Click toggles the selection of id and reports the full node to the click
// callback. It returns false for unknown ids.
func (c *Controller) Click(id string) bool {
	c.mu.Lock()
	node, ok := c.g.Node(id)
	if !ok {
		c.mu.Unlock()
		return false
	}
	if c.selected == id {
		c.selected = ""
	} else {
		c.selected = id
	}
	cb := c.onClick
	c.mu.Unlock()

	// The callback runs outside the lock so it may read View.
	if cb != nil {
		cb(node)
	}
	return true
}

// Retain switches the controller to g, dropping ids that g no longer has.
func (c *Controller) Retain(g *model.Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.g = g
	if _, ok := g.Index(c.selected); !ok {
		c.selected = ""
	}
	if _, ok := g.Index(c.hovered); !ok {
		c.hovered = ""
	}
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{Selected: c.selected, Hovered: c.hovered}
}

// Graph returns the graph the controller currently tracks.
func (c *Controller) Graph() *model.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g
}
