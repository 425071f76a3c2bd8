// Package interact turns pointer events into changes on a layout session:
// hit testing, dragging, hover tooltips and exclusive selection.
//
// A Controller is driven from a single goroutine and re-renders synchronously
// after every event. It never touches the graph store.
package interact

import (
	"fmt"

	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/layout"
)

// Point is a pointer position in viewport coordinates.
type Point = layout.Position

// Tooltip is the hover label for a node.
type Tooltip struct {
	NodeID graph.NodeID `json:"node_id"`
	Text   string       `json:"text"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
}

// Detail is what the view surfaces for the selected node.
type Detail struct {
	Node  graph.Node  `json:"node"`
	Style graph.Style `json:"style"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
}

// Frame is an immutable snapshot handed to the renderer.
type Frame struct {
	Nodes     []layout.Node `json:"nodes"`
	Edges     []graph.Edge  `json:"edges"`
	State     layout.State  `json:"state"`
	Iteration int           `json:"iteration"`
	Selected  graph.NodeID  `json:"selected,omitempty"`
	Hovered   graph.NodeID  `json:"hovered,omitempty"`
	Dragging  bool          `json:"dragging"`
	Tooltip   *Tooltip      `json:"tooltip,omitempty"`
	Detail    *Detail       `json:"detail,omitempty"`
}

// Renderer draws frames.
type Renderer interface {
	Render(f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

// Render calls fn(f).
func (fn RendererFunc) Render(f Frame) { fn(f) }

type drag struct {
	node   *layout.Node
	offset Point
}

// Controller holds the interaction state for one session.
type Controller struct {
	session  *layout.Session
	renderer Renderer
	selected *layout.Node
	hovered  *layout.Node
	drag     *drag
}

// New creates a Controller over session. A nil renderer discards frames.
func New(session *layout.Session, renderer Renderer) *Controller {
	if renderer == nil {
		renderer = RendererFunc(func(Frame) {})
	}
	return &Controller{session: session, renderer: renderer}
}

// HitTest returns the first node, in iteration order, whose circle contains
// p. It returns nil when nothing is hit.
func (c *Controller) HitTest(p Point) *layout.Node {
	for i := 0; i < c.session.Len(); i++ {
		if n := c.session.NodeAt(i); n.Contains(p) {
			return n
		}
	}
	return nil
}

// PointerDown starts a drag on the node under p and selects it. A miss
// clears the selection. Any drag still in progress is released first.
// It returns the hit node, if any.
func (c *Controller) PointerDown(p Point) *layout.Node {
	c.endDrag()
	n := c.HitTest(p)
	if n == nil {
		c.selected = nil
		c.render()
		return nil
	}

	// Keep the grab point under the pointer instead of snapping the center.
	c.drag = &drag{node: n, offset: Point{X: p.X - n.X, Y: p.Y - n.Y}}
	n.VX, n.VY = 0, 0
	c.session.Pin(n.ID, true)
	c.selected = n
	c.render()
	return n
}

// PointerMove drags the held node to p, or updates hover state when no drag
// is in progress.
func (c *Controller) PointerMove(p Point) {
	if c.drag != nil {
		n := c.drag.node
		c.session.MoveNode(n.ID, p.X-c.drag.offset.X, p.Y-c.drag.offset.Y)
	} else {
		c.hovered = c.HitTest(p)
	}
	c.render()
}

// PointerUp ends a drag. The node keeps its position for this session only.
func (c *Controller) PointerUp() {
	c.endDrag()
	c.render()
}

// PointerLeave ends a drag and clears the hover tooltip.
func (c *Controller) PointerLeave() {
	c.endDrag()
	c.hovered = nil
	c.render()
}

func (c *Controller) endDrag() {
	if c.drag == nil {
		return
	}
	c.session.Pin(c.drag.node.ID, false)
	c.drag = nil
}

// Select makes id the only selected node. Unknown ids clear the selection
// and report false.
func (c *Controller) Select(id graph.NodeID) bool {
	c.selected = c.session.Node(id)
	c.render()
	return c.selected != nil
}

// Selected returns the selected node, or nil.
func (c *Controller) Selected() *layout.Node { return c.selected }

// Hovered returns the node under the pointer, or nil.
func (c *Controller) Hovered() *layout.Node { return c.hovered }

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.drag != nil }

// Tooltip returns the hover label, or nil when nothing is hovered.
func (c *Controller) Tooltip() *Tooltip {
	if c.hovered == nil {
		return nil
	}
	n := c.hovered
	return &Tooltip{
		NodeID: n.ID,
		Text:   fmt.Sprintf("%s (%s)", n.Title, n.Type),
		X:      n.X,
		Y:      n.Y - n.Radius,
	}
}

// Detail returns the panel contents for the selected node, or nil.
func (c *Controller) Detail() *Detail {
	if c.selected == nil {
		return nil
	}
	n := c.selected
	return &Detail{Node: n.Node, Style: n.Type.Style(), X: n.X, Y: n.Y}
}

// Frame snapshots the session and the interaction state.
func (c *Controller) Frame() Frame {
	f := Frame{
		Nodes:     c.session.Nodes(),
		Edges:     c.session.Edges(),
		State:     c.session.State(),
		Iteration: c.session.Iteration(),
		Dragging:  c.drag != nil,
		Tooltip:   c.Tooltip(),
		Detail:    c.Detail(),
	}
	if c.selected != nil {
		f.Selected = c.selected.ID
	}
	if c.hovered != nil {
		f.Hovered = c.hovered.ID
	}
	return f
}

// Redraw renders the current frame. Callers use it after advancing the
// simulation.
func (c *Controller) Redraw() { c.render() }

func (c *Controller) render() {
	c.renderer.Render(c.Frame())
}
