// Package tui implements the TUI composition core (spec.md §4.6, component
// C6b): the container registry, the focus state machine, and the
// coalescing render loop driven by a single typed event channel. Grounded
// on the teacher's internal/overlay.Overlay (InputMode enum + mode-
// dispatched byte handlers, SIGWINCH/raw-mode/render-on-event loop in
// overlay.go) and internal/session/client (cursor.go, scroll_test.go,
// priority_test.go) for cursor/scroll/priority-ordering conventions,
// generalized from a single-pane agent overlay to four fixed containers
// laid out by internal/layout.
package tui

import "ugdb/internal/layout"

// Container identifies one of the four fixed panes spec.md §4.6 names.
// Values line up with layout.Leaf so a parsed layout tree's leaves map
// directly onto containers.
type Container byte

const (
	ContainerConsole         Container = Container(layout.LeafConsole)
	ContainerTerminal        Container = Container(layout.LeafTerminal)
	ContainerSrcView         Container = Container(layout.LeafSrcView)
	ContainerExpressionTable Container = Container(layout.LeafExpressionTable)
)

// String names a container for logging/debugging.
func (c Container) String() string {
	switch c {
	case ContainerConsole:
		return "console"
	case ContainerTerminal:
		return "terminal"
	case ContainerSrcView:
		return "srcview"
	case ContainerExpressionTable:
		return "expression-table"
	default:
		return "unknown"
	}
}

// Registry is the ordered set of containers present in the current layout
// tree, in left-to-right, top-to-bottom traversal order — the order
// ContainerSelect mode's hjkl/arrow navigation walks.
type Registry struct {
	order []Container
	rects map[Container]layout.Rect
}

// NewRegistry walks a parsed layout tree's leaves in traversal order.
func NewRegistry(tree layout.Node) *Registry {
	r := &Registry{rects: map[Container]layout.Rect{}}
	collectLeaves(tree, &r.order)
	return r
}

func collectLeaves(n layout.Node, out *[]Container) {
	if n.IsLeaf {
		*out = append(*out, Container(n.Leaf))
		return
	}
	for _, c := range n.Children {
		collectLeaves(c, out)
	}
}

// SetRects records each container's current on-screen rectangle, computed
// by layout.Compute against the active window size.
func (r *Registry) SetRects(rects map[Container]layout.Rect) {
	r.rects = rects
}

// Rect returns a container's last-computed rectangle.
func (r *Registry) Rect(c Container) (layout.Rect, bool) {
	rect, ok := r.rects[c]
	return rect, ok
}

// Order returns the containers in traversal order.
func (r *Registry) Order() []Container {
	return append([]Container(nil), r.order...)
}

// IndexOf returns c's position in traversal order, or -1 if absent (the
// layout string omitted it — spec.md §4.6 still requires a Console leaf,
// but e.g. a layout without Terminal is otherwise legal).
func (r *Registry) IndexOf(c Container) int {
	for i, v := range r.order {
		if v == c {
			return i
		}
	}
	return -1
}

// Contains reports whether c is present in this layout.
func (r *Registry) Contains(c Container) bool {
	return r.IndexOf(c) >= 0
}
