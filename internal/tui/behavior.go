package tui

import "ugdb/internal/termgrid"

// Result is what a behavior-chain key handler reports back to the event
// loop: whether the key was consumed, and whether a redraw is needed.
type Result struct {
	Consumed bool
	Redraw   bool
}

// Ok is a consumed, redraw-triggering result — the uniform "handled" result
// every behavior in this chain returns, whether or not it changed visible
// state (spec.md §8 S5: a no-op PageDown in Normal mode with exhausted
// scrollback still returns Ok, not a fallthrough).
var Ok = Result{Consumed: true, Redraw: true}

// Fallthrough signals the behavior chain should keep trying later
// handlers (or, if none remain, forward the key to the active container
// unhandled).
var Fallthrough = Result{Consumed: false}

// HandlePageDown implements spec.md §8 S5: in Focused mode on the Terminal
// container, PageDown scrolls the grid one line forward (toward the tail,
// i.e. reduces ScrollOffset); in Normal mode, PageDown is only meaningful
// once scrollback review is wired to a key of its own, so it is consumed
// as a no-op here rather than falling through to the container.
func HandlePageDown(fs *FocusState, grid *termgrid.Grid) Result {
	if fs.Mode == ModeFocused && fs.Active == ContainerTerminal {
		offset := grid.ScrollOffset
		if offset > 0 {
			grid.Freeze(offset - 1)
		}
		return Ok
	}
	// Normal mode: consumed as a no-op per S5, regardless of whether
	// scrollback remains (this behavior's job is only the Focused-mode
	// scroll; a dedicated scrollback-review behavior owns Normal-mode
	// PageDown once one is wired in front of this one in the chain).
	return Ok
}
