package tui

import (
	"testing"

	"ugdb/internal/layout"
	"ugdb/internal/termgrid"
)

func mustRegistry(t *testing.T, s string) *Registry {
	t.Helper()
	n, err := layout.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return NewRegistry(n)
}

func TestRegistry_TraversalOrder(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)|(1e-1t)")
	order := reg.Order()
	want := []Container{ContainerSrcView, ContainerConsole, ContainerExpressionTable, ContainerTerminal}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %v, want %v", i, order[i], want[i])
		}
	}
}

func TestNewFocusState_StartsOnFirstContainer(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)")
	fs := NewFocusState(reg)
	if fs.Mode != ModeNormal || fs.Active != ContainerSrcView {
		t.Fatalf("got mode=%v active=%v", fs.Mode, fs.Active)
	}
}

func TestSelectByKey_PicksContainerAndMode(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)|(1e-1t)")
	fs := NewFocusState(reg)
	fs.EnterContainerSelect()

	if !fs.SelectByKey('T') {
		t.Fatal("expected 'T' to select Terminal")
	}
	if fs.Active != ContainerTerminal || fs.Mode != ModeFocused {
		t.Fatalf("got active=%v mode=%v", fs.Active, fs.Mode)
	}
}

func TestSelectByKey_LowercaseTPicksNormalMode(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)|(1e-1t)")
	fs := NewFocusState(reg)
	fs.EnterContainerSelect()

	if !fs.SelectByKey('t') {
		t.Fatal("expected 't' to select Terminal")
	}
	if fs.Active != ContainerTerminal || fs.Mode != ModeNormal {
		t.Fatalf("got active=%v mode=%v", fs.Active, fs.Mode)
	}
}

func TestSelectByKey_UnknownKeyReturnsFalse(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)")
	fs := NewFocusState(reg)
	fs.EnterContainerSelect()
	if fs.SelectByKey('x') {
		t.Fatal("expected unknown key to return false")
	}
}

func TestSelectByKey_ContainerAbsentFromLayoutReturnsFalse(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)") // no Terminal, no ExpressionTable
	fs := NewFocusState(reg)
	fs.EnterContainerSelect()
	if fs.SelectByKey('T') {
		t.Fatal("expected selecting an absent container to return false")
	}
	if fs.SelectByKey('e') {
		t.Fatal("expected selecting an absent container to return false")
	}
}

func TestMoveSelection_WrapsThroughOrder(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)|(1e-1t)")
	fs := NewFocusState(reg)
	fs.EnterContainerSelect()

	fs.MoveSelection(true) // s -> c
	if fs.Active != ContainerConsole {
		t.Fatalf("got %v, want Console", fs.Active)
	}
	fs.MoveSelection(true) // c -> e
	fs.MoveSelection(true) // e -> t
	if fs.Active != ContainerTerminal {
		t.Fatalf("got %v, want Terminal", fs.Active)
	}
	fs.MoveSelection(true) // t -> s (wraps)
	if fs.Active != ContainerSrcView {
		t.Fatalf("got %v, want SrcView after wrap", fs.Active)
	}
	fs.MoveSelection(false) // back to t
	if fs.Active != ContainerTerminal {
		t.Fatalf("got %v, want Terminal after wrapping back", fs.Active)
	}
}

func TestConfirmSelection_ReturnsToNormal(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)")
	fs := NewFocusState(reg)
	fs.EnterContainerSelect()
	fs.MoveSelection(true)
	fs.ConfirmSelection()
	if fs.Mode != ModeNormal {
		t.Fatalf("mode = %v, want Normal", fs.Mode)
	}
}

func TestLeaveFocused_OnlyAppliesInFocusedMode(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)|(1e-1t)")
	fs := NewFocusState(reg)
	fs.LeaveFocused() // no-op, not in Focused
	if fs.Mode != ModeNormal {
		t.Fatalf("mode = %v, want unchanged Normal", fs.Mode)
	}
	fs.EnterFocused()
	fs.LeaveFocused()
	if fs.Mode != ModeContainerSelect {
		t.Fatalf("mode = %v, want ContainerSelect", fs.Mode)
	}
}

// TestHandlePageDown_S5 is spec.md §8's exact scenario: PageDown in the
// Terminal container scrolls one line forward in Focused mode; in Normal
// mode with scrollback exhausted it is consumed as a no-op.
func TestHandlePageDown_S5(t *testing.T) {
	reg := mustRegistry(t, "(1s-1c)|(1e-1t)")
	fs := NewFocusState(reg)
	grid := termgrid.NewGrid(24, 80)
	grid.Freeze(5)

	fs.EnterFocused()
	res := HandlePageDown(fs, grid)
	if !res.Consumed || !res.Redraw {
		t.Fatalf("got %+v, want consumed+redraw", res)
	}
	if grid.ScrollOffset != 4 {
		t.Fatalf("ScrollOffset = %d, want 4", grid.ScrollOffset)
	}

	fs.Mode = ModeNormal
	grid.Follow() // exhaust scrollback (offset back to 0)
	res = HandlePageDown(fs, grid)
	if !res.Consumed {
		t.Fatal("expected Normal-mode PageDown to be consumed, not fall through")
	}
	if grid.ScrollOffset != 0 {
		t.Fatalf("ScrollOffset = %d, want unchanged 0 (exhausted)", grid.ScrollOffset)
	}
}
