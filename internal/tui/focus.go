package tui

// Mode is one of the three input modes spec.md §4.6 defines.
type Mode int

const (
	// ModeNormal feeds keystrokes to the active container's behavior chain.
	ModeNormal Mode = iota
	// ModeFocused is Terminal-only: keystrokes pass through raw to the PTY,
	// except ESC which arms a grace-period timer.
	ModeFocused
	// ModeContainerSelect navigates the split tree and picks a container.
	ModeContainerSelect
)

// FocusState is the TUI's focus/mode state machine.
type FocusState struct {
	Mode     Mode
	Active   Container
	registry *Registry
}

// NewFocusState starts in Normal mode focused on the first container the
// registry's traversal order names.
func NewFocusState(reg *Registry) *FocusState {
	fs := &FocusState{Mode: ModeNormal, registry: reg}
	if order := reg.Order(); len(order) > 0 {
		fs.Active = order[0]
	}
	return fs
}

// EnterContainerSelect switches to ContainerSelect mode without changing
// the active container.
func (fs *FocusState) EnterContainerSelect() {
	fs.Mode = ModeContainerSelect
}

// SelectByKey handles a ContainerSelect-mode letter key: 'i' (Console), 'e'
// (ExpressionTable), 's' (SrcView), 't' (Terminal, Normal mode), 'T'
// (Terminal, Focused mode) — the letter-to-container mapping is silent in
// the distilled spec, resolved from the original implementation's input
// dispatch table. Returns false if the key selects nothing.
func (fs *FocusState) SelectByKey(r rune) bool {
	var target Container
	focused := false
	switch r {
	case 'i':
		target = ContainerConsole
	case 'e':
		target = ContainerExpressionTable
	case 's':
		target = ContainerSrcView
	case 't':
		target = ContainerTerminal
	case 'T':
		target = ContainerTerminal
		focused = true
	default:
		return false
	}
	if !fs.registry.Contains(target) {
		return false
	}
	fs.Active = target
	if focused {
		fs.Mode = ModeFocused
	} else {
		fs.Mode = ModeNormal
	}
	return true
}

// MoveSelection navigates ContainerSelect mode's hjkl/arrow keys through
// the registry's traversal order without changing mode.
func (fs *FocusState) MoveSelection(forward bool) {
	order := fs.registry.Order()
	if len(order) == 0 {
		return
	}
	idx := fs.registry.IndexOf(fs.Active)
	if idx < 0 {
		idx = 0
	}
	if forward {
		idx = (idx + 1) % len(order)
	} else {
		idx = (idx - 1 + len(order)) % len(order)
	}
	fs.Active = order[idx]
}

// ConfirmSelection handles Enter in ContainerSelect mode: returns to Normal
// on whatever container is currently highlighted.
func (fs *FocusState) ConfirmSelection() {
	fs.Mode = ModeNormal
}

// EnterFocused switches directly to Focused mode on the Terminal container
// (entered by 'T' in ContainerSelect, or programmatically).
func (fs *FocusState) EnterFocused() {
	if !fs.registry.Contains(ContainerTerminal) {
		return
	}
	fs.Active = ContainerTerminal
	fs.Mode = ModeFocused
}

// LeaveFocused returns from Focused mode to ContainerSelect — the
// double-ESC-within-grace-period transition spec.md §4.6 describes.
func (fs *FocusState) LeaveFocused() {
	if fs.Mode == ModeFocused {
		fs.Mode = ModeContainerSelect
	}
}
