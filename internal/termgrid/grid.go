// Package termgrid implements the embedded terminal emulator's virtual
// screen: an append-only grid of grapheme-cluster cells fed by a
// hand-written ANSI/VT escape-sequence state machine (spec.md §4.5,
// component C5b), grounded on the teacher's virtualterminal.VT as the
// owner of terminal state but replacing its vito/midterm dependency with a
// bespoke processor per the spec's explicit design note.
package termgrid

import "sync"

// Color is a terminal color index; negative means "use the default".
type Color int

// ColorDefault means "no explicit color set".
const ColorDefault Color = -1

// Style is the SGR attribute state applied to newly written cells.
type Style struct {
	FG, BG                          Color
	Bold, Italic, Invert, Underline bool
}

// DefaultStyle is the style a freshly reset grid starts with.
var DefaultStyle = Style{FG: ColorDefault, BG: ColorDefault}

// Cell is one visual column of a Line. Width 0 marks a zero-width
// continuation cell trailing a wide grapheme cluster; Text is empty there.
type Cell struct {
	Text  string
	Width int
	Style Style
}

// Line is one row of the grid, indexed by visual column.
type Line struct {
	Cells []Cell
}

// Grid is the append-only terminal screen buffer plus scrollback.
type Grid struct {
	mu sync.Mutex

	Lines []Line
	Style Style

	CursorX, CursorY int
	Rows, Cols       int

	// ScrollOffset is how many lines back from the tail the viewport is
	// showing; 0 means "following the tail" (spec.md §4.5 viewport
	// freeze/follow semantics).
	ScrollOffset int
}

// NewGrid creates a grid with one empty line and the cursor at the origin.
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		Lines: []Line{{}},
		Style: DefaultStyle,
		Rows:  rows,
		Cols:  cols,
	}
}

// Resize updates the viewport dimensions. The line buffer itself is never
// reflowed; only future writes are clipped/wrapped to the new width.
func (g *Grid) Resize(rows, cols int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Rows, g.Cols = rows, cols
}

func (g *Grid) growTo(y int) {
	for len(g.Lines) <= y {
		g.Lines = append(g.Lines, Line{})
	}
}

// writeCellLocked grows line y to at least x+1 columns and writes cluster
// at column x. Writing over any cell of an existing wide cluster clears its
// remaining continuation cells (spec.md §4.5).
func (g *Grid) writeCellLocked(x, y int, cluster string, width int) {
	g.growTo(y)
	line := &g.Lines[y]
	g.clearWideOverlapLocked(line, x)
	for len(line.Cells) <= x {
		line.Cells = append(line.Cells, Cell{Width: 1})
	}
	line.Cells[x] = Cell{Text: cluster, Width: width, Style: g.Style}
	for w := 1; w < width; w++ {
		for len(line.Cells) <= x+w {
			line.Cells = append(line.Cells, Cell{Width: 1})
		}
		line.Cells[x+w] = Cell{Width: 0, Style: g.Style}
	}
}

// clearWideOverlapLocked clears every cell of whatever wide cluster
// (including its continuation cells) currently occupies column x, whether x
// is that cluster's lead column or one of its continuations (spec.md §4.5:
// "overwriting any cell of a wide cluster clears the remaining continuation
// cells").
func (g *Grid) clearWideOverlapLocked(line *Line, x int) {
	if x >= len(line.Cells) {
		return
	}
	lead := x
	for lead > 0 && line.Cells[lead].Width == 0 {
		lead--
	}
	span := line.Cells[lead].Width
	if span <= 1 {
		return
	}
	for k := lead; k < lead+span && k < len(line.Cells); k++ {
		line.Cells[k] = Cell{Width: 1}
	}
}

// Input writes one grapheme cluster at the cursor, advancing it (with
// line-wrap at Cols) per spec.md §4.5.
func (g *Grid) Input(cluster string, width int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if width <= 0 {
		width = 1
	}
	if g.Cols > 0 && g.CursorX+width > g.Cols {
		g.CursorX = 0
		g.CursorY++
	}
	g.writeCellLocked(g.CursorX, g.CursorY, cluster, width)
	g.CursorX += width
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorX = 0
}

// LineFeed moves the cursor down one row, growing the buffer.
func (g *Grid) LineFeed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorY++
	g.growTo(g.CursorY)
}

// MoveCursor applies a relative cursor motion, clamped to non-negative
// coordinates (CUU/CUD/CUF/CUB).
func (g *Grid) MoveCursor(dx, dy int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorX = clampNonNeg(g.CursorX + dx)
	g.CursorY = clampNonNeg(g.CursorY + dy)
	g.growTo(g.CursorY)
}

// SetCursor positions the cursor absolutely (CUP/HVP, 0-based here; the
// escape decoder subtracts 1 from the 1-based CSI parameters).
func (g *Grid) SetCursor(x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorX, g.CursorY = clampNonNeg(x), clampNonNeg(y)
	g.growTo(g.CursorY)
}

func clampNonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// EraseInLine implements EL (CSI K): mode 0 clears cursor-to-end, 1
// clears start-to-cursor, 2 clears the whole line.
func (g *Grid) EraseInLine(mode int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.growTo(g.CursorY)
	line := &g.Lines[g.CursorY]
	switch mode {
	case 1:
		for i := 0; i <= g.CursorX && i < len(line.Cells); i++ {
			line.Cells[i] = Cell{Width: 1}
		}
	case 2:
		line.Cells = nil
	default:
		if g.CursorX < len(line.Cells) {
			line.Cells = line.Cells[:g.CursorX]
		}
	}
}

// EraseInDisplay implements ED (CSI J): mode 0 clears cursor-to-end of
// screen, 1 clears start-of-screen-to-cursor, 2 clears the whole screen.
func (g *Grid) EraseInDisplay(mode int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch mode {
	case 1:
		for y := 0; y < g.CursorY && y < len(g.Lines); y++ {
			g.Lines[y].Cells = nil
		}
		g.EraseInLineLocked(1)
	case 2:
		g.Lines = []Line{{}}
		g.CursorX, g.CursorY = 0, 0
	default:
		g.EraseInLineLocked(0)
		for y := g.CursorY + 1; y < len(g.Lines); y++ {
			g.Lines[y].Cells = nil
		}
	}
}

// EraseInLineLocked is EraseInLine's body for callers already holding mu.
func (g *Grid) EraseInLineLocked(mode int) {
	g.growTo(g.CursorY)
	line := &g.Lines[g.CursorY]
	switch mode {
	case 1:
		for i := 0; i <= g.CursorX && i < len(line.Cells); i++ {
			line.Cells[i] = Cell{Width: 1}
		}
	case 2:
		line.Cells = nil
	default:
		if g.CursorX < len(line.Cells) {
			line.Cells = line.Cells[:g.CursorX]
		}
	}
}

// Freeze pins the viewport at offset lines back from the tail.
func (g *Grid) Freeze(offset int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	g.ScrollOffset = offset
}

// Follow resumes tailing new output (ScrollOffset back to 0).
func (g *Grid) Follow() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ScrollOffset = 0
}

// Viewport returns the Rows lines currently visible given ScrollOffset.
func (g *Grid) Viewport() []Line {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := len(g.Lines)
	end := total - g.ScrollOffset
	if end < 0 {
		end = 0
	}
	if end > total {
		end = total
	}
	start := end - g.Rows
	if start < 0 {
		start = 0
	}
	out := make([]Line, end-start)
	copy(out, g.Lines[start:end])
	return out
}

// Display renders a line's cells as a plain string (no styling), skipping
// continuation cells; used for plain-text scrollback capture and tests.
func (l Line) Display() string {
	var out []byte
	for _, c := range l.Cells {
		if c.Width == 0 {
			continue
		}
		if c.Text == "" {
			out = append(out, ' ')
			continue
		}
		out = append(out, c.Text...)
	}
	return string(out)
}
