package tui

import (
	"github.com/gdamore/tcell/v2"

	"ugdb/internal/layout"
)

// RenderLines paints plain text rows into rect, one string per row, clipped
// to rect's width/height. Used for the Console (log tail) and
// ExpressionTable (watch rows) containers, whose content is plain
// formatted text rather than a termgrid.Grid.
func RenderLines(screen tcell.Screen, rect layout.Rect, lines []string) {
	for y, line := range lines {
		if y >= rect.H {
			break
		}
		x := 0
		for _, r := range line {
			if x >= rect.W {
				break
			}
			screen.SetContent(rect.X+x, rect.Y+y, r, nil, tcell.StyleDefault)
			x++
		}
	}
}

// RenderSourceLines paints a source file's lines into rect with a one-cell
// gutter: 'B' marks a line carrying a breakpoint, and the current
// (stopped-at) line is rendered reversed. firstLine is the 1-based line
// number of lines[0].
func RenderSourceLines(screen tcell.Screen, rect layout.Rect, lines []string, firstLine, currentLine int, breakpointLines map[int]bool) {
	const gutterWidth = 1
	for y, line := range lines {
		if y >= rect.H {
			break
		}
		lineNo := firstLine + y
		style := tcell.StyleDefault
		if lineNo == currentLine {
			style = style.Reverse(true)
		}

		marker := ' '
		if breakpointLines[lineNo] {
			marker = 'B'
		}
		screen.SetContent(rect.X, rect.Y+y, marker, nil, style)

		x := gutterWidth
		for _, r := range line {
			if x >= rect.W {
				break
			}
			screen.SetContent(rect.X+x, rect.Y+y, r, nil, style)
			x++
		}
	}
}
