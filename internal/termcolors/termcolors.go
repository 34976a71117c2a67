// Package termcolors answers the inferior's OSC 10/11 foreground/background
// color queries (internal/termgrid's OSCResponder seam) from the outer
// terminal's own colors, grounded directly on the teacher's
// internal/cmd/term_colors.go (detectTerminalColorHints) and
// internal/session/virtualterminal.ColorToX11.
package termcolors

import (
	"fmt"
	"os"
	"strconv"

	"github.com/muesli/termenv"
)

// Hints holds the outer terminal's foreground/background, queried once at
// startup and reused for every OSC 10/11 response the inferior sends
// instead of re-querying the terminal per keystroke.
type Hints struct {
	FG string // rgb:RRRR/GGGG/BBBB, empty if undetectable
	BG string
}

// Detect inspects the outer terminal's current color scheme the way the
// teacher's detectTerminalColorHints does.
func Detect() Hints {
	var h Hints
	output := termenv.NewOutput(os.Stdout)
	h.FG = colorToX11(output.ForegroundColor())
	h.BG = colorToX11(output.BackgroundColor())
	return h
}

// Responder builds a termgrid.OSCResponder answering OSC query "10"
// (foreground) or "11" (background) from h, matching the response format
// spec.md §4.5 describes for OSC color queries.
func (h Hints) Responder() func(query string) (string, bool) {
	return func(query string) (string, bool) {
		switch query {
		case "10":
			if h.FG == "" {
				return "", false
			}
			return h.FG, true
		case "11":
			if h.BG == "" {
				return "", false
			}
			return h.BG, true
		default:
			return "", false
		}
	}
}

func colorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	if rgb, ok := c.(termenv.RGBColor); ok {
		hex := string(rgb)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
