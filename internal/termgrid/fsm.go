package termgrid

import (
	"io"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

// state is one node of the VT/ECMA escape-sequence state machine mandated
// by spec.md §4.5/§9 in place of reusing a terminal-emulation library.
type state int

const (
	stGround state = iota
	stEscape
	stEscapeIntermediate
	stCsiEntry
	stCsiParam
	stCsiIntermediate
	stCsiIgnore
	stOscString
	stDcsEntry
	stDcsParam
	stDcsPassthrough
	stDcsIgnore
	stSosPmApcString
)

// OSCResponder answers an OSC color query (e.g. "10" or "11") with the
// X11 rgb: string to send back to the inferior, or ok=false to ignore it.
type OSCResponder func(query string) (response string, ok bool)

// Processor drives a Grid from raw PTY output bytes.
type Processor struct {
	state state
	grid  *Grid

	groundRun []byte // pending Ground-state bytes, flushed as grapheme clusters

	params   []int
	curParam string
	interm   []byte

	oscBuf []byte

	// pendingString remembers which string-state (OSC/DCS/SOS-PM-APC) is
	// waiting for an ST (ESC \) terminator once an ESC byte is seen inside
	// it; stepEscape consults it to decide how to finish the string.
	pendingString state

	// Out, if set, receives OSC 10/11 query responses (the FSM's only
	// reply path back to the inferior).
	Out       io.Writer
	Responder OSCResponder
}

// NewProcessor returns a Processor writing into grid.
func NewProcessor(grid *Grid) *Processor {
	return &Processor{grid: grid}
}

// Write feeds PTY output bytes through the state machine.
func (p *Processor) Write(b []byte) (int, error) {
	for _, c := range b {
		p.step(c)
	}
	// Flush any trailing Ground-state run so callers observing grid state
	// immediately after Write see it; a later Write resumes accumulating
	// from an empty run, which is harmless since flushGround is idempotent
	// on an empty buffer.
	if p.state == stGround {
		p.flushGround()
	}
	return len(b), nil
}

func (p *Processor) step(c byte) {
	switch p.state {
	case stGround:
		p.stepGround(c)
	case stEscape:
		p.stepEscape(c)
	case stEscapeIntermediate:
		p.stepEscapeIntermediate(c)
	case stCsiEntry, stCsiParam:
		p.stepCsi(c)
	case stCsiIntermediate:
		p.stepCsiIntermediate(c)
	case stCsiIgnore:
		if isCsiFinal(c) {
			p.toGround()
		}
	case stOscString:
		p.stepOsc(c)
	case stDcsEntry, stDcsParam, stDcsPassthrough:
		p.stepDcs(c)
	case stDcsIgnore, stSosPmApcString:
		if c == 0x1b {
			p.pendingString = p.state
			p.state = stEscape // expect ST (ESC \)
		}
	}
}

func (p *Processor) toGround() {
	p.flushGround()
	p.state = stGround
	p.params = nil
	p.curParam = ""
	p.interm = nil
}

// flushGround splits the accumulated Ground-state byte run into grapheme
// clusters (rivo/uniseg) and feeds each to the grid, so combining marks and
// wide/emoji sequences are grouped correctly even though the state machine
// itself recognizes control/escape bytes one at a time.
func (p *Processor) flushGround() {
	if len(p.groundRun) == 0 {
		return
	}
	s := string(p.groundRun)
	p.groundRun = p.groundRun[:0]
	for len(s) > 0 {
		cluster, rest, width, _ := uniseg.FirstGraphemeClusterInString(s, -1)
		p.grid.Input(cluster, width)
		s = rest
	}
}

func (p *Processor) stepGround(c byte) {
	switch c {
	case 0x1b:
		p.flushGround()
		p.state = stEscape
	case '\r':
		p.flushGround()
		p.grid.CarriageReturn()
	case '\n':
		p.flushGround()
		p.grid.LineFeed()
	case '\b':
		p.flushGround()
		p.grid.MoveCursor(-1, 0)
	case '\t':
		p.flushGround()
		p.grid.Input(" ", 1)
	case 0x07: // BEL, no-op outside a string terminator
	default:
		if c < 0x20 {
			return // other C0 controls discarded silently
		}
		p.groundRun = append(p.groundRun, c)
	}
}

func (p *Processor) stepEscape(c byte) {
	if p.pendingString != 0 {
		if c == '\\' && p.pendingString == stOscString {
			p.finishOsc()
		}
		p.pendingString = 0
		p.toGround()
		return
	}
	switch c {
	case '[':
		p.state = stCsiEntry
		p.params = nil
		p.curParam = ""
	case ']':
		p.state = stOscString
		p.oscBuf = p.oscBuf[:0]
	case 'P':
		p.state = stDcsEntry
	case 'X', '^', '_':
		p.state = stSosPmApcString
	case 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f:
		p.interm = append(p.interm, c)
		p.state = stEscapeIntermediate
	default:
		// Single-byte escape sequences (e.g. ESC 7/8, ESC c) are not
		// assigned grid semantics; discard and return to Ground.
		p.toGround()
	}
}

func (p *Processor) stepEscapeIntermediate(c byte) {
	if c >= 0x20 && c <= 0x2f {
		p.interm = append(p.interm, c)
		return
	}
	p.toGround()
}

func (p *Processor) stepCsi(c byte) {
	switch {
	case c >= '0' && c <= '9':
		p.curParam += string(c)
		p.state = stCsiParam
	case c == ';':
		p.params = append(p.params, parseParam(p.curParam))
		p.curParam = ""
		p.state = stCsiParam
	case c >= 0x3c && c <= 0x3f: // private-marker bytes (<=>?) in CSI entry
		p.state = stCsiParam
	case c >= 0x20 && c <= 0x2f:
		p.interm = append(p.interm, c)
		p.state = stCsiIntermediate
	case isCsiFinal(c):
		p.finishParam()
		p.dispatchCsi(c)
		p.toGround()
	default:
		p.state = stCsiIgnore
	}
}

func (p *Processor) stepCsiIntermediate(c byte) {
	if c >= 0x20 && c <= 0x2f {
		p.interm = append(p.interm, c)
		return
	}
	if isCsiFinal(c) {
		p.finishParam()
		p.dispatchCsi(c)
		p.toGround()
		return
	}
	p.state = stCsiIgnore
}

func (p *Processor) finishParam() {
	if p.curParam != "" || len(p.params) == 0 {
		p.params = append(p.params, parseParam(p.curParam))
		p.curParam = ""
	}
}

func isCsiFinal(c byte) bool { return c >= 0x40 && c <= 0x7e }

func parseParam(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (p *Processor) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

func (p *Processor) dispatchCsi(final byte) {
	switch final {
	case 'A':
		p.grid.MoveCursor(0, -p.param(0, 1))
	case 'B':
		p.grid.MoveCursor(0, p.param(0, 1))
	case 'C':
		p.grid.MoveCursor(p.param(0, 1), 0)
	case 'D':
		p.grid.MoveCursor(-p.param(0, 1), 0)
	case 'H', 'f':
		p.grid.SetCursor(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'K':
		p.grid.EraseInLine(p.param(0, 0))
	case 'J':
		p.grid.EraseInDisplay(p.param(0, 0))
	case 'm':
		p.applySGR()
	default:
		// Unrecognized CSI sequences (cursor show/hide, scroll regions,
		// etc.) are discarded silently per spec.md §4.5.
	}
}

func (p *Processor) applySGR() {
	if len(p.params) == 0 {
		p.grid.Style = DefaultStyle
		return
	}
	i := 0
	for i < len(p.params) {
		code := p.params[i]
		switch {
		case code == 0:
			p.grid.Style = DefaultStyle
		case code == 1:
			p.grid.Style.Bold = true
		case code == 3:
			p.grid.Style.Italic = true
		case code == 4:
			p.grid.Style.Underline = true
		case code == 7:
			p.grid.Style.Invert = true
		case code == 22:
			p.grid.Style.Bold = false
		case code == 23:
			p.grid.Style.Italic = false
		case code == 24:
			p.grid.Style.Underline = false
		case code == 27:
			p.grid.Style.Invert = false
		case code >= 30 && code <= 37:
			p.grid.Style.FG = Color(code - 30)
		case code == 39:
			p.grid.Style.FG = ColorDefault
		case code >= 40 && code <= 47:
			p.grid.Style.BG = Color(code - 40)
		case code == 49:
			p.grid.Style.BG = ColorDefault
		case code >= 90 && code <= 97:
			p.grid.Style.FG = Color(code - 90 + 8)
		case code >= 100 && code <= 107:
			p.grid.Style.BG = Color(code - 100 + 8)
		case code == 38 || code == 48:
			consumed, col := parseExtendedColor(p.params[i:])
			if code == 38 {
				p.grid.Style.FG = col
			} else {
				p.grid.Style.BG = col
			}
			i += consumed
			continue
		}
		i++
	}
}

// parseExtendedColor parses the "38;5;N" or "38;2;R;G;B" SGR extended-color
// forms starting at params[0] (the 38/48 selector itself), returning how
// many params were consumed and a best-effort Color.
func parseExtendedColor(params []int) (consumed int, col Color) {
	if len(params) < 2 {
		return len(params), ColorDefault
	}
	switch params[1] {
	case 5:
		if len(params) >= 3 {
			return 3, Color(params[2])
		}
		return len(params), ColorDefault
	case 2:
		if len(params) >= 5 {
			return 5, Color(params[2]<<16 | params[3]<<8 | params[4])
		}
		return len(params), ColorDefault
	default:
		return len(params), ColorDefault
	}
}

func (p *Processor) stepOsc(c byte) {
	switch c {
	case 0x07:
		p.finishOsc()
		p.toGround()
	case 0x1b:
		p.pendingString = stOscString
		p.state = stEscape
	case 0x9c:
		p.finishOsc()
		p.toGround()
	default:
		p.oscBuf = append(p.oscBuf, c)
	}
}

func (p *Processor) finishOsc() {
	text := string(p.oscBuf)
	idx := strings.IndexByte(text, ';')
	if idx < 0 {
		return
	}
	code := text[:idx]
	if code != "10" && code != "11" {
		return // only OSC 10/11 color queries are answered; everything else
		// (title setting, etc.) is discarded per spec.md §4.5.
	}
	if p.Responder == nil || p.Out == nil {
		return
	}
	resp, ok := p.Responder(code)
	if !ok {
		return
	}
	p.Out.Write([]byte("\x1b]" + code + ";" + resp + "\x07"))
}

func (p *Processor) stepDcs(c byte) {
	if c == 0x1b {
		p.pendingString = stDcsPassthrough
		p.state = stEscape
		return
	}
	// DCS payload bytes are consumed and discarded (spec.md §4.5:
	// unrecognised sequences are discarded silently); only the terminator
	// matters to return to Ground.
	p.state = stDcsPassthrough
}
