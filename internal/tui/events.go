package tui

import (
	"ugdb/internal/ipcserver"
	"ugdb/internal/miparser"
	"ugdb/internal/uilog"
)

// EventKind distinguishes the members of the single typed event channel
// spec.md §4.6/§5 describes ("one typed channel receives: keyboard input,
// signals ..., PTY bytes, MI OOB records, log lines, layout change
// requests, file-show requests, session-shutdown, IPC requests, and three
// timer ticks").
type EventKind int

const (
	EventKey EventKind = iota
	EventSignal
	EventPTYBytes
	EventOOBRecord
	EventLogLine
	EventLayoutChange
	EventFileShow
	EventSessionShutdown
	EventIPCRequest
	EventTimerRender
	EventTimerCursorBlink
	EventTimerEscGrace
)

// Signal identifies which of the three handled signals arrived.
type Signal int

const (
	SignalWinch Signal = iota
	SignalTstp
	SignalTerm
)

// Event is the sum type carried by the TUI's single event channel. Only
// the field(s) matching Kind are populated.
type Event struct {
	Kind EventKind

	Key    KeyEvent
	Signal Signal
	PTY    []byte
	OOB    miparser.Record
	Log    uilog.Line

	LayoutString string // EventLayoutChange
	FileShowPath string // EventFileShow
	FileShowLine int

	IPCRequest *ipcserver.Request

	// TimerGen is the generation counter stamped on the timer goroutine
	// that produced this tick; the event loop ignores it if it no longer
	// matches the current generation for that timer kind (spec.md §5's
	// "cancellation is cooperative via a monotonic counter").
	TimerGen uint64
}

// KeyEvent carries one decoded keypress, independent of which terminal
// library produced it (a thin seam so internal/tui's logic doesn't import
// tcell directly).
type KeyEvent struct {
	Rune  rune
	Named NamedKey
}

// NamedKey enumerates the non-printable keys the behavior chain cares
// about; zero value KeyNone means "use Rune instead".
type NamedKey int

const (
	KeyNone NamedKey = iota
	KeyEscape
	KeyEnter
	KeyPageDown
	KeyPageUp
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBackspace
	KeyTab
)
