package tui

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"ugdb/internal/layout"
	"ugdb/internal/termgrid"
)

// App owns the tcell screen, the container registry/focus state, and the
// single event channel every input source feeds (spec.md §4.6/§5). It is
// the thin wiring layer around the pure, independently-tested logic in
// focus.go/behavior.go/container.go/timer.go — grounded on the teacher's
// Overlay.Run (raw-mode setup, SIGWINCH watcher goroutine, render-on-event
// loop) generalized from one PTY pane to four laid-out containers plus a
// tcell screen instead of direct ANSI writes to the outer terminal.
type App struct {
	Screen   tcell.Screen
	Registry *Registry
	Focus    *FocusState
	Timers   *TimerSet

	layoutTree layout.Node
	hSep, vSep int
	demandOf   layout.DemandFunc

	events chan Event
	sigCh  chan os.Signal
}

// NewApp initializes a tcell screen and the container registry/focus state
// from an initial layout string.
func NewApp(layoutString string, hSep, vSep int, demandOf layout.DemandFunc) (*App, error) {
	tree, err := layout.Parse(layoutString)
	if err != nil {
		return nil, err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	reg := NewRegistry(tree)
	a := &App{
		Screen:     screen,
		Registry:   reg,
		Focus:      NewFocusState(reg),
		layoutTree: tree,
		hSep:       hSep,
		vSep:       vSep,
		demandOf:   demandOf,
		events:     make(chan Event, 64),
	}
	a.Timers = NewTimerSet(a.events)
	a.recomputeLayout()
	return a, nil
}

// Close releases the tcell screen.
func (a *App) Close() {
	a.Screen.Fini()
}

func (a *App) recomputeLayout() {
	w, h := a.Screen.Size()
	rects := map[Container]layout.Rect{}
	layout.Compute(a.layoutTree, layout.Rect{W: w, H: h}, a.hSep, a.vSep, a.demandOf, func(l layout.Leaf, r layout.Rect) {
		rects[Container(l)] = r
	})
	a.Registry.SetRects(rects)
}

// ApplyLayout re-parses and installs a new layout string (EventLayoutChange),
// rejecting it without disturbing the current layout on a parse error
// (spec.md §7: "Layout-string error: rejected at parse time; the current
// layout remains").
func (a *App) ApplyLayout(layoutString string) error {
	tree, err := layout.Parse(layoutString)
	if err != nil {
		return err
	}
	a.layoutTree = tree
	a.Registry = NewRegistry(tree)
	a.Focus = NewFocusState(a.Registry)
	a.recomputeLayout()
	return nil
}

// PumpKeys translates tcell events into the typed Event channel until the
// screen is finalized. Runs on its own goroutine (the event thread itself
// is the consumer of a.events, per spec.md §5).
func (a *App) PumpKeys() {
	for {
		ev := a.Screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			a.events <- Event{Kind: EventKey, Key: translateKey(e)}
		case *tcell.EventResize:
			a.recomputeLayout()
			a.Timers.RestartRender(10 * time.Millisecond)
		}
	}
}

// WatchSignals starts the one signal thread spec.md §5 names, forwarding
// SIGWINCH/SIGTSTP/SIGTERM onto the event channel.
func (a *App) WatchSignals() {
	a.sigCh = make(chan os.Signal, 4)
	signal.Notify(a.sigCh, syscall.SIGWINCH, syscall.SIGTSTP, syscall.SIGTERM)
	go func() {
		for sig := range a.sigCh {
			var s Signal
			switch sig {
			case syscall.SIGWINCH:
				s = SignalWinch
			case syscall.SIGTSTP:
				s = SignalTstp
			case syscall.SIGTERM:
				s = SignalTerm
			}
			a.events <- Event{Kind: EventSignal, Signal: s}
		}
	}()
}

// SuspendSelf implements the SIGTSTP stop/continue handshake spec.md §4.6
// describes: the process is normally notified of SIGTSTP (to redraw on
// resume) rather than stopped by it, so actually suspending requires
// temporarily restoring the default disposition, re-raising the signal on
// self, and re-installing the notification once SIGCONT wakes the process
// back up.
func (a *App) SuspendSelf() {
	signal.Reset(syscall.SIGTSTP)
	syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
	signal.Notify(a.sigCh, syscall.SIGWINCH, syscall.SIGTSTP, syscall.SIGTERM)
}

// Events exposes the single consumer channel for the main loop to range
// over.
func (a *App) Events() <-chan Event { return a.events }

// Post enqueues an event from a non-keyboard source (MI OOB records, PTY
// bytes, log lines, IPC requests) — the multi-producer side of the
// single-consumer channel.
func (a *App) Post(ev Event) {
	a.events <- ev
}

func translateKey(e *tcell.EventKey) KeyEvent {
	switch e.Key() {
	case tcell.KeyEscape:
		return KeyEvent{Named: KeyEscape}
	case tcell.KeyEnter:
		return KeyEvent{Named: KeyEnter}
	case tcell.KeyPgDn:
		return KeyEvent{Named: KeyPageDown}
	case tcell.KeyPgUp:
		return KeyEvent{Named: KeyPageUp}
	case tcell.KeyUp:
		return KeyEvent{Named: KeyUp}
	case tcell.KeyDown:
		return KeyEvent{Named: KeyDown}
	case tcell.KeyLeft:
		return KeyEvent{Named: KeyLeft}
	case tcell.KeyRight:
		return KeyEvent{Named: KeyRight}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyEvent{Named: KeyBackspace}
	case tcell.KeyTab:
		return KeyEvent{Named: KeyTab}
	default:
		return KeyEvent{Rune: e.Rune()}
	}
}

// RenderGrid paints a termgrid.Grid's current viewport into rect on the
// tcell screen, translating termgrid.Style into tcell.Style per cell.
func RenderGrid(screen tcell.Screen, rect layout.Rect, grid *termgrid.Grid) {
	lines := grid.Viewport()
	for y, line := range lines {
		if y >= rect.H {
			break
		}
		x := 0
		for _, cell := range line.Cells {
			if cell.Width == 0 {
				continue
			}
			if x >= rect.W {
				break
			}
			r := ' '
			for _, rn := range cell.Text {
				r = rn
				break
			}
			screen.SetContent(rect.X+x, rect.Y+y, r, nil, tcellStyle(cell.Style))
			x += cell.Width
		}
	}
}

func tcellStyle(s termgrid.Style) tcell.Style {
	st := tcell.StyleDefault
	if s.FG != termgrid.ColorDefault {
		st = st.Foreground(tcell.PaletteColor(int(s.FG)))
	}
	if s.BG != termgrid.ColorDefault {
		st = st.Background(tcell.PaletteColor(int(s.BG)))
	}
	st = st.Bold(s.Bold).Italic(s.Italic).Reverse(s.Invert).Underline(s.Underline)
	return st
}
