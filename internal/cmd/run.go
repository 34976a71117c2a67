package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"ugdb/internal/ipcserver"
	"ugdb/internal/layout"
	"ugdb/internal/miparser"
	"ugdb/internal/miservice"
	"ugdb/internal/ptypair"
	"ugdb/internal/termcolors"
	"ugdb/internal/termgrid"
	"ugdb/internal/tui"
	"ugdb/internal/uilog"
	"ugdb/internal/watchset"
)

const (
	renderCoalesceDelay = 10 * time.Millisecond
	cursorBlinkPeriod   = 500 * time.Millisecond
	cursorBlinkMax      = 20
	escGraceDelay       = 200 * time.Millisecond
)

// Run performs the whole startup sequence spec.md §2/§4/§6 describes — log
// init, layout validation, PTY pair, debugger spawn, TUI wiring — and then
// drives the single event-channel loop until the session ends. It returns
// the process exit code and, for startup failures, the error that produced
// one of the fixed codes in errors.go.
func Run(opts *Options) (int, error) {
	logEnabled := opts.LogDir != ""
	logger, err := uilog.New(logEnabled, opts.LogDir)
	if err != nil {
		return ExitLoggerInit, fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	if _, err := layout.Parse(opts.Layout); err != nil {
		return ExitBadLayout, fmt.Errorf("parse layout %q: %w", opts.Layout, err)
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return ExitTerminalSetup, fmt.Errorf("stdin is not a terminal")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return ExitTerminalSetup, fmt.Errorf("enter raw mode: %w", err)
	}
	restoreTerm := func() { term.Restore(fd, oldState) }
	defer restoreTerm()
	defer func() {
		if r := recover(); r != nil {
			restoreTerm()
			panic(r)
		}
	}()

	cols, rows, err := term.GetSize(fd)
	if err != nil || cols == 0 || rows == 0 {
		cols, rows = 80, 24
	}

	pair, err := ptypair.Open(rows, cols)
	if err != nil {
		return ExitTerminalSetup, fmt.Errorf("open pty: %w", err)
	}
	defer pair.Close()

	command, extraArgs := opts.debuggerCommand()
	gdbArgs, err := opts.gdbArgs(pair.SlavePath())
	if err != nil {
		return ExitSpawnFailed, err
	}
	args := append(extraArgs, gdbArgs...)

	bps := miservice.NewBreakpointSet()
	colors := termcolors.Detect()
	src := &srcViewState{}

	app, err := tui.NewApp(opts.Layout, 2, 1, func(layout.Leaf, layout.Axis) layout.Demand {
		return layout.Demand{Weight: 1}
	})
	if err != nil {
		return ExitTerminalSetup, fmt.Errorf("init screen: %w", err)
	}
	defer app.Close()

	grid := termgrid.NewGrid(rows, cols)
	proc := termgrid.NewProcessor(grid)
	proc.Out = pair.WriteHalf()
	proc.Responder = colors.Responder()

	var watches atomic.Pointer[watchset.Set]
	sess, err := miservice.Spawn(miservice.Options{
		Command: command,
		Args:    args,
		Logger:  slog.New(uilog.NewSlogHandler(logger, "miservice")),
	}, func(rec miparser.Record) {
		bps.Apply(rec)
		app.Post(tui.Event{Kind: tui.EventOOBRecord, OOB: rec})
		if rec.Kind == miparser.KindAsyncExec && rec.Class == miparser.AsyncStopped {
			if frame, ok := findResult(rec, "frame"); ok {
				postFileShow(app, frame)
			}
			if ws := watches.Load(); ws != nil {
				if _, err := ws.Refresh(); err != nil {
					logger.Warn("watchset", "refresh: %v", err)
				}
			}
		}
	})
	if err != nil {
		return ExitSpawnFailed, fmt.Errorf("spawn %s: %w", command, err)
	}

	ws := watchset.NewSet(sess)
	for _, expr := range opts.Watch {
		if _, err := ws.Add(expr); err != nil {
			logger.Warn("watchset", "add %q: %v", expr, err)
		}
	}
	watches.Store(ws)

	ipcSrv, err := ipcserver.Listen(ipcserver.Handlers{
		SetBreakpoint: func(file string, line int) (string, error) {
			rec, err := sess.Execute("break-insert", nil, []string{fmt.Sprintf("%s:%d", file, line)})
			if err != nil {
				return "", err
			}
			if rec.Class == miparser.ClassError {
				return "", fmt.Errorf("break-insert: %s", rec.Payload)
			}
			return "ok", nil
		},
		InstanceInfo: func() (ipcserver.InstanceInfo, error) {
			wd, err := os.Getwd()
			return ipcserver.InstanceInfo{WorkingDirectory: wd}, err
		},
	}, slog.New(uilog.NewSlogHandler(logger, "ipcserver")))
	if err != nil {
		logger.Warn("ipcserver", "listen failed: %v", err)
	} else {
		defer ipcSrv.Close()
		go ipcSrv.Serve()
	}

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := pair.ReadHalf().Read(buf)
			if n > 0 {
				b := append([]byte(nil), buf[:n]...)
				app.Post(tui.Event{Kind: tui.EventPTYBytes, PTY: b})
			}
			if err != nil {
				return
			}
		}
	}()

	go app.PumpKeys()
	app.WatchSignals()
	app.Timers.RestartRender(renderCoalesceDelay)
	app.Timers.StartBlink(cursorBlinkPeriod, cursorBlinkMax)

	loop(app, grid, proc, pair, sess, logger, restoreTerm, bps, &watches, src)

	waitErr := sess.Wait()
	if waitErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
	}
	return ExitUnknownChild, nil
}

func findResult(rec miparser.Record, name string) (miparser.Value, bool) {
	for _, nv := range rec.Results {
		if nv.Name == name {
			return nv.Val, true
		}
	}
	return miparser.Value{}, false
}

func postFileShow(app *tui.App, frame miparser.Value) {
	file, _ := frame.Find("fullname")
	line, _ := frame.Find("line")
	if file.Str == "" {
		return
	}
	app.Post(tui.Event{Kind: tui.EventFileShow, FileShowPath: file.Str, FileShowLine: atoiSafe(line.Str)})
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// loop is the single event-thread consumer spec.md §4.6/§5 describes.
func loop(app *tui.App, grid *termgrid.Grid, proc *termgrid.Processor, pair *ptypair.Pair, sess *miservice.Session, logger *uilog.Logger, restoreTerm func(), bps *miservice.BreakpointSet, watches *atomic.Pointer[watchset.Set], src *srcViewState) {
	var escArmed bool
	for ev := range app.Events() {
		switch ev.Kind {
		case tui.EventKey:
			handleKey(app, grid, pair, ev.Key, &escArmed)
		case tui.EventSignal:
			if done := handleSignal(app, grid, pair, sess, restoreTerm, ev.Signal); done {
				return
			}
		case tui.EventPTYBytes:
			proc.Write(ev.PTY)
			app.Timers.RestartRender(renderCoalesceDelay)
		case tui.EventOOBRecord:
			app.Timers.RestartRender(renderCoalesceDelay)
		case tui.EventLogLine:
			app.Timers.RestartRender(renderCoalesceDelay)
		case tui.EventLayoutChange:
			if err := app.ApplyLayout(ev.LayoutString); err != nil {
				logger.Warn("layout", "rejected %q: %v", ev.LayoutString, err)
			}
			app.Timers.RestartRender(renderCoalesceDelay)
		case tui.EventFileShow:
			src.SetPosition(ev.FileShowPath, ev.FileShowLine)
			app.Timers.RestartRender(renderCoalesceDelay)
		case tui.EventSessionShutdown:
			return
		case tui.EventIPCRequest:
			// Handled directly by internal/ipcserver's own connection
			// goroutines; see DESIGN.md for why IPC requests aren't
			// re-routed through this channel.
		case tui.EventTimerRender, tui.EventTimerCursorBlink:
			render(app, grid, logger, bps, watches, src)
		case tui.EventTimerEscGrace:
			// The grace window elapsed with no second ESC: deliver the
			// deferred single byte. A lone ESC never changes focus mode
			// (spec.md §4.6) — only a second ESC within the window does,
			// and that path is handled synchronously in handleKey.
			escArmed = false
			pair.WriteHalf().Write([]byte{0x1b})
		}
	}
}

func handleKey(app *tui.App, grid *termgrid.Grid, pair *ptypair.Pair, key tui.KeyEvent, escArmed *bool) {
	switch app.Focus.Mode {
	case tui.ModeContainerSelect:
		switch key.Named {
		case tui.KeyUp, tui.KeyLeft:
			app.Focus.MoveSelection(false)
		case tui.KeyDown, tui.KeyRight:
			app.Focus.MoveSelection(true)
		case tui.KeyEnter:
			app.Focus.ConfirmSelection()
		default:
			switch key.Rune {
			case 'k', 'h':
				app.Focus.MoveSelection(false)
			case 'j', 'l':
				app.Focus.MoveSelection(true)
			default:
				app.Focus.SelectByKey(key.Rune)
			}
		}
	case tui.ModeFocused:
		if key.Named == tui.KeyEscape {
			if *escArmed {
				// Second ESC within the grace window: drop straight to
				// ContainerSelect and swallow both bytes (spec.md §4.6).
				app.Timers.CancelEscGrace()
				*escArmed = false
				app.Focus.LeaveFocused()
			} else {
				*escArmed = true
				app.Timers.ArmEscGrace(escGraceDelay)
			}
			return
		}
		if *escArmed {
			// A non-ESC key arrived before the second ESC: it wasn't
			// doubled, so cancel the grace window and flush the deferred
			// byte ahead of this one rather than letting the timer
			// deliver it late, out of order.
			app.Timers.CancelEscGrace()
			*escArmed = false
			pair.WriteHalf().Write([]byte{0x1b})
		}
		writeRawKey(pair, key)
	case tui.ModeNormal:
		if key.Named == tui.KeyEscape {
			app.Focus.EnterContainerSelect()
			return
		}
		if key.Named == tui.KeyPageDown {
			tui.HandlePageDown(app.Focus, grid)
			return
		}
	}
	app.Timers.RestartRender(renderCoalesceDelay)
}

func writeRawKey(pair *ptypair.Pair, key tui.KeyEvent) {
	if key.Rune != 0 {
		pair.WriteHalf().Write([]byte(string(key.Rune)))
		return
	}
	switch key.Named {
	case tui.KeyEnter:
		pair.WriteHalf().Write([]byte{'\r'})
	case tui.KeyBackspace:
		pair.WriteHalf().Write([]byte{0x7f})
	case tui.KeyTab:
		pair.WriteHalf().Write([]byte{'\t'})
	}
}

// render paints all four containers spec.md §4.6 describes: Terminal gets
// the PTY's termgrid.Grid, Console tails the logger's ring buffer, SrcView
// centers on the last reported stop position with a breakpoint gutter, and
// ExpressionTable lists the current watch values.
func render(app *tui.App, grid *termgrid.Grid, logger *uilog.Logger, bps *miservice.BreakpointSet, watches *atomic.Pointer[watchset.Set], src *srcViewState) {
	app.Screen.Clear()
	if rect, ok := app.Registry.Rect(tui.ContainerTerminal); ok {
		tui.RenderGrid(app.Screen, rect, grid)
	}
	if rect, ok := app.Registry.Rect(tui.ContainerConsole); ok {
		tui.RenderLines(app.Screen, rect, consoleLines(logger, rect.H))
	}
	if rect, ok := app.Registry.Rect(tui.ContainerExpressionTable); ok {
		tui.RenderLines(app.Screen, rect, expressionLines(watches))
	}
	if rect, ok := app.Registry.Rect(tui.ContainerSrcView); ok {
		lines, first, current := src.Window(rect.H)
		tui.RenderSourceLines(app.Screen, rect, lines, first, current, breakpointLinesIn(bps, src.Path()))
	}
	app.Screen.Show()
}

// consoleLines formats up to n of the logger's most recent lines for the
// Console container.
func consoleLines(logger *uilog.Logger, n int) []string {
	tail := logger.Tail(n)
	lines := make([]string, len(tail))
	for i, l := range tail {
		lines[i] = fmt.Sprintf("%s [%s] %s", l.Time.Format("15:04:05.000"), l.Component, l.Message)
	}
	return lines
}

// expressionLines formats the current watch set's entries for the
// ExpressionTable container, one row per watched expression.
func expressionLines(watches *atomic.Pointer[watchset.Set]) []string {
	ws := watches.Load()
	if ws == nil {
		return nil
	}
	entries := ws.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		if !e.InScope {
			lines[i] = fmt.Sprintf("%s = <out of scope>", e.Expr)
			continue
		}
		lines[i] = fmt.Sprintf("%s = %s (%s)", e.Expr, e.Value, e.Type)
	}
	return lines
}

// breakpointLinesIn returns the set of line numbers in path that carry an
// enabled breakpoint, for SrcView's gutter.
func breakpointLinesIn(bps *miservice.BreakpointSet, path string) map[int]bool {
	lines := make(map[int]bool)
	if path == "" {
		return lines
	}
	for _, bp := range bps.Snapshot() {
		if bp.Enabled && bp.File == path {
			lines[bp.Line] = true
		}
	}
	return lines
}

// handleSignal reacts to forwarded OS signals. SIGWINCH resizes the PTY
// pair and terminal grid to whatever size the terminal container currently
// occupies in the layout — tcell's own EventResize already recomputes
// container rects, so by the time this fires the new rect is in hand.
func handleSignal(app *tui.App, grid *termgrid.Grid, pair *ptypair.Pair, sess *miservice.Session, restoreTerm func(), sig tui.Signal) (shutdown bool) {
	switch sig {
	case tui.SignalWinch:
		if rect, ok := app.Registry.Rect(tui.ContainerTerminal); ok && rect.W > 0 && rect.H > 0 {
			grid.Resize(rect.H, rect.W)
			pair.Resize(rect.H, rect.W)
		}
		app.Timers.RestartRender(renderCoalesceDelay)
	case tui.SignalTstp:
		restoreTerm()
		app.SuspendSelf()
		term.MakeRaw(int(os.Stdin.Fd()))
	case tui.SignalTerm:
		sess.ExecuteLater("gdb-exit", nil, nil)
		return true
	}
	return false
}
