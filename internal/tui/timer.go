package tui

import (
	"sync"
	"time"
)

// TimerSet owns the three short-lived, cooperatively-cancellable timers
// spec.md §4.6/§5 names: render coalescing (~10ms), cursor blink
// (~500ms, capped around 20 blinks), and the ESC-grace window (~200ms).
// Each timer kind has its own monotonic generation counter; a fired timer
// stamps its event with the generation it started at, and restarting the
// timer (as any new event does, for the render timer) bumps the counter so
// the event loop discards ticks from a timer it has since superseded,
// per spec.md §5 ("cancellation is cooperative via a monotonic counter so
// stale ticks are ignored").
type TimerSet struct {
	mu sync.Mutex

	renderGen uint64
	blinkGen  uint64
	escGen    uint64

	blinkCount int

	out chan<- Event
}

// NewTimerSet returns a TimerSet posting fired ticks to out.
func NewTimerSet(out chan<- Event) *TimerSet {
	return &TimerSet{out: out}
}

// RestartRender (re)starts the render-coalescing timer, superseding any
// previously scheduled render tick.
func (ts *TimerSet) RestartRender(d time.Duration) {
	ts.mu.Lock()
	ts.renderGen++
	gen := ts.renderGen
	ts.mu.Unlock()

	time.AfterFunc(d, func() {
		ts.mu.Lock()
		current := ts.renderGen
		ts.mu.Unlock()
		if gen != current {
			return
		}
		ts.out <- Event{Kind: EventTimerRender, TimerGen: gen}
	})
}

// StartBlink begins (or restarts) the cursor-blink timer, resetting the
// blink count; it stops scheduling further ticks once maxBlinks is
// reached, matching spec.md's "capped at ~20 blinks".
func (ts *TimerSet) StartBlink(period time.Duration, maxBlinks int) {
	ts.mu.Lock()
	ts.blinkGen++
	gen := ts.blinkGen
	ts.blinkCount = 0
	ts.mu.Unlock()

	ts.scheduleBlink(period, maxBlinks, gen)
}

func (ts *TimerSet) scheduleBlink(period time.Duration, maxBlinks int, gen uint64) {
	time.AfterFunc(period, func() {
		ts.mu.Lock()
		if gen != ts.blinkGen {
			ts.mu.Unlock()
			return
		}
		ts.blinkCount++
		count := ts.blinkCount
		ts.mu.Unlock()

		ts.out <- Event{Kind: EventTimerCursorBlink, TimerGen: gen}

		if count < maxBlinks {
			ts.scheduleBlink(period, maxBlinks, gen)
		}
	})
}

// StopBlink cancels any pending blink ticks (e.g. on focus change).
func (ts *TimerSet) StopBlink() {
	ts.mu.Lock()
	ts.blinkGen++
	ts.mu.Unlock()
}

// ArmEscGrace starts the ESC-grace window; a second ESC delivered before
// it fires is handled synchronously by the caller (FocusState.LeaveFocused)
// rather than waiting for this tick. If the window elapses unconsumed, the
// event loop receives the tick and delivers the deferred single ESC to the
// Terminal container.
func (ts *TimerSet) ArmEscGrace(d time.Duration) {
	ts.mu.Lock()
	ts.escGen++
	gen := ts.escGen
	ts.mu.Unlock()

	time.AfterFunc(d, func() {
		ts.mu.Lock()
		current := ts.escGen
		ts.mu.Unlock()
		if gen != current {
			return
		}
		ts.out <- Event{Kind: EventTimerEscGrace, TimerGen: gen}
	})
}

// CancelEscGrace invalidates the currently-armed ESC-grace timer, used
// when a second ESC arrives within the window (spec.md §4.6).
func (ts *TimerSet) CancelEscGrace() {
	ts.mu.Lock()
	ts.escGen++
	ts.mu.Unlock()
}

// renderGeneration exposes the render counter to tests verifying it
// actually advances on restart.
func (ts *TimerSet) renderGeneration() uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.renderGen
}
