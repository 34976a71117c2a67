// Package ptypair opens and manages the pseudo-terminal pair used to host a
// debuggee's inferior I/O: the debugger is launched with `--tty=<slave>` so
// the program being debugged reads and writes through this PTY rather than
// inheriting the frontend's own terminal, per spec.md §4.5/§6 component C5a.
package ptypair

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/creack/pty"
)

// Pair owns a PTY master/slave pair. The master is exposed through
// ReadHalf and WriteHalf, which both return the same *os.File: the single
// dedicated reader thread (§5) reads from it, and whatever forwards
// keystrokes into the inferior's pane writes to it.
type Pair struct {
	mu         sync.Mutex
	master     *os.File
	slave      *os.File
	rows, cols int
}

// Open creates a new PTY master/slave pair sized rows x cols. The slave's
// device path (e.g. /dev/pts/N) is retained on the returned Pair for
// passing as --tty= when the debugger is spawned; ptypair itself spawns
// nothing; the debugger attaches the inferior to the slave on its own.
func Open(rows, cols int) (*Pair, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("ptypair: open: %w", err)
	}
	p := &Pair{master: master, slave: slave, rows: rows, cols: cols}
	if err := p.Resize(rows, cols); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}
	return p, nil
}

// SlavePath returns the PTY slave's device path, for --tty=.
func (p *Pair) SlavePath() string {
	return p.slave.Name()
}

// ReadHalf returns an io.Reader reading the PTY master. Only the single
// dedicated PTY-reader thread (§5) may call Read on the returned value.
func (p *Pair) ReadHalf() io.Reader { return p.master }

// WriteHalf returns an io.Writer writing to the PTY master, for forwarding
// user keystrokes typed into the inferior's pane.
func (p *Pair) WriteHalf() io.Writer { return p.master }

// Resize updates the PTY window size, propagated to the child via SIGWINCH.
func (p *Pair) Resize(rows, cols int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows, p.cols = rows, cols
	return pty.Setsize(p.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Size returns the most recently set window size.
func (p *Pair) Size() (rows, cols int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows, p.cols
}

// Close releases both the PTY master and slave.
func (p *Pair) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	slaveErr := p.slave.Close()
	masterErr := p.master.Close()
	if masterErr != nil {
		return masterErr
	}
	return slaveErr
}
