// Package miservice implements the MI session manager (spec.md §4.3): it
// spawns the debugger, frames commands with fresh tokens, and demultiplexes
// its line-oriented MI output onto a result channel (per-token replies) and
// an out-of-band handler callback (async/stream records), grounded on the reader
// goroutine and child-process ownership pattern in the teacher's
// virtualterminal.VT and session.Session types.
package miservice

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"ugdb/internal/miparser"
)

// Error sentinels returned by Execute (spec.md §4.3, §7).
var (
	ErrBusy = fmt.Errorf("miservice: session is busy (running)")
	ErrQuit = fmt.Errorf("miservice: reader thread has exited")
)

// Options configures Spawn.
type Options struct {
	Command string   // debugger executable, or a replay-wrapper in replay mode
	Args    []string // extra arguments; "--interpreter=mi" is always forced
	Logger  *slog.Logger
}

// OOBHandler receives every async/stream record as it is read, on the
// reader goroutine. Implementations must not block.
type OOBHandler func(miparser.Record)

// Session owns one debugger child process: its stdin writer, its single
// reader goroutine, and the demultiplexing of MI output by token.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger *slog.Logger

	nextToken uint64
	running   atomic.Bool
	quit      atomic.Bool

	mu       sync.Mutex
	waiters  map[uint64]chan miparser.Record
	oobFn    OOBHandler
	readDone chan struct{}
}

// Spawn starts the debugger with --interpreter=mi forced, a piped stdin and
// stdout, and inherited stderr, then starts the reader goroutine. It
// returns once the child is running.
func Spawn(opts Options, oob OOBHandler) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := append([]string{"--interpreter=mi"}, opts.Args...)
	cmd := exec.Command(opts.Command, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("miservice: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("miservice: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("miservice: start %s: %w", opts.Command, err)
	}

	s := &Session{
		cmd:      cmd,
		stdin:    stdin,
		logger:   logger,
		waiters:  make(map[uint64]chan miparser.Record),
		oobFn:    oob,
		readDone: make(chan struct{}),
	}
	go s.readLoop(stdout)
	return s, nil
}

// readLoop is the single reader thread (spec.md §4.3, §5): read one line,
// parse, route Result records by token, update the running flag, and
// forward everything else to the OOB handler.
func (s *Session) readLoop(stdout io.Reader) {
	defer close(s.readDone)
	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		rec, err := miparser.ParseLine(line)
		if err != nil {
			s.log().Warn("miservice: malformed MI line", "line", line, "err", err)
			continue
		}
		s.dispatch(rec)
	}
	s.quit.Store(true)
}

func (s *Session) dispatch(rec miparser.Record) {
	switch rec.Kind {
	case miparser.KindResult:
		switch rec.Class {
		case miparser.ClassRunning:
			s.running.Store(true)
		case miparser.ClassError:
			s.running.Store(false)
		}
		s.routeResult(rec)
	case miparser.KindAsyncExec:
		if rec.Class == miparser.AsyncStopped {
			s.running.Store(false)
		}
		s.forwardOOB(rec)
	case miparser.KindPrompt:
		// swallowed (§4.3)
	default:
		s.forwardOOB(rec)
	}
}

func (s *Session) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Session) routeResult(rec miparser.Record) {
	if rec.Token == nil {
		s.log().Warn("miservice: result record with no token", "class", rec.Class)
		return
	}
	s.mu.Lock()
	ch, ok := s.waiters[*rec.Token]
	if ok {
		delete(s.waiters, *rec.Token)
	}
	s.mu.Unlock()
	if !ok {
		s.log().Warn("miservice: discarding result with unmatched token", "token", *rec.Token)
		return
	}
	ch <- rec
}

func (s *Session) forwardOOB(rec miparser.Record) {
	if s.oobFn != nil {
		s.oobFn(rec)
	}
}

// IsRunning reads the running flag.
func (s *Session) IsRunning() bool { return s.running.Load() }

// Execute generates a fresh token, writes "token-command\n" with arguments
// quoted per encodeCommand, then blocks until a Result record tagged with
// that token arrives. It fails fast with ErrBusy if the session is marked
// running, or ErrQuit if the reader thread has already exited.
func (s *Session) Execute(operation string, opts []string, params []string) (miparser.Record, error) {
	if s.running.Load() {
		return miparser.Record{}, ErrBusy
	}
	if s.quit.Load() {
		return miparser.Record{}, ErrQuit
	}

	token := atomic.AddUint64(&s.nextToken, 1)
	ch := make(chan miparser.Record, 1)
	s.mu.Lock()
	s.waiters[token] = ch
	s.mu.Unlock()

	line := encodeCommand(token, operation, opts, params)
	if _, err := io.WriteString(s.stdin, line); err != nil {
		s.mu.Lock()
		delete(s.waiters, token)
		s.mu.Unlock()
		return miparser.Record{}, fmt.Errorf("miservice: write command: %w", err)
	}

	select {
	case rec := <-ch:
		return rec, nil
	case <-s.readDone:
		return miparser.Record{}, ErrQuit
	}
}

// ExecuteLater writes the command and discards at most one subsequent
// result record without blocking the caller on a match; used to send the
// exit command during shutdown when no one is waiting for a reply.
func (s *Session) ExecuteLater(operation string, opts []string, params []string) error {
	token := atomic.AddUint64(&s.nextToken, 1)
	ch := make(chan miparser.Record, 1)
	s.mu.Lock()
	s.waiters[token] = ch
	s.mu.Unlock()

	line := encodeCommand(token, operation, opts, params)
	_, err := io.WriteString(s.stdin, line)
	return err
}

// Interrupt sends SIGINT to the child's process group.
func (s *Session) Interrupt() error {
	if s.cmd.Process == nil {
		return fmt.Errorf("miservice: no child process")
	}
	return syscall.Kill(-s.cmd.Process.Pid, syscall.SIGINT)
}

// Wait blocks until the child process exits.
func (s *Session) Wait() error { return s.cmd.Wait() }
