package miservice

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ugdb/internal/miparser"
)

// fakeGDB writes a tiny shell script that mimics --interpreter=mi framing
// closely enough to drive Session end to end: for each input line shaped
// "N-operation ...", it replies "N^done,ok=\"yes\"" followed by the prompt.
func fakeGDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-gdb")
	script := `#!/bin/sh
while IFS= read -r line; do
  token=$(printf '%s' "$line" | sed -n 's/^\([0-9]*\)-.*/\1/p')
  printf '%s^done,ok="yes"\n' "$token"
  printf '(gdb) \n'
done
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpawnAndExecute_RoundTrip(t *testing.T) {
	s, err := Spawn(Options{Command: fakeGDB(t)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { s.stdin.Close(); s.Wait() }() // EOF ends the fake gdb's read loop

	rec, err := s.Execute("environment-pwd", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Class != miparser.ClassDone {
		t.Fatalf("Class = %q, want done", rec.Class)
	}
	ok, found := Value(rec).Find("ok")
	if !found || ok.Str != "yes" {
		t.Errorf("ok = %+v, want String(yes)", ok)
	}
}

func TestExecute_FailsBusyWhenRunning(t *testing.T) {
	s, err := Spawn(Options{Command: fakeGDB(t)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { s.stdin.Close(); s.Wait() }() // EOF ends the fake gdb's read loop

	s.running.Store(true)
	_, err = s.Execute("exec-interrupt", nil, nil)
	if err != ErrBusy {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
}

func TestExecute_FailsQuitAfterReaderExits(t *testing.T) {
	s, err := Spawn(Options{Command: fakeGDB(t)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.stdin.Close() // EOF for the shell's read loop, ending the reader goroutine
	s.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for !s.quit.Load() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	_, err = s.Execute("environment-pwd", nil, nil)
	if err != ErrQuit {
		t.Fatalf("err = %v, want ErrQuit", err)
	}
}

func TestDispatch_RunningFlagTransitions(t *testing.T) {
	s := &Session{waiters: make(map[uint64]chan miparser.Record), readDone: make(chan struct{})}
	s.dispatch(miparser.Record{Kind: miparser.KindResult, Class: miparser.ClassRunning})
	if !s.IsRunning() {
		t.Fatal("expected running=true after ^running")
	}
	s.dispatch(miparser.Record{Kind: miparser.KindAsyncExec, Class: miparser.AsyncStopped})
	if s.IsRunning() {
		t.Fatal("expected running=false after *stopped")
	}
}

func TestForwardOOB_InvokesHandler(t *testing.T) {
	var got []miparser.Record
	s := &Session{
		waiters:  make(map[uint64]chan miparser.Record),
		readDone: make(chan struct{}),
		oobFn:    func(r miparser.Record) { got = append(got, r) },
	}
	r := miparser.Record{Kind: miparser.KindStreamConsole, Payload: "hi"}
	s.dispatch(r)
	if len(got) != 1 || got[0].Payload != "hi" {
		t.Fatalf("got = %+v", got)
	}
}
