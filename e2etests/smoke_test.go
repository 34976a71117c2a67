// Package e2etests builds the real ugdb binary and drives it against a
// fake gdb shell script over a real pty, the same "build once, exec many"
// shape the teacher's e2etests use for their own CLI.
package e2etests

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

func ugdbBinary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir := t.TempDir()
		binPath = filepath.Join(dir, "ugdb")
		cmd := exec.Command("go", "build", "-o", binPath, "./cmd/ugdb")
		cmd.Dir = repoRoot(t)
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = fmt.Errorf("go build: %w\n%s", err, out)
		}
	})
	if buildErr != nil {
		t.Fatalf("build ugdb: %v", buildErr)
	}
	return binPath
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	return filepath.Dir(wd)
}

// fakeGDB writes a shell script standing in for the debugger: it ignores
// every flag, prints one MI prompt line, then answers each line of stdin
// with a bare ^done result and a prompt (exiting on -gdb-exit), so ugdb's
// session layer sees well-formed MI output without a real debugger
// installed.
func fakeGDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-gdb")
	script := "#!/bin/sh\n" +
		"echo '(gdb) '\n" +
		"while IFS= read -r line; do\n" +
		"  case \"$line\" in\n" +
		"  *-gdb-exit*) exit 0 ;;\n" +
		"  esac\n" +
		"  echo \"^done\"\n" +
		"  echo '(gdb) '\n" +
		"done\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake gdb: %v", err)
	}
	return path
}

// TestSmoke_StartupAndClean verifies ugdb starts against a fake gdb, is
// still running shortly after startup, exits within 5s of a SIGINT, and
// leaves a log file under --log_dir. The exit code itself is not checked.
func TestSmoke_StartupAndClean(t *testing.T) {
	bin := ugdbBinary(t)
	gdb := fakeGDB(t)
	logDir := t.TempDir()

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Fatalf("open pty: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	cmd := exec.Command(bin, "--gdb", gdb, "--log_dir", logDir, "--layout", "(1s-1c)|(1e-1t)")
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	if err := cmd.Start(); err != nil {
		t.Fatalf("start ugdb: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		t.Fatalf("ugdb exited early: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("signal ugdb: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cmd.Process.Kill()
		t.Fatal("ugdb did not exit after SIGINT")
	}

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("read log dir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected ugdb to create a log file under --log_dir")
	}
}

// TestSmoke_BadLayoutExitsWithFixedCode exercises spec.md's "bad layout
// string" startup failure, checked against the fixed exit code rather
// than any message text since that code is a stable external contract.
func TestSmoke_BadLayoutExitsWithFixedCode(t *testing.T) {
	bin := ugdbBinary(t)
	gdb := fakeGDB(t)
	logDir := t.TempDir()

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Fatalf("open pty: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	cmd := exec.Command(bin, "--gdb", gdb, "--log_dir", logDir, "--layout", "not-a-layout(((")
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	if err := cmd.Run(); err == nil {
		t.Fatal("expected ugdb to exit nonzero on a bad layout string")
	} else if exitErr, ok := asExitError(err); ok {
		if exitErr.ExitCode() != 0xfb {
			t.Errorf("exit code = %#x, want 0xfb", exitErr.ExitCode())
		}
	} else {
		t.Fatalf("unexpected error type: %v", err)
	}
}

func asExitError(err error) (*exec.ExitError, bool) {
	exitErr, ok := err.(*exec.ExitError)
	return exitErr, ok
}
