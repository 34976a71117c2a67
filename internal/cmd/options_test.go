package cmd

import (
	"reflect"
	"testing"
)

func TestGdbArgs_FlagsMirrorToDebuggerSwitches(t *testing.T) {
	o := &Options{
		NH:          true,
		NX:          true,
		Quiet:       true,
		CD:          "/work",
		Core:        "core.1234",
		PID:         42,
		Program:     "./a.out",
		ProgramArgs: []string{"--flag", "value"},
	}

	args, err := o.gdbArgs("/dev/pts/7")
	if err != nil {
		t.Fatalf("gdbArgs: %v", err)
	}

	want := []string{
		"-nh", "-nx", "-q", "-cd", "/work", "-core", "core.1234", "-pid", "42",
		"-tty", "/dev/pts/7", "--args", "./a.out", "--flag", "value",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("gdbArgs = %v, want %v", args, want)
	}
}

func TestGdbArgs_SplitsGDBArgsShellStyle(t *testing.T) {
	o := &Options{GDBArgs: `-ex "break main" -q`}

	args, err := o.gdbArgs("/dev/pts/0")
	if err != nil {
		t.Fatalf("gdbArgs: %v", err)
	}

	want := []string{"-ex", "break main", "-q", "-tty", "/dev/pts/0"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("gdbArgs = %v, want %v", args, want)
	}
}

func TestGdbArgs_InvalidGDBArgsErrors(t *testing.T) {
	o := &Options{GDBArgs: `"unterminated`}
	if _, err := o.gdbArgs("/dev/pts/0"); err == nil {
		t.Fatal("expected an error from unterminated quoting")
	}
}

func TestDebuggerCommand_RRWrapsTheConfiguredDebugger(t *testing.T) {
	o := &Options{RR: true, GDB: "gdb"}
	cmd, args := o.debuggerCommand()
	if cmd != "rr" {
		t.Fatalf("command = %q, want rr", cmd)
	}
	want := []string{"replay", "--", "gdb"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestDebuggerCommand_RRPathOverride(t *testing.T) {
	o := &Options{RR: true, RRPath: "/opt/rr/bin/rr", GDB: "gdb"}
	cmd, _ := o.debuggerCommand()
	if cmd != "/opt/rr/bin/rr" {
		t.Fatalf("command = %q, want /opt/rr/bin/rr", cmd)
	}
}

func TestDebuggerCommand_PlainGDB(t *testing.T) {
	o := &Options{GDB: "/usr/bin/gdb"}
	cmd, args := o.debuggerCommand()
	if cmd != "/usr/bin/gdb" || args != nil {
		t.Fatalf("debuggerCommand = (%q, %v), want (/usr/bin/gdb, nil)", cmd, args)
	}
}
