package cmd

import (
	"fmt"
	"strconv"

	"github.com/google/shlex"
)

// Options collects every invocation flag spec.md §6 names, plus the
// trailing positional program and its arguments.
type Options struct {
	GDB     string
	NH      bool
	NX      bool
	Quiet   bool
	RR      bool
	RRPath  string
	CD      string
	BPS     string
	Symbols string
	Core    string
	PID     int
	Command string
	Dir     string
	LogDir  string
	Watch   []string
	Layout  string
	GDBArgs string

	Program     string
	ProgramArgs []string
}

// gdbArgs builds the argument list passed to the debugger executable (in
// addition to the --interpreter=mi miservice.Spawn always forces), mirroring
// each flag to its debugger equivalent per spec.md §6, and attaching the
// inferior's controlling terminal via --tty=. o.GDBArgs, if set, is split
// shell-style (quoting and all) and appended before the --tty/--args tail,
// the same way the teacher's internal/bridge.ExecCommand splits a
// user-supplied argument string with shlex instead of strings.Fields so
// quoted substrings survive.
func (o *Options) gdbArgs(ttyPath string) ([]string, error) {
	var args []string
	if o.NH {
		args = append(args, "-nh")
	}
	if o.NX {
		args = append(args, "-nx")
	}
	if o.Quiet {
		args = append(args, "-q")
	}
	if o.CD != "" {
		args = append(args, "-cd", o.CD)
	}
	if o.BPS != "" {
		args = append(args, "-b", o.BPS)
	}
	if o.Symbols != "" {
		args = append(args, "-symbols", o.Symbols)
	}
	if o.Core != "" {
		args = append(args, "-core", o.Core)
	}
	if o.PID != 0 {
		args = append(args, "-pid", strconv.Itoa(o.PID))
	}
	if o.Command != "" {
		args = append(args, "-x", o.Command)
	}
	if o.Dir != "" {
		args = append(args, "-directory", o.Dir)
	}
	if o.GDBArgs != "" {
		extra, err := shlex.Split(o.GDBArgs)
		if err != nil {
			return nil, fmt.Errorf("invalid --gdb-args: %w", err)
		}
		args = append(args, extra...)
	}
	args = append(args, "-tty", ttyPath)

	if o.Program != "" {
		args = append(args, "--args", o.Program)
		args = append(args, o.ProgramArgs...)
	}
	return args, nil
}

// debuggerCommand resolves the executable to spawn: the replay wrapper when
// --rr is set (spec.md §4.3's "a wrapper that hosts the debugger"), else the
// configured debugger path.
func (o *Options) debuggerCommand() (command string, extraArgs []string) {
	if o.RR {
		rrPath := o.RRPath
		if rrPath == "" {
			rrPath = "rr"
		}
		return rrPath, []string{"replay", "--", o.GDB}
	}
	return o.GDB, nil
}
