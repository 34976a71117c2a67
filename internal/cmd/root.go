// Package cmd builds the ugdb root cobra command, grounded on the
// teacher's internal/cmd package shape (one *cobra.Command per concern,
// flags bound with cmd.Flags().*Var, a RunE returning a typed error the
// caller maps to a process exit code).
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ugdb/internal/config"
)

// NewRootCmd builds ugdb's root command. Unlike the teacher's multi-verb
// CLI (run/attach/send/...), ugdb is a single-purpose frontend: the root
// command itself launches the debugger and enters the TUI, with
// arguments after "--" forwarded as the inferior program and its args.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "ugdb [flags] [-- program [args...]]",
		Short: "A terminal UI frontend for GDB's machine interface",
		Long: "ugdb drives a debugger over its MI protocol and presents a split-pane\n" +
			"terminal UI: a console, the inferior's terminal, a source view, and a\n" +
			"table of watched expressions.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Program = args[0]
				opts.ProgramArgs = args[1:]
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.ApplyDefaults(&opts.GDB, &opts.Layout, &opts.Watch)
			if opts.GDB == "" {
				opts.GDB = "gdb"
			}
			if opts.Layout == "" {
				opts.Layout = "(1s-1c)|(1e-1t)"
			}

			code, err := Run(opts)
			if err != nil {
				return &ExitError{Code: code, Err: err}
			}
			if code != 0 {
				return &ExitError{Code: code, Err: fmt.Errorf("exit code %d", code)}
			}
			return nil
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&opts.GDB, "gdb", "", "debugger executable (default \"gdb\")")
	f.BoolVar(&opts.NH, "nh", false, "do not read the debugger's home-directory init file")
	f.BoolVar(&opts.NX, "nx", false, "do not read any debugger init files")
	f.BoolVar(&opts.Quiet, "quiet", false, "suppress the debugger's introductory messages")
	f.BoolVar(&opts.RR, "rr", false, "run under an rr replay wrapper")
	f.StringVar(&opts.RRPath, "rr-path", "", "path to the rr executable (default \"rr\")")
	f.StringVar(&opts.CD, "cd", "", "run the debugger with this working directory")
	f.StringVar(&opts.BPS, "b", "", "set the debugger's serial line speed")
	f.StringVar(&opts.Symbols, "symbols", "", "read symbols from this file")
	f.StringVar(&opts.Core, "core", "", "examine this core dump")
	f.IntVar(&opts.PID, "pid", 0, "attach to this running process id")
	f.StringVar(&opts.Command, "command", "", "execute debugger commands from this file at startup")
	f.StringVar(&opts.Dir, "directory", "", "add this directory to the source search path")
	f.StringVar(&opts.LogDir, "log_dir", "/tmp", "directory for ugdb's own log file")
	f.StringArrayVarP(&opts.Watch, "watch", "e", nil, "seed the watch table with this expression (repeatable)")
	f.StringVar(&opts.Layout, "layout", "", "initial layout string (default \"(1s-1c)|(1e-1t)\")")
	f.StringVar(&opts.GDBArgs, "gdb-args", "", "extra debugger arguments, shell-quoted as one string")

	return rootCmd
}
