// Command ugdb is the frontend's entrypoint: build the root cobra command
// and map whatever it returns to a process exit code. The teacher repo has
// no comparable entrypoint of its own (its binary is the sandboxed agent
// runner, not a standalone CLI one execs directly) so this file follows
// cobra's own idiomatic main func instead of a teacher template.
package main

import (
	"errors"
	"fmt"
	"os"

	"ugdb/internal/cmd"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cmd.NewRootCmd()
	if err := root.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintln(os.Stderr, "ugdb:", exitErr.Err)
			}
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, "ugdb:", err)
		return cmd.ExitUnknownChild
	}
	return 0
}
