// Command learnlog tracks progress through a learning roadmap: task
// completion, daily streaks, milestones, spaced-repetition reviews and
// knowledge-check quizzes, kept in a local SQLite file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/daviddao/learnlog/pkg/clock"
	"github.com/daviddao/learnlog/pkg/engine"
)

var version = "0.3.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, clock.Real{}))
}

// run executes one CLI invocation and returns the exit code:
// 0 success, 1 error, 2 import rejected.
func run(args []string, in io.Reader, out, errOut io.Writer, clk clock.Clock) int {
	a := newApp(in, out, errOut, clk)
	defer a.Close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(errOut, "learnlog: %v\n", err)
		if errors.Is(err, engine.ErrSnapshotType) {
			return 2
		}
		return 1
	}
	return 0
}
