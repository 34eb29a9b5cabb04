// Package cli implements the draftpatch command: a persisted editing session driven one operation per invocation.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
)

// Version is the draftpatch version. It is a var so builds can override it with -ldflags "-X .../internal/cli.Version=1.2.3".
var Version = "0.1.0"

// In/Out/Err override standard I/O. If nil, defaults are used. Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// exitError carries a recommended exit code.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

// usageError marks err as a misuse of arguments or flags (exit code 2).
func usageError(err error) error {
	return exitError{code: 2, err: err}
}

// Run runs the CLI with args (typically os.Args).
//
// It returns a recommended exit code (0, 1, or 2) and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the structure of args is sound.
//   - 2 -> err != nil, args parse error or misuse of flags, etc.
//
// On error, Run has already written a message to opts.Err || Stderr.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	var errW io.Writer = os.Stderr
	if opts != nil {
		if opts.In != nil {
			in = opts.In
		}
		if opts.Out != nil {
			out = opts.Out
		}
		if opts.Err != nil {
			errW = opts.Err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCommand(newEnv())
	root.SetArgs(argv)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0, nil
	}

	code := 1
	var ee exitError
	if errors.As(err, &ee) {
		code = ee.code
	} else if strings.HasPrefix(err.Error(), "unknown command") || strings.HasPrefix(err.Error(), "unknown flag") {
		code = 2
	}
	fmt.Fprintf(errW, "Error: %v\n", err)
	if code == 2 {
		fmt.Fprintf(errW, "Run '%s --help' for usage.\n", root.Name())
	}
	return code, err
}

// Execute runs the CLI against the process's arguments and standard streams, returning the exit code.
func Execute() int {
	code, _ := Run(os.Args, nil)
	return code
}
