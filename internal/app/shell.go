// internal/app/shell.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mattn/go-shellwords"
)

// Shell reads command lines until exit, EOF or ctx ends. Views, filters
// and the response cache live for the whole shell, so `more` keeps
// appending to the list opened earlier.
func (a *App) Shell(ctx context.Context) error {
	fmt.Fprintln(a.out, "tmsctl shell. Type `help` for commands, `exit` to leave.")
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(a.out, "tms> ")
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		args, splitErr := splitLine(line)
		switch {
		case splitErr != nil:
			fmt.Fprintf(a.out, "error: %v\n", splitErr)
		case len(args) == 0:
		case args[0] == "exit" || args[0] == "quit":
			return nil
		case args[0] == "shell":
			fmt.Fprintln(a.out, "already in the shell")
		default:
			if runErr := a.Run(ctx, args); runErr != nil {
				fmt.Fprintf(a.out, "error: %v\n", runErr)
			}
		}
		if eof {
			fmt.Fprintln(a.out)
			return nil
		}
	}
}

// splitLine splits a command line the way a POSIX shell would, minus
// expansion. Pipes, redirection and `;` are rejected rather than dropped.
func splitLine(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, err
	}
	if p.Position >= 0 {
		return nil, errors.New("pipes, redirection and command lists are not supported")
	}
	return args, nil
}
