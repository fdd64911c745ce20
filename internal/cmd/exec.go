package cmd

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/raphi011/tfsync/internal/log"
)

// Error is returned when an external command could not be started or
// exited unsuccessfully.
type Error struct {
	Name   string
	Stderr string
	Err    error
}

// Error returns stderr output if there was any, otherwise the underlying error.
func (e *Error) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invocation describes a single external command.
type Invocation struct {
	Dir     string
	Name    string
	Args    []string
	Display []string // args as written to the verbose log; defaults to Args
}

// Output runs the invocation and returns stdout.
func (inv Invocation) Output(ctx context.Context) ([]byte, error) {
	display := inv.Display
	if display == nil {
		display = inv.Args
	}
	done := log.FromContext(ctx).Command(inv.Dir, inv.Name, shellquote.Join(display...))
	start := time.Now()

	c := exec.CommandContext(ctx, inv.Name, inv.Args...)
	c.Dir = inv.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	done(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Name: inv.Name, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}
