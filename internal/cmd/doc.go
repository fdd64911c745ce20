// Package cmd provides helpers for executing external commands with proper error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in error
// messages, making failures of the tf client readable in build logs.
//
// # Usage
//
//	out, err := cmd.Invocation{
//	    Dir:     root,
//	    Name:    "tf",
//	    Args:    []string{"workspaces", "-login:builder,secret"},
//	    Display: []string{"workspaces", "-login:builder,MASKED"},
//	}.Output(ctx)
//	if err != nil {
//	    // err is a *cmd.Error carrying stderr, or ctx.Err() when cancelled
//	}
//
// Display is what the verbose log shows; it defaults to Args.
//
// # Error Classes
//
// A cancelled or expired context is reported as ctx.Err() itself, never
// wrapped, so callers can tell an interrupt from a failing subprocess.
// Every other failure is a [*Error].
package cmd
